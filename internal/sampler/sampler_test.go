package sampler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/learnstreak/internal/adapters/http/api"
	service "github.com/okian/learnstreak/internal/app"
	"github.com/okian/learnstreak/internal/domain/model"
	"github.com/okian/learnstreak/internal/domain/streak"
	"github.com/okian/learnstreak/pkg/logger"
	"github.com/okian/learnstreak/pkg/metrics"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc, err := service.New(
		service.WithHeatmapWindowDays(90),
		service.WithMetrics(metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))),
	)
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	srv := httptest.NewServer(api.NewServer(svc).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		srv := newTestServer(t)
		out := filepath.Join(t.TempDir(), "histories.json")
		cfg := &Config{
			BaseURL:    srv.URL,
			Subjects:   40,
			Days:       120,
			Reference:  "2024-06-30",
			BatchSize:  7,
			Workers:    3,
			Timeout:    5 * time.Second,
			Seed:       42,
			OutputFile: out,
		}

		Convey("When a sampling run completes", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every summary should be checked without violations", func() {
				So(err, ShouldBeNil)
				So(stats.SubjectsGenerated, ShouldEqual, 40)
				So(stats.SummariesChecked, ShouldEqual, 40)
				So(stats.BatchesSent, ShouldEqual, 6)
				So(stats.BatchesFailed, ShouldEqual, 0)
				So(stats.Violations, ShouldEqual, 0)
			})

			Convey("Then the histories should be saved", func() {
				info, err := os.Stat(out)
				So(err, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given nothing listening", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		Convey("When a run starts", func() {
			_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Subjects: 1, Days: 1, BatchSize: 1, Workers: 1, Timeout: time.Second})

			Convey("Then the health check should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "health check")
			})
		})
	})
}

func TestGenerateHistories(t *testing.T) {
	Convey("Given a fixed seed", t, func() {
		ref := model.NewDate(2024, time.March, 31)
		cfg := &Config{Subjects: 10, Days: 30, Seed: 7}

		Convey("When histories are generated twice", func() {
			a, err := generateHistories(context.Background(), cfg, ref, &Stats{})
			So(err, ShouldBeNil)
			b, err := generateHistories(context.Background(), cfg, ref, &Stats{})
			So(err, ShouldBeNil)

			Convey("Then the activity should match while ids stay unique", func() {
				So(len(a), ShouldEqual, 10)
				for i := range a {
					So(a[i].Events, ShouldResemble, b[i].Events)
					So(a[i].SubjectID, ShouldNotEqual, b[i].SubjectID)
				}
			})

			Convey("Then the daily learner should be active every day", func() {
				So(a[0].Profile, ShouldEqual, profileDaily)
				days := map[string]struct{}{}
				for _, e := range a[0].Events {
					days[e.Date] = struct{}{}
				}
				So(len(days), ShouldEqual, 30)
			})
		})
	})
}

func TestCheckSummary(t *testing.T) {
	Convey("Given a history and a calculator", t, func() {
		calc, err := streak.NewCalculator()
		So(err, ShouldBeNil)
		h := History{
			SubjectID: "s",
			Events: []Event{
				{Date: "2024-01-01", Category: "step_completed"},
				{Date: "2024-01-02", Category: "step_completed"},
			},
		}
		var s Summary
		s.ReferenceDate = "2024-01-02"
		s.CurrentStreak, s.LongestStreak, s.StreakAlive = 2, 2, true
		s.Metrics = map[string]int{"active_days": 2, "total_activities": 2}
		s.Badges = []string{}
		s.Heatmap.Start, s.Heatmap.End = "2024-01-01", "2024-01-02"
		s.Heatmap.TotalActivities = 2
		s.Heatmap.Days = append(s.Heatmap.Days,
			struct {
				Date  string `json:"date"`
				Count int    `json:"count"`
			}{"2024-01-01", 1},
			struct {
				Date  string `json:"date"`
				Count int    `json:"count"`
			}{"2024-01-02", 1},
		)

		Convey("When the summary is consistent", func() {
			Convey("Then no violation should be reported", func() {
				So(checkSummary(calc, h, s), ShouldBeEmpty)
			})
		})

		Convey("When the server reports a wrong streak and unsorted badges", func() {
			s.CurrentStreak = 3
			s.Badges = []string{"b", "a"}

			Convey("Then each problem should be reported", func() {
				v := checkSummary(calc, h, s)
				So(len(v), ShouldEqual, 3)
			})
		})
	})
}
