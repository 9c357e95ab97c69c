package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestManager(opts ...Option) (*Manager, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	return NewManager(append(opts, WithPrometheusRegistry(registry))...), registry
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager, registry := newTestManager()

			Convey("Then every collector should be registered", func() {
				So(manager, ShouldNotBeNil)
				manager.UpdateWorkerCount(4)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			manager, registry := newTestManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("x_"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
			)
			manager.UpdateCatalog(3, 1)

			Convey("Then names and labels should follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_x_badge_catalog_size" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a fresh manager", t, func() {
		manager, _ := newTestManager()

		Convey("When recording computations", func() {
			manager.RecordComputation(ComponentStreak, true, 0.3)
			manager.RecordComputation(ComponentStreak, true, 0.2)
			manager.RecordComputation(ComponentStreak, false, 0.1)

			Convey("Then outcomes should be counted separately", func() {
				So(testutil.ToFloat64(manager.computations.WithLabelValues(ComponentStreak, "ok")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.computations.WithLabelValues(ComponentStreak, "error")), ShouldEqual, 1)
			})
		})

		Convey("When recording badge unlocks and ignored events", func() {
			manager.RecordBadgesUnlocked([]string{"streak_3", "streak_7"})
			manager.RecordBadgesUnlocked([]string{"streak_3"})
			manager.RecordHeatmapIgnored(5)
			manager.RecordHeatmapIgnored(0)

			Convey("Then the counters should add up", func() {
				So(testutil.ToFloat64(manager.badgesUnlocked.WithLabelValues("streak_3")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.badgesUnlocked.WithLabelValues("streak_7")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.heatmapIgnored), ShouldEqual, 5)
			})
		})

		Convey("When tracking batches", func() {
			manager.BatchStarted()
			manager.BatchStarted()
			manager.BatchFinished()
			manager.ObserveBatchSize(8)

			Convey("Then the in-flight gauge should reflect open batches", func() {
				So(testutil.ToFloat64(manager.batchesInFlight), ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP requests", func() {
			manager.RecordHTTPRequest("/v1/progress", "POST", 200, 1.5)
			manager.RecordErrorByEndpoint("/v1/progress", "POST", "invalid_argument")

			Convey("Then the status code should become a label", func() {
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("/v1/progress", "POST", "200")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.errorRateByEndpoint.WithLabelValues("/v1/progress", "POST", "invalid_argument")), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		manager, _ := newTestManager(WithMetricsEnabled(false))

		Convey("When recording", func() {
			manager.RecordInvalidArgument("bad_date")
			manager.RecordHeatmapIgnored(3)

			Convey("Then nothing should be counted", func() {
				So(testutil.ToFloat64(manager.invalidArguments.WithLabelValues("bad_date")), ShouldEqual, 0)
				So(testutil.ToFloat64(manager.heatmapIgnored), ShouldEqual, 0)
			})
		})
	})
}

func TestSystemCollector(t *testing.T) {
	Convey("Given a manager with a short refresh interval", t, func() {
		manager, _ := newTestManager(WithRefreshInterval(5 * time.Millisecond))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		Convey("When the collector runs until the context ends", func() {
			manager.RunSystemCollector(ctx)

			Convey("Then the goroutine gauge should be populated", func() {
				So(testutil.ToFloat64(manager.systemGoroutineCount), ShouldBeGreaterThan, 0)
				So(testutil.ToFloat64(manager.systemMemoryUsage), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestGlobalManager(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When using package level recorders", func() {
			So(func() {
				RecordComputation(ComponentSummary, true, 1)
				RecordInvalidArgument("bad_category")
				RecordHTTPRequest("/healthz", "GET", 200, 0.1)
				RecordErrorByEndpoint("/healthz", "GET", "internal")
			}, ShouldNotPanic)

			Convey("Then they should land on the custom registry", func() {
				So(Default(), ShouldNotBeNil)
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
