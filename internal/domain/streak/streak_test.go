package streak_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/learnstreak/internal/domain/dateset"
	"github.com/okian/learnstreak/internal/domain/model"
	"github.com/okian/learnstreak/internal/domain/streak"
	. "github.com/smartystreets/goconvey/convey"
)

// run returns n consecutive dates ending at last.
func run(last model.Date, n int) []model.Date {
	out := make([]model.Date, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, last.AddDays(-i))
	}
	return out
}

func TestCalculator_Compute(t *testing.T) {
	Convey("Given a calculator with the default forgiveness window", t, func() {
		calc, err := streak.NewCalculator()
		So(err, ShouldBeNil)
		So(calc.MaxSkipDays(), ShouldEqual, streak.DefaultMaxSkipDays)

		// 2024-04-01 is a Monday.
		mon := model.NewDate(2024, time.April, 1)

		Convey("When there is no activity", func() {
			res := calc.Compute(dateset.New(), mon)

			Convey("Then everything should be zero", func() {
				So(res, ShouldResemble, streak.Result{})
			})
		})

		Convey("When the learner was active every day for a week", func() {
			today := mon.AddDays(6)
			res := calc.Compute(dateset.New(run(today, 7)...), today)

			Convey("Then the perfect week should count 7", func() {
				So(res.Current, ShouldEqual, 7)
				So(res.Longest, ShouldEqual, 7)
				So(res.Alive, ShouldBeTrue)
			})
		})

		Convey("When the weekend is skipped", func() {
			nextMon := mon.AddDays(7)
			dates := append(run(mon.AddDays(4), 5), nextMon)
			res := calc.Compute(dateset.New(dates...), nextMon)

			Convey("Then the gap of three days should be forgiven", func() {
				So(res.Current, ShouldEqual, 6)
				So(res.Longest, ShouldEqual, 6)
				So(res.Alive, ShouldBeTrue)
			})
		})

		Convey("When three idle days separate two runs", func() {
			sun := mon.AddDays(6)
			dates := append(run(mon.AddDays(2), 3), sun)
			res := calc.Compute(dateset.New(dates...), sun)

			Convey("Then the old run should be the longest and a new one should start", func() {
				So(res.Longest, ShouldEqual, 3)
				So(res.Current, ShouldEqual, 1)
				So(res.Alive, ShouldBeTrue)
			})
		})

		Convey("When there is a single activity date", func() {
			dates := dateset.New(mon)

			Convey("And the reference date is within the window", func() {
				res := calc.Compute(dates, mon.AddDays(2))

				Convey("Then the streak should be alive at 1", func() {
					So(res, ShouldResemble, streak.Result{Current: 1, Longest: 1, Alive: true})
				})
			})

			Convey("And the reference date is past the window", func() {
				res := calc.Compute(dates, mon.AddDays(3))

				Convey("Then the streak should be dead but remembered", func() {
					So(res, ShouldResemble, streak.Result{Current: 0, Longest: 1, Alive: false})
				})
			})
		})

		Convey("When the reference date precedes the latest activity", func() {
			res := calc.Compute(dateset.New(run(mon, 3)...), mon.AddDays(-5))

			Convey("Then signed arithmetic should keep the streak alive", func() {
				So(res.Alive, ShouldBeTrue)
				So(res.Current, ShouldEqual, 3)
			})
		})

		Convey("When the same events arrive more than once", func() {
			events := []model.ActivityEvent{
				{Date: mon, Category: model.CategoryStepCompleted},
				{Date: mon, Category: model.CategoryQuestionAttempted},
				{Date: mon.AddDays(1), Category: model.CategoryStepCompleted},
			}
			res := calc.Compute(dateset.FromEvents(events), mon.AddDays(1))

			Convey("Then only distinct days should count", func() {
				So(res.Current, ShouldEqual, 2)
			})
		})
	})

	Convey("Given a strict calculator without forgiveness", t, func() {
		calc, err := streak.NewCalculator(streak.WithMaxSkipDays(0))
		So(err, ShouldBeNil)
		day := model.NewDate(2024, time.January, 10)

		Convey("When a single day is missed", func() {
			dates := dateset.New(day, day.AddDays(1), day.AddDays(3))
			res := calc.Compute(dates, day.AddDays(3))

			Convey("Then the chain should break", func() {
				So(res.Current, ShouldEqual, 1)
				So(res.Longest, ShouldEqual, 2)
			})
		})

		Convey("When the last activity was yesterday", func() {
			res := calc.Compute(dateset.New(day), day.AddDays(1))

			Convey("Then the streak should already be over", func() {
				So(res.Alive, ShouldBeFalse)
				So(res.Current, ShouldEqual, 0)
			})
		})
	})
}

func TestCalculator_Chains(t *testing.T) {
	Convey("Given a history with three separate runs", t, func() {
		start := model.NewDate(2024, time.March, 1)
		dates := dateset.New(
			start, start.AddDays(1),
			start.AddDays(10),
			start.AddDays(20), start.AddDays(22), start.AddDays(25),
		)

		Convey("When listing chains", func() {
			chains, err := streak.Chains(dates, 2)

			Convey("Then they should be oldest first with correct bounds", func() {
				So(err, ShouldBeNil)
				So(chains, ShouldResemble, []streak.Chain{
					{Start: start, End: start.AddDays(1), Length: 2},
					{Start: start.AddDays(10), End: start.AddDays(10), Length: 1},
					{Start: start.AddDays(20), End: start.AddDays(25), Length: 3},
				})
			})
		})

		Convey("When the set is empty", func() {
			chains, err := streak.Chains(dateset.New(), 2)

			Convey("Then there should be no chains", func() {
				So(err, ShouldBeNil)
				So(chains, ShouldBeNil)
			})
		})
	})
}

func TestCompute_InvalidArguments(t *testing.T) {
	Convey("Given a negative forgiveness window", t, func() {
		Convey("When computing a streak", func() {
			_, err := streak.Compute(dateset.New(), model.NewDate(2024, time.January, 1), -1)

			Convey("Then it should fail fast", func() {
				So(errors.Is(err, model.ErrInvalidArgument), ShouldBeTrue)
			})
		})

		Convey("When building a calculator", func() {
			calc, err := streak.NewCalculator(streak.WithMaxSkipDays(-3))

			Convey("Then no calculator should be returned", func() {
				So(calc, ShouldBeNil)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "max_skip_days")
			})
		})

		Convey("When listing chains", func() {
			_, err := streak.Chains(dateset.New(), -1)

			Convey("Then it should fail the same way", func() {
				So(errors.Is(err, model.ErrInvalidArgument), ShouldBeTrue)
			})
		})
	})
}
