package dateset_test

import (
	"testing"
	"time"

	"github.com/okian/learnstreak/internal/domain/dateset"
	"github.com/okian/learnstreak/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSet(t *testing.T) {
	Convey("Given activity dates", t, func() {
		mon := model.NewDate(2024, time.April, 1)
		tue := mon.AddDays(1)
		wed := mon.AddDays(2)

		Convey("When building from events that share a day", func() {
			s := dateset.FromEvents([]model.ActivityEvent{
				{Date: tue, Category: model.CategoryStepCompleted},
				{Date: mon, Category: model.CategoryQuestionAttempted},
				{Date: tue, Category: model.CategoryTopicCompleted},
				{Date: tue, Category: model.CategoryStepCompleted},
			})

			Convey("Then duplicates should collapse", func() {
				So(s.Len(), ShouldEqual, 2)
				So(s.Contains(mon), ShouldBeTrue)
				So(s.Contains(tue), ShouldBeTrue)
				So(s.Contains(wed), ShouldBeFalse)
			})
		})

		Convey("When reading an unordered set", func() {
			s := dateset.New(wed, mon, tue, mon)

			Convey("Then it should sort either way", func() {
				So(s.Ascending(), ShouldResemble, []model.Date{mon, tue, wed})
				So(s.Descending(), ShouldResemble, []model.Date{wed, tue, mon})
			})
		})

		Convey("When extending a set", func() {
			s := dateset.New(mon)
			grown := s.With(tue)

			Convey("Then the original should be left untouched", func() {
				So(s.Len(), ShouldEqual, 1)
				So(grown.Len(), ShouldEqual, 2)
				So(s.Contains(tue), ShouldBeFalse)
			})
		})

		Convey("When using the zero value", func() {
			var s dateset.Set

			Convey("Then it should behave as an empty set", func() {
				So(s.Len(), ShouldEqual, 0)
				So(s.Contains(mon), ShouldBeFalse)
				So(s.Descending(), ShouldBeEmpty)
				So(s.With(mon).Len(), ShouldEqual, 1)
			})
		})
	})
}
