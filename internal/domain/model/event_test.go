package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/learnstreak/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCategory(t *testing.T) {
	Convey("Given the activity categories", t, func() {
		Convey("When parsing a known category", func() {
			c, err := model.ParseCategory(" topic_completed ")

			Convey("Then it should be accepted", func() {
				So(err, ShouldBeNil)
				So(c, ShouldEqual, model.CategoryTopicCompleted)
				So(c.Valid(), ShouldBeTrue)
			})
		})

		Convey("When parsing an unknown category", func() {
			_, err := model.ParseCategory("watched_video")

			Convey("Then it should be an invalid argument", func() {
				So(errors.Is(err, model.ErrInvalidArgument), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "watched_video")
			})
		})

		Convey("When listing categories", func() {
			all := model.Categories()

			Convey("Then all six kinds should be present and the list should be a copy", func() {
				So(len(all), ShouldEqual, 6)
				all[0] = "mutated"
				So(model.Categories()[0], ShouldEqual, model.CategoryStepCompleted)
			})
		})
	})
}

func TestActivityEvent(t *testing.T) {
	Convey("Given activity events", t, func() {
		day := model.NewDate(2024, time.May, 10)

		Convey("When the category is known", func() {
			e := model.ActivityEvent{Date: day, Category: model.CategoryCertificateEarned}

			Convey("Then it should validate", func() {
				So(e.Validate(), ShouldBeNil)
			})
		})

		Convey("When the category is empty", func() {
			e := model.ActivityEvent{Date: day}

			Convey("Then validation should fail with the date in the message", func() {
				err := e.Validate()
				So(errors.Is(err, model.ErrInvalidArgument), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "2024-05-10")
			})
		})
	})
}
