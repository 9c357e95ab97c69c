package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/learnstreak/internal/app"
	"github.com/okian/learnstreak/internal/domain/badge"
	"github.com/okian/learnstreak/internal/domain/model"
	"github.com/okian/learnstreak/internal/domain/streak"
)

var validate = newValidator() //nolint:gochecknoglobals // validator caches struct metadata

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

type eventRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Category string `json:"category" validate:"required"`
}

type progressRequest struct {
	SubjectID      string         `json:"subject_id" validate:"required,max=256"`
	ReferenceDate  string         `json:"reference_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IncludeHistory bool           `json:"include_history"`
	Events         []eventRequest `json:"events" validate:"dive"`
}

type batchRequest struct {
	Requests []progressRequest `json:"requests" validate:"required,min=1,dive"`
}

// validateStruct runs the tag rules and flattens failures into one
// ErrBadRequest.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrBadRequest, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "datetime":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", field)
	case "min", "max":
		return fmt.Sprintf("%s violates %s=%s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// toService converts a validated request. Unknown categories surface as
// model.ErrInvalidArgument.
func (p progressRequest) toService() (service.Request, error) {
	req := service.Request{
		SubjectID:      strings.TrimSpace(p.SubjectID),
		IncludeHistory: p.IncludeHistory,
		Events:         make([]model.ActivityEvent, 0, len(p.Events)),
	}
	if p.ReferenceDate != "" {
		ref, err := model.ParseDate(p.ReferenceDate)
		if err != nil {
			return service.Request{}, fmt.Errorf("reference_date: %w", err)
		}
		req.ReferenceDate = &ref
	}
	for i, e := range p.Events {
		d, err := model.ParseDate(e.Date)
		if err != nil {
			return service.Request{}, fmt.Errorf("events[%d].date: %w", i, err)
		}
		c, err := model.ParseCategory(e.Category)
		if err != nil {
			return service.Request{}, fmt.Errorf("events[%d].category: %w", i, err)
		}
		req.Events = append(req.Events, model.ActivityEvent{Date: d, Category: c})
	}
	return req, nil
}

type dayResponse struct {
	Date       model.Date             `json:"date"`
	Count      int                    `json:"count"`
	Level      int                    `json:"level"`
	Categories map[model.Category]int `json:"categories"`
}

type heatmapResponse struct {
	Start           model.Date    `json:"start"`
	End             model.Date    `json:"end"`
	TotalActivities int           `json:"total_activities"`
	MaxCount        int           `json:"max_count"`
	IgnoredEvents   int           `json:"ignored_events"`
	Days            []dayResponse `json:"days"`
}

type summaryResponse struct {
	SubjectID     string            `json:"subject_id"`
	ReferenceDate model.Date        `json:"reference_date"`
	CurrentStreak int               `json:"current_streak"`
	LongestStreak int               `json:"longest_streak"`
	StreakAlive   bool              `json:"streak_alive"`
	History       []streak.Chain    `json:"history,omitempty"`
	Metrics       badge.Metrics     `json:"metrics"`
	Badges        []string          `json:"badges"`
	NextBadges    []badge.Milestone `json:"next_badges"`
	Heatmap       heatmapResponse   `json:"heatmap"`
}

type batchResponse struct {
	Summaries []summaryResponse `json:"summaries"`
}

type badgesResponse struct {
	Badges []badge.Definition `json:"badges"`
}

func newSummaryResponse(s service.Summary) summaryResponse {
	days := make([]dayResponse, len(s.Heatmap.Days))
	for i, d := range s.Heatmap.Days {
		days[i] = dayResponse{
			Date:       d.Date,
			Count:      d.Count,
			Level:      d.Level(s.Heatmap.MaxCount),
			Categories: d.Categories,
		}
	}
	out := summaryResponse{
		SubjectID:     s.SubjectID,
		ReferenceDate: s.ReferenceDate,
		CurrentStreak: s.Streak.Current,
		LongestStreak: s.Streak.Longest,
		StreakAlive:   s.Streak.Alive,
		History:       s.History,
		Metrics:       s.Metrics,
		Badges:        s.Badges,
		NextBadges:    s.Next,
		Heatmap: heatmapResponse{
			Start:           s.Heatmap.Start,
			End:             s.Heatmap.End,
			TotalActivities: s.Heatmap.TotalActivities,
			MaxCount:        s.Heatmap.MaxCount,
			IgnoredEvents:   s.IgnoredEvents,
			Days:            days,
		},
	}
	if out.Badges == nil {
		out.Badges = []string{}
	}
	if out.NextBadges == nil {
		out.NextBadges = []badge.Milestone{}
	}
	return out
}
