// Package model contains the domain values shared by the activity engine.
package model

import (
	"fmt"
	"strings"
)

// Category is the kind of learning activity an event records.
type Category string

// Known activity categories.
const (
	CategoryStepCompleted       Category = "step_completed"
	CategoryQuestionAttempted   Category = "question_attempted"
	CategoryTopicCompleted      Category = "topic_completed"
	CategorySubmissionValidated Category = "submission_validated"
	CategoryPhaseCompleted      Category = "phase_completed"
	CategoryCertificateEarned   Category = "certificate_earned"
)

var categories = []Category{
	CategoryStepCompleted,
	CategoryQuestionAttempted,
	CategoryTopicCompleted,
	CategorySubmissionValidated,
	CategoryPhaseCompleted,
	CategoryCertificateEarned,
}

// Categories returns every known category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory validates s against the known categories.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown activity category %q", ErrInvalidArgument, s)
	}
	return c, nil
}

// ActivityEvent is a single qualifying learning activity on a calendar date.
// Several events may share a date.
type ActivityEvent struct {
	Date     Date
	Category Category
}

// Validate checks the event carries a known category.
func (e ActivityEvent) Validate() error {
	if !e.Category.Valid() {
		return fmt.Errorf("%w: unknown activity category %q on %s", ErrInvalidArgument, e.Category, e.Date)
	}
	return nil
}
