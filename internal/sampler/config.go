// Package sampler generates synthetic learner histories, posts them to a
// running server and checks every returned summary for consistency.
package sampler

import "time"

// Config holds configuration for a sampling run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Subjects   int           // Number of synthetic learners
	Days       int           // Length of each history, ending at Reference
	Reference  string        // Reference date (YYYY-MM-DD); empty means today in UTC
	BatchSize  int           // Subjects per POST /v1/progress/batch
	Workers    int           // Concurrent batch requests
	Timeout    time.Duration // HTTP request timeout
	Seed       int64         // Seed for the history generator
	OutputFile string        // Optional JSON dump of the generated histories
	Verbose    bool          // Log every violation
}

// Event is the wire shape of one activity.
type Event struct {
	Date     string `json:"date"`
	Category string `json:"category"`
}

// History is the generated input for one learner.
type History struct {
	SubjectID     string  `json:"subject_id"`
	Profile       string  `json:"-"`
	ReferenceDate string  `json:"reference_date"`
	Events        []Event `json:"events"`
}

// Summary mirrors the parts of the progress response the checks need.
type Summary struct {
	SubjectID     string         `json:"subject_id"`
	ReferenceDate string         `json:"reference_date"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	StreakAlive   bool           `json:"streak_alive"`
	Metrics       map[string]int `json:"metrics"`
	Badges        []string       `json:"badges"`
	Heatmap       struct {
		Start           string `json:"start"`
		End             string `json:"end"`
		TotalActivities int    `json:"total_activities"`
		IgnoredEvents   int    `json:"ignored_events"`
		Days            []struct {
			Date  string `json:"date"`
			Count int    `json:"count"`
		} `json:"days"`
	} `json:"heatmap"`
}

// Stats holds run statistics.
type Stats struct {
	SubjectsGenerated int
	EventsGenerated   int
	BatchesSent       int
	BatchesFailed     int
	SummariesChecked  int
	Violations        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
