// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New() builds a Config with defaults; Load layers file and env on top.
//   - Validate is run by Load; callers building a Config by hand should call it.
//   - Errors wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/learnstreak/internal/domain/badge"
	"github.com/okian/learnstreak/internal/domain/heatmap"
	"github.com/okian/learnstreak/internal/domain/streak"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"omitempty,oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// MaxSkipDays is the number of missed days a streak tolerates.
	MaxSkipDays int `koanf:"max_skip_days" validate:"gte=0,lte=30"`

	// HeatmapWindowDays is the number of days in a heatmap, ending at the reference date.
	HeatmapWindowDays int `koanf:"heatmap_window_days" validate:"gt=0,lte=3660"`

	// WorkerCount bounds how many summaries of one batch run concurrently.
	WorkerCount int `koanf:"worker_count" validate:"gt=0"`

	// MaxEventsPerRequest caps the events accepted for one subject.
	MaxEventsPerRequest int `koanf:"max_events_per_request" validate:"gt=0"`

	// MaxBatchSize caps the number of requests in one batch.
	MaxBatchSize int `koanf:"max_batch_size" validate:"gt=0"`

	// Timezone is the IANA zone used to derive "today" when a request omits
	// its reference date.
	Timezone string `koanf:"timezone" validate:"required"`

	// RequestTimeoutMS bounds each HTTP request.
	RequestTimeoutMS int `koanf:"request_timeout_ms" validate:"gt=0"`

	// Badges replaces the built-in catalog when non-empty.
	Badges []badge.Definition `koanf:"badges"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		MaxSkipDays:         streak.DefaultMaxSkipDays,
		HeatmapWindowDays:   heatmap.DefaultWindowDays,
		WorkerCount:         runtime.NumCPU(),
		MaxEventsPerRequest: 50_000,
		MaxBatchSize:        500,
		Timezone:            "UTC",
		RequestTimeoutMS:    5_000,
	}
}

var validate = newValidator() //nolint:gochecknoglobals // validator caches struct metadata

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks field constraints, the timezone and the badge catalog.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, describe(fe))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Catalog(); err != nil {
		return err
	}
	return nil
}

func describe(fe validator.FieldError) string {
	name := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return name + " must not be empty"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("%s must be %s %s", name, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Catalog builds the badge catalog, falling back to the built-in one.
func (c *Config) Catalog() (badge.Catalog, error) {
	if len(c.Badges) == 0 {
		return badge.DefaultCatalog(), nil
	}
	cat, err := badge.NewCatalog(c.Badges...)
	if err != nil {
		return badge.Catalog{}, fmt.Errorf("%w: badges: %w", ErrInvalidConfig, err)
	}
	return cat, nil
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
