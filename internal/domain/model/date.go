package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date is a calendar date without a time of day. It is comparable and can be
// used as a map key. The zero value is 1970-01-01.
type Date struct {
	days int64 // days since 1970-01-01
}

// NewDate returns the date for the given year, month and day. Out-of-range
// values are normalized the way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	// UTC midnight is always an exact multiple of a day.
	return Date{days: time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// DateFromTime converts a timestamp that is expected to carry calendar
// granularity only. Any time-of-day component is rejected.
func DateFromTime(t time.Time) (Date, error) {
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return Date{}, fmt.Errorf("%w: timestamp %s is not a calendar date", ErrInvalidArgument, t.Format(time.RFC3339Nano))
	}
	return DateOf(t), nil
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q: must be YYYY-MM-DD", ErrInvalidArgument, s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Unix(d.days*secondsPerDay, 0).UTC()
}

// AddDays returns d shifted by n days (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{days: d.days + int64(n)}
}

// Sub returns the signed number of whole days between d and other (d - other).
func (d Date) Sub(other Date) int {
	return int(d.days - other.days)
}

func (d Date) Before(other Date) bool { return d.days < other.days }
func (d Date) After(other Date) bool  { return d.days > other.days }
func (d Date) Equal(other Date) bool  { return d.days == other.days }

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
