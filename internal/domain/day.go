package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DayFormat is the ISO-8601 format used to represent calendar days as strings.
const DayFormat = "2006-01-02"

// Day represents a calendar day with no time-of-day or timezone component.
// All "as of" comparisons in the engine operate on Day values, never on raw
// timestamps, so a transaction recorded at 23:50 local time can never land on
// the wrong side of a cutoff.
type Day struct {
	y int
	m time.Month
	d int
}

// NewDay builds a Day from year, month and day, normalizing overflow values
// the same way time.Date does (month 13 rolls into the next year, etc.).
func NewDay(year int, month time.Month, day int) Day {
	d := Day{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// DayOf strips the time-of-day from a timestamp, keeping the wall-clock date
// in the timestamp's own location.
func DayOf(t time.Time) Day {
	return NewDay(t.Date())
}

// Today returns the current local calendar day.
func Today() Day {
	return DayOf(time.Now())
}

// ParseDay parses a "YYYY-MM-DD" string into a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q, want format %q: %w", s, DayFormat, err)
	}
	return NewDay(t.Date()), nil
}

// MustParseDay is like ParseDay but panics on error. Intended for tests and
// static initializers.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// time returns the canonical representation of the day: midnight UTC.
func (d Day) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns the day as a time.Time at midnight UTC.
func (d Day) Time() time.Time { return d.time() }

// Year returns the year of the day.
func (d Day) Year() int { return d.y }

// Month returns the month of the day.
func (d Day) Month() time.Month { return d.m }

// DayOfMonth returns the day of the month.
func (d Day) DayOfMonth() int { return d.d }

// IsZero reports whether the day is the zero value.
func (d Day) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Before reports whether d falls strictly before x.
func (d Day) Before(x Day) bool { return d.time().Before(x.time()) }

// After reports whether d falls strictly after x.
func (d Day) After(x Day) bool { return d.time().After(x.time()) }

// Equal reports whether d and x are the same calendar day.
func (d Day) Equal(x Day) bool { return d == x }

// AddDays returns the day i days after d (or before, for negative i).
func (d Day) AddDays(i int) Day { return NewDay(d.y, d.m, d.d+i) }

// DaysUntil returns the number of whole days from d to x.
func (d Day) DaysUntil(x Day) int {
	return int(x.time().Sub(d.time()) / (24 * time.Hour))
}

// String formats the day as "YYYY-MM-DD".
func (d Day) String() string { return d.time().Format(DayFormat) }

// MarshalJSON encodes the day as a "YYYY-MM-DD" JSON string.
func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the day from a "YYYY-MM-DD" JSON string.
func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var _ json.Marshaler = Day{}
var _ json.Unmarshaler = (*Day)(nil)
