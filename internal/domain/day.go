package domain

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire and display layout of a Day.
const DayLayout = "2006-01-02"

// Years outside [MinYear, MaxYear] cannot round-trip through DayLayout.
const (
	MinYear = 1
	MaxYear = 9999
)

// Day is a calendar date with no time-of-day component.
type Day struct {
	t time.Time
}

// NewDay returns the day for year, month, and day-of-month, normalizing overflow the way
// time.Date does.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return NewDay(y, m, d)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(raw string) (Day, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(DayLayout, raw)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, raw)
	}
	return Day{t: t}, nil
}

// MustParseDay is ParseDay for literals known to be valid.
func MustParseDay(raw string) Day {
	d, err := ParseDay(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) IsZero() bool {
	return d.t.IsZero()
}

// Valid reports whether d is set and its year is within [MinYear, MaxYear].
func (d Day) Valid() bool {
	if d.IsZero() {
		return false
	}
	y := d.t.Year()
	return y >= MinYear && y <= MaxYear
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return d.t
}

func (d Day) Year() int {
	return d.t.Year()
}

func (d Day) Month() time.Month {
	return d.t.Month()
}

// DayOfMonth returns the 1-based day within the month.
func (d Day) DayOfMonth() int {
	return d.t.Day()
}

func (d Day) Weekday() time.Weekday {
	return d.t.Weekday()
}

// AddDays returns the day n days later (earlier when n is negative).
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// Compare returns -1, 0, or +1 in calendar order.
func (d Day) Compare(other Day) int {
	return d.t.Compare(other.t)
}

func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

func (d Day) After(other Day) bool {
	return d.t.After(other.t)
}

func (d Day) Equal(other Day) bool {
	return d.t.Equal(other.t)
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DayLayout)
}

// MarshalText encodes the day as YYYY-MM-DD.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD day.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
