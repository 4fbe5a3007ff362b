package domain

import (
	"fmt"
	"time"
)

// Edge names the bound of an event range that a resize gesture grabs.
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// Valid reports whether e is a known edge.
func (e Edge) Valid() bool {
	return e == EdgeStart || e == EdgeEnd
}

// DurationDays returns end-start in whole days. A single-day range has duration 0.
func DurationDays(start, end Day) int {
	// Days are UTC midnights, so every day is exactly 24h.
	return int(end.Time().Sub(start.Time()) / (24 * time.Hour))
}

// Overlaps reports whether the closed ranges [aStart, aEnd] and [bStart, bEnd] share a day.
func Overlaps(aStart, aEnd, bStart, bEnd Day) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// Contains reports whether day falls within the closed range [start, end].
func Contains(start, end, day Day) bool {
	return !day.Before(start) && !day.After(end)
}

// Shift moves day by delta calendar days.
func Shift(day Day, delta int) Day {
	return day.AddDays(delta)
}

// ClampOrder validates a proposed bound against the opposite bound so a resize never inverts
// the range. For EdgeStart the proposal must not be after other; for EdgeEnd it must not be
// before other. Equality yields a single-day range and is accepted.
func ClampOrder(proposed, other Day, edge Edge) (Day, error) {
	switch edge {
	case EdgeStart:
		if proposed.After(other) {
			return Day{}, fmt.Errorf("%w: start %s after end %s", ErrInvalidRange, proposed, other)
		}
	case EdgeEnd:
		if proposed.Before(other) {
			return Day{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidRange, proposed, other)
		}
	default:
		return Day{}, ErrInvalidEdge
	}
	return proposed, nil
}

// Month identifies one calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing day.
func MonthOf(day Day) Month {
	return Month{Year: day.Year(), Month: day.Month()}
}

// First returns the first day of the month.
func (m Month) First() Day {
	return NewDay(m.Year, m.Month, 1)
}

// Last returns the last day of the month.
func (m Month) Last() Day {
	return NewDay(m.Year, m.Month+1, 0)
}

// Add returns the month n months away.
func (m Month) Add(n int) Month {
	return MonthOf(NewDay(m.Year, m.Month+time.Month(n), 1))
}

// Days returns every day of the month in order.
func (m Month) Days() []Day {
	first, last := m.First(), m.Last()
	out := make([]Day, 0, last.DayOfMonth())
	for d := first; !d.After(last); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// Label formats the month as "March 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// WeekdayLabel formats the short weekday name ("Mon").
func WeekdayLabel(day Day) string {
	return day.Time().Format("Mon")
}

// DayNumberLabel formats the day-of-month number ("5").
func DayNumberLabel(day Day) string {
	return day.Time().Format("2")
}
