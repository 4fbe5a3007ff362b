package domain

import (
	"fmt"
	"strings"
)

// Event is a titled, colored, whole-day range assigned to exactly one resource.
// Display lanes are derived at read time and are not part of the event.
type Event struct {
	ID         string `json:"id"`
	ResourceID string `json:"resourceId"`
	StartDate  Day    `json:"startDate"`
	EndDate    Day    `json:"endDate"`
	Title      string `json:"title"`
	Color      string `json:"color"`
}

type EventInput struct {
	ID         string
	ResourceID string
	StartDate  Day
	EndDate    Day
	Title      string
	Color      string
}

func NewEvent(in EventInput) (Event, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ResourceID = strings.TrimSpace(in.ResourceID)
	in.Title = strings.TrimSpace(in.Title)
	in.Color = strings.TrimSpace(in.Color)

	if in.ID == "" {
		return Event{}, ErrInvalidID
	}
	if in.ResourceID == "" {
		return Event{}, ErrInvalidResourceID
	}
	if in.Title == "" {
		return Event{}, ErrInvalidTitle
	}
	if !in.StartDate.Valid() || !in.EndDate.Valid() {
		return Event{}, ErrInvalidDay
	}
	if in.StartDate.After(in.EndDate) {
		return Event{}, ErrInvalidRange
	}

	return Event{
		ID:         in.ID,
		ResourceID: in.ResourceID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Title:      in.Title,
		Color:      in.Color,
	}, nil
}

// DurationDays returns EndDate-StartDate in whole days.
func (e Event) DurationDays() int {
	return DurationDays(e.StartDate, e.EndDate)
}

// Covers reports whether day falls within the event range.
func (e Event) Covers(day Day) bool {
	return Contains(e.StartDate, e.EndDate, day)
}

// MoveTo shifts the event to start on newStart, keeping its duration, and reassigns it to
// resourceID. A shifted end outside the supported years returns ErrInvalidDay and leaves the
// event unchanged.
func (e *Event) MoveTo(newStart Day, resourceID string) error {
	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" {
		return ErrInvalidResourceID
	}
	if !newStart.Valid() {
		return ErrInvalidDay
	}
	newEnd := Shift(newStart, e.DurationDays())
	if !newEnd.Valid() {
		return fmt.Errorf("%w: end %s is past year %d", ErrInvalidDay, newEnd, MaxYear)
	}
	e.StartDate = newStart
	e.EndDate = newEnd
	e.ResourceID = resourceID
	return nil
}

// Resize moves one bound of the event. A proposal that would invert the range returns
// ErrInvalidRange and leaves the event unchanged.
func (e *Event) Resize(edge Edge, proposed Day) error {
	if !proposed.Valid() {
		return ErrInvalidDay
	}
	switch edge {
	case EdgeStart:
		day, err := ClampOrder(proposed, e.EndDate, EdgeStart)
		if err != nil {
			return err
		}
		e.StartDate = day
	case EdgeEnd:
		day, err := ClampOrder(proposed, e.StartDate, EdgeEnd)
		if err != nil {
			return err
		}
		e.EndDate = day
	default:
		return ErrInvalidEdge
	}
	return nil
}
