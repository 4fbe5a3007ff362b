// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/lanecal/internal/domain"
)

// MonthLayout is the wire format of a calendar month ("2024-03").
const MonthLayout = "2006-01"

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources or events.
var ErrNotFound = errors.New("not found")

// ErrRejected reports a well-formed mutation the calendar refused, such as an inverted resize.
var ErrRejected = errors.New("rejected")

// CalendarService is the calendar surface shared by the HTTP and MCP adapters.
type CalendarService interface {
	ListResources(context.Context) ([]domain.Resource, error)
	AddResource(context.Context, AddResourceRequest) (domain.Resource, error)
	RenameResource(context.Context, RenameResourceRequest) (domain.Resource, error)
	ListEvents(context.Context, ListEventsRequest) ([]domain.Event, error)
	MonthGrid(context.Context, MonthGridRequest) (MonthGrid, error)
	CreateEvent(context.Context, CreateEventRequest) (domain.Event, error)
	MoveEvent(context.Context, MoveEventRequest) (domain.Event, error)
	ResizeEvent(context.Context, ResizeEventRequest) (domain.Event, error)
	DeleteEvent(context.Context, DeleteEventRequest) error
}

// AddResourceRequest appends one resource row. An empty name gets a numbered default.
type AddResourceRequest struct {
	Name string `json:"name"`
}

// RenameResourceRequest renames one resource row.
type RenameResourceRequest struct {
	ResourceID string `json:"resource_id,omitempty"`
	Name       string `json:"name"`
}

// ListEventsRequest filters events by month and resource. Empty fields match everything.
type ListEventsRequest struct {
	Month      string
	ResourceID string
}

// MonthGridRequest selects the month to lay out. An empty month means the current one.
type MonthGridRequest struct {
	Month string
}

// CreateEventRequest creates one single-day event.
type CreateEventRequest struct {
	ResourceID string `json:"resource_id"`
	Day        string `json:"day"`
}

// MoveEventRequest moves one event to a new start day and resource, keeping its duration.
type MoveEventRequest struct {
	EventID    string `json:"event_id,omitempty"`
	ResourceID string `json:"resource_id"`
	StartDate  string `json:"start_date"`
}

// ResizeEventRequest moves one edge of an event.
type ResizeEventRequest struct {
	EventID string `json:"event_id,omitempty"`
	Edge    string `json:"edge"`
	Day     string `json:"day"`
}

// DeleteEventRequest removes one event.
type DeleteEventRequest struct {
	EventID string
}

// PlacedEvent is one event with its lane inside its resource row.
type PlacedEvent struct {
	domain.Event
	Lane int `json:"lane"`
}

// GridRow is one resource row of a month grid.
type GridRow struct {
	Resource  domain.Resource `json:"resource"`
	LaneCount int             `json:"lane_count"`
	Events    []PlacedEvent   `json:"events"`
}

// MonthGrid is the lane layout of one month.
type MonthGrid struct {
	Month    string         `json:"month"`
	Label    string         `json:"label"`
	Days     []string       `json:"days"`
	Rows     []GridRow      `json:"rows"`
	Orphaned []domain.Event `json:"orphaned,omitempty"`
}

// ParseMonth parses "YYYY-MM". An empty value resolves to the month containing now.
func ParseMonth(raw string, now time.Time) (domain.Month, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.MonthOf(domain.DayOf(now)), nil
	}
	parsed, err := time.Parse(MonthLayout, raw)
	if err != nil {
		return domain.Month{}, fmt.Errorf("%w: month %q must be YYYY-MM", ErrInvalidRequest, raw)
	}
	return domain.MonthOf(domain.DayOf(parsed)), nil
}

// FormatMonth renders m in MonthLayout.
func FormatMonth(m domain.Month) string {
	return m.First().Time().Format(MonthLayout)
}

// ParseDay parses a required "YYYY-MM-DD" field.
func ParseDay(field, raw string) (domain.Day, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Day{}, fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	}
	day, err := domain.ParseDay(raw)
	if err != nil {
		return domain.Day{}, fmt.Errorf("%w: %s: %w", ErrInvalidRequest, field, err)
	}
	return day, nil
}

// ParseEdge parses a resize edge name.
func ParseEdge(raw string) (domain.Edge, error) {
	edge := domain.Edge(strings.ToLower(strings.TrimSpace(raw)))
	if !edge.Valid() {
		return "", fmt.Errorf("%w: edge must be %q or %q", ErrInvalidRequest, domain.EdgeStart, domain.EdgeEnd)
	}
	return edge, nil
}

// RequireID trims and requires one identifier field.
func RequireID(field, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	}
	return id, nil
}
