package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/lanecal/internal/app"
	"github.com/hylla/lanecal/internal/domain"
)

// CalendarAdapter serves CalendarService from an app.Store. The store is single-goroutine, so
// every call holds one mutex; HTTP and MCP handlers may run concurrently.
type CalendarAdapter struct {
	mu     sync.Mutex
	store  *app.Store
	now    func() time.Time
	logger *charmLog.Logger
}

var _ CalendarService = (*CalendarAdapter)(nil)

// NewCalendarAdapter wraps store. A nil logger discards output and a nil clock uses time.Now.
func NewCalendarAdapter(store *app.Store, logger *charmLog.Logger, now func() time.Time) *CalendarAdapter {
	if logger == nil {
		logger = charmLog.New(io.Discard)
	}
	if now == nil {
		now = time.Now
	}
	return &CalendarAdapter{store: store, now: now, logger: logger}
}

// ListResources returns resources in row order.
func (a *CalendarAdapter) ListResources(_ context.Context) ([]domain.Resource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Resources(), nil
}

// AddResource appends one resource row.
func (a *CalendarAdapter) AddResource(ctx context.Context, req AddResourceRequest) (domain.Resource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, err := a.store.AddResource(ctx, req.Name)
	if err != nil {
		return domain.Resource{}, mapError("add resource", err)
	}
	a.logger.Info("resource added", "resource_id", r.ID, "name", r.Name)
	return r, nil
}

// RenameResource renames one resource row.
func (a *CalendarAdapter) RenameResource(ctx context.Context, req RenameResourceRequest) (domain.Resource, error) {
	id, err := RequireID("resource_id", req.ResourceID)
	if err != nil {
		return domain.Resource{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	r, err := a.store.RenameResource(ctx, id, req.Name)
	if err != nil {
		return domain.Resource{}, mapError("rename resource", err)
	}
	a.logger.Info("resource renamed", "resource_id", r.ID, "name", r.Name)
	return r, nil
}

// ListEvents returns events ordered by resource row, then start date.
func (a *CalendarAdapter) ListEvents(_ context.Context, req ListEventsRequest) ([]domain.Event, error) {
	var (
		month    domain.Month
		hasMonth bool
	)
	if req.Month != "" {
		m, err := ParseMonth(req.Month, a.now())
		if err != nil {
			return nil, err
		}
		month, hasMonth = m, true
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	events := a.store.Snapshot(a.now()).Events
	out := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		if req.ResourceID != "" && ev.ResourceID != req.ResourceID {
			continue
		}
		if hasMonth && !domain.Overlaps(ev.StartDate, ev.EndDate, month.First(), month.Last()) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// MonthGrid lays out one month. Lanes come from each resource's full event set.
func (a *CalendarAdapter) MonthGrid(_ context.Context, req MonthGridRequest) (MonthGrid, error) {
	month, err := ParseMonth(req.Month, a.now())
	if err != nil {
		return MonthGrid{}, err
	}

	a.mu.Lock()
	resources := a.store.Resources()
	events := a.store.Events()
	a.mu.Unlock()

	days := month.Days()
	grid := app.ProjectGrid(resources, events, days)
	placed := app.AssignLanesByResource(events)
	out := MonthGrid{
		Month:    FormatMonth(month),
		Label:    month.Label(),
		Days:     make([]string, 0, len(days)),
		Rows:     make([]GridRow, 0, len(grid.Rows)),
		Orphaned: grid.Orphaned,
	}
	for _, ev := range grid.Orphaned {
		a.logger.Warn("event excluded from grid", "event_id", ev.ID, "month", out.Month,
			"err", fmt.Errorf("%w: resource %q", app.ErrOrphanedReference, ev.ResourceID))
	}
	for _, day := range days {
		out.Days = append(out.Days, day.String())
	}
	for _, row := range grid.Rows {
		gr := GridRow{Resource: row.Resource, LaneCount: row.LaneCount, Events: []PlacedEvent{}}
		for _, pe := range placed[row.Resource.ID] {
			if domain.Overlaps(pe.StartDate, pe.EndDate, month.First(), month.Last()) {
				gr.Events = append(gr.Events, PlacedEvent{Event: pe.Event, Lane: pe.Lane})
			}
		}
		out.Rows = append(out.Rows, gr)
	}
	return out, nil
}

// CreateEvent creates one single-day event titled from the counter.
func (a *CalendarAdapter) CreateEvent(ctx context.Context, req CreateEventRequest) (domain.Event, error) {
	resourceID, err := RequireID("resource_id", req.ResourceID)
	if err != nil {
		return domain.Event{}, err
	}
	day, err := ParseDay("day", req.Day)
	if err != nil {
		return domain.Event{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	ev, err := a.store.CreateEvent(ctx, day, resourceID)
	if err != nil {
		return domain.Event{}, mapError("create event", err)
	}
	a.logger.Info("event created", "event_id", ev.ID, "resource_id", ev.ResourceID, "day", ev.StartDate)
	return ev, nil
}

// MoveEvent moves one event, keeping its duration.
func (a *CalendarAdapter) MoveEvent(ctx context.Context, req MoveEventRequest) (domain.Event, error) {
	eventID, err := RequireID("event_id", req.EventID)
	if err != nil {
		return domain.Event{}, err
	}
	resourceID, err := RequireID("resource_id", req.ResourceID)
	if err != nil {
		return domain.Event{}, err
	}
	start, err := ParseDay("start_date", req.StartDate)
	if err != nil {
		return domain.Event{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	ev, err := a.store.MoveEvent(ctx, eventID, start, resourceID)
	if err != nil {
		return domain.Event{}, mapError("move event", err)
	}
	a.logger.Info("event moved", "event_id", ev.ID, "resource_id", ev.ResourceID, "start", ev.StartDate)
	return ev, nil
}

// ResizeEvent moves one edge of an event. Inverted ranges are rejected.
func (a *CalendarAdapter) ResizeEvent(ctx context.Context, req ResizeEventRequest) (domain.Event, error) {
	eventID, err := RequireID("event_id", req.EventID)
	if err != nil {
		return domain.Event{}, err
	}
	edge, err := ParseEdge(req.Edge)
	if err != nil {
		return domain.Event{}, err
	}
	day, err := ParseDay("day", req.Day)
	if err != nil {
		return domain.Event{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	ev, err := a.store.ResizeEvent(ctx, eventID, edge, day)
	if err != nil {
		return domain.Event{}, mapError("resize event", err)
	}
	a.logger.Info("event resized", "event_id", ev.ID, "start", ev.StartDate, "end", ev.EndDate)
	return ev, nil
}

// DeleteEvent removes one event. Deleting an absent event succeeds.
func (a *CalendarAdapter) DeleteEvent(ctx context.Context, req DeleteEventRequest) error {
	eventID, err := RequireID("event_id", req.EventID)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.DeleteEvent(ctx, eventID); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			a.logger.Debug("delete of absent event ignored", "event_id", eventID)
			return nil
		}
		return mapError("delete event", err)
	}
	a.logger.Info("event deleted", "event_id", eventID)
	return nil
}

// mapError translates core errors into transport error classes.
func mapError(op string, err error) error {
	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidRange):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrRejected, err))
	case errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidDay),
		errors.Is(err, domain.ErrInvalidEdge),
		errors.Is(err, domain.ErrInvalidResourceID):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
