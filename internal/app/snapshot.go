package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/lanecal/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "lanecal.snapshot.v1"

// Snapshot represents snapshot data used by this package.
type Snapshot struct {
	Version          string            `json:"version"`
	ExportedAt       time.Time         `json:"exported_at"`
	Resources        []domain.Resource `json:"resources"`
	Events           []domain.Event    `json:"events"`
	NextEventCounter int               `json:"next_event_counter"`
}

// Snapshot exports the current state. Events are ordered by resource row, then start date,
// then id.
func (s *Store) Snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		Version:          SnapshotVersion,
		ExportedAt:       now.UTC(),
		Resources:        s.Resources(),
		Events:           s.Events(),
		NextEventCounter: s.counter,
	}
	rowOf := map[string]int{}
	for idx, r := range snap.Resources {
		rowOf[r.ID] = idx
	}
	slices.SortFunc(snap.Events, func(a, b domain.Event) int {
		ra, okA := rowOf[a.ResourceID]
		rb, okB := rowOf[b.ResourceID]
		if !okA {
			ra = len(rowOf)
		}
		if !okB {
			rb = len(rowOf)
		}
		if ra != rb {
			return ra - rb
		}
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return snap
}

// Validate checks snapshot ids, references, and date ranges.
func (snap *Snapshot) Validate() error {
	if snap.Version != "" && snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, snap.Version)
	}
	resourceIDs := map[string]struct{}{}
	for i, r := range snap.Resources {
		if _, err := domain.NewResource(r.ID, r.Name); err != nil {
			return fmt.Errorf("%w: resources[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		if _, exists := resourceIDs[r.ID]; exists {
			return fmt.Errorf("%w: duplicate resource id %q", ErrInvalidSnapshot, r.ID)
		}
		resourceIDs[r.ID] = struct{}{}
	}
	eventIDs := map[string]struct{}{}
	for i, ev := range snap.Events {
		if _, err := domain.NewEvent(domain.EventInput(ev)); err != nil {
			return fmt.Errorf("%w: events[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		if _, ok := resourceIDs[ev.ResourceID]; !ok {
			return fmt.Errorf("%w: events[%d] references unknown resource %q", ErrInvalidSnapshot, i, ev.ResourceID)
		}
		if _, exists := eventIDs[ev.ID]; exists {
			return fmt.Errorf("%w: duplicate event id %q", ErrInvalidSnapshot, ev.ID)
		}
		eventIDs[ev.ID] = struct{}{}
	}
	if snap.NextEventCounter < 0 {
		return fmt.Errorf("%w: next_event_counter must be >= 0", ErrInvalidSnapshot)
	}
	return nil
}

// Import replaces resources and events with the snapshot contents. The title counter never
// moves backwards, so imported titles cannot be issued again.
func (s *Store) Import(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	s.resources = slices.Clone(snap.Resources)
	s.events = slices.Clone(snap.Events)
	if s.events == nil {
		s.events = []domain.Event{}
	}
	s.counter = max(s.counter, snap.NextEventCounter)

	s.saveResources(ctx)
	s.saveEvents(ctx)
	s.saveCounter(ctx)
	s.logger.Info("snapshot imported", "resources", len(s.resources), "events", len(s.events), "next_counter", s.counter)
	return nil
}
