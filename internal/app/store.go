package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/lanecal/internal/domain"
)

// DefaultSeedResources is the number of resources created on first run.
const DefaultSeedResources = 6

// DefaultPalette stores the fallback event color tokens.
var DefaultPalette = []string{
	"#3b82f6",
	"#ef4444",
	"#10b981",
	"#f59e0b",
	"#8b5cf6",
	"#ec4899",
	"#14b8a6",
	"#6366f1",
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// StoreConfig holds configuration for store.
type StoreConfig struct {
	Palette       []string
	SeedResources int
	Logger        *charmLog.Logger
}

// Store owns the resource list, the event collection, and the title counter. Mutations
// replace whole slices so readers never observe a partially updated event. Store is not
// safe for concurrent use; callers drive it from one goroutine.
type Store struct {
	kv      KVStore
	idGen   IDGenerator
	palette []string
	logger  *charmLog.Logger

	resources []domain.Resource
	events    []domain.Event
	counter   int
}

// OpenStore loads persisted state from kv, seeding defaults for absent keys.
func OpenStore(ctx context.Context, kv KVStore, idGen IDGenerator, cfg StoreConfig) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store is required")
	}
	if idGen == nil {
		return nil, fmt.Errorf("id generator is required")
	}
	palette := sanitizePalette(cfg.Palette)
	if len(palette) == 0 {
		palette = slices.Clone(DefaultPalette)
	}
	seed := cfg.SeedResources
	if seed <= 0 {
		seed = DefaultSeedResources
	}
	logger := cfg.Logger
	if logger == nil {
		logger = charmLog.New(io.Discard)
	}

	s := &Store{
		kv:      kv,
		idGen:   idGen,
		palette: palette,
		logger:  logger,
		counter: 1,
	}

	var resources []domain.Resource
	found, err := s.load(ctx, KeyResources, &resources)
	if err != nil {
		return nil, err
	}
	if found {
		s.resources = resources
	} else {
		for i := range seed {
			r, err := domain.NewResource(idGen(), fmt.Sprintf("Resource %d", i+1))
			if err != nil {
				return nil, fmt.Errorf("seed resource %d: %w", i+1, err)
			}
			s.resources = append(s.resources, r)
		}
		s.saveResources(ctx)
	}

	var events []domain.Event
	found, err = s.load(ctx, KeyEvents, &events)
	if err != nil {
		return nil, err
	}
	if found {
		s.events = s.validLoadedEvents(events)
	} else {
		s.events = []domain.Event{}
		s.saveEvents(ctx)
	}

	var counter int
	found, err = s.load(ctx, KeyNextEventCounter, &counter)
	if err != nil {
		return nil, err
	}
	if found && counter >= 1 {
		s.counter = counter
	} else {
		s.saveCounter(ctx)
	}

	s.logger.Debug("store loaded", "resources", len(s.resources), "events", len(s.events), "next_counter", s.counter)
	return s, nil
}

// Resources returns a copy of the resource list in display order.
func (s *Store) Resources() []domain.Resource {
	return slices.Clone(s.resources)
}

// Events returns a copy of the event collection.
func (s *Store) Events() []domain.Event {
	return slices.Clone(s.events)
}

// Counter returns the number the next created event will carry.
func (s *Store) Counter() int {
	return s.counter
}

// Palette returns the configured color tokens.
func (s *Store) Palette() []string {
	return slices.Clone(s.palette)
}

// Event returns the event with id.
func (s *Store) Event(id string) (domain.Event, bool) {
	idx := s.eventIndex(id)
	if idx < 0 {
		return domain.Event{}, false
	}
	return s.events[idx], true
}

// Resource returns the resource with id.
func (s *Store) Resource(id string) (domain.Resource, bool) {
	idx := s.resourceIndex(id)
	if idx < 0 {
		return domain.Resource{}, false
	}
	return s.resources[idx], true
}

// CreateEvent creates a single-day event on day for resourceID, titled and colored from the
// title counter, and advances the counter.
func (s *Store) CreateEvent(ctx context.Context, day domain.Day, resourceID string) (domain.Event, error) {
	if s.resourceIndex(resourceID) < 0 {
		return domain.Event{}, fmt.Errorf("create event on resource %q: %w", resourceID, ErrNotFound)
	}
	ev, err := domain.NewEvent(domain.EventInput{
		ID:         s.idGen(),
		ResourceID: resourceID,
		StartDate:  day,
		EndDate:    day,
		Title:      fmt.Sprintf("Event %d", s.counter),
		Color:      s.colorFor(s.counter),
	})
	if err != nil {
		return domain.Event{}, err
	}

	next := make([]domain.Event, 0, len(s.events)+1)
	next = append(next, s.events...)
	s.events = append(next, ev)
	s.counter++

	s.saveEvents(ctx)
	s.saveCounter(ctx)
	s.logger.Debug("event created", "event_id", ev.ID, "resource_id", resourceID, "day", day)
	return ev, nil
}

// MoveEvent moves eventID to start on newStart under newResourceID, keeping its duration.
func (s *Store) MoveEvent(ctx context.Context, eventID string, newStart domain.Day, newResourceID string) (domain.Event, error) {
	if s.resourceIndex(newResourceID) < 0 {
		return domain.Event{}, fmt.Errorf("move event %q to resource %q: %w", eventID, newResourceID, ErrNotFound)
	}
	return s.replaceEvent(ctx, eventID, "move", func(ev *domain.Event) error {
		return ev.MoveTo(newStart, newResourceID)
	})
}

// ResizeEvent moves one edge of eventID to proposed. Proposals that would put the start
// after the end (or the end before the start) return domain.ErrInvalidRange and change
// nothing.
func (s *Store) ResizeEvent(ctx context.Context, eventID string, edge domain.Edge, proposed domain.Day) (domain.Event, error) {
	return s.replaceEvent(ctx, eventID, "resize", func(ev *domain.Event) error {
		return ev.Resize(edge, proposed)
	})
}

// DeleteEvent removes eventID. An absent id returns ErrNotFound and changes nothing.
func (s *Store) DeleteEvent(ctx context.Context, eventID string) error {
	idx := s.eventIndex(eventID)
	if idx < 0 {
		return fmt.Errorf("delete event %q: %w", eventID, ErrNotFound)
	}
	next := make([]domain.Event, 0, len(s.events)-1)
	next = append(next, s.events[:idx]...)
	s.events = append(next, s.events[idx+1:]...)
	s.saveEvents(ctx)
	s.logger.Debug("event deleted", "event_id", eventID)
	return nil
}

// AddResource appends a resource. An empty name defaults to "Resource N" where N is the new
// row count.
func (s *Store) AddResource(ctx context.Context, name string) (domain.Resource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Resource %d", len(s.resources)+1)
	}
	r, err := domain.NewResource(s.idGen(), name)
	if err != nil {
		return domain.Resource{}, err
	}
	next := make([]domain.Resource, 0, len(s.resources)+1)
	next = append(next, s.resources...)
	s.resources = append(next, r)
	s.saveResources(ctx)
	s.logger.Debug("resource added", "resource_id", r.ID, "name", r.Name)
	return r, nil
}

// RenameResource renames resourceID.
func (s *Store) RenameResource(ctx context.Context, resourceID, name string) (domain.Resource, error) {
	idx := s.resourceIndex(resourceID)
	if idx < 0 {
		return domain.Resource{}, fmt.Errorf("rename resource %q: %w", resourceID, ErrNotFound)
	}
	r := s.resources[idx]
	if err := r.Rename(name); err != nil {
		return domain.Resource{}, err
	}
	next := slices.Clone(s.resources)
	next[idx] = r
	s.resources = next
	s.saveResources(ctx)
	return r, nil
}

// replaceEvent applies mutate to a copy of eventID and swaps the copy in when it succeeds.
func (s *Store) replaceEvent(ctx context.Context, eventID, op string, mutate func(*domain.Event) error) (domain.Event, error) {
	idx := s.eventIndex(eventID)
	if idx < 0 {
		return domain.Event{}, fmt.Errorf("%s event %q: %w", op, eventID, ErrNotFound)
	}
	updated := s.events[idx]
	if err := mutate(&updated); err != nil {
		s.logger.Debug("event mutation rejected", "op", op, "event_id", eventID, "err", err)
		return s.events[idx], err
	}
	next := slices.Clone(s.events)
	next[idx] = updated
	s.events = next
	s.saveEvents(ctx)
	return updated, nil
}

func (s *Store) colorFor(counter int) string {
	idx := (counter - 1) % len(s.palette)
	if idx < 0 {
		idx += len(s.palette)
	}
	return s.palette[idx]
}

func (s *Store) eventIndex(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.events, func(ev domain.Event) bool { return ev.ID == id })
}

func (s *Store) resourceIndex(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.resources, func(r domain.Resource) bool { return r.ID == id })
}

// load decodes key into out and reports whether the key was present.
func (s *Store) load(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := s.kv.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) saveResources(ctx context.Context) {
	s.save(ctx, KeyResources, s.resources)
}

func (s *Store) saveEvents(ctx context.Context) {
	s.save(ctx, KeyEvents, s.events)
}

func (s *Store) saveCounter(ctx context.Context) {
	s.save(ctx, KeyNextEventCounter, s.counter)
}

// save persists one key. Failures are logged and never roll back in-memory state.
func (s *Store) save(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("encode persisted key failed", "key", key, "err", err)
		return
	}
	if err := s.kv.Save(ctx, key, raw); err != nil {
		s.logger.Warn("save persisted key failed", "key", key, "err", err)
	}
}

// validLoadedEvents drops persisted events that break the event invariants.
func (s *Store) validLoadedEvents(in []domain.Event) []domain.Event {
	out := make([]domain.Event, 0, len(in))
	for _, ev := range in {
		valid, err := domain.NewEvent(domain.EventInput(ev))
		if err != nil {
			s.logger.Warn("dropping invalid persisted event", "event_id", ev.ID, "err", err)
			continue
		}
		out = append(out, valid)
	}
	return out
}

func sanitizePalette(in []string) []string {
	out := make([]string, 0, len(in))
	for _, token := range in {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}
