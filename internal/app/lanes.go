package app

import (
	"slices"

	"github.com/hylla/lanecal/internal/domain"
)

// PlacedEvent pairs an event with the display lane computed for it.
type PlacedEvent struct {
	domain.Event
	Lane int
}

// AssignLanes packs one resource's events into lanes so that no two events sharing a lane
// overlap. Events are visited by start date, ties broken by id, and each takes the lowest
// lane whose last event ends strictly before it starts. The result is independent of input
// order. The returned slice is in visiting order.
func AssignLanes(events []domain.Event) ([]PlacedEvent, int) {
	placed := make([]PlacedEvent, 0, len(events))
	for _, ev := range events {
		placed = append(placed, PlacedEvent{Event: ev})
	}
	slices.SortFunc(placed, comparePlacement)

	// laneEnds[i] is the end date of the last event placed in lane i.
	laneEnds := make([]domain.Day, 0, 4)
	for i := range placed {
		lane := 0
		for lane < len(laneEnds) && !laneEnds[lane].Before(placed[i].StartDate) {
			lane++
		}
		if lane == len(laneEnds) {
			laneEnds = append(laneEnds, placed[i].EndDate)
		} else {
			laneEnds[lane] = placed[i].EndDate
		}
		placed[i].Lane = lane
	}
	return placed, len(laneEnds)
}

// AssignLanesByResource runs AssignLanes once per resource. Lanes are scoped to a resource,
// never to a day.
func AssignLanesByResource(events []domain.Event) map[string][]PlacedEvent {
	byResource := map[string][]domain.Event{}
	for _, ev := range events {
		byResource[ev.ResourceID] = append(byResource[ev.ResourceID], ev)
	}
	out := make(map[string][]PlacedEvent, len(byResource))
	for resourceID, group := range byResource {
		out[resourceID], _ = AssignLanes(group)
	}
	return out
}

// comparePlacement orders events by start date then id.
func comparePlacement(a, b PlacedEvent) int {
	if c := a.StartDate.Compare(b.StartDate); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
