package app

import (
	"github.com/hylla/lanecal/internal/domain"
)

// CellEvent is one event as seen from one grid cell.
type CellEvent struct {
	PlacedEvent
	// IsFirst and IsLast compare the cell day to the whole event, not to the visible window.
	IsFirst bool
	IsLast  bool
}

// GridCell is one (resource, day) cell.
type GridCell struct {
	Cell
	Events []CellEvent
}

// GridRow is one resource row across the visible days.
type GridRow struct {
	Resource  domain.Resource
	LaneCount int
	Cells     []GridCell
}

// Grid is the render-ready projection of resources and events over a day window.
type Grid struct {
	Days []domain.Day
	Rows []GridRow
	// Orphaned lists events whose resource no longer exists. They are never placed in a row.
	Orphaned []domain.Event
}

// ProjectGrid maps events onto (resource, day) cells. Lanes are assigned per resource over
// that resource's full event set, so a lane is stable regardless of the visible window.
// LaneCount is max(lane)+1 over the events visible in days, and at least 1.
func ProjectGrid(resources []domain.Resource, events []domain.Event, days []domain.Day) Grid {
	known := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		known[r.ID] = struct{}{}
	}
	grid := Grid{
		Days: append([]domain.Day(nil), days...),
		Rows: make([]GridRow, 0, len(resources)),
	}
	for _, ev := range events {
		if _, ok := known[ev.ResourceID]; !ok {
			grid.Orphaned = append(grid.Orphaned, ev)
		}
	}

	placedByResource := AssignLanesByResource(events)
	for _, resource := range resources {
		placed := placedByResource[resource.ID]
		row := GridRow{
			Resource:  resource,
			LaneCount: 1,
			Cells:     make([]GridCell, 0, len(days)),
		}
		for _, day := range days {
			cell := GridCell{Cell: Cell{ResourceID: resource.ID, Day: day}}
			for _, pe := range placed {
				if !pe.Covers(day) {
					continue
				}
				cell.Events = append(cell.Events, CellEvent{
					PlacedEvent: pe,
					IsFirst:     day.Equal(pe.StartDate),
					IsLast:      day.Equal(pe.EndDate),
				})
				row.LaneCount = max(row.LaneCount, pe.Lane+1)
			}
			row.Cells = append(row.Cells, cell)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// EventAt returns the event occupying lane in the cell.
func (c GridCell) EventAt(lane int) (CellEvent, bool) {
	for _, ev := range c.Events {
		if ev.Lane == lane {
			return ev, true
		}
	}
	return CellEvent{}, false
}
