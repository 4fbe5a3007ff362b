package app

import (
	"context"
	"errors"

	"github.com/hylla/lanecal/internal/domain"
)

// DragMode names what a drag gesture will do on drop.
type DragMode string

const (
	DragMove        DragMode = "move"
	DragResizeStart DragMode = "resize-start"
	DragResizeEnd   DragMode = "resize-end"
)

// Edge returns the resized edge for resize modes.
func (m DragMode) Edge() (domain.Edge, bool) {
	switch m {
	case DragResizeStart:
		return domain.EdgeStart, true
	case DragResizeEnd:
		return domain.EdgeEnd, true
	default:
		return "", false
	}
}

func dragModeForEdge(edge domain.Edge) (DragMode, bool) {
	switch edge {
	case domain.EdgeStart:
		return DragResizeStart, true
	case domain.EdgeEnd:
		return DragResizeEnd, true
	default:
		return "", false
	}
}

// GestureState is the gesture machine state: Idle or Dragging. Callers hold the value and
// pass it back into every Controller call.
type GestureState interface {
	gestureState()
}

// Idle means no gesture is in progress.
type Idle struct{}

// Dragging carries the only data a gesture keeps between pointer-down and drop. The target
// date is resolved at drop time from whichever cell receives the drop.
type Dragging struct {
	EventID string
	Mode    DragMode
}

func (Idle) gestureState()     {}
func (Dragging) gestureState() {}

// Cell addresses one (resource, day) grid cell.
type Cell struct {
	ResourceID string
	Day        domain.Day
}

// OutcomeKind classifies the effect of one gesture step.
type OutcomeKind string

const (
	OutcomeNone      OutcomeKind = "none"
	OutcomeDragStart OutcomeKind = "drag-start"
	OutcomeCreated   OutcomeKind = "created"
	OutcomeMoved     OutcomeKind = "moved"
	OutcomeResized   OutcomeKind = "resized"
	OutcomeDeleted   OutcomeKind = "deleted"
	OutcomeDeclined  OutcomeKind = "declined"
	OutcomeRejected  OutcomeKind = "rejected"
	OutcomeCancelled OutcomeKind = "cancelled"
)

// Outcome reports what a gesture step did. Err is set only for OutcomeRejected.
type Outcome struct {
	Kind  OutcomeKind
	Event domain.Event
	Err   error
}

// ConfirmFunc asks the user to confirm deleting ev.
type ConfirmFunc func(ev domain.Event) bool

// EventMutator is the subset of Store the controller dispatches to.
type EventMutator interface {
	Event(id string) (domain.Event, bool)
	CreateEvent(ctx context.Context, day domain.Day, resourceID string) (domain.Event, error)
	MoveEvent(ctx context.Context, eventID string, newStart domain.Day, newResourceID string) (domain.Event, error)
	ResizeEvent(ctx context.Context, eventID string, edge domain.Edge, proposed domain.Day) (domain.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Controller turns gesture steps into store mutations. It holds no gesture state itself.
type Controller struct {
	store EventMutator
}

// NewController constructs a new value for this package.
func NewController(store EventMutator) *Controller {
	return &Controller{store: store}
}

// PointerDownOnEventBody starts a move drag for eventID. Only valid from Idle.
func (c *Controller) PointerDownOnEventBody(st GestureState, eventID string) (GestureState, Outcome) {
	if _, idle := st.(Idle); !idle {
		return st, Outcome{Kind: OutcomeNone}
	}
	if eventID == "" {
		return st, Outcome{Kind: OutcomeNone}
	}
	return Dragging{EventID: eventID, Mode: DragMove}, Outcome{Kind: OutcomeDragStart}
}

// PointerDownOnResizeHandle starts a resize drag of edge for eventID. Only valid from Idle.
func (c *Controller) PointerDownOnResizeHandle(st GestureState, eventID string, edge domain.Edge) (GestureState, Outcome) {
	if _, idle := st.(Idle); !idle {
		return st, Outcome{Kind: OutcomeNone}
	}
	mode, ok := dragModeForEdge(edge)
	if !ok || eventID == "" {
		return st, Outcome{Kind: OutcomeNone}
	}
	return Dragging{EventID: eventID, Mode: mode}, Outcome{Kind: OutcomeDragStart}
}

// DropOnCell completes a drag on cell and returns to Idle. Move drags adopt the cell's day
// and resource; resize drags use only the cell's day.
func (c *Controller) DropOnCell(ctx context.Context, st GestureState, cell Cell) (GestureState, Outcome) {
	drag, ok := st.(Dragging)
	if !ok {
		return st, Outcome{Kind: OutcomeNone}
	}
	if edge, resize := drag.Mode.Edge(); resize {
		ev, err := c.store.ResizeEvent(ctx, drag.EventID, edge, cell.Day)
		if err != nil {
			return Idle{}, rejected(ev, err)
		}
		return Idle{}, Outcome{Kind: OutcomeResized, Event: ev}
	}
	ev, err := c.store.MoveEvent(ctx, drag.EventID, cell.Day, cell.ResourceID)
	if err != nil {
		return Idle{}, rejected(ev, err)
	}
	return Idle{}, Outcome{Kind: OutcomeMoved, Event: ev}
}

// EndDrag ends a drag that was released outside any drop target. Nothing is mutated.
func (c *Controller) EndDrag(st GestureState) (GestureState, Outcome) {
	if _, ok := st.(Dragging); !ok {
		return st, Outcome{Kind: OutcomeNone}
	}
	return Idle{}, Outcome{Kind: OutcomeCancelled}
}

// ClickOnEmptyCell creates an event on cell. Clicks on event bodies, handles, and delete
// controls must not reach this method.
func (c *Controller) ClickOnEmptyCell(ctx context.Context, st GestureState, cell Cell) (GestureState, Outcome) {
	if _, idle := st.(Idle); !idle {
		return st, Outcome{Kind: OutcomeNone}
	}
	ev, err := c.store.CreateEvent(ctx, cell.Day, cell.ResourceID)
	if err != nil {
		return st, rejected(ev, err)
	}
	return st, Outcome{Kind: OutcomeCreated, Event: ev}
}

// ClickOnDeleteControl deletes eventID once confirm approves. An id that is already gone
// counts as deleted.
func (c *Controller) ClickOnDeleteControl(ctx context.Context, st GestureState, eventID string, confirm ConfirmFunc) (GestureState, Outcome) {
	if _, idle := st.(Idle); !idle {
		return st, Outcome{Kind: OutcomeNone}
	}
	ev, found := c.store.Event(eventID)
	if !found {
		return st, Outcome{Kind: OutcomeDeleted, Event: domain.Event{ID: eventID}}
	}
	if confirm == nil || !confirm(ev) {
		return st, Outcome{Kind: OutcomeDeclined, Event: ev}
	}
	if err := c.store.DeleteEvent(ctx, eventID); err != nil && !errors.Is(err, ErrNotFound) {
		return st, rejected(ev, err)
	}
	return st, Outcome{Kind: OutcomeDeleted, Event: ev}
}

func rejected(ev domain.Event, err error) Outcome {
	return Outcome{Kind: OutcomeRejected, Event: ev, Err: err}
}
