package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/lanecal/internal/app"
	"github.com/hylla/lanecal/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	app.EventMutator
	Resources() []domain.Resource
	Events() []domain.Event
	AddResource(context.Context, string) (domain.Resource, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeConfirmDelete
	modeAddResource
)

// Model represents model data used by this package.
type Model struct {
	svc  Service
	ctrl *app.Controller
	ctx  context.Context

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap

	resources []domain.Resource
	events    []domain.Event

	now         func() time.Time
	month       domain.Month
	cursorRow   int
	cursorDay   domain.Day
	cursorEvent int
	dayOffset   int
	rowOffset   int
	dayWidth    int

	gesture app.GestureState
	// pressedCell and hoverCell track the pointer between press and release.
	pressedCell *app.Cell
	hoverCell   *app.Cell
	dragMoved   bool

	mode          inputMode
	confirmDelete bool
	pendingDelete domain.Event
	resourceInput textinput.Model

	copyText func(string) error
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	resources []domain.Resource
	events    []domain.Event
	err       error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	resourceInput := textinput.New()
	resourceInput.Prompt = "name: "
	resourceInput.Placeholder = "leave empty for a numbered name"
	resourceInput.CharLimit = 80
	m := Model{
		svc:           svc,
		ctx:           context.Background(),
		status:        "loading...",
		help:          h,
		keys:          newKeyMap(),
		now:           time.Now,
		dayWidth:      DefaultDayWidth,
		gesture:       app.Idle{},
		confirmDelete: true,
		resourceInput: resourceInput,
		copyText:      clipboard.WriteAll,
	}
	if svc != nil {
		m.ctrl = app.NewController(svc)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.cursorDay = domain.DayOf(m.now())
	m.month = domain.MonthOf(m.cursorDay)
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.syncViewport()
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.resources = msg.resources
		m.events = msg.events
		m.clampCursor()
		m.syncViewport()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMousePress(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	if m.svc == nil {
		return loadedMsg{err: errors.New("calendar service is not configured")}
	}
	return loadedMsg{
		resources: m.svc.Resources(),
		events:    m.svc.Events(),
	}
}

// reload refreshes the cached resources and events after a mutation.
func (m *Model) reload() {
	m.resources = m.svc.Resources()
	m.events = m.svc.Events()
	m.clampCursor()
	m.syncViewport()
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.help.ShowAll {
		if msg.String() == "esc" {
			m.help.ShowAll = false
		}
		return m, nil
	}
	if m.svc == nil || m.err != nil {
		return m, nil
	}

	_, dragging := m.gesture.(app.Dragging)
	switch {
	case key.Matches(msg, m.keys.cancel):
		if dragging {
			st, out := m.ctrl.EndDrag(m.gesture)
			m.applyOutcome(st, out)
		}
		return m, nil
	case dragging && key.Matches(msg, m.keys.drop):
		st, out := m.ctrl.DropOnCell(m.ctx, m.gesture, m.cursorCell())
		m.applyOutcome(st, out)
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		m.moveCursorDays(-1)
	case key.Matches(msg, m.keys.moveRight):
		m.moveCursorDays(1)
	case key.Matches(msg, m.keys.moveUp):
		m.moveCursorRows(-1)
	case key.Matches(msg, m.keys.moveDown):
		m.moveCursorRows(1)
	case key.Matches(msg, m.keys.prevMonth):
		m.shiftMonth(-1)
	case key.Matches(msg, m.keys.nextMonth):
		m.shiftMonth(1)
	case key.Matches(msg, m.keys.today):
		m.jumpToDay(domain.DayOf(m.now()))
	case key.Matches(msg, m.keys.cycleEvent):
		m.cursorEvent = wrapIndex(m.cursorEvent, 1, len(m.cursorCellEvents()))
	case key.Matches(msg, m.keys.create):
		st, out := m.ctrl.ClickOnEmptyCell(m.ctx, m.gesture, m.cursorCell())
		m.applyOutcome(st, out)
	case key.Matches(msg, m.keys.grab):
		if ev, ok := m.selectedEvent(); ok {
			st, out := m.ctrl.PointerDownOnEventBody(m.gesture, ev.ID)
			m.applyOutcome(st, out)
		} else {
			m.status = "no event under cursor"
		}
	case key.Matches(msg, m.keys.grabStart), key.Matches(msg, m.keys.grabEnd):
		edge := domain.EdgeStart
		if key.Matches(msg, m.keys.grabEnd) {
			edge = domain.EdgeEnd
		}
		if ev, ok := m.selectedEvent(); ok {
			st, out := m.ctrl.PointerDownOnResizeHandle(m.gesture, ev.ID, edge)
			m.applyOutcome(st, out)
		} else {
			m.status = "no event under cursor"
		}
	case key.Matches(msg, m.keys.deleteEvent):
		if dragging {
			return m, nil
		}
		if ev, ok := m.selectedEvent(); ok {
			return m.requestDelete(ev)
		}
		m.status = "no event under cursor"
	case key.Matches(msg, m.keys.addResource):
		if dragging {
			return m, nil
		}
		return m.startAddResource()
	case key.Matches(msg, m.keys.copyEvent):
		return m.copySelectedEvent()
	}
	return m, nil
}

// handleInputModeKey handles input mode key.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeConfirmDelete:
		switch msg.String() {
		case "y", "enter":
			return m.resolveDelete(true)
		case "n", "esc":
			return m.resolveDelete(false)
		}
		return m, nil

	case modeAddResource:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.resourceInput.Blur()
			m.status = "add resource cancelled"
			return m, nil
		case "enter":
			name := m.resourceInput.Value()
			m.mode = modeNone
			m.resourceInput.Blur()
			resource, err := m.svc.AddResource(m.ctx, name)
			if err != nil {
				m.status = "add resource failed: " + err.Error()
				return m, nil
			}
			m.reload()
			if idx := slices.IndexFunc(m.resources, func(r domain.Resource) bool { return r.ID == resource.ID }); idx >= 0 {
				m.cursorRow = idx
				m.cursorEvent = 0
				m.syncViewport()
			}
			m.status = "added " + resource.Name
			return m, nil
		}
		var cmd tea.Cmd
		m.resourceInput, cmd = m.resourceInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// startAddResource opens the add-resource prompt.
func (m Model) startAddResource() (tea.Model, tea.Cmd) {
	m.mode = modeAddResource
	m.resourceInput.SetValue("")
	m.status = "add resource"
	return m, m.resourceInput.Focus()
}

// requestDelete opens the confirmation modal, or deletes directly when confirmation is off.
func (m Model) requestDelete(ev domain.Event) (tea.Model, tea.Cmd) {
	if !m.confirmDelete {
		st, out := m.ctrl.ClickOnDeleteControl(m.ctx, m.gesture, ev.ID, func(domain.Event) bool { return true })
		m.applyOutcome(st, out)
		return m, nil
	}
	m.mode = modeConfirmDelete
	m.pendingDelete = ev
	m.status = "confirm delete"
	return m, nil
}

// resolveDelete answers the pending confirmation.
func (m Model) resolveDelete(approved bool) (tea.Model, tea.Cmd) {
	m.mode = modeNone
	target := m.pendingDelete
	m.pendingDelete = domain.Event{}
	st, out := m.ctrl.ClickOnDeleteControl(m.ctx, m.gesture, target.ID, func(domain.Event) bool { return approved })
	m.applyOutcome(st, out)
	return m, nil
}

// copySelectedEvent copies a one-line summary of the selected event.
func (m Model) copySelectedEvent() (tea.Model, tea.Cmd) {
	ev, ok := m.selectedEvent()
	if !ok {
		m.status = "no event under cursor"
		return m, nil
	}
	summary := m.eventSummary(ev)
	if err := m.copyText(summary); err != nil {
		m.status = "copy failed: " + err.Error()
		return m, nil
	}
	m.status = "copied " + ev.Title
	return m, nil
}

// eventSummary renders an event as "title · resource · start → end".
func (m Model) eventSummary(ev domain.Event) string {
	resource := ev.ResourceID
	if r, ok := m.resourceByID(ev.ResourceID); ok {
		resource = r.Name
	}
	return fmt.Sprintf("%s · %s · %s → %s", ev.Title, resource, ev.StartDate, ev.EndDate)
}

// applyOutcome stores the next gesture state and reports what happened.
func (m *Model) applyOutcome(st app.GestureState, out app.Outcome) {
	m.gesture = st
	if _, dragging := st.(app.Dragging); !dragging {
		m.hoverCell = nil
	}
	switch out.Kind {
	case app.OutcomeDragStart:
		m.status = m.dragLabel()
	case app.OutcomeCreated:
		m.reload()
		m.focusEvent(out.Event.ID)
		m.status = "created " + out.Event.Title
	case app.OutcomeMoved:
		m.reload()
		m.focusEvent(out.Event.ID)
		m.status = fmt.Sprintf("moved %s to %s", out.Event.Title, out.Event.StartDate)
	case app.OutcomeResized:
		m.reload()
		m.focusEvent(out.Event.ID)
		m.status = fmt.Sprintf("resized %s to %s..%s", out.Event.Title, out.Event.StartDate, out.Event.EndDate)
	case app.OutcomeDeleted:
		m.reload()
		title := out.Event.Title
		if title == "" {
			title = "event"
		}
		m.status = "deleted " + title
	case app.OutcomeDeclined:
		m.status = "delete cancelled"
	case app.OutcomeCancelled:
		m.status = "drag cancelled"
	case app.OutcomeRejected:
		m.reload()
		m.status = rejectionStatus(out.Err)
	}
}

// rejectionStatus maps core rejections to a short status line.
func rejectionStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		return "resize rejected: start must stay on or before end"
	case errors.Is(err, app.ErrNotFound):
		return "rejected: event or resource no longer exists"
	case err == nil:
		return "rejected"
	default:
		return "rejected: " + err.Error()
	}
}

// dragLabel describes the active drag for the status line.
func (m Model) dragLabel() string {
	drag, ok := m.gesture.(app.Dragging)
	if !ok {
		return ""
	}
	title := drag.EventID
	if ev, found := m.eventByID(drag.EventID); found {
		title = ev.Title
	}
	switch drag.Mode {
	case app.DragResizeStart:
		return fmt.Sprintf("resizing start of %s • enter drop • esc cancel", title)
	case app.DragResizeEnd:
		return fmt.Sprintf("resizing end of %s • enter drop • esc cancel", title)
	default:
		return fmt.Sprintf("moving %s • enter drop • esc cancel", title)
	}
}

// modeLabel returns the header label for the current mode.
func (m Model) modeLabel() string {
	switch m.mode {
	case modeConfirmDelete:
		return "confirm delete"
	case modeAddResource:
		return "add resource"
	}
	if drag, ok := m.gesture.(app.Dragging); ok {
		return string(drag.Mode)
	}
	return "browse"
}

// moveCursorDays moves the cursor by delta days, following into adjacent months.
func (m *Model) moveCursorDays(delta int) {
	m.jumpToDay(m.cursorDay.AddDays(delta))
}

// moveCursorRows moves the cursor by delta resource rows.
func (m *Model) moveCursorRows(delta int) {
	if len(m.resources) == 0 {
		return
	}
	m.cursorRow = clamp(m.cursorRow+delta, 0, len(m.resources)-1)
	m.cursorEvent = 0
	m.syncViewport()
}

// shiftMonth moves to the adjacent month, keeping the day of month where possible.
func (m *Model) shiftMonth(delta int) {
	next := m.month.Add(delta)
	dom := min(m.cursorDay.DayOfMonth(), next.Last().DayOfMonth())
	m.jumpToDay(domain.NewDay(next.Year, next.Month, dom))
}

// jumpToDay moves the cursor to day and shows its month.
func (m *Model) jumpToDay(day domain.Day) {
	m.cursorDay = day
	m.month = domain.MonthOf(day)
	m.cursorEvent = 0
	m.syncViewport()
}

// focusEvent moves the cursor onto ev's start cell and selects it.
func (m *Model) focusEvent(eventID string) {
	ev, ok := m.eventByID(eventID)
	if !ok {
		return
	}
	if idx := slices.IndexFunc(m.resources, func(r domain.Resource) bool { return r.ID == ev.ResourceID }); idx >= 0 {
		m.cursorRow = idx
	}
	if !m.cursorDay.Equal(ev.StartDate) && !ev.Covers(m.cursorDay) {
		m.jumpToDay(ev.StartDate)
	}
	for idx, ce := range m.cursorCellEvents() {
		if ce.ID == eventID {
			m.cursorEvent = idx
			break
		}
	}
	m.syncViewport()
}

// clampCursor keeps the cursor inside the resource list.
func (m *Model) clampCursor() {
	m.cursorRow = clamp(m.cursorRow, 0, max(0, len(m.resources)-1))
	m.cursorEvent = clamp(m.cursorEvent, 0, max(0, len(m.cursorCellEvents())-1))
}

// cursorCell returns the cell under the keyboard cursor.
func (m Model) cursorCell() app.Cell {
	cell := app.Cell{Day: m.cursorDay}
	if m.cursorRow >= 0 && m.cursorRow < len(m.resources) {
		cell.ResourceID = m.resources[m.cursorRow].ID
	}
	return cell
}

// cursorCellEvents returns the events covering the cursor cell ordered by lane.
func (m Model) cursorCellEvents() []app.PlacedEvent {
	cell := m.cursorCell()
	if cell.ResourceID == "" {
		return nil
	}
	placed := app.AssignLanesByResource(m.events)[cell.ResourceID]
	out := make([]app.PlacedEvent, 0, len(placed))
	for _, pe := range placed {
		if pe.Covers(cell.Day) {
			out = append(out, pe)
		}
	}
	slices.SortFunc(out, func(a, b app.PlacedEvent) int { return a.Lane - b.Lane })
	return out
}

// selectedEvent returns the cursor-selected event in the cursor cell.
func (m Model) selectedEvent() (domain.Event, bool) {
	events := m.cursorCellEvents()
	if len(events) == 0 {
		return domain.Event{}, false
	}
	return events[clamp(m.cursorEvent, 0, len(events)-1)].Event, true
}

func (m Model) eventByID(id string) (domain.Event, bool) {
	idx := slices.IndexFunc(m.events, func(ev domain.Event) bool { return ev.ID == id })
	if idx < 0 {
		return domain.Event{}, false
	}
	return m.events[idx], true
}

func (m Model) resourceByID(id string) (domain.Resource, bool) {
	idx := slices.IndexFunc(m.resources, func(r domain.Resource) bool { return r.ID == id })
	if idx < 0 {
		return domain.Resource{}, false
	}
	return m.resources[idx], true
}

// handleMousePress handles a pointer press on the grid.
func (m Model) handleMousePress(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone || m.svc == nil {
		return m, nil
	}
	mouse := msg.Mouse()
	if mouse.Button != tea.MouseLeft {
		return m, nil
	}
	hit := m.hitTest(mouse.X, mouse.Y)
	if hit.kind == hitNone {
		return m, nil
	}
	m.focusHit(hit)
	cell := hit.cell
	m.pressedCell = &cell
	m.dragMoved = false

	switch hit.kind {
	case hitBody:
		st, out := m.ctrl.PointerDownOnEventBody(m.gesture, hit.eventID)
		m.applyOutcome(st, out)
	case hitStartHandle:
		st, out := m.ctrl.PointerDownOnResizeHandle(m.gesture, hit.eventID, domain.EdgeStart)
		m.applyOutcome(st, out)
	case hitEndHandle:
		st, out := m.ctrl.PointerDownOnResizeHandle(m.gesture, hit.eventID, domain.EdgeEnd)
		m.applyOutcome(st, out)
	case hitDelete:
		m.pressedCell = nil
		if ev, ok := m.eventByID(hit.eventID); ok {
			return m.requestDelete(ev)
		}
	}
	return m, nil
}

// handleMouseMotion tracks the drop target while a button is held.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if m.pressedCell == nil {
		return m, nil
	}
	mouse := msg.Mouse()
	hit := m.hitTest(mouse.X, mouse.Y)
	if hit.kind == hitNone {
		m.hoverCell = nil
		m.dragMoved = true
		return m, nil
	}
	cell := hit.cell
	m.hoverCell = &cell
	if !sameCell(cell, *m.pressedCell) {
		m.dragMoved = true
	}
	return m, nil
}

// handleMouseRelease completes a press: drop, cancel, or create.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	pressed := m.pressedCell
	moved := m.dragMoved
	m.pressedCell = nil
	m.hoverCell = nil
	m.dragMoved = false
	if pressed == nil || m.mode != modeNone {
		return m, nil
	}
	mouse := msg.Mouse()
	hit := m.hitTest(mouse.X, mouse.Y)

	if _, dragging := m.gesture.(app.Dragging); dragging {
		switch {
		case hit.kind == hitNone:
			st, out := m.ctrl.EndDrag(m.gesture)
			m.applyOutcome(st, out)
		case !moved && sameCell(hit.cell, *pressed):
			// A press and release on one cell selects the event without moving it.
			st, _ := m.ctrl.EndDrag(m.gesture)
			m.gesture = st
			if ev, ok := m.selectedEvent(); ok {
				m.status = "selected " + ev.Title
			}
		default:
			m.focusHit(hit)
			st, out := m.ctrl.DropOnCell(m.ctx, m.gesture, hit.cell)
			m.applyOutcome(st, out)
		}
		return m, nil
	}

	if hit.kind == hitEmpty && sameCell(hit.cell, *pressed) {
		st, out := m.ctrl.ClickOnEmptyCell(m.ctx, m.gesture, hit.cell)
		m.applyOutcome(st, out)
	}
	return m, nil
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll || m.mode != modeNone {
		return m, nil
	}
	switch msg.Mouse().Button {
	case tea.MouseWheelUp:
		m.moveCursorRows(-1)
	case tea.MouseWheelDown:
		m.moveCursorRows(1)
	case tea.MouseWheelLeft:
		m.moveCursorDays(-1)
	case tea.MouseWheelRight:
		m.moveCursorDays(1)
	}
	return m, nil
}

// focusHit moves the keyboard cursor to the hit cell and event.
func (m *Model) focusHit(hit hitTarget) {
	if idx := slices.IndexFunc(m.resources, func(r domain.Resource) bool { return r.ID == hit.cell.ResourceID }); idx >= 0 {
		m.cursorRow = idx
	}
	m.cursorDay = hit.cell.Day
	m.month = domain.MonthOf(hit.cell.Day)
	m.cursorEvent = 0
	if hit.eventID != "" {
		for idx, ce := range m.cursorCellEvents() {
			if ce.ID == hit.eventID {
				m.cursorEvent = idx
				break
			}
		}
	}
	m.syncViewport()
}

func sameCell(a, b app.Cell) bool {
	return a.ResourceID == b.ResourceID && a.Day.Equal(b.Day)
}

// wrapIndex wraps an index by delta for a bounded collection.
func wrapIndex(current int, delta int, total int) int {
	if total <= 0 {
		return 0
	}
	next := current + delta
	for next < 0 {
		next += total
	}
	for next >= total {
		next -= total
	}
	return next
}

// trimmedStatus hides the idle status from the footer.
func trimmedStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "ready" {
		return ""
	}
	return status
}
