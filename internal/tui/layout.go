package tui

import (
	"github.com/hylla/lanecal/internal/app"
	"github.com/hylla/lanecal/internal/domain"
)

// Screen layout, top to bottom: title line, blank line, day numbers, weekdays, lane lines,
// then the footer (blank line, status line, two help lines).
const (
	labelWidth  = 14
	gridTop     = 4
	footerLines = 4
)

// hitKind identifies what sits under a screen position.
type hitKind int

const (
	hitNone hitKind = iota
	hitEmpty
	hitBody
	hitStartHandle
	hitEndHandle
	hitDelete
)

// hitTarget is the grid element under a pointer.
type hitTarget struct {
	kind    hitKind
	cell    app.Cell
	eventID string
	lane    int
}

// rowSpan places one resource row on screen.
type rowSpan struct {
	row   int
	top   int
	lanes int
}

// gridLayout is the on-screen geometry of the visible grid.
type gridLayout struct {
	grid  app.Grid
	days  []domain.Day
	rows  []rowSpan
	lines int
}

// gridLines returns how many lane lines fit between the headers and the footer.
func (m Model) gridLines() int {
	if m.height <= 0 {
		return 1 << 16
	}
	return max(1, m.height-gridTop-footerLines)
}

// visibleDayCount returns how many day columns fit the terminal width.
func (m Model) visibleDayCount() int {
	if m.width <= 0 {
		return len(m.month.Days())
	}
	return max(1, (m.width-labelWidth)/m.dayWidth)
}

// visibleDays returns the day window of the current month.
func (m Model) visibleDays() []domain.Day {
	days := m.month.Days()
	n := min(len(days), m.visibleDayCount())
	start := clamp(m.dayOffset, 0, len(days)-n)
	return days[start : start+n]
}

// layout projects the grid over the visible days and places rows from rowOffset down.
func (m Model) layout() gridLayout {
	days := m.visibleDays()
	grid := app.ProjectGrid(m.resources, m.events, days)
	out := gridLayout{grid: grid, days: days}
	available := m.gridLines()
	line := gridTop
	for idx := m.rowOffset; idx < len(grid.Rows) && out.lines < available; idx++ {
		lanes := min(grid.Rows[idx].LaneCount, available-out.lines)
		out.rows = append(out.rows, rowSpan{row: idx, top: line, lanes: lanes})
		line += lanes
		out.lines += lanes
	}
	return out
}

// syncViewport scrolls the day window and the row window so the cursor stays visible.
func (m *Model) syncViewport() {
	days := m.month.Days()
	n := min(len(days), m.visibleDayCount())
	idx := m.cursorDay.DayOfMonth() - 1
	if idx < m.dayOffset {
		m.dayOffset = idx
	}
	if idx >= m.dayOffset+n {
		m.dayOffset = idx - n + 1
	}
	m.dayOffset = clamp(m.dayOffset, 0, len(days)-n)

	if len(m.resources) == 0 {
		m.rowOffset = 0
		return
	}
	grid := app.ProjectGrid(m.resources, m.events, m.visibleDays())
	m.rowOffset = clamp(m.rowOffset, 0, len(grid.Rows)-1)
	if m.cursorRow < m.rowOffset {
		m.rowOffset = m.cursorRow
	}
	available := m.gridLines()
	for m.rowOffset < m.cursorRow {
		used := 0
		for idx := m.rowOffset; idx <= m.cursorRow; idx++ {
			used += grid.Rows[idx].LaneCount
		}
		if used <= available {
			break
		}
		m.rowOffset++
	}
}

// hitTest maps a screen position to a grid element.
func (m Model) hitTest(x, y int) hitTarget {
	if x < labelWidth || y < gridTop {
		return hitTarget{kind: hitNone}
	}
	l := m.layout()
	col := (x - labelWidth) / m.dayWidth
	offset := (x - labelWidth) % m.dayWidth
	if col >= len(l.days) {
		return hitTarget{kind: hitNone}
	}
	for _, span := range l.rows {
		if y < span.top || y >= span.top+span.lanes {
			continue
		}
		row := l.grid.Rows[span.row]
		cell := row.Cells[col]
		lane := y - span.top
		target := hitTarget{kind: hitEmpty, cell: cell.Cell, lane: lane}
		ev, ok := cell.EventAt(lane)
		if !ok {
			return target
		}
		target.eventID = ev.ID
		switch {
		case ev.IsFirst && offset == 0:
			target.kind = hitStartHandle
		case ev.IsLast && offset == m.dayWidth-1:
			target.kind = hitEndHandle
		case ev.IsLast && offset == m.dayWidth-2:
			target.kind = hitDelete
		default:
			target.kind = hitBody
		}
		return target
	}
	return hitTarget{kind: hitNone}
}

// segmentText renders the slice of an event that falls in one day cell. The title flows
// across cells from the start handle; the last cell ends with the delete control and the
// end handle.
func segmentText(ev app.CellEvent, day domain.Day, width int) string {
	cells := make([]rune, width)
	for i := range cells {
		cells[i] = ' '
	}
	label := []rune("[" + ev.Title)
	if !ev.IsFirst {
		label[0] = ' '
	}
	base := domain.DurationDays(ev.StartDate, day) * width
	for i := range cells {
		if gi := base + i; gi < len(label) {
			cells[i] = label[gi]
		}
	}
	if ev.IsFirst {
		cells[0] = '['
	}
	if ev.IsLast {
		cells[width-1] = ']'
		if width >= 2 {
			cells[width-2] = '×'
		}
	}
	return string(cells)
}
