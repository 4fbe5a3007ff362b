package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/lanecal/internal/app"
	"github.com/hylla/lanecal/internal/domain"
)

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\nq quit\n")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}
	view := tea.NewView(m.renderScreen())
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	return view
}

// renderScreen renders the full-screen calendar with any active overlay.
func (m Model) renderScreen() string {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	helpStyle := lipgloss.NewStyle().Foreground(muted)

	l := m.layout()
	header := titleStyle.Render("lanecal") + "  " + m.month.Label()
	header += statusStyle.Render("  [" + m.modeLabel() + "]")

	sections := []string{header, ""}
	sections = append(sections, m.renderDayHeader(l.days, accent, muted)...)
	sections = append(sections, m.renderRows(l, accent, muted, dim)...)
	content := fitLines(strings.Join(sections, "\n"), gridTop+l.lines)

	footer := []string{""}
	statusLine := trimmedStatus(m.status)
	if len(l.grid.Orphaned) > 0 {
		statusLine = strings.TrimSpace(fmt.Sprintf("%s  (%d events reference missing resources)", statusLine, len(l.grid.Orphaned)))
	}
	footer = append(footer, statusStyle.Render(statusLine))
	content += "\n" + strings.Join(footer, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}
	fullContent := content + "\n" + helpLine

	overlay := m.renderModeOverlay(accent, muted, dim, m.width-8)
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(accent, muted, dim, helpStyle, m.width-8)
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

// renderDayHeader renders the day-number and weekday header lines.
func (m Model) renderDayHeader(days []domain.Day, accent, muted color.Color) []string {
	today := domain.DayOf(m.now())
	var numbers, weekdays strings.Builder
	numbers.WriteString(strings.Repeat(" ", labelWidth))
	weekdays.WriteString(strings.Repeat(" ", labelWidth))
	for _, day := range days {
		style := lipgloss.NewStyle().Foreground(muted)
		if day.Weekday() == 0 || day.Weekday() == 6 {
			style = style.Faint(true)
		}
		if day.Equal(today) {
			style = lipgloss.NewStyle().Bold(true).Foreground(accent)
		}
		if day.Equal(m.cursorDay) {
			style = style.Underline(true)
		}
		numbers.WriteString(style.Render(padRight(domain.DayNumberLabel(day), m.dayWidth)))
		weekdays.WriteString(style.Render(padRight(truncate(domain.WeekdayLabel(day), m.dayWidth-1), m.dayWidth)))
	}
	return []string{numbers.String(), weekdays.String()}
}

// renderRows renders one line per visible lane of every visible resource row.
func (m Model) renderRows(l gridLayout, accent, muted, dim color.Color) []string {
	selectedID := ""
	if ev, ok := m.selectedEvent(); ok {
		selectedID = ev.ID
	}
	var dragID string
	if drag, ok := m.gesture.(app.Dragging); ok {
		dragID = drag.EventID
	}
	dropTarget, hasDropTarget := m.dropTarget()

	labelStyle := lipgloss.NewStyle().Foreground(muted)
	cursorLabelStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	emptyStyle := lipgloss.NewStyle().Foreground(dim)
	cursorStyle := lipgloss.NewStyle().Reverse(true)
	dropStyle := lipgloss.NewStyle().Background(accent)

	lines := make([]string, 0, l.lines)
	for _, span := range l.rows {
		row := l.grid.Rows[span.row]
		for lane := range span.lanes {
			var b strings.Builder
			label := ""
			if lane == 0 {
				label = truncate(row.Resource.Name, labelWidth-2)
			}
			if span.row == m.cursorRow {
				b.WriteString(cursorLabelStyle.Render(padRight(label, labelWidth)))
			} else {
				b.WriteString(labelStyle.Render(padRight(label, labelWidth)))
			}
			for _, cell := range row.Cells {
				isCursor := span.row == m.cursorRow && cell.Day.Equal(m.cursorDay)
				isDrop := hasDropTarget && sameCell(cell.Cell, dropTarget)
				ev, ok := cell.EventAt(lane)
				if !ok {
					text := padRight("·", m.dayWidth)
					switch {
					case isDrop:
						b.WriteString(dropStyle.Render(text))
					case isCursor:
						b.WriteString(cursorStyle.Render(text))
					default:
						b.WriteString(emptyStyle.Render(text))
					}
					continue
				}
				style := eventStyle(ev.Color)
				if isCursor && ev.ID == selectedID {
					style = style.Bold(true).Underline(true)
				}
				if ev.ID == dragID {
					style = style.Faint(true)
				}
				if isDrop {
					style = style.Reverse(true)
				}
				b.WriteString(style.Render(segmentText(ev, cell.Day, m.dayWidth)))
			}
			lines = append(lines, b.String())
		}
	}
	return lines
}

// dropTarget returns the cell a drag would land on: the hovered cell for the pointer, the
// cursor cell for the keyboard.
func (m Model) dropTarget() (app.Cell, bool) {
	if _, ok := m.gesture.(app.Dragging); !ok {
		return app.Cell{}, false
	}
	if m.hoverCell != nil {
		return *m.hoverCell, true
	}
	if m.pressedCell != nil {
		return app.Cell{}, false
	}
	return m.cursorCell(), true
}

// eventStyle colors a segment by its palette token.
func eventStyle(token string) lipgloss.Style {
	token = strings.TrimSpace(token)
	if token == "" {
		token = "62"
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(token)).
		Foreground(lipgloss.Color("#111111"))
}

// renderModeOverlay renders the modal for the active input mode.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, maxWidth int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if maxWidth > 0 {
		style = style.Width(clamp(maxWidth, 36, 72))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	switch m.mode {
	case modeConfirmDelete:
		title := strings.TrimSpace(m.pendingDelete.Title)
		if title == "" {
			title = "(unknown event)"
		}
		lines := []string{
			titleStyle.Render("Delete Event"),
			fmt.Sprintf("delete %s?", title),
			hintStyle.Render(m.eventSummary(m.pendingDelete)),
			hintStyle.Render("y/enter delete • n/esc keep"),
		}
		return style.Render(strings.Join(lines, "\n"))

	case modeAddResource:
		in := m.resourceInput
		in.SetWidth(max(20, maxWidth-24))
		lines := []string{
			titleStyle.Render("Add Resource"),
			in.View(),
			lipgloss.NewStyle().Foreground(dim).Render("enter add • esc cancel"),
		}
		return style.Render(strings.Join(lines, "\n"))
	}
	return ""
}

// renderHelpOverlay renders output for the current model state.
func (m Model) renderHelpOverlay(accent, muted, dim color.Color, _ lipgloss.Style, maxWidth int) string {
	width := clamp(maxWidth, 56, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("lanecal help")
	workflow := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Mouse"),
		"click an empty cell to create a one-day event",
		"drag an event body to move it to another day or resource",
		"drag [ or ] to move the start or end date",
		"click × to delete",
	}
	lines := []string{
		title,
		"",
		hb.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(muted).Render(strings.Join(workflow, "\n")),
		lipgloss.NewStyle().Foreground(muted).Render("press ? or esc to close"),
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1)
	if maxWidth > 0 {
		style = style.Width(width)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}
