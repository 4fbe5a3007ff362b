package tui

import (
	"context"
	"time"
)

// DefaultDayWidth is the column width of one day cell.
const DefaultDayWidth = 5

// minDayWidth fits the start handle, the delete control, and the end handle.
const minDayWidth = 3

type Option func(*Model)

// WithDayWidth sets the cell width for one day column.
func WithDayWidth(width int) Option {
	return func(m *Model) {
		if width >= minDayWidth {
			m.dayWidth = width
		}
	}
}

// WithConfirmDelete toggles the delete confirmation modal.
func WithConfirmDelete(confirm bool) Option {
	return func(m *Model) {
		m.confirmDelete = confirm
	}
}

// WithClock overrides the time source used for "today".
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithClipboard overrides how event summaries are copied.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithContext sets the context passed to store mutations.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}
