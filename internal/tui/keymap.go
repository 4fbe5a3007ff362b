package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit        key.Binding
	toggleHelp  key.Binding
	moveLeft    key.Binding
	moveRight   key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	prevMonth   key.Binding
	nextMonth   key.Binding
	today       key.Binding
	cycleEvent  key.Binding
	create      key.Binding
	grab        key.Binding
	grabStart   key.Binding
	grabEnd     key.Binding
	drop        key.Binding
	cancel      key.Binding
	deleteEvent key.Binding
	addResource key.Binding
	copyEvent   key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "day left")),
		moveRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "day right")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "resource up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "resource down")),
		prevMonth:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous month")),
		nextMonth:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month")),
		today:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		cycleEvent:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next event in cell")),
		create:      key.NewBinding(key.WithKeys("n", "enter"), key.WithHelp("n/enter", "new event")),
		grab:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "grab event")),
		grabStart:   key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "grab start handle")),
		grabEnd:     key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "grab end handle")),
		drop:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		deleteEvent: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete event")),
		addResource: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add resource")),
		copyEvent:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy event")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.create, k.grab, k.grabStart, k.grabEnd, k.deleteEvent, k.addResource, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.prevMonth, k.nextMonth, k.today, k.cycleEvent},
		{k.create, k.grab, k.grabStart, k.grabEnd, k.drop, k.cancel},
		{k.deleteEvent, k.addResource, k.copyEvent, k.toggleHelp, k.quit},
	}
}
