package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists every binding. It doubles as the help.KeyMap for the status bar.
type keyMap struct {
	Quit     key.Binding
	Focus    key.Binding
	Search   key.Binding
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	Close    key.Binding
	Rate     key.Binding
	RateDown key.Binding
	RateUp   key.Binding
	Add      key.Binding
	Delete   key.Binding
	Collapse key.Binding
	Debug    key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Focus:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "focus")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
	Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
	Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Rate:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"), key.WithHelp("1-0", "rate")),
	RateDown: key.NewBinding(key.WithKeys("left", "h", "-")),
	RateUp:   key.NewBinding(key.WithKeys("right", "l", "+")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to list")),
	Delete:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
	Collapse: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "collapse")),
	Debug:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Select, k.Rate, k.Add, k.Delete, k.Close, k.Focus, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Up, k.Down, k.Select, k.Close},
		{k.Rate, k.Add, k.Delete},
		{k.Focus, k.Collapse, k.Debug, k.Quit},
	}
}
