package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	Logs       key.Binding
	Escape     key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Prev   key.Binding
	Next   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Wallpaper actions
	Download key.Binding
	Apply    key.Binding
	Remove   key.Binding

	// Lists
	MorePage    key.Binding
	Reload      key.Binding
	CycleSort   key.Binding
	ToggleOrder key.Binding
	Search      key.Binding

	// Daily wallpaper
	ToggleDaily key.Binding
	DailyMode   key.Binding
	DailySort   key.Binding

	// Search/input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Explore/Downloaded"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Application log"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "Previous wallpaper"),
		),
		Next: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "Next wallpaper"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Download / retry"),
		),
		Apply: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Set wallpaper / retry"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Delete download"),
		),

		MorePage: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Load more"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		ToggleOrder: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Oldest/newest first"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),

		ToggleDaily: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Daily wallpaper on/off"),
		),
		DailyMode: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "Daily online/downloaded"),
		),
		DailySort: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Daily feed sort"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Download, k.Apply, k.Remove, k.Tab, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Logs, k.Escape},
		{k.Up, k.Down, k.Prev, k.Next, k.Top, k.Bottom},
		{k.Download, k.Apply, k.Remove},
		{k.MorePage, k.Reload, k.CycleSort, k.ToggleOrder, k.Search},
		{k.ToggleDaily, k.DailyMode, k.DailySort},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
