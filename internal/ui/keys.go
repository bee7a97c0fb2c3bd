package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the app
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Search   key.Binding // Focus the search box
	Favorite key.Binding // Add or remove the icon under the cursor
	Revert   key.Binding // Restore the default folder icon
	Custom   key.Binding // Pick an icon or image from disk
	Refresh  key.Binding // Rescan the icon cache
	Help     key.Binding
	Quit     key.Binding
	Escape   key.Binding

	// Toggles
	ToggleQueue      key.Binding
	ToggleClose      key.Binding
	ToggleSubfolders key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev group"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next group"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home/g", "first"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End/G", "last"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch panel"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "switch panel"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f", " "),
			key.WithHelp("f/space", "favorite"),
		),
		Revert: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "revert"),
		),
		Custom: key.NewBinding(
			key.WithKeys("o", "+"),
			key.WithHelp("o/+", "open file..."),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rescan cache"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		ToggleQueue: key.NewBinding(
			key.WithKeys("Q"),
			key.WithHelp("Q", "queue mode"),
		),
		ToggleClose: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "close on apply"),
		),
		ToggleSubfolders: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "subfolders"),
		),
	}
}

// ShortHelp returns keybindings to show in short help
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Tab, k.Search, k.Favorite, k.Revert, k.Help, k.Quit}
}

// FullHelp returns all keybindings for full help
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown, k.Home, k.End},
		// Actions
		{k.Tab, k.Enter, k.Search, k.Favorite, k.Revert, k.Custom, k.Refresh},
		// Toggles
		{k.ToggleQueue, k.ToggleClose, k.ToggleSubfolders},
		// General
		{k.Help, k.Escape, k.Quit},
	}
}
