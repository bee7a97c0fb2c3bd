package components

import (
	"fmt"
	"strings"

	"dirdirector/internal/models"
	"dirdirector/internal/ui"
)

// IconList is a scrolling list of icons, optionally split under group
// headers. The cursor moves over icons only.
type IconList struct {
	Entries    []models.IconEntry
	Cursor     int
	Width      int
	Height     int
	Focused    bool
	Title      string
	ShowGroups bool
	Empty      string

	// IsFavorite marks entries with a star when set
	IsFavorite func(path string) bool
}

// NewIconList creates a new icon list
func NewIconList(title string, showGroups bool) *IconList {
	return &IconList{
		Width:      40,
		Height:     15,
		Title:      title,
		ShowGroups: showGroups,
		Empty:      "No icons",
	}
}

// SetEntries replaces the list contents
func (l *IconList) SetEntries(entries []models.IconEntry) {
	l.Entries = entries
	if l.Cursor >= len(entries) {
		l.Cursor = max(0, len(entries)-1)
	}
}

// SetGroups flattens groups into the list, keeping group order
func (l *IconList) SetGroups(groups []models.IconGroup) {
	var entries []models.IconEntry
	for _, g := range groups {
		entries = append(entries, g.Icons...)
	}
	l.SetEntries(entries)
}

// MoveUp moves cursor up
func (l *IconList) MoveUp() {
	if l.Cursor > 0 {
		l.Cursor--
	}
}

// MoveDown moves cursor down
func (l *IconList) MoveDown() {
	if l.Cursor < len(l.Entries)-1 {
		l.Cursor++
	}
}

func (l *IconList) pageSize() int {
	pageSize := l.Height - 3
	if pageSize < 1 {
		pageSize = 10
	}
	return pageSize
}

// PageUp moves cursor up by a page
func (l *IconList) PageUp() {
	l.Cursor = max(0, l.Cursor-l.pageSize())
}

// PageDown moves cursor down by a page
func (l *IconList) PageDown() {
	l.Cursor = min(l.Cursor+l.pageSize(), max(0, len(l.Entries)-1))
}

// GoToFirst moves cursor to the first item
func (l *IconList) GoToFirst() {
	l.Cursor = 0
}

// GoToLast moves cursor to the last item
func (l *IconList) GoToLast() {
	if len(l.Entries) > 0 {
		l.Cursor = len(l.Entries) - 1
	}
}

// NextGroup jumps to the first icon of the following group
func (l *IconList) NextGroup() {
	cur, ok := l.Current()
	if !ok {
		return
	}
	for i := l.Cursor + 1; i < len(l.Entries); i++ {
		if l.Entries[i].Group != cur.Group {
			l.Cursor = i
			return
		}
	}
}

// PrevGroup jumps to the first icon of the current group, or of the
// previous group when already there.
func (l *IconList) PrevGroup() {
	if len(l.Entries) == 0 {
		return
	}
	start := l.groupStart(l.Cursor)
	if start == l.Cursor && start > 0 {
		start = l.groupStart(start - 1)
	}
	l.Cursor = start
}

func (l *IconList) groupStart(i int) int {
	group := l.Entries[i].Group
	for i > 0 && l.Entries[i-1].Group == group {
		i--
	}
	return i
}

// Current returns the entry under the cursor
func (l *IconList) Current() (models.IconEntry, bool) {
	if len(l.Entries) > 0 && l.Cursor < len(l.Entries) {
		return l.Entries[l.Cursor], true
	}
	return models.IconEntry{}, false
}

// Select moves the cursor to the icon at path
func (l *IconList) Select(path string) bool {
	for i, e := range l.Entries {
		if e.Path == path && path != "" {
			l.Cursor = i
			return true
		}
	}
	return false
}

type listRow struct {
	header string
	index  int
}

// rows interleaves group headers with entry indices
func (l *IconList) rows() ([]listRow, int) {
	rows := make([]listRow, 0, len(l.Entries))
	cursorRow := 0
	prev := ""
	for i, e := range l.Entries {
		if l.ShowGroups && (i == 0 || e.Group != prev) {
			rows = append(rows, listRow{header: e.Group, index: -1})
		}
		if i == l.Cursor {
			cursorRow = len(rows)
		}
		rows = append(rows, listRow{index: i})
		prev = e.Group
	}
	return rows, cursorRow
}

// View renders the icon list
func (l *IconList) View() string {
	var b strings.Builder

	title := l.Title
	if len(l.Entries) > 0 {
		title = fmt.Sprintf("%s (%d)", l.Title, len(l.Entries))
	}
	b.WriteString(ui.PanelTitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(ui.DividerStyle.Render(strings.Repeat("─", max(1, l.Width-2))))
	b.WriteString("\n")

	if len(l.Entries) == 0 {
		b.WriteString(ui.ItemStyle.Render(l.Empty))
		return l.wrapInPanel(b.String())
	}

	rows, cursorRow := l.rows()
	visibleHeight := max(1, l.Height-3)
	startIdx := 0
	if cursorRow >= visibleHeight {
		startIdx = cursorRow - visibleHeight + 1
	}
	endIdx := min(startIdx+visibleHeight, len(rows))

	if startIdx > 0 {
		b.WriteString(ui.MutedStyle.Render("  ↑ more"))
		b.WriteString("\n")
	}

	for i := startIdx; i < endIdx; i++ {
		row := rows[i]
		if row.index < 0 {
			b.WriteString(ui.GroupStyle.Render(row.header))
		} else {
			b.WriteString(l.renderItem(l.Entries[row.index], row.index == l.Cursor))
		}
		if i < endIdx-1 {
			b.WriteString("\n")
		}
	}

	if endIdx < len(rows) {
		b.WriteString("\n")
		b.WriteString(ui.MutedStyle.Render("  ↓ more"))
	}

	return l.wrapInPanel(b.String())
}

// renderItem renders a single icon entry
func (l *IconList) renderItem(e models.IconEntry, isCursor bool) string {
	name := e.Name
	maxNameLen := max(10, l.Width-14)
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	var content string
	switch {
	case e.IsAction():
		content = ui.ActionStyle.Render(name)
	case l.IsFavorite != nil && l.IsFavorite(e.Path):
		content = ui.FavoriteStyle.Render("★") + " " + name
	default:
		content = "  " + name
	}
	if !l.ShowGroups && !e.IsAction() && e.Group != models.DefaultGroup {
		content += " " + ui.IconPathStyle.Render(e.Group)
	}

	if isCursor && l.Focused {
		return ui.SelectedItemStyle.Width(max(1, l.Width-4)).Render(content)
	}
	return ui.ItemStyle.Render(content)
}

// wrapInPanel wraps content in a panel border
func (l *IconList) wrapInPanel(content string) string {
	style := ui.PanelStyle
	if l.Focused {
		style = ui.ActivePanelStyle
	}
	return style.Width(l.Width).Height(l.Height).Render(content)
}
