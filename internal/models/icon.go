package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultGroup is the group name used for icons at the root of the cache
const DefaultGroup = "Default"

// ActionGroup is the group name of the synthetic favorite entries
const ActionGroup = "Actions"

// IconExt is the file extension of icon assets
const IconExt = ".ico"

// IconKind distinguishes real icons from the synthetic action entries
type IconKind int

const (
	KindIcon         IconKind = iota // A real .ico file
	KindSelectCustom                 // "Select…" - pick an external file
	KindRevert                       // "Revert" - restore the default folder icon
)

// String returns a string representation of the kind
func (k IconKind) String() string {
	switch k {
	case KindIcon:
		return "icon"
	case KindSelectCustom:
		return "select"
	case KindRevert:
		return "revert"
	default:
		return "unknown"
	}
}

// IconEntry represents one selectable icon.
// Entries are values: groups are rebuilt wholesale instead of mutated.
type IconEntry struct {
	Group string   // Relative subfolder ("Default" for the cache root)
	Path  string   // Absolute path to the .ico file, empty for actions
	Name  string   // File name without extension
	Kind  IconKind // Icon or synthetic action
}

// NewIconEntry creates an entry for an existing icon file
func NewIconEntry(group, path string) (IconEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return IconEntry{}, err
	}
	if info.IsDir() {
		return IconEntry{}, fmt.Errorf("%s is a directory", path)
	}
	if group == "" {
		group = DefaultGroup
	}

	return IconEntry{
		Group: group,
		Path:  path,
		Name:  DisplayName(path),
		Kind:  KindIcon,
	}, nil
}

// SelectCustomEntry returns the synthetic "choose a custom icon" entry
func SelectCustomEntry() IconEntry {
	return IconEntry{Group: ActionGroup, Name: "Select…", Kind: KindSelectCustom}
}

// RevertEntry returns the synthetic "revert to default" entry
func RevertEntry() IconEntry {
	return IconEntry{Group: ActionGroup, Name: "Revert", Kind: KindRevert}
}

// IsAction reports whether the entry is one of the synthetic actions
func (e IconEntry) IsAction() bool {
	return e.Kind != KindIcon
}

// DisplayName derives the display name of an icon from its path
func DisplayName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsIconFile reports whether the path has the icon extension
func IsIconFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), IconExt)
}

// IconGroup is a named, ordered collection of entries sharing a group name
type IconGroup struct {
	Name  string
	Icons []IconEntry
}

// Clone returns a copy of the group that does not share the icon slice
func (g IconGroup) Clone() IconGroup {
	icons := make([]IconEntry, len(g.Icons))
	copy(icons, g.Icons)
	return IconGroup{Name: g.Name, Icons: icons}
}

// CloneGroups copies a group list so callers cannot mutate a snapshot
func CloneGroups(groups []IconGroup) []IconGroup {
	out := make([]IconGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Clone())
	}
	return out
}

// CountIcons returns the number of icons across groups
func CountIcons(groups []IconGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Icons)
	}
	return n
}
