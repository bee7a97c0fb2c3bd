// Package favorites keeps the ordered favorite icons, resolved from the
// relative paths stored in the settings file.
package favorites

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"dirdirector/internal/fsutil"
	"dirdirector/internal/iconcache"
	"dirdirector/internal/models"
)

// ErrOutsideCache is returned when favoriting an icon that is not cached
var ErrOutsideCache = errors.New("icon is not inside the cache directory")

// Store is the favorites list. It always starts with the two action
// entries, followed by the user's icons.
type Store struct {
	cache    *iconcache.Store
	entries  []models.IconEntry
	relPaths []string
}

// New creates a favorites store bound to a cache
func New(cache *iconcache.Store) *Store {
	s := &Store{cache: cache}
	s.entries = []models.IconEntry{models.SelectCustomEntry(), models.RevertEntry()}
	return s
}

// SetFavorites replaces the favorites from persisted relative paths.
// Paths that no longer resolve to a file are dropped. The cache index is
// rebuilt last so no icon is listed in both places.
func (s *Store) SetFavorites(relPaths []string) {
	entries := []models.IconEntry{models.SelectCustomEntry(), models.RevertEntry()}
	kept := make([]string, 0, len(relPaths))
	excluded := make([]string, 0, len(relPaths))
	seen := make(map[string]bool, len(relPaths))

	for _, rel := range relPaths {
		rel = normalize(rel)
		if rel == "" || seen[rel] {
			continue
		}
		fullPath := filepath.Join(s.cache.BaseDir(), filepath.FromSlash(rel))
		entry, err := models.NewIconEntry(groupOf(rel), fullPath)
		if err != nil {
			continue
		}
		seen[rel] = true
		entries = append(entries, entry)
		kept = append(kept, rel)
		excluded = append(excluded, fullPath)
	}

	s.entries = entries
	s.relPaths = kept
	s.cache.SetExcluded(excluded)
	s.cache.Rebuild()
}

// Entries returns the full list including the action entries
func (s *Store) Entries() []models.IconEntry {
	out := make([]models.IconEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Icons returns only the user's favorite icons
func (s *Store) Icons() []models.IconEntry {
	var icons []models.IconEntry
	for _, e := range s.entries {
		if !e.IsAction() {
			icons = append(icons, e)
		}
	}
	return icons
}

// RelativePaths returns the resolvable favorites in order, as persisted
func (s *Store) RelativePaths() []string {
	out := make([]string, len(s.relPaths))
	copy(out, s.relPaths)
	return out
}

// Contains reports whether an absolute icon path is a favorite
func (s *Store) Contains(iconPath string) bool {
	for _, e := range s.entries {
		if !e.IsAction() && e.Path == iconPath {
			return true
		}
	}
	return false
}

// Add appends an icon to the favorites and returns the list to persist
func (s *Store) Add(iconPath string) ([]string, error) {
	rel, err := s.relative(iconPath)
	if err != nil {
		return nil, err
	}
	paths := s.RelativePaths()
	for _, p := range paths {
		if p == rel {
			return paths, nil
		}
	}
	paths = append(paths, rel)
	s.SetFavorites(paths)
	return s.RelativePaths(), nil
}

// Remove drops an icon from the favorites and returns the list to persist
func (s *Store) Remove(iconPath string) ([]string, error) {
	rel, err := s.relative(iconPath)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(s.relPaths))
	for _, p := range s.relPaths {
		if p != rel {
			paths = append(paths, p)
		}
	}
	s.SetFavorites(paths)
	return s.RelativePaths(), nil
}

// Toggle adds or removes an icon, reporting whether it is now a favorite
func (s *Store) Toggle(iconPath string) (bool, []string, error) {
	if s.Contains(iconPath) {
		paths, err := s.Remove(iconPath)
		return false, paths, err
	}
	paths, err := s.Add(iconPath)
	return err == nil, paths, err
}

// relative converts an absolute cache path to its persisted form
func (s *Store) relative(iconPath string) (string, error) {
	rel, ok := fsutil.RelWithin(s.cache.BaseDir(), iconPath)
	if !ok {
		return "", fmt.Errorf("%s: %w", iconPath, ErrOutsideCache)
	}
	return filepath.ToSlash(rel), nil
}

// normalize accepts both separator styles in the settings file
func normalize(rel string) string {
	rel = strings.TrimSpace(strings.ReplaceAll(rel, "\\", "/"))
	return strings.TrimPrefix(rel, "./")
}

// groupOf derives the group from the parent of a relative path
func groupOf(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return models.DefaultGroup
	}
	return dir
}
