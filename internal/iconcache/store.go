package iconcache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"dirdirector/internal/models"
)

// DebugMode enables debug logging
var DebugMode = false

// DebugOutput receives debug lines when DebugMode is on
var DebugOutput io.Writer = os.Stderr

// debugLog logs a message if debug mode is enabled
func debugLog(format string, args ...interface{}) {
	if DebugMode {
		fmt.Fprintf(DebugOutput, "[ICONCACHE] "+format+"\n", args...)
	}
}

// Store discovers icon files under a base directory and exposes them
// grouped by subfolder. Favorited paths are excluded from the index.
type Store struct {
	baseDir  string
	groups   []models.IconGroup
	excluded map[string]bool
	onChange func()
	hashes   *HashCache
}

// New creates a store for the given cache directory. The index is empty
// until Rebuild is called.
func New(baseDir string) *Store {
	return &Store{
		baseDir:  baseDir,
		groups:   []models.IconGroup{},
		excluded: make(map[string]bool),
		hashes:   NewHashCache(),
	}
}

// BaseDir returns the cache directory
func (s *Store) BaseDir() string {
	return s.baseDir
}

// OnChange registers a callback fired once after each structural change
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

// SetExcluded replaces the set of paths kept out of the index.
// It does not rebuild; callers rebuild once they are done.
func (s *Store) SetExcluded(paths []string) {
	excluded := make(map[string]bool, len(paths))
	for _, p := range paths {
		excluded[p] = true
	}
	s.excluded = excluded
}

// IsExcluded reports whether a path is kept out of the index
func (s *Store) IsExcluded(path string) bool {
	return s.excluded[path]
}

// Rebuild walks the base directory from scratch. A missing base directory
// yields an empty index.
func (s *Store) Rebuild() {
	groups, err := s.scan()
	if err != nil {
		debugLog("scan of %s failed: %v", s.baseDir, err)
		groups = []models.IconGroup{}
	}
	s.groups = groups
	debugLog("rebuilt index: %d groups, %d icons", len(groups), models.CountIcons(groups))
	s.notify()
}

// scan collects one group per directory level that holds icons
func (s *Store) scan() ([]models.IconGroup, error) {
	info, err := os.Stat(s.baseDir)
	if err != nil || !info.IsDir() {
		return []models.IconGroup{}, nil
	}

	dirs := []string{s.baseDir}
	err = filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if d.IsDir() && path != s.baseDir {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	groups := []models.IconGroup{}
	for _, dir := range dirs {
		name := s.groupName(dir)
		icons := s.iconsIn(dir, name)
		if len(icons) > 0 {
			groups = append(groups, models.IconGroup{Name: name, Icons: icons})
		}
	}
	return groups, nil
}

// iconsIn lists the non-excluded icons directly inside dir
func (s *Store) iconsIn(dir, group string) []models.IconEntry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		debugLog("read %s: %v", dir, err)
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !models.IsIconFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	icons := make([]models.IconEntry, 0, len(names))
	for _, n := range names {
		path := filepath.Join(dir, n)
		if s.IsExcluded(path) {
			continue
		}
		entry, err := models.NewIconEntry(group, path)
		if err != nil {
			continue
		}
		icons = append(icons, entry)
	}
	return icons
}

// groupName maps a directory to its group identifier
func (s *Store) groupName(dir string) string {
	rel, err := filepath.Rel(s.baseDir, dir)
	if err != nil || rel == "." {
		return models.DefaultGroup
	}
	return filepath.ToSlash(rel)
}

// ForgetHashes drops the remembered content hashes of every icon
func (s *Store) ForgetHashes() {
	s.hashes.Clear()
}

// Groups returns a copy of the full index
func (s *Store) Groups() []models.IconGroup {
	return models.CloneGroups(s.groups)
}

// Icons returns every indexed icon in group order
func (s *Store) Icons() []models.IconEntry {
	var icons []models.IconEntry
	for _, g := range s.groups {
		icons = append(icons, g.Icons...)
	}
	return icons
}

// Lookup finds an indexed icon by absolute path
func (s *Store) Lookup(path string) (models.IconEntry, bool) {
	for _, g := range s.groups {
		for _, icon := range g.Icons {
			if icon.Path == path {
				return icon, true
			}
		}
	}
	return models.IconEntry{}, false
}

// AddCustomIcon inserts an icon into the Default group without a rescan.
// The Default group is created at the front when it does not exist.
func (s *Store) AddCustomIcon(path string) error {
	entry, err := models.NewIconEntry(models.DefaultGroup, path)
	if err != nil {
		return err
	}

	groups := make([]models.IconGroup, 0, len(s.groups)+1)
	found := false
	for _, g := range s.groups {
		if g.Name == models.DefaultGroup && !found {
			g = g.Clone()
			g.Icons = append(g.Icons, entry)
			found = true
		}
		groups = append(groups, g)
	}
	if !found {
		groups = append([]models.IconGroup{{
			Name:  models.DefaultGroup,
			Icons: []models.IconEntry{entry},
		}}, groups...)
	}

	s.groups = groups
	debugLog("added custom icon %s", path)
	s.notify()
	return nil
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
