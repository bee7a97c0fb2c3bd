package models

import (
	"path/filepath"
	"strings"
)

// TargetFolderSet is the ordered selection of folders an action applies to.
// Paths are cleaned and no path is kept twice.
type TargetFolderSet struct {
	folders []string
}

// NewTargetFolderSet creates a set from the given paths
func NewTargetFolderSet(paths ...string) *TargetFolderSet {
	s := &TargetFolderSet{}
	s.Replace(paths...)
	return s
}

// Replace swaps the whole selection
func (s *TargetFolderSet) Replace(paths ...string) {
	seen := make(map[string]bool, len(paths))
	folders := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		folders = append(folders, p)
	}
	s.folders = folders
}

// Remove drops a folder from the selection, returning true if it was present
func (s *TargetFolderSet) Remove(path string) bool {
	path = filepath.Clean(path)
	for i, f := range s.folders {
		if f == path {
			s.folders = append(s.folders[:i:i], s.folders[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether the folder is selected
func (s *TargetFolderSet) Contains(path string) bool {
	path = filepath.Clean(path)
	for _, f := range s.folders {
		if f == path {
			return true
		}
	}
	return false
}

// Folders returns a copy of the selection in order
func (s *TargetFolderSet) Folders() []string {
	out := make([]string, len(s.folders))
	copy(out, s.folders)
	return out
}

// First returns the head of the selection
func (s *TargetFolderSet) First() (string, bool) {
	if len(s.folders) == 0 {
		return "", false
	}
	return s.folders[0], true
}

// Len returns the number of selected folders
func (s *TargetFolderSet) Len() int {
	return len(s.folders)
}

// IsEmpty reports whether no folder is selected
func (s *TargetFolderSet) IsEmpty() bool {
	return len(s.folders) == 0
}
