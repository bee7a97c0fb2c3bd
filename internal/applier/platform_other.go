//go:build !windows

package applier

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NewBackend returns the backend for a configured name. Only the
// desktop.ini backend exists outside Windows.
func NewBackend(name string) (FolderIconBackend, error) {
	switch name {
	case "", BackendAuto, BackendINI:
		return NewINIBackend(), nil
	case BackendShell:
		return nil, fmt.Errorf("backend %q is only available on Windows", name)
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func notifyShell(folder string) error {
	debugLog("no shell to notify for %s", folder)
	return nil
}

// Dot files are the hidden files here, and markers are always dot files.
func isHidden(path string) (bool, error) {
	return strings.HasPrefix(filepath.Base(path), "."), nil
}

func hideFile(path string) error {
	if hidden, _ := isHidden(path); !hidden {
		return fmt.Errorf("%s cannot be hidden without renaming", filepath.Base(path))
	}
	return nil
}

func prepareWrite(path string) {}

func markCustomized(folder, iniPath string) error {
	return nil
}
