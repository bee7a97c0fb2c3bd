// Package picker asks the user for an icon or image file through the
// platform's file dialog.
package picker

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupported means no dialog is available on this platform
	ErrUnsupported = errors.New("file dialog not supported on this platform")
	// ErrCancelled means the user closed the dialog without choosing
	ErrCancelled = errors.New("no file selected")
)

// Extensions accepted by the dialog
var Extensions = []string{".ico", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Dialog opens a file dialog starting in InitialDir
type Dialog struct {
	InitialDir string
	Title      string
}

// New creates a Dialog
func New(initialDir string) *Dialog {
	return &Dialog{InitialDir: initialDir, Title: "Select an icon or image"}
}

// Pick shows the dialog and returns the chosen path
func (d *Dialog) Pick() (string, error) {
	path, err := pickFileDialog(d.Title, d.InitialDir, filterString())
	if err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrCancelled
	}
	return path, nil
}

// Accepts reports whether a typed path has an extension the dialog offers
func Accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// filterString renders Extensions as a Windows Forms filter
func filterString() string {
	patterns := make([]string, len(Extensions))
	for i, e := range Extensions {
		patterns[i] = "*" + e
	}
	joined := strings.Join(patterns, ";")
	return "Icons and images|" + joined + "|All files|*.*"
}
