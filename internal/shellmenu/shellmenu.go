// Package shellmenu registers an Explorer context-menu entry that opens
// the picker for the right-clicked folders.
package shellmenu

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned where there is no Explorer to register with
var ErrUnsupported = errors.New("context menu registration requires Windows")

// KeyName is the verb created under Directory\shell
const KeyName = "DirDirector"

// Label is the text Explorer shows in the menu
const Label = "Change folder icon"

// Command builds the command line Explorer runs for a folder
func Command(exe string) string {
	return fmt.Sprintf(`"%s" "%%1"`, exe)
}

// Install registers the menu entry for exe
func Install(exe string) error {
	return install(exe)
}

// Uninstall removes the menu entry
func Uninstall() error {
	return uninstall()
}

// Installed reports whether the menu entry exists
func Installed() (bool, error) {
	return installed()
}
