package applier

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FolderIconBackend is the platform capability used to point a folder at
// its icon marker and refresh the file manager.
type FolderIconBackend interface {
	// SetIcon references iconFile (a name inside folder) as the folder's
	// icon. An empty iconFile clears the customization.
	SetIcon(folder, iconFile string) error
	// NotifyShellChanged asks the file manager to redraw the folder.
	NotifyShellChanged(folder string) error
}

// Backend names accepted by NewBackend
const (
	BackendAuto  = "auto"
	BackendShell = "shell"
	BackendINI   = "ini"
)

// DesktopINI is the folder customization file name
const DesktopINI = "desktop.ini"

const shellClassInfo = ".ShellClassInfo"

// iconKeys are the desktop.ini keys that carry an icon reference
var iconKeys = []string{"IconResource", "IconFile", "IconIndex"}

// INIBackend edits desktop.ini directly. It works on every platform and is
// what Explorer reads when the folder is shared or synced to Windows.
type INIBackend struct{}

// NewINIBackend creates a desktop.ini backend
func NewINIBackend() *INIBackend {
	return &INIBackend{}
}

// SetIcon writes or removes the IconResource entry of desktop.ini
func (b *INIBackend) SetIcon(folder, iconFile string) error {
	path := filepath.Join(folder, DesktopINI)

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	existed := err == nil

	lines := setIconResource(splitLines(data), iconFile)
	if isBlank(lines) {
		if existed {
			prepareWrite(path)
			if err := os.Remove(path); err != nil {
				return err
			}
		}
		return nil
	}

	if existed {
		prepareWrite(path)
	}
	content := strings.Join(lines, "\r\n") + "\r\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", DesktopINI, err)
	}
	return markCustomized(folder, path)
}

// NotifyShellChanged refreshes the folder where the platform supports it
func (b *INIBackend) NotifyShellChanged(folder string) error {
	return notifyShell(folder)
}

// IconResource reads the icon reference of a folder's desktop.ini.
// An empty string means the folder has no custom icon.
func IconResource(folder string) (string, error) {
	data, err := os.ReadFile(filepath.Join(folder, DesktopINI))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	inSection := false
	for _, line := range splitLines(data) {
		trimmed := strings.TrimSpace(line)
		if name, ok := sectionName(trimmed); ok {
			inSection = strings.EqualFold(name, shellClassInfo)
			continue
		}
		if !inSection {
			continue
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "IconResource") {
			value = strings.TrimSpace(value)
			if i := strings.LastIndex(value, ","); i >= 0 {
				value = value[:i]
			}
			return value, nil
		}
	}
	return "", nil
}

// setIconResource drops the icon keys from [.ShellClassInfo] and, when
// iconFile is set, adds a fresh IconResource right under the header.
func setIconResource(lines []string, iconFile string) []string {
	out := make([]string, 0, len(lines)+2)
	inSection := false
	found := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if name, ok := sectionName(trimmed); ok {
			inSection = strings.EqualFold(name, shellClassInfo)
			out = append(out, line)
			if inSection && !found {
				found = true
				if iconFile != "" {
					out = append(out, "IconResource="+iconFile+",0")
				}
			}
			continue
		}
		if inSection && isIconKey(trimmed) {
			continue
		}
		out = append(out, line)
	}

	if !found && iconFile != "" {
		head := []string{"[" + shellClassInfo + "]", "IconResource=" + iconFile + ",0"}
		out = append(head, out...)
	}
	return dropEmptySection(out)
}

// dropEmptySection removes a [.ShellClassInfo] header left without keys
func dropEmptySection(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		name, ok := sectionName(strings.TrimSpace(lines[i]))
		if ok && strings.EqualFold(name, shellClassInfo) {
			j := i + 1
			empty := true
			for ; j < len(lines); j++ {
				t := strings.TrimSpace(lines[j])
				if _, next := sectionName(t); next {
					break
				}
				if t != "" {
					empty = false
					break
				}
			}
			if empty {
				i = j - 1
				continue
			}
		}
		out = append(out, lines[i])
	}
	return out
}

func isIconKey(line string) bool {
	key, _, ok := strings.Cut(line, "=")
	if !ok {
		return false
	}
	key = strings.TrimSpace(key)
	for _, k := range iconKeys {
		if strings.EqualFold(key, k) {
			return true
		}
	}
	return false
}

func sectionName(line string) (string, bool) {
	if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
		return strings.TrimSpace(line[1 : len(line)-1]), true
	}
	return "", false
}

func splitLines(data []byte) []string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func isBlank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}
