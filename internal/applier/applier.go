// Package applier sets and reverts custom folder icons.
//
// A folder's icon is a hidden .ico file (the marker) copied into the folder
// and referenced from the folder's customization metadata. Before a new
// marker is written every hidden .ico at the top of the folder is removed, so
// a folder never carries more than one marker.
package applier

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"dirdirector/internal/fsutil"
	"dirdirector/internal/models"
)

// DebugMode enables debug logging
var DebugMode = false

// DebugOutput receives debug lines when DebugMode is on
var DebugOutput io.Writer = os.Stderr

// debugLog logs a message if debug mode is enabled
func debugLog(format string, args ...interface{}) {
	if DebugMode {
		fmt.Fprintf(DebugOutput, "[APPLIER] "+format+"\n", args...)
	}
}

// MarkerPrefix starts every marker file name
const MarkerPrefix = ".ddicon-"

// Options are the session toggles that shape an action
type Options struct {
	ApplyToSubfolders bool // Also process every descendant directory
	QueueMode         bool // Consume one target per call
	CloseOnApply      bool // Signal termination when done
}

// Failure is a folder that could not be updated
type Failure struct {
	Folder string
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Folder, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result describes what an apply or revert did
type Result struct {
	Processed []string  // Folders updated successfully
	Failures  []Failure // Folders left unchanged
	Consumed  string    // Target removed from the set in queue mode
	Terminate bool      // The session should end
}

// OK reports whether every folder was updated
func (r Result) OK() bool {
	return len(r.Failures) == 0
}

// Err joins the per-folder failures, nil when there were none
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Applier applies icons to folders through a platform backend
type Applier struct {
	backend FolderIconBackend
	newName func() string
}

// New creates an applier using the given backend
func New(backend FolderIconBackend) *Applier {
	return &Applier{
		backend: backend,
		newName: MarkerName,
	}
}

// MarkerName generates a fresh, collision-free marker file name
func MarkerName() string {
	return MarkerPrefix + uuid.NewString() + models.IconExt
}

// Apply copies iconPath into every target folder and points the folder's
// icon at it. Only a missing icon file is returned as an error; per-folder
// problems are reported in the Result.
func (a *Applier) Apply(targets *models.TargetFolderSet, iconPath string, opts Options) (Result, error) {
	if !fsutil.FileExists(iconPath) {
		return Result{}, fmt.Errorf("icon %s: %w", iconPath, fs.ErrNotExist)
	}
	return a.run(targets, iconPath, opts), nil
}

// Revert removes markers and clears the icon of every target folder
func (a *Applier) Revert(targets *models.TargetFolderSet, opts Options) Result {
	return a.run(targets, "", opts)
}

func (a *Applier) run(targets *models.TargetFolderSet, iconPath string, opts Options) Result {
	var result Result
	if targets == nil || targets.IsEmpty() {
		return result
	}

	sources := targets.Folders()
	work := sources
	switch {
	case opts.QueueMode:
		// One folder per call, subfolders included or not
		sources = sources[:1]
		work = sources
	case opts.ApplyToSubfolders:
		work = ExpandSubfolders(sources)
	}

	for _, folder := range work {
		if err := a.processFolder(folder, iconPath); err != nil {
			debugLog("%s failed: %v", folder, err)
			result.Failures = append(result.Failures, Failure{Folder: folder, Err: err})
			continue
		}
		result.Processed = append(result.Processed, folder)
	}

	if opts.QueueMode {
		targets.Remove(sources[0])
		result.Consumed = sources[0]
		result.Terminate = opts.CloseOnApply && targets.IsEmpty()
		return result
	}

	result.Terminate = opts.CloseOnApply
	return result
}

// processFolder runs clean, copy and metadata update for one folder.
// An empty iconPath reverts the folder.
func (a *Applier) processFolder(folder, iconPath string) error {
	if !fsutil.DirExists(folder) {
		return fmt.Errorf("not a directory")
	}

	if _, err := Clean(folder); err != nil {
		return err
	}

	markerName := ""
	if iconPath != "" {
		markerName = a.newName()
		marker := filepath.Join(folder, markerName)
		if err := fsutil.CopyFile(iconPath, marker); err != nil {
			return err
		}
		if err := hideFile(marker); err != nil {
			os.Remove(marker)
			return fmt.Errorf("failed to hide icon: %w", err)
		}
	}

	if err := a.backend.SetIcon(folder, markerName); err != nil {
		if markerName != "" {
			os.Remove(filepath.Join(folder, markerName))
		}
		return fmt.Errorf("failed to update folder settings: %w", err)
	}

	if err := a.backend.NotifyShellChanged(folder); err != nil {
		debugLog("shell notify for %s: %v", folder, err)
	}
	return nil
}

// Clean deletes the hidden .ico files at the top of folder. Files that
// cannot be deleted are logged and skipped. Only a failure to list the
// folder is returned.
func Clean(folder string) (int, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !models.IsIconFile(e.Name()) {
			continue
		}
		path := filepath.Join(folder, e.Name())
		hidden, err := isHidden(path)
		if err != nil || !hidden {
			continue
		}
		if err := os.Remove(path); err != nil {
			debugLog("could not remove %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Markers lists the marker files currently in folder
func Markers(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	var markers []string
	for _, e := range entries {
		if e.IsDir() || !models.IsIconFile(e.Name()) {
			continue
		}
		path := filepath.Join(folder, e.Name())
		if hidden, err := isHidden(path); err == nil && hidden {
			markers = append(markers, path)
		}
	}
	return markers, nil
}

// ExpandSubfolders returns the folders followed by all of their descendant
// directories, without duplicates. Unreadable subtrees are skipped.
func ExpandSubfolders(folders []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(folders))
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, f := range folders {
		add(f)
	}
	for _, f := range folders {
		filepath.WalkDir(f, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != f {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() && path != f {
				add(path)
			}
			return nil
		})
	}
	return out
}
