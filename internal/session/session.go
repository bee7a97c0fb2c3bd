// Package session ties the icon cache, favorites, settings and applier
// together for one run of the program.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dirdirector/internal/applier"
	"dirdirector/internal/config"
	"dirdirector/internal/favorites"
	"dirdirector/internal/fsutil"
	"dirdirector/internal/icoconv"
	"dirdirector/internal/iconcache"
	"dirdirector/internal/models"
	"dirdirector/internal/picker"
	"dirdirector/internal/settings"
)

// AppName is shown at the start of the title
const AppName = "Directory Director"

// FilePicker asks the user for an icon or image
type FilePicker interface {
	Pick() (string, error)
}

// Session is the state behind one picker window or CLI invocation
type Session struct {
	cfg       *config.Config
	version   string
	settings  *settings.Manager
	cache     *iconcache.Store
	favorites *favorites.Store
	applier   *applier.Applier
	targets   *models.TargetFolderSet
	picker    FilePicker

	queueOverride *bool
	closeOverride *bool

	warnings []string
	done     bool
}

// New loads settings and the icon cache described by cfg
func New(cfg *config.Config, version string) (*Session, error) {
	backend, err := applier.NewBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(cfg, version, backend), nil
}

// NewWithBackend is New with an explicit folder icon backend
func NewWithBackend(cfg *config.Config, version string, backend applier.FolderIconBackend) *Session {
	s := &Session{
		cfg:      cfg,
		version:  version,
		settings: settings.NewManager(cfg.SettingsPath),
		cache:    iconcache.New(cfg.CacheDir),
		applier:  applier.New(backend),
		targets:  models.NewTargetFolderSet(),
		picker:   picker.New(cfg.CacheDir),
	}
	s.favorites = favorites.New(s.cache)

	if err := s.settings.Load(); err != nil {
		s.warnSettings(err)
	}
	s.favorites.SetFavorites(s.settings.FavoriteFolders())
	return s
}

// SetPicker replaces the file dialog used by the Select… entry
func (s *Session) SetPicker(p FilePicker) {
	s.picker = p
}

// Cache returns the icon cache
func (s *Session) Cache() *iconcache.Store {
	return s.cache
}

// Settings returns the settings manager
func (s *Session) Settings() *settings.Manager {
	return s.settings
}

// Config returns the configuration the session was built from
func (s *Session) Config() *config.Config {
	return s.cfg
}

// Refresh re-resolves the favorites and rescans the cache directory
func (s *Session) Refresh() {
	s.cache.ForgetHashes()
	s.favorites.SetFavorites(s.favorites.RelativePaths())
}

// SelectFolders replaces the target folders
func (s *Session) SelectFolders(paths ...string) {
	s.targets.Replace(paths...)
}

// Targets returns the current target folders in order
func (s *Session) Targets() []string {
	return s.targets.Folders()
}

// Favorites returns the action entries followed by favorite icons
func (s *Session) Favorites() []models.IconEntry {
	return s.favorites.Entries()
}

// Groups returns the cache index narrowed by query
func (s *Session) Groups(query string) []models.IconGroup {
	return s.cache.Filter(query)
}

// IsFavorite reports whether an icon is in the favorites
func (s *Session) IsFavorite(iconPath string) bool {
	return s.favorites.Contains(iconPath)
}

// Options returns the applier options for the current toggles
func (s *Session) Options() applier.Options {
	return applier.Options{
		ApplyToSubfolders: s.settings.ApplyToSubfolders(),
		QueueMode:         s.QueueMode(),
		CloseOnApply:      s.CloseOnApply(),
	}
}

// Apply runs the action behind a picker entry
func (s *Session) Apply(entry models.IconEntry) (applier.Result, error) {
	switch entry.Kind {
	case models.KindRevert:
		return s.Revert(), nil
	case models.KindSelectCustom:
		if s.targets.IsEmpty() {
			return applier.Result{}, nil
		}
		path, err := s.PickFile()
		if errors.Is(err, picker.ErrCancelled) {
			return applier.Result{}, nil
		}
		if err != nil {
			return applier.Result{}, err
		}
		return s.ApplyFile(path)
	default:
		return s.applyIcon(entry.Path)
	}
}

// ApplyFile imports an external icon or image and applies it
func (s *Session) ApplyFile(src string) (applier.Result, error) {
	if s.targets.IsEmpty() {
		return applier.Result{}, nil
	}
	iconPath, _, err := s.Import(src)
	if err != nil {
		return applier.Result{}, err
	}
	return s.applyIcon(iconPath)
}

// PickFile shows the file dialog. It reads no session state besides the
// picker and may run off the UI goroutine.
func (s *Session) PickFile() (string, error) {
	return s.picker.Pick()
}

// ApplyPrepared imports an icon made by Prepare and applies it
func (s *Session) ApplyPrepared(p PreparedIcon) (applier.Result, error) {
	if s.targets.IsEmpty() {
		return applier.Result{}, nil
	}
	iconPath, _, err := s.importPrepared(p)
	if err != nil {
		return applier.Result{}, err
	}
	return s.applyIcon(iconPath)
}

func (s *Session) applyIcon(iconPath string) (applier.Result, error) {
	result, err := s.applier.Apply(s.targets, iconPath, s.Options())
	if err != nil {
		return result, err
	}
	s.finish(result)
	return result, nil
}

// Revert restores the default icon on the targets
func (s *Session) Revert() applier.Result {
	result := s.applier.Revert(s.targets, s.Options())
	s.finish(result)
	return result
}

func (s *Session) finish(result applier.Result) {
	if result.Terminate {
		s.done = true
	}
}

// PreparedIcon is an icon file ready to be imported into the cache
type PreparedIcon struct {
	Path    string // .ico file to import
	Source  string // file the user chose
	InCache bool   // Path is already a cached icon
	tmpDir  string
}

// Close removes the temporary conversion output, if any
func (p PreparedIcon) Close() error {
	if p.tmpDir == "" {
		return nil
	}
	return os.RemoveAll(p.tmpDir)
}

// Prepare does the slow file work of an import: it checks src and converts
// images to .ico in a temporary directory. It changes no session state, so
// it may run off the UI goroutine. Callers Close the result.
func (s *Session) Prepare(src string) (PreparedIcon, error) {
	if _, err := os.Stat(src); err != nil {
		return PreparedIcon{}, err
	}
	p := PreparedIcon{Path: src, Source: src}
	if s.inCache(src) {
		p.InCache = true
		return p, nil
	}
	if models.IsIconFile(src) {
		return p, nil
	}

	tmp, err := os.MkdirTemp("", "dirdirector-")
	if err != nil {
		return PreparedIcon{}, err
	}
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + models.IconExt
	converted, err := icoconv.Convert(src, filepath.Join(tmp, name), s.cfg.IconSize, s.cfg.KeepAspect)
	if err != nil {
		os.RemoveAll(tmp)
		return PreparedIcon{}, err
	}
	p.Path = converted
	p.tmpDir = tmp
	return p, nil
}

// Import brings src into the cache, converting images to .ico first. The
// cached path is returned with created false when an identical icon was
// already present.
func (s *Session) Import(src string) (string, bool, error) {
	p, err := s.Prepare(src)
	if err != nil {
		return "", false, err
	}
	defer p.Close()
	return s.importPrepared(p)
}

func (s *Session) importPrepared(p PreparedIcon) (string, bool, error) {
	if p.InCache {
		return p.Path, false, nil
	}
	cached, created, err := s.cache.Import(p.Path)
	if err != nil {
		return "", false, err
	}
	if created {
		if err := s.cache.AddCustomIcon(cached); err != nil {
			return "", false, err
		}
	}
	return cached, created, nil
}

// inCache reports whether src is an icon already stored under the cache
func (s *Session) inCache(src string) bool {
	if !models.IsIconFile(src) {
		return false
	}
	_, ok := fsutil.RelWithin(s.cache.BaseDir(), src)
	return ok
}

// ResolveIcon turns a command-line icon argument into a path, trying the
// cache directory for relative names that do not exist as given.
func (s *Session) ResolveIcon(arg string) string {
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg)
	}
	if _, err := os.Stat(arg); err == nil {
		abs, _ := filepath.Abs(arg)
		return abs
	}
	return filepath.Join(s.cache.BaseDir(), filepath.FromSlash(arg))
}

// ToggleFavorite adds or removes a cached icon from the favorites and
// reports whether it is now a favorite.
func (s *Session) ToggleFavorite(entry models.IconEntry) (bool, error) {
	if entry.IsAction() {
		return false, fmt.Errorf("%s cannot be a favorite", entry.Name)
	}
	on, paths, err := s.favorites.Toggle(entry.Path)
	if err != nil {
		return false, err
	}
	if err := s.settings.SetFavoriteFolders(paths); err != nil {
		s.warnSettings(err)
	}
	return on, nil
}

// AddFavorite marks a cached icon as a favorite and saves the list
func (s *Session) AddFavorite(iconPath string) error {
	paths, err := s.favorites.Add(iconPath)
	if err != nil {
		return err
	}
	if err := s.settings.SetFavoriteFolders(paths); err != nil {
		s.warnSettings(err)
	}
	return nil
}

// RemoveFavorite drops an icon from the favorites and saves the list
func (s *Session) RemoveFavorite(iconPath string) error {
	paths, err := s.favorites.Remove(iconPath)
	if err != nil {
		return err
	}
	if err := s.settings.SetFavoriteFolders(paths); err != nil {
		s.warnSettings(err)
	}
	return nil
}

// SetFavorites persists and applies a favorites list
func (s *Session) SetFavorites(relPaths []string) {
	s.favorites.SetFavorites(relPaths)
	if err := s.settings.SetFavoriteFolders(s.favorites.RelativePaths()); err != nil {
		s.warnSettings(err)
	}
}

// QueueMode reports whether applying consumes one folder at a time
func (s *Session) QueueMode() bool {
	if s.queueOverride != nil {
		return *s.queueOverride
	}
	return s.settings.QueueFolders()
}

// CloseOnApply reports whether the session ends after applying
func (s *Session) CloseOnApply() bool {
	if s.closeOverride != nil {
		return *s.closeOverride
	}
	return s.settings.CloseOnApply()
}

// ApplyToSubfolders reports whether subfolders are included
func (s *Session) ApplyToSubfolders() bool {
	return s.settings.ApplyToSubfolders()
}

// OverrideQueueMode sets queue mode for this session without saving it
func (s *Session) OverrideQueueMode(v bool) {
	s.queueOverride = &v
}

// OverrideCloseOnApply sets close-on-apply for this session without saving it
func (s *Session) OverrideCloseOnApply(v bool) {
	s.closeOverride = &v
}

// ToggleQueueMode flips and persists queue mode
func (s *Session) ToggleQueueMode() bool {
	v := !s.QueueMode()
	s.queueOverride = nil
	if err := s.settings.SetQueueFolders(v); err != nil {
		s.warnSettings(err)
	}
	return v
}

// ToggleCloseOnApply flips and persists close-on-apply
func (s *Session) ToggleCloseOnApply() bool {
	v := !s.CloseOnApply()
	s.closeOverride = nil
	if err := s.settings.SetCloseOnApply(v); err != nil {
		s.warnSettings(err)
	}
	return v
}

// ToggleApplyToSubfolders flips the session-only subfolder toggle
func (s *Session) ToggleApplyToSubfolders() bool {
	v := !s.settings.ApplyToSubfolders()
	s.settings.SetApplyToSubfolders(v)
	return v
}

// Done reports whether an apply asked the session to end
func (s *Session) Done() bool {
	return s.done
}

// Warnings returns and clears pending non-fatal problems
func (s *Session) Warnings() []string {
	w := s.warnings
	s.warnings = nil
	return w
}

func (s *Session) warnSettings(err error) {
	s.warnings = append(s.warnings, fmt.Sprintf("settings will not be saved: %v", err))
}
