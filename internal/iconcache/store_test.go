package iconcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dirdirector/internal/models"
)

// writeIcon creates a fake icon file, making parent directories
func writeIcon(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write icon: %v", err)
	}
}

func newCache(t *testing.T) (string, *Store) {
	t.Helper()
	base := t.TempDir()
	writeIcon(t, filepath.Join(base, "Star.ico"), "star")
	writeIcon(t, filepath.Join(base, "Drive.ico"), "drive")
	writeIcon(t, filepath.Join(base, "Work", "Silver.ico"), "silver")
	writeIcon(t, filepath.Join(base, "Work", "Deep", "Red.ico"), "red")
	writeIcon(t, filepath.Join(base, "Work", "notes.txt"), "not an icon")
	os.MkdirAll(filepath.Join(base, "Empty"), 0755)
	return base, New(base)
}

func groupNames(groups []models.IconGroup) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return names
}

func TestRebuild_Groups(t *testing.T) {
	_, s := newCache(t)
	s.Rebuild()

	groups := s.Groups()
	names := groupNames(groups)
	want := []string{"Default", "Work", "Work/Deep"}
	if len(names) != len(want) {
		t.Fatalf("Expected groups %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected group %d to be %s, got %s", i, want[i], names[i])
		}
	}

	if len(groups[0].Icons) != 2 {
		t.Errorf("Expected 2 root icons, got %d", len(groups[0].Icons))
	}
	if groups[0].Icons[0].Name != "Drive" {
		t.Errorf("Expected display name without extension 'Drive', got %s", groups[0].Icons[0].Name)
	}
	if groups[2].Icons[0].Group != "Work/Deep" {
		t.Errorf("Expected icon group 'Work/Deep', got %s", groups[2].Icons[0].Group)
	}
}

func TestRebuild_MissingBaseDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"))
	s.Rebuild()

	if len(s.Groups()) != 0 {
		t.Errorf("Expected empty index for missing base dir, got %d groups", len(s.Groups()))
	}
}

func TestRebuild_ExcludesFavorites(t *testing.T) {
	base, s := newCache(t)
	fav := filepath.Join(base, "Work", "Silver.ico")
	s.SetExcluded([]string{fav})
	s.Rebuild()

	if _, ok := s.Lookup(fav); ok {
		t.Error("Favorited icon should not appear in the index")
	}
	for _, name := range groupNames(s.Groups()) {
		if name == "Work" {
			t.Error("Group left empty by exclusion should be dropped")
		}
	}
}

func TestRebuild_NotifiesOnce(t *testing.T) {
	_, s := newCache(t)
	calls := 0
	s.OnChange(func() { calls++ })

	s.Rebuild()

	if calls != 1 {
		t.Errorf("Expected 1 change notification, got %d", calls)
	}
}

func TestAddCustomIcon_ExistingDefault(t *testing.T) {
	base, s := newCache(t)
	s.Rebuild()

	custom := filepath.Join(base, "Custom.ico")
	writeIcon(t, custom, "custom")
	if err := s.AddCustomIcon(custom); err != nil {
		t.Fatalf("AddCustomIcon failed: %v", err)
	}

	groups := s.Groups()
	if groups[0].Name != models.DefaultGroup {
		t.Fatalf("Expected Default group first, got %s", groups[0].Name)
	}
	last := groups[0].Icons[len(groups[0].Icons)-1]
	if last.Path != custom {
		t.Errorf("Expected custom icon appended to Default, got %s", last.Path)
	}
}

func TestAddCustomIcon_CreatesDefaultAtFront(t *testing.T) {
	base := t.TempDir()
	writeIcon(t, filepath.Join(base, "Sub", "A.ico"), "a")
	s := New(base)
	s.Rebuild()

	custom := filepath.Join(t.TempDir(), "Mine.ico")
	writeIcon(t, custom, "mine")
	if err := s.AddCustomIcon(custom); err != nil {
		t.Fatalf("AddCustomIcon failed: %v", err)
	}

	names := groupNames(s.Groups())
	if len(names) != 2 || names[0] != models.DefaultGroup || names[1] != "Sub" {
		t.Errorf("Expected [Default Sub], got %v", names)
	}
}

func TestAddCustomIcon_MissingFile(t *testing.T) {
	s := New(t.TempDir())
	if err := s.AddCustomIcon(filepath.Join(t.TempDir(), "nope.ico")); err == nil {
		t.Error("AddCustomIcon should fail for a missing file")
	}
}

func TestGroups_ReturnsCopy(t *testing.T) {
	_, s := newCache(t)
	s.Rebuild()

	groups := s.Groups()
	groups[0].Icons[0].Name = "mutated"

	if s.Groups()[0].Icons[0].Name == "mutated" {
		t.Error("Groups should not expose the internal snapshot")
	}
}

func TestImport_CopiesNewIcon(t *testing.T) {
	base, s := newCache(t)
	src := filepath.Join(t.TempDir(), "Fresh.ico")
	writeIcon(t, src, "fresh content")

	path, created, err := s.Import(src)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if !created {
		t.Error("Expected a new cache file to be created")
	}
	if filepath.Dir(path) != base {
		t.Errorf("Expected import into cache root, got %s", path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "fresh content" {
		t.Errorf("Imported content mismatch: %q", data)
	}
}

func TestImport_ReusesIdentical(t *testing.T) {
	base, s := newCache(t)
	src := filepath.Join(t.TempDir(), "Renamed.ico")
	writeIcon(t, src, "red")

	path, created, err := s.Import(src)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if created {
		t.Error("Identical icon should not be copied again")
	}
	want := filepath.Join(base, "Work", "Deep", "Red.ico")
	if path != want {
		t.Errorf("Expected %s, got %s", want, path)
	}
}

func TestImport_NameCollision(t *testing.T) {
	base, s := newCache(t)
	src := filepath.Join(t.TempDir(), "Star.ico")
	writeIcon(t, src, "a different star")

	path, created, err := s.Import(src)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if !created {
		t.Fatal("Expected a new file")
	}
	if path != filepath.Join(base, "Star (1).ico") {
		t.Errorf("Expected collision-free name, got %s", path)
	}
	data, _ := os.ReadFile(filepath.Join(base, "Star.ico"))
	if string(data) != "star" {
		t.Error("Existing cache icon was overwritten")
	}
}

func TestImport_RejectsNonIcon(t *testing.T) {
	_, s := newCache(t)
	src := filepath.Join(t.TempDir(), "photo.png")
	writeIcon(t, src, "png")

	if _, _, err := s.Import(src); err == nil {
		t.Error("Import should reject non-.ico files")
	}
}

func TestWatcher_DetectsNewIcon(t *testing.T) {
	base, _ := newCache(t)
	w, err := NewWatcher(base)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Wait(ctx) }()

	time.Sleep(50 * time.Millisecond)
	writeIcon(t, filepath.Join(base, "Work", "New.ico"), "new")

	if err := <-done; err != nil {
		t.Errorf("Expected change notification, got %v", err)
	}
}

func TestWatcher_Cancelled(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Wait(ctx); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
