package models

import (
	"os"
	"path/filepath"
	"testing"
)

// ============ IconEntry Tests ============

func TestNewIconEntry(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "Folder Blue.ico")
	if err := os.WriteFile(path, []byte("ico"), 0644); err != nil {
		t.Fatalf("Failed to create icon: %v", err)
	}

	entry, err := NewIconEntry("Work", path)
	if err != nil {
		t.Fatalf("NewIconEntry failed: %v", err)
	}
	if entry.Name != "Folder Blue" {
		t.Errorf("Expected name 'Folder Blue', got %s", entry.Name)
	}
	if entry.Group != "Work" {
		t.Errorf("Expected group 'Work', got %s", entry.Group)
	}
	if entry.Path != path {
		t.Errorf("Expected path %s, got %s", path, entry.Path)
	}
	if entry.IsAction() {
		t.Error("A real icon is not an action")
	}
}

func TestNewIconEntry_DefaultGroup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ico")
	os.WriteFile(path, []byte("ico"), 0644)

	entry, err := NewIconEntry("", path)
	if err != nil {
		t.Fatalf("NewIconEntry failed: %v", err)
	}
	if entry.Group != DefaultGroup {
		t.Errorf("Expected group %s, got %s", DefaultGroup, entry.Group)
	}
}

func TestNewIconEntry_Errors(t *testing.T) {
	tempDir := t.TempDir()

	if _, err := NewIconEntry("", filepath.Join(tempDir, "missing.ico")); err == nil {
		t.Error("Expected error for a missing file")
	}
	if _, err := NewIconEntry("", tempDir); err == nil {
		t.Error("Expected error for a directory")
	}
}

func TestActionEntries(t *testing.T) {
	sel := SelectCustomEntry()
	rev := RevertEntry()

	if !sel.IsAction() || !rev.IsAction() {
		t.Error("Select and Revert should be actions")
	}
	if sel.Kind != KindSelectCustom || rev.Kind != KindRevert {
		t.Errorf("Unexpected kinds: %v, %v", sel.Kind, rev.Kind)
	}
	if sel.Path != "" || rev.Path != "" {
		t.Error("Actions should have no path")
	}
	if sel.Group != ActionGroup {
		t.Errorf("Expected group %s, got %s", ActionGroup, sel.Group)
	}
}

func TestIconKindString(t *testing.T) {
	tests := []struct {
		kind     IconKind
		expected string
	}{
		{KindIcon, "icon"},
		{KindSelectCustom, "select"},
		{KindRevert, "revert"},
		{IconKind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, got)
		}
	}
}

func TestIsIconFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"a.ico", true},
		{"A.ICO", true},
		{"dir/b.Ico", true},
		{"a.png", false},
		{"ico", false},
		{"a.ico.bak", false},
	}

	for _, tt := range tests {
		if got := IsIconFile(tt.path); got != tt.expected {
			t.Errorf("IsIconFile(%q): expected %v, got %v", tt.path, tt.expected, got)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName(filepath.Join("x", "y", "Drive.ico")); got != "Drive" {
		t.Errorf("Expected 'Drive', got %s", got)
	}
	if got := DisplayName("archive.tar.ico"); got != "archive.tar" {
		t.Errorf("Expected 'archive.tar', got %s", got)
	}
}

// ============ IconGroup Tests ============

func TestCloneGroups(t *testing.T) {
	groups := []IconGroup{
		{Name: "Default", Icons: []IconEntry{{Name: "a"}, {Name: "b"}}},
		{Name: "Work", Icons: []IconEntry{{Name: "c"}}},
	}

	clone := CloneGroups(groups)
	clone[0].Icons[0].Name = "changed"

	if groups[0].Icons[0].Name != "a" {
		t.Error("Clone should not share icon slices")
	}
	if CountIcons(clone) != 3 {
		t.Errorf("Expected 3 icons, got %d", CountIcons(clone))
	}
	if CountIcons(nil) != 0 {
		t.Error("Expected 0 icons for nil groups")
	}
}

// ============ TargetFolderSet Tests ============

func TestTargetFolderSet_Replace(t *testing.T) {
	a := filepath.Join("root", "a")
	b := filepath.Join("root", "b")
	s := NewTargetFolderSet(a, "  ", b, a+string(filepath.Separator), "")

	got := s.Folders()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("Expected [%s %s], got %v", a, b, got)
	}
	if s.Len() != 2 || s.IsEmpty() {
		t.Errorf("Expected 2 folders, got %d", s.Len())
	}

	s.Replace()
	if !s.IsEmpty() {
		t.Error("Expected an empty set after Replace()")
	}
}

func TestTargetFolderSet_FirstAndRemove(t *testing.T) {
	s := NewTargetFolderSet("x", "y", "z")

	first, ok := s.First()
	if !ok || first != "x" {
		t.Errorf("Expected x first, got %s", first)
	}

	if !s.Remove("y") {
		t.Error("Expected y to be removed")
	}
	if s.Remove("y") {
		t.Error("y should already be gone")
	}
	if s.Contains("y") || !s.Contains("z") {
		t.Errorf("Unexpected contents: %v", s.Folders())
	}

	s.Remove("x")
	s.Remove("z")
	if _, ok := s.First(); ok {
		t.Error("Expected no head in an empty set")
	}
}

func TestTargetFolderSet_FoldersIsCopy(t *testing.T) {
	s := NewTargetFolderSet("x", "y")
	f := s.Folders()
	f[0] = "changed"

	if first, _ := s.First(); first != "x" {
		t.Errorf("Folders should return a copy, head is now %s", first)
	}
}

func TestTargetFolderSet_RemoveKeepsOrder(t *testing.T) {
	s := NewTargetFolderSet("a", "b", "c", "d")
	before := s.Folders()
	s.Remove("b")

	got := s.Folders()
	want := []string{"a", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
	if before[1] != "b" {
		t.Error("Remove should not mutate an earlier Folders() copy")
	}
}
