package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dirdirector/internal/applier"
	"dirdirector/internal/config"
	"dirdirector/internal/models"
	"dirdirector/internal/picker"
	"dirdirector/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type stubPicker struct {
	path string
	err  error
}

func (p stubPicker) Pick() (string, error) {
	return p.path, p.err
}

func newTestModel(t *testing.T, folders ...string) (*Model, *session.Session) {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.IconSize = 32

	os.MkdirAll(filepath.Join(cfg.CacheDir, "Work"), 0755)
	os.WriteFile(filepath.Join(cfg.CacheDir, "Star.ico"), []byte("star"), 0644)
	os.WriteFile(filepath.Join(cfg.CacheDir, "Work", "Silver.ico"), []byte("silver"), 0644)

	s := session.NewWithBackend(cfg, "v0.1", applier.NewINIBackend())
	var targets []string
	root := t.TempDir()
	for _, f := range folders {
		p := filepath.Join(root, f)
		os.MkdirAll(p, 0755)
		targets = append(targets, p)
	}
	s.SelectFolders(targets...)
	return NewModel(s), s
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runWhileRendering runs cmd on its own goroutine, expanding batches, while
// the caller's goroutine keeps rendering the model. It returns every
// message the command produced.
func runWhileRendering(t *testing.T, m *Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("Expected a command, got nil")
	}

	done := make(chan []tea.Msg)
	go func() {
		var msgs []tea.Msg
		var run func(tea.Cmd)
		run = func(c tea.Cmd) {
			if c == nil {
				return
			}
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, inner := range batch {
					run(inner)
				}
				return
			}
			msgs = append(msgs, msg)
		}
		run(cmd)
		done <- msgs
	}()

	for i := 0; ; i++ {
		select {
		case msgs := <-done:
			for ; i < 50; i++ {
				m.View()
			}
			return msgs
		default:
			m.View()
		}
	}
}

func pickedFrom(t *testing.T, msgs []tea.Msg) pickedMsg {
	t.Helper()
	for _, msg := range msgs {
		if p, ok := msg.(pickedMsg); ok {
			return p
		}
	}
	t.Fatalf("No dialog answer in %v", msgs)
	return pickedMsg{}
}

func preparedFrom(t *testing.T, msgs []tea.Msg) preparedMsg {
	t.Helper()
	for _, msg := range msgs {
		if p, ok := msg.(preparedMsg); ok {
			return p
		}
	}
	t.Fatalf("No prepared icon in %v", msgs)
	return preparedMsg{}
}

func writePNG(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 24, 12))); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return path
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func countMarkers(t *testing.T, folder string) int {
	t.Helper()
	markers, err := applier.Markers(folder)
	if err != nil {
		t.Fatalf("Markers failed: %v", err)
	}
	return len(markers)
}

func selectIcon(t *testing.T, m *Model, name string) {
	t.Helper()
	for _, e := range m.iconList.Entries {
		if e.Name == name {
			m.iconList.Select(e.Path)
			return
		}
	}
	t.Fatalf("Icon %s not listed", name)
}

func TestNewModel_NoFolders(t *testing.T) {
	m, _ := newTestModel(t)

	if m.statusType != "warning" {
		t.Errorf("Expected a warning without folders, got %s: %s", m.statusType, m.status)
	}
	if len(m.favList.Entries) != 2 {
		t.Errorf("Expected the two actions in favorites, got %d", len(m.favList.Entries))
	}
	if len(m.iconList.Entries) != 2 {
		t.Errorf("Expected 2 icons, got %d", len(m.iconList.Entries))
	}
	if m.focusedPanel != PanelIcons {
		t.Error("Icons panel should start focused")
	}
}

func TestModel_EnterAppliesIcon(t *testing.T) {
	m, s := newTestModel(t, "a", "b")
	selectIcon(t, m, "Star")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.busy {
		t.Error("Applying a cached icon should finish inside Update")
	}
	if m.statusType != "success" {
		t.Errorf("Expected success, got %s: %s", m.statusType, m.status)
	}
	if m.lastResult == nil || len(m.lastResult.Processed) != 2 {
		t.Errorf("Expected 2 processed folders, got %+v", m.lastResult)
	}
	for _, f := range s.Targets() {
		if _, err := os.Stat(filepath.Join(f, "desktop.ini")); err != nil {
			t.Errorf("Expected desktop.ini in %s: %v", f, err)
		}
	}
}

func TestModel_RevertKey(t *testing.T) {
	m, _ := newTestModel(t, "a")
	selectIcon(t, m, "Star")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(runes("r"))
	if m.lastVerb != "Reverted" || m.statusType != "success" {
		t.Errorf("Expected a successful revert, got %s: %s", m.lastVerb, m.status)
	}
}

func TestModel_EnterWithoutFolders(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("Nothing should run without folders")
	}
	if m.busy {
		t.Error("Model should not be busy")
	}
}

func TestModel_CloseOnApplyQuits(t *testing.T) {
	m, s := newTestModel(t, "a")
	s.OverrideCloseOnApply(true)
	selectIcon(t, m, "Star")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !isQuit(cmd) {
		t.Error("Expected the program to quit after applying")
	}
}

func TestModel_QueueConsumesHead(t *testing.T) {
	m, s := newTestModel(t, "a", "b")
	s.OverrideQueueMode(true)
	selectIcon(t, m, "Star")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if isQuit(cmd) {
		t.Error("Queue with folders left should not quit")
	}
	if len(s.Targets()) != 1 || filepath.Base(s.Targets()[0]) != "b" {
		t.Errorf("Expected b left in the queue, got %v", s.Targets())
	}
	if !strings.Contains(m.session.Title().String(), "Next in queue: b") {
		t.Errorf("Title should show the next folder, got %q", m.session.Title().String())
	}
}

func TestModel_CustomImageWhileRendering(t *testing.T) {
	m, s := newTestModel(t, "a", "b", "c")
	s.OverrideQueueMode(true)
	src := writePNG(t, "logo.png")
	s.SetPicker(stubPicker{path: src})

	_, cmd := m.runEntry(models.SelectCustomEntry())
	if !m.busy {
		t.Error("Model should be busy while the dialog is open")
	}
	if len(s.Targets()) != 3 {
		t.Fatalf("Nothing may change before the answer arrives, got %v", s.Targets())
	}

	_, cmd = m.Update(pickedFrom(t, runWhileRendering(t, m, cmd)))
	if !m.busy {
		t.Error("Model should be busy while converting")
	}
	if len(s.Targets()) != 3 {
		t.Fatalf("Nothing may change while converting, got %v", s.Targets())
	}

	prepared := preparedFrom(t, runWhileRendering(t, m, cmd))
	if prepared.err != nil {
		t.Fatalf("Prepare failed: %v", prepared.err)
	}
	m.Update(prepared)

	if m.busy || m.statusType != "success" {
		t.Errorf("Expected success, got %s: %s", m.statusType, m.status)
	}
	if len(s.Targets()) != 2 {
		t.Errorf("Expected the queue head consumed, got %v", s.Targets())
	}
	if _, ok := s.Cache().Lookup(filepath.Join(s.Cache().BaseDir(), "logo.ico")); !ok {
		t.Error("Converted icon should be in the cache")
	}
	if _, err := os.Stat(filepath.Dir(prepared.icon.Path)); !os.IsNotExist(err) {
		t.Errorf("Temporary conversion dir should be removed, got %v", err)
	}
}

func TestModel_CustomCancelled(t *testing.T) {
	m, s := newTestModel(t, "a")
	s.SetPicker(stubPicker{err: picker.ErrCancelled})

	_, cmd := m.runEntry(models.SelectCustomEntry())
	_, cmd = m.Update(pickedFrom(t, runWhileRendering(t, m, cmd)))

	if cmd != nil || m.busy {
		t.Error("Cancelling should end the action")
	}
	if m.lastResult != nil {
		t.Error("Nothing should be applied")
	}
}

func TestModel_CustomBadImage(t *testing.T) {
	m, s := newTestModel(t, "a")
	bad := filepath.Join(t.TempDir(), "broken.png")
	os.WriteFile(bad, []byte("nope"), 0644)
	s.SetPicker(stubPicker{path: bad})

	_, cmd := m.runEntry(models.SelectCustomEntry())
	_, cmd = m.Update(pickedFrom(t, runWhileRendering(t, m, cmd)))
	m.Update(preparedFrom(t, runWhileRendering(t, m, cmd)))

	if m.statusType != "error" || m.busy {
		t.Errorf("Expected an error status, got %s: %s", m.statusType, m.status)
	}
	if markers := countMarkers(t, s.Targets()[0]); markers != 0 {
		t.Errorf("No icon should be applied, got %d markers", markers)
	}
}

func TestModel_ToggleFavorite(t *testing.T) {
	m, s := newTestModel(t)
	selectIcon(t, m, "Silver")

	m.Update(runes("f"))

	if len(m.favList.Entries) != 3 {
		t.Fatalf("Expected Silver in favorites, got %d entries", len(m.favList.Entries))
	}
	if len(m.iconList.Entries) != 1 {
		t.Errorf("Favorite should leave the icon list, got %d", len(m.iconList.Entries))
	}
	if got := s.Settings().FavoriteFolders(); len(got) != 1 || got[0] != "Work/Silver.ico" {
		t.Errorf("Expected saved favorite Work/Silver.ico, got %v", got)
	}

	// Toggle back from the favorites panel
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.favList.Select(m.favList.Entries[2].Path)
	m.Update(runes("f"))
	if len(m.favList.Entries) != 2 {
		t.Errorf("Expected Silver removed from favorites, got %d entries", len(m.favList.Entries))
	}
}

func TestModel_FavoriteIgnoresActions(t *testing.T) {
	m, _ := newTestModel(t)
	m.setFocus(PanelFavorites)
	m.favList.GoToFirst()

	m.Update(runes("f"))
	if len(m.favList.Entries) != 2 {
		t.Errorf("Actions cannot be favorites, got %d entries", len(m.favList.Entries))
	}
}

func TestModel_Search(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(runes("/"))
	if !m.searchMode {
		t.Fatal("Expected search mode")
	}
	for _, r := range "slv" {
		m.Update(runes(string(r)))
	}
	if len(m.iconList.Entries) != 1 || m.iconList.Entries[0].Name != "Silver" {
		t.Errorf("Expected only Silver for 'slv', got %v", m.iconList.Entries)
	}

	// Group names match too
	m.search.SetValue("wrk")
	m.refreshLists()
	if len(m.iconList.Entries) != 1 {
		t.Errorf("Expected the Work group to match 'wrk', got %d", len(m.iconList.Entries))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.searchMode || len(m.iconList.Entries) != 2 {
		t.Errorf("Esc should clear the search, got %d entries", len(m.iconList.Entries))
	}
}

func TestModel_PromptWhenPickerUnsupported(t *testing.T) {
	m, s := newTestModel(t, "a")
	s.SetPicker(stubPicker{err: picker.ErrUnsupported})

	_, cmd := m.runEntry(models.SelectCustomEntry())
	m.Update(pickedFrom(t, runWhileRendering(t, m, cmd)))
	if !m.promptMode {
		t.Fatal("Expected the path prompt")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.promptMode {
		t.Error("Esc should close the prompt")
	}
}

func TestModel_PromptAppliesTypedPath(t *testing.T) {
	m, s := newTestModel(t, "a")
	m.promptMode = true
	m.pathInput.SetValue(`"` + writePNG(t, "typed.png") + `"`)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.promptMode {
		t.Error("Prompt should close on enter")
	}
	m.Update(preparedFrom(t, runWhileRendering(t, m, cmd)))

	if m.statusType != "success" {
		t.Errorf("Expected success, got %s: %s", m.statusType, m.status)
	}
	if markers := countMarkers(t, s.Targets()[0]); markers != 1 {
		t.Errorf("Expected 1 marker, got %d", markers)
	}
}

func TestModel_PromptRejectsNonImages(t *testing.T) {
	m, _ := newTestModel(t, "a")
	m.promptMode = true
	m.pathInput.SetValue("notes.txt")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("Nothing should run for a non-image path")
	}
	if !m.promptMode || m.statusType != "error" {
		t.Errorf("Expected an error and the prompt kept open, got %s", m.statusType)
	}
}

func TestModel_Toggles(t *testing.T) {
	m, s := newTestModel(t)

	m.Update(runes("Q"))
	if !s.QueueMode() {
		t.Error("Q should turn queue mode on")
	}
	m.Update(runes("C"))
	if !s.CloseOnApply() {
		t.Error("C should turn close on apply on")
	}
	m.Update(runes("S"))
	if !s.ApplyToSubfolders() {
		t.Error("S should turn subfolders on")
	}
	if !s.Settings().QueueFolders() || !s.Settings().CloseOnApply() {
		t.Error("Queue and close toggles should be saved")
	}
}

func TestModel_ApplyErrorShown(t *testing.T) {
	m, _ := newTestModel(t, "a")
	m.busy = true

	m.Update(applyDoneMsg{err: os.ErrNotExist})
	if m.busy || m.statusType != "error" {
		t.Errorf("Expected an error status, got %s", m.statusType)
	}
	if m.lastResult != nil {
		t.Error("Errors should not record a result")
	}
}

func TestModel_FailuresReported(t *testing.T) {
	m, _ := newTestModel(t, "a")
	result := applier.Result{
		Processed: []string{"/x"},
		Failures:  []applier.Failure{{Folder: "/y", Err: os.ErrPermission}},
	}

	m.Update(applyDoneMsg{result: result, verb: "Applied to"})
	if m.statusType != "error" || !strings.Contains(m.status, "1 of 2") {
		t.Errorf("Expected the failure count, got %s: %s", m.statusType, m.status)
	}
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t, "a")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	for _, want := range []string{"Directory Director", "Favorites", "Icons", "Star", "Queue"} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q", want)
		}
	}

	m.Update(runes("?"))
	if !m.showHelp {
		t.Error("Expected help to open")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.showHelp {
		t.Error("Esc should close help")
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(runes("q"))
	if !isQuit(cmd) {
		t.Error("q should quit")
	}
}
