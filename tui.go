package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dirdirector/internal/applier"
	"dirdirector/internal/iconcache"
	"dirdirector/internal/models"
	"dirdirector/internal/picker"
	"dirdirector/internal/session"
	"dirdirector/internal/ui"
	"dirdirector/internal/ui/components"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelFavorites Panel = iota
	PanelIcons
)

// Model is the picker application model
type Model struct {
	session *session.Session

	// UI Components
	favList   *components.IconList
	iconList  *components.IconList
	spinner   spinner.Model
	help      help.Model
	keys      ui.KeyMap
	search    textinput.Model
	pathInput textinput.Model

	// State
	focusedPanel Panel
	searchMode   bool
	promptMode   bool
	busy         bool
	showHelp     bool
	status       string
	statusType   string
	width        int
	height       int

	watcher     *iconcache.Watcher
	watchCtx    context.Context
	stopWatcher context.CancelFunc

	lastResult *applier.Result
	lastVerb   string
}

type applyDoneMsg struct {
	result applier.Result
	verb   string
	err    error
}

type cacheChangedMsg struct {
	err error
}

// pickedMsg carries the file dialog answer
type pickedMsg struct {
	path string
	err  error
}

// preparedMsg carries an icon converted off the UI goroutine
type preparedMsg struct {
	icon session.PreparedIcon
	err  error
}

// NewModel creates the picker for a session
func NewModel(s *session.Session) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ui.Primary)

	search := textinput.New()
	search.Placeholder = "type letters of a name or group"
	search.Prompt = "/ "
	search.CharLimit = 128
	search.Width = 40

	pathInput := textinput.New()
	pathInput.Placeholder = `C:\Pictures\logo.png`
	pathInput.CharLimit = 1024
	pathInput.Width = 60

	favList := components.NewIconList("Favorites", false)
	favList.Empty = "No favorites"
	iconList := components.NewIconList("Icons", true)
	iconList.Empty = "No icons in " + s.Cache().BaseDir()
	iconList.IsFavorite = s.IsFavorite

	m := &Model{
		session:      s,
		favList:      favList,
		iconList:     iconList,
		spinner:      sp,
		help:         help.New(),
		keys:         ui.DefaultKeyMap(),
		search:       search,
		pathInput:    pathInput,
		focusedPanel: PanelIcons,
		status:       "Ready",
		statusType:   "info",
		width:        80,
		height:       24,
	}
	m.updatePanelSizes()
	m.refreshLists()
	m.setFocus(PanelIcons)

	if len(s.Targets()) == 0 {
		m.setStatus("warning", "No folders selected; start with folder paths as arguments")
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	w, err := iconcache.NewWatcher(m.session.Cache().BaseDir())
	if err != nil {
		debugLog("cache watcher disabled: %v", err)
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.watcher = w
	m.watchCtx = ctx
	m.stopWatcher = cancel
	return m.waitForCache()
}

func (m *Model) waitForCache() tea.Cmd {
	w, ctx := m.watcher, m.watchCtx
	return func() tea.Msg {
		return cacheChangedMsg{err: w.Wait(ctx)}
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.stopWatcher != nil {
		m.stopWatcher()
		m.watcher.Close()
	}
	return m, tea.Quit
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePanelSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case applyDoneMsg:
		return m.handleApplyDone(msg)

	case pickedMsg:
		return m.handlePicked(msg)

	case preparedMsg:
		return m.handlePrepared(msg)

	case cacheChangedMsg:
		if msg.err != nil {
			debugLog("cache watcher stopped: %v", msg.err)
			return m, nil
		}
		m.session.Refresh()
		m.refreshLists()
		m.setStatus("info", fmt.Sprintf("Icon cache changed (%d icons)", models.CountIcons(m.session.Groups(""))))
		return m, m.waitForCache()
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.busy {
		return m, nil
	}
	if m.promptMode {
		return m.handlePromptKeys(msg)
	}
	if m.searchMode {
		return m.handleSearchKeys(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil
	}
	return m.handleMainKeys(msg)
}

func (m *Model) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.activeList()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		list.MoveUp()
	case key.Matches(msg, m.keys.Down):
		list.MoveDown()
	case key.Matches(msg, m.keys.PageUp):
		list.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		list.PageDown()
	case key.Matches(msg, m.keys.Home):
		list.GoToFirst()
	case key.Matches(msg, m.keys.End):
		list.GoToLast()
	case key.Matches(msg, m.keys.Left):
		list.PrevGroup()
	case key.Matches(msg, m.keys.Right):
		list.NextGroup()
	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
		m.togglePanel()
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.setFocus(PanelIcons)
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Escape):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.refreshLists()
			m.setStatus("info", "Search cleared")
		}
	case key.Matches(msg, m.keys.Enter):
		if entry, ok := list.Current(); ok {
			return m.runEntry(entry)
		}
	case key.Matches(msg, m.keys.Revert):
		return m.runEntry(models.RevertEntry())
	case key.Matches(msg, m.keys.Custom):
		return m.runEntry(models.SelectCustomEntry())
	case key.Matches(msg, m.keys.Favorite):
		m.handleFavorite()
	case key.Matches(msg, m.keys.Refresh):
		m.session.Refresh()
		m.refreshLists()
		m.setStatus("info", fmt.Sprintf("Rescanned %d icons", models.CountIcons(m.session.Groups(""))))
	case key.Matches(msg, m.keys.ToggleQueue):
		on := m.session.ToggleQueueMode()
		m.setStatus("info", "Queue mode "+onOff(on))
		m.showWarnings()
	case key.Matches(msg, m.keys.ToggleClose):
		on := m.session.ToggleCloseOnApply()
		m.setStatus("info", "Close on apply "+onOff(on))
		m.showWarnings()
	case key.Matches(msg, m.keys.ToggleSubfolders):
		on := m.session.ToggleApplyToSubfolders()
		m.setStatus("info", "Apply to subfolders "+onOff(on))
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchMode = false
		m.search.Blur()
		m.search.SetValue("")
		m.refreshLists()
		m.setStatus("info", "Search cancelled")
		return m, nil

	case tea.KeyEnter:
		m.searchMode = false
		m.search.Blur()
		if entry, ok := m.iconList.Current(); ok && m.search.Value() != "" && len(m.iconList.Entries) == 1 {
			return m.runEntry(entry)
		}
		return m, nil

	case tea.KeyUp:
		m.iconList.MoveUp()
		return m, nil

	case tea.KeyDown:
		m.iconList.MoveDown()
		return m, nil

	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.refreshLists()
		n := models.CountIcons(m.session.Groups(m.search.Value()))
		m.setStatus("info", fmt.Sprintf("%d icons match '%s'", n, m.search.Value()))
		return m, cmd
	}
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.promptMode = false
		m.pathInput.Blur()
		m.setStatus("info", "Cancelled")
		return m, nil

	case tea.KeyEnter:
		path := strings.Trim(strings.TrimSpace(m.pathInput.Value()), `"`)
		if path == "" {
			return m, nil
		}
		if !picker.Accepts(path) {
			m.setStatus("error", "Not an icon or image: "+path)
			return m, nil
		}
		m.promptMode = false
		m.pathInput.Blur()
		m.pathInput.SetValue("")
		return m.startPrepare(path)

	default:
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}
}

// runEntry applies, reverts or opens the file dialog for an entry.
// Session state only changes here in Update; commands do the blocking
// dialog and conversion work and report back with a message.
func (m *Model) runEntry(entry models.IconEntry) (tea.Model, tea.Cmd) {
	if len(m.session.Targets()) == 0 {
		m.setStatus("warning", "No folders selected")
		return m, nil
	}

	switch entry.Kind {
	case models.KindSelectCustom:
		m.busy = true
		m.setStatus("info", "Choose an icon or image...")
		s := m.session
		pick := func() tea.Msg {
			path, err := s.PickFile()
			return pickedMsg{path: path, err: err}
		}
		return m, tea.Batch(m.spinner.Tick, pick)
	case models.KindRevert:
		return m.handleApplyDone(applyDoneMsg{result: m.session.Revert(), verb: "Reverted"})
	default:
		result, err := m.session.Apply(entry)
		return m.handleApplyDone(applyDoneMsg{result: result, verb: "Applied " + entry.Name + " to", err: err})
	}
}

func (m *Model) handlePicked(msg pickedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	switch {
	case errors.Is(msg.err, picker.ErrUnsupported):
		m.promptMode = true
		m.setStatus("info", "Enter the path of an icon or image")
		return m, m.pathInput.Focus()
	case errors.Is(msg.err, picker.ErrCancelled):
		m.setStatus("info", "Cancelled")
		return m, nil
	case msg.err != nil:
		m.setStatus("error", msg.err.Error())
		return m, nil
	}
	return m.startPrepare(msg.path)
}

// startPrepare converts path to an icon on a command goroutine
func (m *Model) startPrepare(path string) (tea.Model, tea.Cmd) {
	m.busy = true
	m.setStatus("info", "Working...")
	s := m.session
	prepare := func() tea.Msg {
		icon, err := s.Prepare(path)
		return preparedMsg{icon: icon, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, prepare)
}

func (m *Model) handlePrepared(msg preparedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m.handleApplyDone(applyDoneMsg{err: msg.err})
	}
	defer msg.icon.Close()

	result, err := m.session.ApplyPrepared(msg.icon)
	verb := "Applied " + models.DisplayName(msg.icon.Source) + " to"
	return m.handleApplyDone(applyDoneMsg{result: result, verb: verb, err: err})
}

func (m *Model) handleApplyDone(msg applyDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		m.setStatus("error", msg.err.Error())
		return m, nil
	}

	result := msg.result
	m.lastResult = &result
	m.lastVerb = msg.verb
	m.refreshLists()
	m.showResult(msg.verb, result)
	m.showWarnings()

	if m.session.Done() {
		return m.quit()
	}
	return m, nil
}

func (m *Model) showResult(verb string, result applier.Result) {
	switch {
	case len(result.Processed) == 0 && len(result.Failures) == 0:
		m.setStatus("info", "Nothing to do")
	case len(result.Failures) > 0:
		first := result.Failures[0]
		text := fmt.Sprintf("%d of %d folders failed; %s: %v",
			len(result.Failures), len(result.Failures)+len(result.Processed), first.Folder, first.Err)
		m.setStatus("error", text)
	case len(result.Processed) == 1:
		m.setStatus("success", fmt.Sprintf("%s %s", verb, result.Processed[0]))
	default:
		m.setStatus("success", fmt.Sprintf("%s %d folders", verb, len(result.Processed)))
	}
}

func (m *Model) handleFavorite() {
	entry, ok := m.activeList().Current()
	if !ok || entry.IsAction() {
		return
	}
	on, err := m.session.ToggleFavorite(entry)
	if err != nil {
		m.setStatus("error", err.Error())
		return
	}
	m.refreshLists()
	if on {
		m.setStatus("success", entry.Name+" added to favorites")
	} else {
		m.setStatus("info", entry.Name+" removed from favorites")
	}
	m.showWarnings()
}

func (m *Model) showWarnings() {
	if w := m.session.Warnings(); len(w) > 0 {
		m.setStatus("warning", w[len(w)-1])
	}
}

func (m *Model) setStatus(kind, text string) {
	m.statusType = kind
	m.status = text
}

func (m *Model) activeList() *components.IconList {
	if m.focusedPanel == PanelFavorites {
		return m.favList
	}
	return m.iconList
}

func (m *Model) togglePanel() {
	if m.focusedPanel == PanelFavorites {
		m.setFocus(PanelIcons)
	} else {
		m.setFocus(PanelFavorites)
	}
}

func (m *Model) setFocus(p Panel) {
	m.focusedPanel = p
	m.favList.Focused = p == PanelFavorites
	m.iconList.Focused = p == PanelIcons
}

// refreshLists reloads both panels, keeping the cursor on the same icon
func (m *Model) refreshLists() {
	favCur, _ := m.favList.Current()
	iconCur, _ := m.iconList.Current()

	m.favList.SetEntries(m.session.Favorites())
	m.iconList.SetGroups(m.session.Groups(m.search.Value()))

	if favCur.Path != "" {
		m.favList.Select(favCur.Path)
	}
	if iconCur.Path != "" {
		m.iconList.Select(iconCur.Path)
	}
}

func (m *Model) updatePanelSizes() {
	// Header, toggles, search, status and help lines
	panelHeight := max(5, m.height-9)
	favWidth := max(20, m.width/3)
	iconWidth := max(30, m.width-favWidth-6)

	m.favList.Width = favWidth
	m.favList.Height = panelHeight
	m.iconList.Width = iconWidth
	m.iconList.Height = panelHeight
	m.help.Width = m.width
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(ui.HeaderStyle.Render(ui.RenderTitle(m.session.Title())))
	b.WriteString("\n")
	b.WriteString(m.renderToggles())
	b.WriteString("\n")

	if m.searchMode || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	switch {
	case m.promptMode:
		prompt := ui.PanelTitleStyle.Render("Icon or image path") + "\n\n" + m.pathInput.View() +
			"\n\n" + ui.MutedStyle.Render("enter apply • esc cancel")
		b.WriteString(ui.DialogStyle.Render(prompt))
	case m.showHelp:
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.favList.View(), " ", m.iconList.View()))
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(ui.HelpBarStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return ui.AppStyle.Render(b.String())
}

func (m *Model) renderToggles() string {
	parts := []string{
		ui.RenderToggle("Queue", m.session.QueueMode()),
		ui.RenderToggle("Close on apply", m.session.CloseOnApply()),
		ui.RenderToggle("Subfolders", m.session.ApplyToSubfolders()),
	}
	return ui.ItemStyle.Render(strings.Join(parts, "   "))
}

func (m *Model) renderStatusBar() string {
	if m.busy {
		return ui.StatusBarStyle.Render(m.spinner.View() + " " + m.status)
	}
	return ui.StatusBarStyle.Render(ui.RenderNotification(m.statusType, m.status))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
