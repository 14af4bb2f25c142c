package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/droidheat/amoled/internal/catalog"
	"github.com/droidheat/amoled/internal/daily"
	"github.com/droidheat/amoled/internal/feed"
	"github.com/droidheat/amoled/internal/logtail"
	"github.com/droidheat/amoled/internal/prefs"
	"github.com/droidheat/amoled/internal/screen"
	"github.com/droidheat/amoled/internal/state"
	"github.com/droidheat/amoled/internal/wallpaper"
)

// pane is the active view.
type pane int

const (
	paneExplore pane = iota
	paneDownloaded
	paneLogs
)

func (p pane) String() string {
	switch p {
	case paneDownloaded:
		return "Downloaded"
	case paneLogs:
		return "Logs"
	default:
		return "Explore"
	}
}

const (
	logTailLines = 500
	// Explore loads the next page once the selection is this close to the end.
	prefetchMargin = 3
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Screen    *screen.Screen
	Catalog   *catalog.Store
	Feed      feed.Source
	Listing   *state.Store
	Daily     DailyScheduler
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	screen    *screen.Screen
	catalog   *catalog.Store
	feed      feed.Source
	listing   *state.Store
	daily     DailyScheduler
	prefs     prefs.Prefs
	prefsPath string
	logPath   string
	keys      keyMap

	// UI state
	theme    Theme
	pane     pane
	lastList pane
	width    int
	height   int
	ready    bool
	showHelp bool

	// Lists
	sort     feed.Sort
	order    catalog.Order
	explore  state.Listing
	entries  []catalog.Entry
	selected [2]int

	// Detail
	subjectID string
	view      screen.State
	notice    string

	dailyStatus daily.Status

	// Widgets
	help     help.Model
	progress progress.Model
	spinner  spinner.Model
	spinning bool

	searching bool
	search    textinput.Model

	logViewport viewport.Model
	logTail     logtail.Tail
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	listing := opts.Listing
	if listing == nil {
		listing = &state.Store{}
	}

	userPrefs := opts.Prefs
	if userPrefs == (prefs.Prefs{}) {
		userPrefs = prefs.Default()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "Search wallpapers..."
	ti.CharLimit = 100

	m := Model{
		ctx:       ctx,
		screen:    opts.Screen,
		catalog:   opts.Catalog,
		feed:      opts.Feed,
		listing:   listing,
		daily:     opts.Daily,
		prefs:     userPrefs,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(userPrefs.Theme),
		pane:      paneExplore,
		lastList:  paneExplore,
		sort:      feed.ParseSort(userPrefs.Sort),
		order:     catalog.ParseOrder(userPrefs.DownloadedOrder),
		help:      help.New(),
		progress:  progress.New(progress.WithDefaultGradient()),
		spinner:   sp,
		// Init starts the first tick chain.
		spinning: true,
		search:   ti,
	}
	m.listing.Reset(m.sort, "")
	m.explore = m.listing.Snapshot()
	m.refreshEntries()
	if m.daily != nil {
		m.dailyStatus = m.daily.Status()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.loadPage(),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(m.width, m.bodyHeight())
		}
		m.ready = true
		m.layout()
		return m, nil

	case pageMsg:
		if m.listing.Update(msg.req, msg.page, msg.err) && msg.err != nil {
			log.Printf("feed: load page failed: %v", msg.err)
		}
		m.explore = m.listing.Snapshot()
		m.clampSelection(paneExplore)
		m.syncSubject()
		return m, nil

	case screenMsg:
		if m.screen != nil {
			m.view = m.screen.State()
		}
		return m, m.ensureSpinner()

	case catalogMsg:
		m.refreshEntries()
		if m.pane == paneDownloaded {
			m.syncSubject()
		}
		return m, nil

	case actionMsg:
		m.handleAction(msg)
		return m, m.ensureSpinner()

	case dailyMsg:
		m.handleDaily()
		return m, nil

	case logsMsg:
		if msg.err != nil {
			log.Printf("ui: read log failed: %v", msg.err)
			m.notice = "log: " + msg.err.Error()
			return m, nil
		}
		m.logTail = msg.tail
		m.updateLogViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.needsSpinner() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		next := paneDownloaded
		switch m.pane {
		case paneDownloaded:
			next = paneExplore
		case paneLogs:
			next = m.lastList
		}
		m.setPane(next)
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.setPane(paneLogs)
		return m, m.readLogs()

	case key.Matches(msg, m.keys.ToggleDaily):
		set := m.prefs.Daily()
		set.Enabled = !set.Enabled
		m.configureDaily(set)
		return m, nil

	case key.Matches(msg, m.keys.DailyMode):
		set := m.prefs.Daily()
		set.Mode = set.Mode.Next()
		m.configureDaily(set)
		return m, nil

	case key.Matches(msg, m.keys.DailySort):
		set := m.prefs.Daily()
		set.Sort = set.Sort.Next()
		m.configureDaily(set)
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.pane == paneLogs {
			m.setPane(m.lastList)
			return m, nil
		}
		if m.pane == paneExplore && m.explore.Searching() {
			return m, m.resetExplore("")
		}
		m.notice = ""
		return m, nil
	}

	if m.pane == paneLogs {
		return m.handleLogsKey(msg)
	}
	return m.handleListKey(msg)
}

// handleListKey processes keys for the Explore and Downloaded lists.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Prev):
		return m, m.move(-1)
	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Next):
		return m, m.move(1)
	case key.Matches(msg, m.keys.Top):
		return m, m.moveTo(0)
	case key.Matches(msg, m.keys.Bottom):
		return m, m.moveTo(m.count() - 1)

	case key.Matches(msg, m.keys.Download):
		return m, m.runAction(actionDownload)
	case key.Matches(msg, m.keys.Apply):
		return m, m.runAction(actionApply)
	case key.Matches(msg, m.keys.Remove):
		return m, m.runAction(actionRemove)

	case key.Matches(msg, m.keys.MorePage):
		if m.pane == paneExplore {
			return m, m.fetchMore()
		}
	case key.Matches(msg, m.keys.Reload):
		if m.pane == paneExplore {
			return m, m.resetExplore(m.explore.Query)
		}
		m.refreshEntries()
		m.syncSubject()
	case key.Matches(msg, m.keys.CycleSort):
		if m.pane == paneExplore {
			m.sort = m.sort.Next()
			m.prefs.Sort = m.sort.String()
			m.savePrefs()
			return m, m.resetExplore("")
		}
	case key.Matches(msg, m.keys.ToggleOrder):
		if m.order == catalog.OldestFirst {
			m.order = catalog.NewestFirst
		} else {
			m.order = catalog.OldestFirst
		}
		m.prefs.DownloadedOrder = m.order.String()
		m.savePrefs()
		m.refreshEntries()
		if m.pane == paneDownloaded {
			m.syncSubject()
		}
	case key.Matches(msg, m.keys.Search):
		if m.pane != paneExplore {
			m.setPane(paneExplore)
		}
		m.searching = true
		m.search.SetValue(m.explore.Query)
		m.search.CursorEnd()
		return m, m.search.Focus()
	}

	return m, nil
}

// handleSearchKey feeds keys to the search input until it is confirmed or
// dismissed.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, m.resetExplore(m.search.Value())
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// handleLogsKey scrolls the log viewport.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Reload):
		return m, m.readLogs()
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// setPane switches the active view and mounts the selection of a list.
func (m *Model) setPane(p pane) {
	if p == m.pane {
		return
	}
	m.pane = p
	if p != paneLogs {
		m.lastList = p
		m.syncSubject()
	}
}

// count returns the number of rows in the active list.
func (m *Model) count() int {
	switch m.pane {
	case paneExplore:
		return len(m.explore.Records)
	case paneDownloaded:
		return len(m.entries)
	default:
		return 0
	}
}

func (m *Model) move(delta int) tea.Cmd {
	if m.pane == paneLogs {
		return nil
	}
	return m.moveTo(m.selected[m.pane] + delta)
}

// moveTo selects row i of the active list, mounts it and, near the end of
// Explore, asks for the next page.
func (m *Model) moveTo(i int) tea.Cmd {
	n := m.count()
	if n == 0 || m.pane == paneLogs {
		return nil
	}
	m.selected[m.pane] = max(0, min(i, n-1))
	m.syncSubject()
	if m.pane == paneExplore && m.selected[paneExplore] >= n-prefetchMargin {
		return m.fetchMore()
	}
	return nil
}

func (m *Model) clampSelection(p pane) {
	n := len(m.explore.Records)
	if p == paneDownloaded {
		n = len(m.entries)
	}
	if m.selected[p] >= n {
		m.selected[p] = max(0, n-1)
	}
}

// currentRecord returns the wallpaper selected in the active list.
func (m *Model) currentRecord() (wallpaper.Record, bool) {
	switch m.pane {
	case paneExplore:
		if i := m.selected[paneExplore]; i < len(m.explore.Records) {
			return m.explore.Records[i], true
		}
	case paneDownloaded:
		if i := m.selected[paneDownloaded]; i < len(m.entries) {
			return recordFromEntry(m.entries[i]), true
		}
	}
	return wallpaper.Record{}, false
}

// syncSubject points the screen at the current selection.
func (m *Model) syncSubject() {
	if m.screen == nil {
		return
	}
	rec, ok := m.currentRecord()
	if !ok || rec.ID == m.subjectID {
		return
	}
	m.subjectID = rec.ID
	m.notice = ""
	m.view = m.screen.Switch(rec)
}

// refreshEntries reloads the Downloaded list, keeping the selection on the
// same entry when it still exists.
func (m *Model) refreshEntries() {
	var selectedID string
	if i := m.selected[paneDownloaded]; i < len(m.entries) {
		selectedID = m.entries[i].ID
	}

	if m.catalog == nil {
		m.entries = nil
		return
	}
	m.entries = m.catalog.List(m.order)

	if selectedID != "" {
		for i, e := range m.entries {
			if e.ID == selectedID {
				m.selected[paneDownloaded] = i
				return
			}
		}
	}
	m.clampSelection(paneDownloaded)
}

// resetExplore starts the Explore listing over for the current sort, or for
// query when it is not blank.
func (m *Model) resetExplore(query string) tea.Cmd {
	m.listing.Reset(m.sort, query)
	m.explore = m.listing.Snapshot()
	m.selected[paneExplore] = 0
	return m.fetchMore()
}

// fetchMore requests the next Explore page.
func (m *Model) fetchMore() tea.Cmd {
	cmd := m.loadPage()
	if cmd == nil {
		return nil
	}
	m.explore = m.listing.Snapshot()
	return tea.Batch(cmd, m.ensureSpinner())
}

func (m Model) loadPage() tea.Cmd {
	req, ok := m.listing.Begin()
	if !ok {
		return nil
	}
	ctx, src := m.ctx, m.feed
	return func() tea.Msg {
		page, err := state.Fetch(ctx, src, req)
		return pageMsg{req: req, page: page, err: err}
	}
}

func (m Model) readLogs() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		tail, err := logtail.Read(path, logTailLines)
		return logsMsg{tail: tail, err: err}
	}
}

// runAction performs a on the mounted wallpaper off the update loop.
func (m *Model) runAction(a action) tea.Cmd {
	if m.screen == nil {
		return nil
	}
	if _, ok := m.currentRecord(); !ok {
		return nil
	}
	m.syncSubject()
	m.notice = ""
	scr, ctx := m.screen, m.ctx
	return func() tea.Msg {
		var err error
		switch a {
		case actionDownload:
			err = scr.Download(ctx)
		case actionApply:
			err = scr.Apply(ctx)
		case actionRemove:
			err = scr.Remove(ctx)
		}
		return actionMsg{action: a, err: err}
	}
}

func (m *Model) handleAction(msg actionMsg) {
	if m.screen != nil {
		m.view = m.screen.State()
	}
	if msg.err == nil {
		if msg.action == actionRemove {
			m.notice = "Deleted"
		}
		return
	}
	m.notice = fmt.Sprintf("%s: %s", msg.action, describeError(msg.err))
	if !errors.Is(msg.err, screen.ErrNotReady) && !errors.Is(msg.err, screen.ErrNoSubject) {
		log.Printf("ui: %s failed: %v", msg.action, msg.err)
	}
}

func (m *Model) needsSpinner() bool {
	return m.view.Kind == screen.Applying || m.explore.Loading
}

// ensureSpinner starts the spinner tick chain when something is in progress
// and no chain is running.
func (m *Model) ensureSpinner() tea.Cmd {
	if m.spinning || !m.needsSpinner() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		log.Printf("prefs: save failed: %v", err)
	}
}

// layout sizes the widgets to the window.
func (m *Model) layout() {
	_, detailWidth := m.columns()
	m.progress.Width = max(10, detailWidth-12)
	m.help.Width = m.width
	m.logViewport.Width = m.width
	m.logViewport.Height = m.bodyHeight()
	m.updateLogViewport()
}

// recordFromEntry turns a catalog entry into the record the screen mounts.
// Catalog entries carry no source URL, so they can be applied or removed
// but not downloaded again.
func recordFromEntry(e catalog.Entry) wallpaper.Record {
	return wallpaper.Record{
		ID:    e.ID,
		Title: e.Title,
		Image: wallpaper.Image{Width: e.Width, Height: e.Height},
	}
}

func describeError(err error) string {
	msg := err.Error()
	for _, prefix := range []string{"screen: ", "download: ", "apply: ", "daily: "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return msg
}

// action is a user-triggered operation on the mounted wallpaper.
type action int

const (
	actionDownload action = iota
	actionApply
	actionRemove
)

func (a action) String() string {
	switch a {
	case actionApply:
		return "apply"
	case actionRemove:
		return "delete"
	default:
		return "download"
	}
}

// Messages

type pageMsg struct {
	req  state.Request
	page feed.Page
	err  error
}

// screenMsg, catalogMsg and dailyMsg carry no payload; the model re-reads the latest
// state so messages delivered out of order cannot show stale data.
type screenMsg struct{}

type catalogMsg struct{}

type actionMsg struct {
	action action
	err    error
}

type logsMsg struct {
	tail logtail.Tail
	err  error
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks while Update runs, and subscribers can fire from inside it.
	if opts.Screen != nil {
		cancel := opts.Screen.Subscribe(func(screen.State) { go p.Send(screenMsg{}) })
		defer cancel()
	}
	if opts.Catalog != nil {
		cancel := opts.Catalog.Subscribe(func(catalog.Change) { go p.Send(catalogMsg{}) })
		defer cancel()
	}
	if opts.Daily != nil {
		cancel := opts.Daily.Subscribe(func(daily.Status) { go p.Send(dailyMsg{}) })
		defer cancel()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
