package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/deskroster/deskroster/internal/bridge"
	"github.com/deskroster/deskroster/internal/clipboard"
	"github.com/deskroster/deskroster/internal/directory"
	"github.com/deskroster/deskroster/internal/rosterdb"
)

type tabID int

const (
	tabContacts tabID = iota
	tabTeams
	tabServers
)

var tabLabels = []string{"Contacts", "Teams", "Servers"}

// Messages flowing into the home model.
type snapshotMsg struct{ snap *bridge.Snapshot }

type searchAppliedMsg struct{ text string }

type themeChangedMsg struct{ dark bool }

type mutationDoneMsg struct {
	op  string
	key string
	err error
}

type paletteSelectedMsg struct {
	result directory.PaletteResult
	query  string
}

type contactSubmittedMsg struct{ contact directory.Contact }

type highlightTickMsg struct{}

type statusClearMsg struct{}

// Home is the root bubbletea model: a tabbed roster browser with
// debounced search, sort and filter controls, optimistic mutations and
// live sync from the store.
type Home struct {
	db       *rosterdb.DB
	contacts *directory.Store[directory.Contact]
	servers  *directory.Store[directory.Server]
	groups   *directory.Store[directory.Group]

	filter *directory.FilterState
	extras map[string]directory.Predicate

	serverSortKey   string
	serverAscending bool

	sched           *directory.TimerScheduler
	debouncer       *directory.Debouncer
	highlights      *directory.HighlightTracker
	highlightWindow time.Duration

	watcher      *bridge.SnapshotWatcher
	themeWatcher *ThemeWatcher
	searchCh     chan string

	input         textinput.Model
	searchFocused bool

	activeTab tabID
	cursor    int

	confirm   *ConfirmDialog
	addDialog *AddDialog
	tagPicker *TagPicker
	palette   *Palette

	ctx    context.Context
	cancel context.CancelFunc

	width  int
	height int

	statusMsg   string
	statusIsErr bool
}

// NewHome builds the model over an open roster store.
func NewHome(db *rosterdb.DB, cfg *directory.UserConfig) *Home {
	b := bridge.New(db)
	sched := directory.NewTimerScheduler()
	ctx, cancel := context.WithCancel(context.Background())

	ti := textinput.New()
	ti.Placeholder = "Search name, email, title, notes..."
	ti.CharLimit = 120
	ti.Width = 40

	h := &Home{
		db:              db,
		contacts:        directory.NewStore(b.Contacts(), directory.Contact.Key, directory.MergeContact),
		servers:         directory.NewStore(b.Servers(), directory.Server.Key, directory.MergeServer),
		groups:          directory.NewStore(b.Groups(), directory.Group.Key, directory.MergeGroup),
		filter:          directory.NewFilterState(),
		serverSortKey:   directory.ServerSortKeyName,
		serverAscending: true,
		sched:           sched,
		searchCh:        make(chan string, 4),
		input:           ti,
		confirm:         NewConfirmDialog(),
		addDialog:       NewAddDialog(),
		tagPicker:       NewTagPicker(),
		palette:         NewPalette(),
		ctx:             ctx,
		cancel:          cancel,
	}

	h.extras = map[string]directory.Predicate{
		"manual":    func(c directory.Contact) bool { return c.Manual },
		"has-phone": func(c directory.Contact) bool { return c.Phone != "" },
	}

	debounce := directory.DefaultDebounceInterval
	highlight := directory.DefaultHighlightWindow
	if cfg != nil {
		debounce = cfg.DebounceInterval()
		highlight = cfg.HighlightWindow()
	}
	h.debouncer = directory.NewDebouncer(sched, debounce, func(text string) {
		h.searchCh <- text
	})
	h.highlights = directory.NewHighlightTracker(sched, highlight)
	h.highlightWindow = highlight

	h.watcher = bridge.NewSnapshotWatcher(db)
	h.themeWatcher = NewThemeWatcher(ctx)

	return h
}

func (h *Home) Init() tea.Cmd {
	h.watcher.Start()
	cmds := []tea.Cmd{
		textinput.Blink,
		h.loadSnapshotCmd(),
		h.waitForSnapshot(),
		h.waitForSearch(),
	}
	if h.themeWatcher != nil {
		cmds = append(cmds, h.waitForTheme())
	}
	return tea.Batch(cmds...)
}

// Close releases watcher goroutines and timers. Call after the program
// exits.
func (h *Home) Close() {
	h.cancel()
	h.watcher.Close()
	if h.themeWatcher != nil {
		h.themeWatcher.Close()
	}
	h.sched.CancelAll()
}

func (h *Home) loadSnapshotCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := h.db.Snapshot()
		if err != nil {
			uiLog.Error("initial_snapshot_failed", slog.String("error", err.Error()))
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

func (h *Home) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-h.watcher.Snapshots()
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

func (h *Home) waitForSearch() tea.Cmd {
	return func() tea.Msg {
		text, ok := <-h.searchCh
		if !ok {
			return nil
		}
		return searchAppliedMsg{text: text}
	}
}

func (h *Home) waitForTheme() tea.Cmd {
	return func() tea.Msg {
		isDark, ok := <-h.themeWatcher.ChangeChannel()
		if !ok {
			return nil
		}
		return themeChangedMsg{dark: isDark}
	}
}

func (h *Home) setStatus(msg string, isErr bool) tea.Cmd {
	h.statusMsg = msg
	h.statusIsErr = isErr
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg { return statusClearMsg{} })
}

// applySnapshot replaces all authoritative collections and prunes tag
// selections that no longer exist.
func (h *Home) applySnapshot(snap *bridge.Snapshot) {
	h.contacts.SetAuthoritative(snap.Contacts)
	h.servers.SetAuthoritative(snap.Servers)
	h.groups.SetAuthoritative(snap.Groups)
	h.filter.PruneTags(directory.AvailableTags(h.contacts.Effective()))
	h.clampCursor()
}

// visibleContacts runs the full query pipeline: search, filters, sort.
func (h *Home) visibleContacts() []directory.Contact {
	records := directory.Search(h.contacts.Effective(), h.filter.SearchText)
	records = directory.ApplyFilters(records, h.filter, h.extras)
	return directory.SortContacts(records, h.filter.SortKey, h.filter.Ascending)
}

func (h *Home) visibleServers() []directory.Server {
	records := directory.Search(h.servers.Effective(), h.filter.SearchText)
	return directory.SortServers(records, h.serverSortKey, h.serverAscending)
}

func (h *Home) visibleGroups() []directory.Group {
	return directory.Search(h.groups.Effective(), h.filter.SearchText)
}

func (h *Home) visibleCount() int {
	switch h.activeTab {
	case tabTeams:
		return len(h.visibleGroups())
	case tabServers:
		return len(h.visibleServers())
	default:
		return len(h.visibleContacts())
	}
}

func (h *Home) clampCursor() {
	n := h.visibleCount()
	if n == 0 {
		h.cursor = 0
		return
	}
	if h.cursor >= n {
		h.cursor = n - 1
	}
	if h.cursor < 0 {
		h.cursor = 0
	}
}

func (h *Home) createContactCmd(c directory.Contact) tea.Cmd {
	rec := directory.IngestContact(c)
	return func() tea.Msg {
		err := h.contacts.Create(h.ctx, rec)
		return mutationDoneMsg{op: "create", key: rec.Key(), err: err}
	}
}

func (h *Home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.height = msg.Height
		h.confirm.SetSize(msg.Width, msg.Height)
		h.addDialog.SetSize(msg.Width, msg.Height)
		h.tagPicker.SetSize(msg.Width, msg.Height)
		h.palette.SetSize(msg.Width, msg.Height)
		return h, nil

	case snapshotMsg:
		if msg.snap != nil {
			h.applySnapshot(msg.snap)
		}
		return h, h.waitForSnapshot()

	case searchAppliedMsg:
		h.filter.SearchText = msg.text
		h.cursor = 0
		return h, h.waitForSearch()

	case themeChangedMsg:
		if msg.dark {
			InitTheme("dark")
		} else {
			InitTheme("light")
		}
		return h, h.waitForTheme()

	case mutationDoneMsg:
		if msg.err != nil {
			uiLog.Warn("mutation_failed",
				slog.String("op", msg.op),
				slog.String("key", msg.key),
				slog.String("error", msg.err.Error()))
			return h, h.setStatus(fmt.Sprintf("%s failed: %v", msg.op, msg.err), true)
		}
		cmds := []tea.Cmd{h.setStatus(fmt.Sprintf("%s %s ok", msg.op, msg.key), false)}
		if msg.op == "create" {
			// Highlight only confirmed adds; a rejected create's record
			// never reaches the list.
			h.highlights.MarkRecentlyAdded(msg.key)
			// Repaint once the highlight expires.
			cmds = append(cmds, tea.Tick(h.highlightWindow+50*time.Millisecond,
				func(time.Time) tea.Msg { return highlightTickMsg{} }))
		}
		return h, tea.Batch(cmds...)

	case paletteSelectedMsg:
		return h, h.handlePaletteResult(msg)

	case contactSubmittedMsg:
		return h, h.createContactCmd(msg.contact)

	case highlightTickMsg:
		// Highlight expired; repaint.
		return h, nil

	case statusClearMsg:
		h.statusMsg = ""
		h.statusIsErr = false
		return h, nil

	case tea.KeyMsg:
		return h.handleKey(msg)
	}
	return h, nil
}

func (h *Home) handlePaletteResult(msg paletteSelectedMsg) tea.Cmd {
	switch msg.result.ID {
	case directory.ActionGoContacts:
		h.activeTab = tabContacts
	case directory.ActionGoTeams:
		h.activeTab = tabTeams
	case directory.ActionGoServers:
		h.activeTab = tabServers
	case directory.ActionGoWeather, directory.ActionGoChat:
		// Web-only surfaces; nothing to open in the terminal.
	case directory.ActionAddManual, directory.ActionCreateContact:
		h.addDialog.Show(msg.query)
		return nil
	default:
		switch msg.result.Type {
		case directory.PaletteContact:
			h.activeTab = tabContacts
			h.jumpToContact(msg.result.ID)
		case directory.PaletteServer:
			h.activeTab = tabServers
		case directory.PaletteGroup:
			h.activeTab = tabTeams
		}
	}
	h.clampCursor()
	return nil
}

// jumpToContact moves the cursor to the contact with the given key,
// clearing search and filters if they hide it.
func (h *Home) jumpToContact(key string) {
	for attempt := 0; attempt < 2; attempt++ {
		for i, c := range h.visibleContacts() {
			if c.Key() == key {
				h.cursor = i
				return
			}
		}
		h.filter.SearchText = ""
		h.filter.ClearAll()
		h.input.SetValue("")
	}
}

func (h *Home) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Dialogs grab all input while visible.
	if h.confirm.IsVisible() {
		_, cmd := h.confirm.Update(msg)
		return h, cmd
	}
	if h.addDialog.IsVisible() {
		var cmd tea.Cmd
		h.addDialog, cmd = h.addDialog.Update(msg)
		return h, cmd
	}
	if h.tagPicker.IsVisible() {
		var cmd tea.Cmd
		h.tagPicker, cmd = h.tagPicker.Update(msg)
		h.clampCursor()
		return h, cmd
	}
	if h.palette.IsVisible() {
		var cmd tea.Cmd
		h.palette, cmd = h.palette.Update(msg)
		return h, cmd
	}

	if h.searchFocused {
		return h.handleSearchKey(msg)
	}
	return h.handleListKey(msg)
}

func (h *Home) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		h.searchFocused = false
		h.input.Blur()
		h.input.SetValue("")
		h.debouncer.Cancel()
		h.filter.SearchText = ""
		h.cursor = 0
		return h, nil
	case "enter":
		h.searchFocused = false
		h.input.Blur()
		h.debouncer.Flush()
		return h, nil
	default:
		var cmd tea.Cmd
		h.input, cmd = h.input.Update(msg)
		h.debouncer.Set(h.input.Value())
		return h, cmd
	}
}

func (h *Home) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		h.Close()
		return h, tea.Quit

	case "/":
		h.searchFocused = true
		h.input.Focus()
		return h, textinput.Blink

	case "tab":
		h.activeTab = (h.activeTab + 1) % 3
		h.clampCursor()
		return h, nil
	case "1":
		h.activeTab = tabContacts
		h.clampCursor()
		return h, nil
	case "2":
		h.activeTab = tabTeams
		h.clampCursor()
		return h, nil
	case "3":
		h.activeTab = tabServers
		h.clampCursor()
		return h, nil

	case "up", "k":
		if h.cursor > 0 {
			h.cursor--
		}
		return h, nil
	case "down", "j":
		if h.cursor < h.visibleCount()-1 {
			h.cursor++
		}
		return h, nil

	case "n", "e", "t", "p", "b", "g", "o", "v":
		h.handleSortKey(msg.String())
		return h, nil

	case "f":
		if h.activeTab == tabContacts {
			h.tagPicker.Show(directory.AvailableTags(h.contacts.Effective()), h.filter)
		}
		return h, nil

	case "h":
		if h.activeTab == tabContacts {
			h.filter.HasNoteFilter = !h.filter.HasNoteFilter
			h.clampCursor()
		}
		return h, nil

	case "m":
		if h.activeTab == tabContacts {
			h.filter.ToggleExtra("manual")
			h.clampCursor()
		}
		return h, nil

	case "c":
		h.filter.ClearAll()
		h.clampCursor()
		return h, nil

	case "a":
		if h.activeTab == tabContacts {
			h.addDialog.Show("")
		}
		return h, nil

	case "d", "delete":
		return h, h.startDelete()

	case "y":
		return h, h.copySelectedEmail()

	case "ctrl+p", ":":
		h.palette.Show(h.contacts.Effective(), h.servers.Effective(), h.groups.Effective())
		return h, nil

	case "r":
		return h, h.loadSnapshotCmd()
	}
	return h, nil
}

// handleSortKey maps a pressed letter onto the sort key for the active
// tab. Pressing the active key again flips direction.
func (h *Home) handleSortKey(key string) {
	if h.activeTab == tabServers {
		var sortKey string
		switch key {
		case "n":
			sortKey = directory.ServerSortKeyName
		case "o":
			sortKey = directory.ServerSortKeyOwner
		case "v":
			sortKey = directory.ServerSortKeyEnvironment
		default:
			return
		}
		if h.serverSortKey == sortKey {
			h.serverAscending = !h.serverAscending
		} else {
			h.serverSortKey = sortKey
			h.serverAscending = true
		}
		return
	}

	if h.activeTab != tabContacts {
		return
	}
	var sortKey string
	switch key {
	case "n":
		sortKey = directory.SortKeyName
	case "e":
		sortKey = directory.SortKeyEmail
	case "t":
		sortKey = directory.SortKeyTitle
	case "p":
		sortKey = directory.SortKeyPhone
	case "b":
		sortKey = directory.SortKeyBusinessArea
	case "g":
		sortKey = directory.SortKeyGroups
	default:
		return
	}
	h.filter.HandleSort(sortKey)
}

// copySelectedEmail copies the email of the contact under the cursor to
// the system clipboard.
func (h *Home) copySelectedEmail() tea.Cmd {
	if h.activeTab != tabContacts {
		return nil
	}
	visible := h.visibleContacts()
	if h.cursor < 0 || h.cursor >= len(visible) {
		return nil
	}
	email := visible[h.cursor].Email
	method, err := clipboard.Copy(email)
	if err != nil {
		return h.setStatus(fmt.Sprintf("copy failed: %v", err), true)
	}
	return h.setStatus(fmt.Sprintf("copied %s (%s)", email, method), false)
}

// startDelete stages the contact under the cursor and opens the
// confirmation dialog.
func (h *Home) startDelete() tea.Cmd {
	if h.activeTab != tabContacts {
		return nil
	}
	visible := h.visibleContacts()
	if h.cursor < 0 || h.cursor >= len(visible) {
		return nil
	}
	target := visible[h.cursor]
	h.contacts.SelectForDelete(target)

	confirmed := make(chan bool, 1)
	h.confirm.Show("Delete Contact",
		fmt.Sprintf("Delete %s <%s>?", target.Name, target.Email),
		func(ok bool) { confirmed <- ok })

	return func() tea.Msg {
		if !<-confirmed {
			h.contacts.ClearDeleteSelection()
			return nil
		}
		deleteTarget, ok := h.contacts.DeleteSelection()
		if !ok {
			return nil
		}
		err := h.contacts.DeleteSelected(h.ctx)
		return mutationDoneMsg{op: "delete", key: deleteTarget.Key(), err: err}
	}
}

func (h *Home) View() string {
	if h.confirm.IsVisible() {
		return h.confirm.View()
	}
	if h.addDialog.IsVisible() {
		return h.addDialog.View()
	}
	if h.tagPicker.IsVisible() {
		return h.tagPicker.View()
	}
	if h.palette.IsVisible() {
		return h.palette.View()
	}

	var b strings.Builder
	b.WriteString(h.renderTabs())
	b.WriteString("\n")
	b.WriteString(h.renderSearchBar())
	b.WriteString("\n")

	switch h.activeTab {
	case tabTeams:
		b.WriteString(h.renderGroups())
	case tabServers:
		b.WriteString(h.renderServers())
	default:
		b.WriteString(h.renderContacts())
	}

	b.WriteString("\n")
	b.WriteString(h.renderStatusBar())
	return b.String()
}

func (h *Home) renderTabs() string {
	parts := make([]string, 0, len(tabLabels))
	for i, label := range tabLabels {
		if tabID(i) == h.activeTab {
			parts = append(parts, TabActiveStyle.Render(label))
		} else {
			parts = append(parts, TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (h *Home) renderSearchBar() string {
	prompt := SearchPromptStyle.Render("search:")
	box := h.input.View()
	if !h.searchFocused && h.input.Value() == "" && h.filter.SearchText == "" {
		box = DimStyle.Render("press / to search")
	}
	line := prompt + " " + box
	if h.filter.AnyActive() {
		chips := make([]string, 0, len(h.filter.SelectedTags)+2)
		for tag := range h.filter.SelectedTags {
			chips = append(chips, TagActiveStyle.Render(tag))
		}
		if h.filter.HasNoteFilter {
			chips = append(chips, TagActiveStyle.Render("has-note"))
		}
		for name := range h.filter.ActiveExtras {
			chips = append(chips, TagActiveStyle.Render(name))
		}
		line += "  " + strings.Join(chips, " ")
	}
	return line
}

func (h *Home) sortIndicator(key string) string {
	active := h.filter.SortKey
	asc := h.filter.Ascending
	if h.activeTab == tabServers {
		active = h.serverSortKey
		asc = h.serverAscending
	}
	if key != active {
		return ""
	}
	if asc {
		return "▲"
	}
	return "▼"
}

func (h *Home) renderContacts() string {
	visible := h.visibleContacts()
	if len(visible) == 0 {
		return DimStyle.Render("  no contacts")
	}

	nameW, emailW, titleW, areaW := 24, 28, 20, 16
	header := HeaderRowStyle.Render(
		"  " + pad("Name "+h.sortIndicator(directory.SortKeyName), nameW) +
			pad("Email "+h.sortIndicator(directory.SortKeyEmail), emailW) +
			pad("Title "+h.sortIndicator(directory.SortKeyTitle), titleW) +
			pad("Area "+h.sortIndicator(directory.SortKeyBusinessArea), areaW))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for i, c := range visible {
		row := pad(c.Name, nameW) + pad(c.Email, emailW) + pad(c.Title, titleW) + pad(c.BusinessArea, areaW)
		switch {
		case i == h.cursor:
			b.WriteString(RowSelectedStyle.Render("› " + row))
		case h.highlights.IsRecentlyAdded(c.Key()):
			b.WriteString(RowRecentStyle.Render("+ " + row))
		default:
			b.WriteString(RowStyle.Render("  " + row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (h *Home) renderServers() string {
	visible := h.visibleServers()
	if len(visible) == 0 {
		return DimStyle.Render("  no servers")
	}

	nameW, ownerW, envW := 26, 22, 14
	header := HeaderRowStyle.Render(
		"  " + pad("Name "+h.sortIndicator(directory.ServerSortKeyName), nameW) +
			pad("Owner "+h.sortIndicator(directory.ServerSortKeyOwner), ownerW) +
			pad("Env "+h.sortIndicator(directory.ServerSortKeyEnvironment), envW))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for i, srv := range visible {
		row := pad(srv.Name, nameW) + pad(srv.Owner, ownerW) + pad(srv.Environment, envW)
		if i == h.cursor {
			b.WriteString(RowSelectedStyle.Render("› " + row))
		} else {
			b.WriteString(RowStyle.Render("  " + row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (h *Home) renderGroups() string {
	visible := h.visibleGroups()
	if len(visible) == 0 {
		return DimStyle.Render("  no teams")
	}

	var b strings.Builder
	for i, grp := range visible {
		row := pad(grp.Name, 30) + DimStyle.Render(grp.MemberLabel())
		if i == h.cursor {
			b.WriteString(RowSelectedStyle.Render("› " + row))
		} else {
			b.WriteString(RowStyle.Render("  " + row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (h *Home) renderStatusBar() string {
	left := fmt.Sprintf("%d shown", h.visibleCount())
	if pending := h.contacts.PendingCount() + h.servers.PendingCount() + h.groups.PendingCount(); pending > 0 {
		left += WarningStyle.Render(fmt.Sprintf("  %d pending", pending))
	}
	if h.statusMsg != "" {
		if h.statusIsErr {
			left += "  " + ErrorStyle.Render(h.statusMsg)
		} else {
			left += "  " + SuccessStyle.Render(h.statusMsg)
		}
	}
	keys := StatusKeyStyle.Render("/") + " search  " +
		StatusKeyStyle.Render("a") + " add  " +
		StatusKeyStyle.Render("d") + " delete  " +
		StatusKeyStyle.Render("f") + " tags  " +
		StatusKeyStyle.Render("ctrl+p") + " go to  " +
		StatusKeyStyle.Render("q") + " quit"
	return StatusBarStyle.Render(left + "  " + keys)
}
