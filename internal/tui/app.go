// Package tui provides the interactive Bubble Tea dashboard for cusage.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/config"
	"github.com/theirongolddev/cusage/internal/model"
	"github.com/theirongolddev/cusage/internal/pipeline"
	"github.com/theirongolddev/cusage/internal/source"
	"github.com/theirongolddev/cusage/internal/store"
	"github.com/theirongolddev/cusage/internal/tui/components"
	"github.com/theirongolddev/cusage/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Tab indices, matching components.Tabs.
const (
	tabOverview = iota
	tabDaily
	tabModels
	tabPowerUsers
	tabExceeded
)

// Options configure where the dashboard reads data and how it is priced.
type Options struct {
	Paths    []string
	Plan     model.PlanTier
	Plans    config.PlanTable
	Pricing  config.PricingFunc
	UseCache bool
}

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Records  []model.UsageRecord
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background data refresh completes.
type RefreshDataMsg struct {
	Records  []model.UsageRecord
	LoadTime time.Duration
	Err      error
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	records  []model.UsageRecord
	report   *pipeline.Report
	loaded   bool
	loadErr  error
	loadTime time.Duration

	lastRefresh time.Time
	refreshing  bool
	refreshErr  error

	// Power users tab: cursor over report.PowerUsers and the users whose
	// combined daily breakdown is charted.
	puCursor   int
	puSelected map[string]bool
	breakdown  []model.PowerUserDailyBreakdown

	// Exceeded tab
	exceedingUsers []string
	exCursor       int

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Plans.Len() == 0 {
		opts.Plans = config.DefaultPlanTable()
	}
	if opts.Pricing == nil {
		opts.Pricing = config.DefaultPricing()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:       opts,
		needSetup:  !config.Exists(),
		puSelected: make(map[string]bool),
		spinner:    sp,
		loadSub:    make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.loadSub),
		a.spinner.Tick,
	)
}

// recompute rebuilds every derived view for the current records and plan.
func (a *App) recompute() {
	report, err := pipeline.BuildReport(context.Background(), a.records, pipeline.ReportOptions{
		Plan:    a.opts.Plan,
		Plans:   a.opts.Plans,
		Pricing: a.opts.Pricing,
	})
	if err != nil {
		return
	}
	a.report = report
	a.exceedingUsers = pipeline.UsersExceedingQuota(a.records)

	// Selections only survive if the user is still a power user.
	current := make(map[string]bool, len(report.PowerUsers.PowerUsers))
	for _, u := range report.PowerUsers.PowerUsers {
		current[u.User] = true
	}
	for user := range a.puSelected {
		if !current[user] {
			delete(a.puSelected, user)
		}
	}

	a.puCursor = clampCursor(a.puCursor, len(report.PowerUsers.PowerUsers))
	a.exCursor = clampCursor(a.exCursor, len(a.exceedingUsers))
	a.recomputeBreakdown()
}

func (a *App) recomputeBreakdown() {
	a.breakdown = pipeline.PowerUserDailyBreakdown(a.records, a.selectedUsers())
}

// selectedUsers returns the selected power users in rank order.
func (a App) selectedUsers() []string {
	if a.report == nil || len(a.puSelected) == 0 {
		return nil
	}
	var users []string
	for _, u := range a.report.PowerUsers.PowerUsers {
		if a.puSelected[u.User] {
			users = append(users, u.User)
		}
	}
	return users
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || (a.needSetup && a.setupForm != nil) {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		a.loadErr = msg.Err
		if msg.Err != nil {
			return a, nil
		}
		a.records = msg.Records
		a.recompute()

		if a.needSetup {
			a.setupVals = SetupValuesFromConfig(loadConfigOrDefault())
			a.setupForm = NewSetupForm(len(a.records), &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		a.refreshErr = msg.Err
		if msg.Err == nil {
			a.records = msg.Records
			a.loadTime = msg.LoadTime
			a.loadErr = nil
			a.recompute()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, tea.Batch(refreshDataCmd(a.opts), a.spinner.Tick)
	}

	// Nothing else is meaningful until data has loaded successfully.
	if a.report == nil {
		return a, nil
	}

	switch key {
	case "p":
		a.opts.Plan = a.opts.Plan.Next()
		a.recompute()
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case " ", "enter":
		if a.activeTab == tabPowerUsers {
			a.toggleSelected()
		}
	case "a":
		if a.activeTab == tabPowerUsers {
			for _, u := range a.report.PowerUsers.PowerUsers {
				a.puSelected[u.User] = true
			}
			a.recomputeBreakdown()
		}
	case "esc":
		if a.activeTab == tabPowerUsers && len(a.puSelected) > 0 {
			clear(a.puSelected)
			a.recomputeBreakdown()
		}
	case "left", "h":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "l", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case tabPowerUsers:
		if a.report != nil {
			a.puCursor = clampCursor(a.puCursor+delta, len(a.report.PowerUsers.PowerUsers))
		}
	case tabExceeded:
		a.exCursor = clampCursor(a.exCursor+delta, len(a.exceedingUsers))
	}
}

func (a *App) toggleSelected() {
	users := a.report.PowerUsers.PowerUsers
	if len(users) == 0 {
		return
	}
	user := users[a.puCursor].User
	if a.puSelected[user] {
		delete(a.puSelected, user)
	} else {
		a.puSelected[user] = true
	}
	a.recomputeBreakdown()
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if cfg, err := SaveSetup(a.setupVals); err == nil {
			theme.SetActive(cfg.Appearance.Theme)
			if plan, err := cfg.PlanTier(); err == nil {
				a.opts.Plan = plan
			}
			a.opts.Pricing = cfg.PricingFunc()
			a.recompute()
		}
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.loadErr != nil && a.report == nil {
		return a.viewLoadError()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  cusage needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ cusage"))
	b.WriteString(subtitleStyle.Render(" · Premium Request Usage"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())

	if a.progressMax > 0 {
		barW := min(max(a.width-30, 20), 40)
		b.WriteString(subtitleStyle.Render(" Parsing exports\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatRequests(float64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatRequests(float64(a.progressMax))))
		b.WriteString(subtitleStyle.Render(" files"))
	} else {
		b.WriteString(subtitleStyle.Render(" Discovering exports..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoadError() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Red).
		Background(t.Surface).
		Padding(1, 3).
		Width(min(a.width-4, 90))
	titleStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	bodyStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	body := titleStyle.Render("Could not load usage data") + "\n\n" +
		bodyStyle.Render(source.UserFacingMessage(a.loadErr)) + "\n\n" +
		hintStyle.Render("[r] retry  [q] quit")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o d m u e", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move through lists"},
		}},
		{"Power Users", [][2]string{
			{"space", "Toggle user in breakdown"},
			{"a", "Select all power users"},
			{"esc", "Clear selection"},
		}},
		{"Actions", [][2]string{
			{"p", "Cycle plan tier"},
			{"r", "Reload exports"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	info := components.StatusInfo{
		Plan:       a.opts.Plan.String(),
		Records:    len(a.records),
		DataAge:    cli.FormatAgo(a.lastRefresh),
		Refreshing: a.refreshing,
	}
	if a.refreshErr != nil {
		info.Error = source.UserFacingMessage(a.refreshErr)
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabDaily:
		content = a.renderDailyTab(cw, contentH)
	case tabModels:
		content = a.renderModelsTab(cw)
	case tabPowerUsers:
		content = a.renderPowerUsersTab(cw)
	case tabExceeded:
		content = a.renderExceededTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Loading ────────────────────────────────────────────────────

// loadRecords runs the cached pipeline when enabled and falls back to a
// full parse if the cache cannot be opened or used.
func loadRecords(opts Options, progressFn pipeline.ProgressFunc) ([]model.UsageRecord, error) {
	if opts.UseCache {
		if cache, err := store.Open(pipeline.CachePath()); err == nil {
			cr, loadErr := pipeline.LoadWithCache(opts.Paths, cache, progressFn)
			_ = cache.Close()
			if loadErr == nil {
				return cr.Records, nil
			}
		}
	}
	result, err := pipeline.Load(opts.Paths, progressFn)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			records, err := loadRecords(opts, progressFn)
			sub <- DataLoadedMsg{Records: records, LoadTime: time.Since(start), Err: err}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads exports in the background (no progress UI).
func refreshDataCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		records, err := loadRecords(opts, nil)
		return RefreshDataMsg{Records: records, LoadTime: time.Since(start), Err: err}
	}
}

// loadConfigOrDefault loads config, returning defaults on error so the TUI
// can always start.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the widths RenderTabBar uses, with a one-column separator.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}

func clampCursor(cursor, n int) int {
	if n <= 0 {
		return 0
	}
	return min(max(cursor, 0), n-1)
}

// shortDate trims the year from a YYYY-MM-DD key.
func shortDate(date string) string {
	if len(date) == len(model.DateLayout) {
		return date[5:]
	}
	return date
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
