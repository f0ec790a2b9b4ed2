package tui

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cusage/internal/model"
	"github.com/theirongolddev/cusage/internal/pipeline"
	"github.com/theirongolddev/cusage/internal/source"
	"github.com/theirongolddev/cusage/internal/tui/components"
)

// testRecords has twelve users u01..u12 where uNN uses NN*10 requests over
// two days; odd users go over quota on the second day.
func testRecords() []model.UsageRecord {
	day1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	var out []model.UsageRecord
	for i := 1; i <= 12; i++ {
		user := fmt.Sprintf("u%02d", i)
		total := float64(i * 10)
		out = append(out,
			model.UsageRecord{Timestamp: day1, User: user, Model: "gpt-4.1", RequestsUsed: total / 2, TotalMonthlyQuota: "300"},
			model.UsageRecord{Timestamp: day2, User: user, Model: "claude-opus-4", RequestsUsed: total / 2, ExceedsQuota: i%2 == 1, TotalMonthlyQuota: "300"},
		)
	}
	return out
}

func newTestApp(t *testing.T) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	a := NewApp(Options{Plan: model.PlanBusiness})
	a.needSetup = false
	return a
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next
}

func loadedApp(t *testing.T) App {
	t.Helper()
	a := newTestApp(t)
	a = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return update(t, a, DataLoadedMsg{Records: testRecords(), LoadTime: time.Millisecond})
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDataLoadedBuildsReport(t *testing.T) {
	a := loadedApp(t)

	if a.report == nil {
		t.Fatal("report not built")
	}
	if a.report.Records != 24 || a.report.Users != 12 {
		t.Errorf("records=%d users=%d, want 24/12", a.report.Records, a.report.Users)
	}
	if got := a.report.PowerUsers.UserNames(); !reflect.DeepEqual(got, []string{"u12", "u11"}) {
		t.Errorf("power users = %v", got)
	}
	if len(a.exceedingUsers) != 6 {
		t.Errorf("exceeding users = %d, want 6", len(a.exceedingUsers))
	}
}

func TestPlanKeyCyclesTier(t *testing.T) {
	a := loadedApp(t)

	a = update(t, a, keyMsg("p"))
	if a.opts.Plan != model.PlanEnterprise || a.report.Plan != model.PlanEnterprise {
		t.Fatalf("plan = %v / report %v, want enterprise", a.opts.Plan, a.report.Plan)
	}
	a = update(t, a, keyMsg("p"))
	if a.opts.Plan != model.PlanIndividual {
		t.Fatalf("plan = %v, want individual", a.opts.Plan)
	}
}

func TestTabNavigation(t *testing.T) {
	a := loadedApp(t)

	tests := []struct {
		key  string
		want int
	}{
		{"d", tabDaily},
		{"m", tabModels},
		{"u", tabPowerUsers},
		{"e", tabExceeded},
		{"right", tabOverview},
		{"left", tabExceeded},
		{"o", tabOverview},
	}
	for _, tt := range tests {
		a = update(t, a, keyMsg(tt.key))
		if a.activeTab != tt.want {
			t.Fatalf("after %q: tab = %d, want %d", tt.key, a.activeTab, tt.want)
		}
	}
}

func TestPowerUserSelection(t *testing.T) {
	a := loadedApp(t)
	records := testRecords()
	all := pipeline.PowerUserDailyBreakdown(records, nil)

	if !reflect.DeepEqual(a.breakdown, all) {
		t.Fatalf("initial breakdown = %+v, want all power users %+v", a.breakdown, all)
	}

	a = update(t, a, keyMsg("u"))
	a = update(t, a, keyMsg("j"))
	a = update(t, a, keyMsg(" "))
	if got := a.selectedUsers(); !reflect.DeepEqual(got, []string{"u11"}) {
		t.Fatalf("selected = %v, want [u11]", got)
	}
	want := pipeline.PowerUserDailyBreakdown(records, []string{"u11"})
	if !reflect.DeepEqual(a.breakdown, want) {
		t.Errorf("breakdown = %+v, want %+v", a.breakdown, want)
	}

	// Cursor stops at the last power user.
	a = update(t, a, keyMsg("j"))
	if a.puCursor != 1 {
		t.Errorf("cursor = %d, want 1", a.puCursor)
	}

	a = update(t, a, keyMsg("esc"))
	if len(a.selectedUsers()) != 0 {
		t.Errorf("esc left selection %v", a.selectedUsers())
	}
	if !reflect.DeepEqual(a.breakdown, all) {
		t.Errorf("breakdown after esc = %+v, want %+v", a.breakdown, all)
	}
}

func TestSelectionSurvivesPlanChange(t *testing.T) {
	a := loadedApp(t)
	a = update(t, a, keyMsg("u"))
	a = update(t, a, keyMsg(" "))
	a = update(t, a, keyMsg("p"))
	if got := a.selectedUsers(); !reflect.DeepEqual(got, []string{"u12"}) {
		t.Errorf("selected after plan change = %v, want [u12]", got)
	}
}

func TestExceededCursorClamps(t *testing.T) {
	a := loadedApp(t)
	a = update(t, a, keyMsg("e"))
	for range 10 {
		a = update(t, a, keyMsg("j"))
	}
	if a.exCursor != len(a.exceedingUsers)-1 {
		t.Errorf("cursor = %d, want %d", a.exCursor, len(a.exceedingUsers)-1)
	}
	a = update(t, a, keyMsg("k"))
	if a.exCursor != len(a.exceedingUsers)-2 {
		t.Errorf("cursor = %d after k", a.exCursor)
	}
}

func TestLoadErrorView(t *testing.T) {
	a := newTestApp(t)
	a = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	a = update(t, a, DataLoadedMsg{Err: &source.IngestionError{Kind: source.KindEmptyInput}})

	if a.report != nil {
		t.Fatal("report should stay nil on load failure")
	}
	view := a.View()
	if !strings.Contains(view, "File is empty") {
		t.Errorf("error view does not show the ingestion message")
	}

	// Plan cycling is ignored without data.
	a = update(t, a, keyMsg("p"))
	if a.opts.Plan != model.PlanBusiness {
		t.Errorf("plan changed without data: %v", a.opts.Plan)
	}
}

func TestRefreshFailureKeepsData(t *testing.T) {
	a := loadedApp(t)
	a = update(t, a, RefreshDataMsg{Err: &source.IngestionError{Kind: source.KindMalformedRow, Line: 3}})

	if a.report == nil || a.report.Records != 24 {
		t.Fatal("previous report should survive a failed refresh")
	}
	if a.refreshErr == nil {
		t.Error("refresh error not recorded")
	}

	a = update(t, a, RefreshDataMsg{Records: testRecords()[:4]})
	if a.refreshErr != nil || a.report.Records != 4 {
		t.Errorf("successful refresh: err=%v records=%d", a.refreshErr, a.report.Records)
	}
}

func TestViewFillsTerminal(t *testing.T) {
	a := loadedApp(t)
	for i, tab := range components.Tabs {
		a.activeTab = i
		view := a.View()
		if h := lipgloss.Height(view); h != 40 {
			t.Errorf("%s: height = %d, want 40", tab.Name, h)
		}
	}
}

func TestSetupFormShownOnFirstRun(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	a := NewApp(Options{})
	if !a.needSetup {
		t.Fatal("needSetup should be true without a config file")
	}
	a = update(t, a, DataLoadedMsg{Records: testRecords()})
	if a.setupForm == nil {
		t.Fatal("setup form not created after load")
	}
	if a.setupVals.Plan != model.DefaultPlanTier.String() {
		t.Errorf("setup plan default = %q", a.setupVals.Plan)
	}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	a := App{}
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab)
		if got := a.tabAtX(pos + w/2); got != i {
			t.Errorf("x=%d -> tab %d, want %d", pos+w/2, got, i)
		}
		pos += w + 1
	}
	if got := a.tabAtX(pos + 50); got != -1 {
		t.Errorf("x past last tab -> %d, want -1", got)
	}
}

func TestVisibleWindow(t *testing.T) {
	tests := []struct {
		n, cursor, size int
		start, end      int
	}{
		{5, 0, 10, 0, 5},
		{30, 0, 10, 0, 10},
		{30, 15, 10, 10, 20},
		{30, 29, 10, 20, 30},
	}
	for _, tt := range tests {
		s, e := visibleWindow(tt.n, tt.cursor, tt.size)
		if s != tt.start || e != tt.end {
			t.Errorf("visibleWindow(%d,%d,%d) = %d,%d want %d,%d", tt.n, tt.cursor, tt.size, s, e, tt.start, tt.end)
		}
	}
}
