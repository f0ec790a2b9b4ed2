package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/cusage/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, total := range []int{80, 81, 119, 180} {
		for n := 1; n <= 6; n++ {
			sum := 0
			for _, w := range LayoutRow(total, n) {
				sum += w
			}
			if sum != total {
				t.Errorf("LayoutRow(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
	if LayoutRow(80, 0) != nil {
		t.Error("LayoutRow(80, 0) should be nil")
	}
}

func TestCardRowMatchesTallestCard(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(short)
	tallLines := lipgloss.Height(tall)
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("padding line %d has no styling", i)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	row := MetricCardRow([]Metric{
		{Label: "Requests", Value: "1,234"},
		{Label: "Exceeding", Value: "12.5%", Note: "154 requests"},
		{Label: "Users", Value: "42"},
	}, 90)
	if w := lipgloss.Width(row); w != 90 {
		t.Errorf("row width = %d, want 90", w)
	}
}

func TestTabIdxByKey(t *testing.T) {
	for i, tab := range Tabs {
		if got := TabIdxByKey(tab.Key); got != i {
			t.Errorf("TabIdxByKey(%q) = %d, want %d", tab.Key, got, i)
		}
		if tab.KeyPos >= 0 && rune(tab.Name[tab.KeyPos]|0x20) != tab.Key {
			t.Errorf("tab %q: KeyPos %d does not point at %q", tab.Name, tab.KeyPos, tab.Key)
		}
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestRenderTabBarFillsWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	for active := range Tabs {
		if w := lipgloss.Width(RenderTabBar(active, 100)); w != 100 {
			t.Errorf("active=%d: width = %d, want 100", active, w)
		}
	}
}

func TestStackedBarsHeight(t *testing.T) {
	theme.SetActive("flexoki-dark")

	out := StackedBars(
		[]float64{10, 20, 5},
		[]float64{0, 5, 15},
		[]string{"01-01", "01-02", "01-03"},
		40, 6,
	)
	// 6 chart rows + axis + labels
	if got := len(strings.Split(out, "\n")); got != 8 {
		t.Errorf("StackedBars lines = %d, want 8", got)
	}
	if StackedBars(nil, nil, nil, 40, 6) != "" {
		t.Error("empty input should render nothing")
	}
}

func TestScaleRows(t *testing.T) {
	tests := []struct {
		v, peak float64
		height  int
		want    int
	}{
		{0, 10, 6, 0},
		{10, 10, 6, 6},
		{0.01, 10, 6, 1},
		{5, 10, 6, 3},
	}
	for _, tt := range tests {
		if got := scaleRows(tt.v, tt.peak, tt.height); got != tt.want {
			t.Errorf("scaleRows(%v, %v, %d) = %d, want %d", tt.v, tt.peak, tt.height, got, tt.want)
		}
	}
}

func TestComplianceBarWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	if w := lipgloss.Width(ComplianceBar(75, 25, 20)); w != 20 {
		t.Errorf("ComplianceBar width = %d, want 20", w)
	}
	if w := lipgloss.Width(ComplianceBar(0, 0, 20)); w != 20 {
		t.Errorf("empty ComplianceBar width = %d, want 20", w)
	}
}
