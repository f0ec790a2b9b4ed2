package config

import "testing"

func TestNormalizeModelName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"gpt-4o-2024-11-20", "gpt-4o"},
		{"gpt-4.1-2025-04-14", "gpt-4.1"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4"},
		{"Claude Sonnet 4", "claude-sonnet-4"},
		{"  Coding Agent ", "coding-agent"},
		{"o3-mini", "o3-mini"},
		{"gpt-4", "gpt-4"},
		{"2025-01-01", "2025-01-01"},
	}
	for _, tt := range tests {
		if got := NormalizeModelName(tt.in); got != tt.want {
			t.Errorf("NormalizeModelName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlanTableLookup(t *testing.T) {
	table := DefaultPlanTable()

	p, ok := table.Lookup("GPT-4.5")
	if !ok {
		t.Fatal("Lookup(GPT-4.5) returned !ok")
	}
	if p.Multiplier != 50 {
		t.Errorf("Multiplier = %v, want 50", p.Multiplier)
	}
	if p.Enterprise != EnterpriseLimit {
		t.Errorf("Enterprise = %v, want %d", p.Enterprise, EnterpriseLimit)
	}

	free, ok := table.Lookup("gpt-4o-2024-11-20")
	if !ok || free.Multiplier != 0 {
		t.Errorf("gpt-4o lookup = (%+v, %v), want multiplier 0", free, ok)
	}

	unknown, ok := table.Lookup("brand-new-model")
	if ok {
		t.Error("Lookup of unknown model returned ok")
	}
	if unknown != FallbackPlan {
		t.Errorf("unknown model plan = %+v, want FallbackPlan", unknown)
	}
}

func TestPlanTableWithOverrides(t *testing.T) {
	mult := 2.0
	biz := 500.0
	base := DefaultPlanTable()
	table := base.WithOverrides(map[string]ModelPlanOverride{
		"Claude Opus 4": {Business: &biz},
		"my-model":      {Multiplier: &mult},
	})

	opus, _ := table.Lookup("claude-opus-4")
	if opus.Business != 500 || opus.Multiplier != 10 {
		t.Errorf("opus = %+v, want business 500 multiplier 10", opus)
	}
	custom, ok := table.Lookup("my-model")
	if !ok || custom.Multiplier != 2 || custom.Individual != IndividualLimit {
		t.Errorf("custom = (%+v, %v)", custom, ok)
	}

	// The built-in table must not change.
	if p, _ := base.Lookup("claude-opus-4"); p.Business != BusinessLimit {
		t.Errorf("base table mutated: business = %v", p.Business)
	}
	if _, ok := base.Lookup("my-model"); ok {
		t.Error("base table gained an override entry")
	}
}
