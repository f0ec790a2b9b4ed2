package config

import (
	"strings"
)

// ModelPlan holds the premium-request multiplier and per-tier monthly limits
// for one model. A multiplier of 0 means the model is included at no cost.
type ModelPlan struct {
	Multiplier float64
	Individual float64
	Business   float64
	Enterprise float64
}

// Monthly premium-request allowances per tier.
const (
	IndividualLimit = 300
	BusinessLimit   = 300
	EnterpriseLimit = 1000
)

// FallbackPlan is reported for models missing from the table.
var FallbackPlan = ModelPlan{
	Multiplier: 0,
	Individual: IndividualLimit,
	Business:   BusinessLimit,
	Enterprise: EnterpriseLimit,
}

func plan(multiplier float64) ModelPlan {
	p := FallbackPlan
	p.Multiplier = multiplier
	return p
}

// DefaultModelPlans maps normalized model names to their plan configuration.
var DefaultModelPlans = map[string]ModelPlan{
	"gpt-4o":                    plan(0),
	"gpt-4.1":                   plan(0),
	"gpt-5-mini":                plan(0),
	"gpt-4.5":                   plan(50),
	"gpt-5":                     plan(1),
	"o1":                        plan(10),
	"o3":                        plan(1),
	"o3-mini":                   plan(0.33),
	"o4-mini":                   plan(0.33),
	"claude-3.5-sonnet":         plan(1),
	"claude-3.7-sonnet":         plan(1),
	"claude-3.7-sonnet-thought": plan(1.25),
	"claude-sonnet-4":           plan(1),
	"claude-opus-4":             plan(10),
	"gemini-2.0-flash":          plan(0.25),
	"gemini-2.5-pro":            plan(1),
	"coding-agent":              plan(1),
	"code-review":               plan(1),
}

// PlanTable is an immutable model plan lookup.
type PlanTable struct {
	plans map[string]ModelPlan
}

// DefaultPlanTable returns the built-in table.
func DefaultPlanTable() PlanTable {
	return PlanTable{plans: DefaultModelPlans}
}

// NewPlanTable builds a table from explicit entries. Keys are normalized.
func NewPlanTable(plans map[string]ModelPlan) PlanTable {
	m := make(map[string]ModelPlan, len(plans))
	for k, v := range plans {
		m[NormalizeModelName(k)] = v
	}
	return PlanTable{plans: m}
}

// WithOverrides returns a copy of t with overrides applied. The receiver is
// left untouched.
func (t PlanTable) WithOverrides(overrides map[string]ModelPlanOverride) PlanTable {
	if len(overrides) == 0 {
		return t
	}
	m := make(map[string]ModelPlan, len(t.plans)+len(overrides))
	for k, v := range t.plans {
		m[k] = v
	}
	for name, o := range overrides {
		key := NormalizeModelName(name)
		p, ok := m[key]
		if !ok {
			p = FallbackPlan
		}
		if o.Multiplier != nil {
			p.Multiplier = *o.Multiplier
		}
		if o.Individual != nil {
			p.Individual = *o.Individual
		}
		if o.Business != nil {
			p.Business = *o.Business
		}
		if o.Enterprise != nil {
			p.Enterprise = *o.Enterprise
		}
		m[key] = p
	}
	return PlanTable{plans: m}
}

// Lookup returns the plan for a model, normalizing the name first. Unknown
// models get FallbackPlan and false.
func (t PlanTable) Lookup(model string) (ModelPlan, bool) {
	p, ok := t.plans[NormalizeModelName(model)]
	if !ok {
		return FallbackPlan, false
	}
	return p, true
}

// Len returns the number of configured models.
func (t PlanTable) Len() int {
	return len(t.plans)
}

// NormalizeModelName lower-cases a model identifier, joins words with
// dashes and strips a trailing release date.
// e.g., "GPT-4o-2024-11-20" -> "gpt-4o", "Claude Sonnet 4" -> "claude-sonnet-4"
func NormalizeModelName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.Join(strings.Fields(name), "-")

	parts := strings.Split(name, "-")
	n := len(parts)

	// -YYYY-MM-DD
	if n > 3 && len(parts[n-3]) == 4 && len(parts[n-2]) == 2 && len(parts[n-1]) == 2 &&
		isAllDigits(parts[n-3]) && isAllDigits(parts[n-2]) && isAllDigits(parts[n-1]) {
		return strings.Join(parts[:n-3], "-")
	}
	// -YYYYMMDD
	if n > 1 && len(parts[n-1]) >= 8 && isAllDigits(parts[n-1]) {
		return strings.Join(parts[:n-1], "-")
	}
	return name
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
