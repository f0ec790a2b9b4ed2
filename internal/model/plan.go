package model

import (
	"fmt"
	"strings"
)

// PlanTier selects which configured quota limit applies for display.
type PlanTier int

// Plan tiers, in the order the original export documents them.
const (
	PlanIndividual PlanTier = iota
	PlanBusiness
	PlanEnterprise
)

// DefaultPlanTier is the tier used when nothing else is selected.
const DefaultPlanTier = PlanBusiness

// PlanTiers lists every tier in display order.
var PlanTiers = []PlanTier{PlanIndividual, PlanBusiness, PlanEnterprise}

func (p PlanTier) String() string {
	switch p {
	case PlanIndividual:
		return "individual"
	case PlanBusiness:
		return "business"
	case PlanEnterprise:
		return "enterprise"
	default:
		return fmt.Sprintf("plan(%d)", int(p))
	}
}

// Label is the capitalized name shown in tables.
func (p PlanTier) Label() string {
	s := p.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Next cycles to the following tier.
func (p PlanTier) Next() PlanTier {
	return PlanTiers[(int(p)+1)%len(PlanTiers)]
}

// ParsePlanTier parses a tier name case-insensitively. An empty string yields
// the default tier.
func ParsePlanTier(s string) (PlanTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultPlanTier, nil
	case "individual", "pro":
		return PlanIndividual, nil
	case "business":
		return PlanBusiness, nil
	case "enterprise":
		return PlanEnterprise, nil
	}
	return DefaultPlanTier, fmt.Errorf("unknown plan tier %q (want individual, business or enterprise)", s)
}
