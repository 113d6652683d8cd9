package plans

import "strings"

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
	PlanElite   Plan = "elite"
)

// Normalize maps a stored plan name (usually the provider product name,
// e.g. "Premium Monthly") to an internal tier.
func Normalize(name string) Plan {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(n, "elite"):
		return PlanElite
	case strings.Contains(n, "premium"):
		return PlanPremium
	default:
		return PlanFree
	}
}

func Rank(p Plan) int {
	switch p {
	case PlanElite:
		return 2
	case PlanPremium:
		return 1
	default:
		return 0
	}
}

// AllowsPremiumGames reports whether a tier unlocks the premium catalogue.
func AllowsPremiumGames(p Plan) bool {
	return Rank(p) >= Rank(PlanPremium)
}
