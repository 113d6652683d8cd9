package plans

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		want Plan
	}{
		{"Premium Monthly", PlanPremium},
		{"premium", PlanPremium},
		{"  Elite Yearly  ", PlanElite},
		{"ELITE", PlanElite},
		{"Starter", PlanFree},
		{"", PlanFree},
	}
	for _, c := range cases {
		if got := Normalize(c.name); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestAllowsPremiumGames(t *testing.T) {
	if AllowsPremiumGames(PlanFree) {
		t.Fatal("free plan must not unlock premium games")
	}
	if !AllowsPremiumGames(PlanPremium) {
		t.Fatal("premium plan must unlock premium games")
	}
	if !AllowsPremiumGames(PlanElite) {
		t.Fatal("elite plan must unlock premium games")
	}
}

func TestRankOrdering(t *testing.T) {
	if !(Rank(PlanFree) < Rank(PlanPremium) && Rank(PlanPremium) < Rank(PlanElite)) {
		t.Fatalf("plan ranks out of order: free=%d premium=%d elite=%d",
			Rank(PlanFree), Rank(PlanPremium), Rank(PlanElite))
	}
}
