package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateBadges_FirstHundredCompletions(t *testing.T) {
	earned := EvaluateBadges(0, 100, nil)
	assert.Contains(t, earned, "100completions")
	assert.NotContains(t, earned, "500completions")
	assert.NotContains(t, earned, "1000completions")
}

func TestEvaluateBadges_StreakThresholds(t *testing.T) {
	earned := EvaluateBadges(7, 0, nil)
	assert.Equal(t, []string{"7daystreak"}, earned)

	earned = EvaluateBadges(30, 0, nil)
	assert.ElementsMatch(t, []string{"7daystreak", "30daystreak"}, earned)
}

func TestEvaluateBadges_AlreadyEarnedNotRepeated(t *testing.T) {
	earned := EvaluateBadges(12, 250, []string{"7daystreak", "100completions"})
	assert.Empty(t, earned)
}

func TestEvaluateBadges_NothingBelowThreshold(t *testing.T) {
	earned := EvaluateBadges(6, 99, nil)
	assert.Empty(t, earned)
}

func TestEvaluateBadges_StreakResetKeepsBadges(t *testing.T) {
	// Streak back to zero: no additions, and nothing is ever removed since
	// the evaluator only returns new ids.
	existing := []string{"7daystreak", "30daystreak"}
	earned := EvaluateBadges(0, 50, existing)
	assert.Empty(t, earned)
	assert.Equal(t, []string{"7daystreak", "30daystreak"}, UnionBadges(existing, earned))
}

func TestUnionBadges_Dedupes(t *testing.T) {
	merged := UnionBadges([]string{"7daystreak"}, []string{"7daystreak", "100completions"})
	assert.Equal(t, []string{"7daystreak", "100completions"}, merged)
}

func TestCatalogIdsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range Catalog {
		assert.False(t, seen[b.ID], "duplicate badge id %s", b.ID)
		seen[b.ID] = true
	}
}
