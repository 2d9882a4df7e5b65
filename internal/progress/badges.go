package progress

// Metric names a counter a badge threshold is compared against.
type Metric string

const (
	MetricStreak      Metric = "streak"
	MetricCompletions Metric = "completions"
)

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Metric      Metric `json:"metric"`
	Threshold   int    `json:"threshold"`
}

// Catalog is the fixed badge table. Evaluation is generic over it, so adding
// a badge means adding a row here and nothing else.
var Catalog = []Badge{
	{ID: "7daystreak", Name: "One Week Strong", Description: "Complete all habits 7 days in a row", Metric: MetricStreak, Threshold: 7},
	{ID: "30daystreak", Name: "Habit Master", Description: "Complete all habits 30 days in a row", Metric: MetricStreak, Threshold: 30},
	{ID: "100completions", Name: "Century Club", Description: "Log 100 habit completions", Metric: MetricCompletions, Threshold: 100},
	{ID: "500completions", Name: "Dedicated", Description: "Log 500 habit completions", Metric: MetricCompletions, Threshold: 500},
	{ID: "1000completions", Name: "Unstoppable", Description: "Log 1000 habit completions", Metric: MetricCompletions, Threshold: 1000},
}

// EvaluateBadges returns the badge ids newly earned given the freshly
// computed streak and completion totals. Badges already in existing are
// never returned again, and nothing is ever revoked; a streak dropping back
// to zero leaves earned streak badges in place.
func EvaluateBadges(currentStreak, totalCompletions int, existing []string) []string {
	have := make(map[string]bool, len(existing))
	for _, id := range existing {
		have[id] = true
	}

	newlyEarned := []string{}
	for _, b := range Catalog {
		if have[b.ID] {
			continue
		}
		var value int
		switch b.Metric {
		case MetricStreak:
			value = currentStreak
		case MetricCompletions:
			value = totalCompletions
		}
		if value >= b.Threshold {
			newlyEarned = append(newlyEarned, b.ID)
		}
	}
	return newlyEarned
}

// UnionBadges merges earned ids into the stored set, preserving stored order
// and deduplicating.
func UnionBadges(existing, earned []string) []string {
	seen := make(map[string]bool, len(existing)+len(earned))
	merged := make([]string, 0, len(existing)+len(earned))
	for _, id := range append(append([]string{}, existing...), earned...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}
	return merged
}
