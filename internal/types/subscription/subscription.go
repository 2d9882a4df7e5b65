package subscription

const (
	TierFree = "free"
	TierPro  = "pro"
)

// Limits describes the numeric caps a tier imposes. A zero value means
// the tier has no cap for that field.
type Limits struct {
	MaxHabits         int `json:"max_habits"`
	DailyAffirmations int `json:"daily_affirmations"`
}

var tierLimits = map[string]Limits{
	TierFree: {MaxHabits: 5, DailyAffirmations: 1},
	TierPro:  {},
}

// LimitsFor returns the caps for a tier. Unknown tiers fall back to the
// free tier so a bad value in the database can never unlock pro limits.
func LimitsFor(tier string) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[TierFree]
}

func IsValidTier(tier string) bool {
	_, ok := tierLimits[tier]
	return ok
}

type Status struct {
	Tier   string `json:"tier"`
	Limits Limits `json:"limits"`
}

type UpdateSubscriptionRequest struct {
	Tier string `json:"tier"`
}
