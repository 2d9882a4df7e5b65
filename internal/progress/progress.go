package progress

import (
	"time"

	"github.com/google/uuid"
)

// UserProgress is the single persisted progress row per user. Badges holds
// the earned badge identifiers as stored in the jsonb column; the set only
// ever grows.
type UserProgress struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	CurrentStreak    int       `json:"current_streak" db:"current_streak"`
	LongestStreak    int       `json:"longest_streak" db:"longest_streak"`
	TotalCompletions int       `json:"total_completions" db:"total_completions"`
	Badges           []string  `json:"badges" db:"badges"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// CompletionRecord is the slice of a habit completion the streak math needs.
type CompletionRecord struct {
	HabitID   uuid.UUID
	Date      time.Time
	Completed bool
}

type BadgeWithStatus struct {
	Badge
	Earned bool `json:"earned"`
}

type ProgressResponse struct {
	CurrentStreak    int                `json:"current_streak"`
	LongestStreak    int                `json:"longest_streak"`
	TotalCompletions int                `json:"total_completions"`
	Badges           []*BadgeWithStatus `json:"badges"`
}

type RecalculateResponse struct {
	CurrentStreak    int      `json:"currentStreak"`
	LongestStreak    int      `json:"longestStreak"`
	TotalCompletions int      `json:"totalCompletions"`
	BadgesAwarded    []string `json:"badgesAwarded"`
}
