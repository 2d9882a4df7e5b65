package habit

import (
	"time"

	"github.com/google/uuid"
)

type Habit struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Color     string    `json:"color" db:"color"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HabitWithToday is a habit plus its completion state for the current date,
// which is what the habit list screen renders.
type HabitWithToday struct {
	Habit
	CompletedToday bool `json:"completed_today"`
}

type Completion struct {
	ID        uuid.UUID `json:"id" db:"id"`
	HabitID   uuid.UUID `json:"habit_id" db:"habit_id"`
	Date      time.Time `json:"date" db:"date"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateHabitRequest struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

type UpdateHabitRequest struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

type ReorderRequest struct {
	HabitIDs []string `json:"habit_ids"`
}

// ToggleCompletionRequest marks a habit done or not done for a date.
// Date is optional and defaults to today; when present it must be a
// canonical YYYY-MM-DD string.
type ToggleCompletionRequest struct {
	Date      string `json:"date,omitempty"`
	Completed bool   `json:"completed"`
}
