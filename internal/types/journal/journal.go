package journal

import (
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Mood      *string   `json:"mood" db:"mood"`
	EntryDate time.Time `json:"entry_date" db:"entry_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateEntryRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Mood    *string `json:"mood,omitempty"`
	Date    string  `json:"date,omitempty"`
}

type UpdateEntryRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Mood    *string `json:"mood,omitempty"`
}
