package affirmation

import (
	"time"

	"github.com/google/uuid"
)

type Affirmation struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	Category  string    `json:"category" db:"category"`
	IsCustom  bool      `json:"is_custom" db:"is_custom"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type DailyAffirmation struct {
	Affirmation
	Date string `json:"date"`
}

type Favorite struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	AffirmationID uuid.UUID `json:"affirmation_id" db:"affirmation_id"`
	SavedAt       time.Time `json:"saved_at" db:"saved_at"`
}

type FavoriteWithText struct {
	Favorite
	Text     string `json:"text"`
	Category string `json:"category"`
}

type AddFavoriteRequest struct {
	AffirmationID string `json:"affirmation_id"`
}

type CreateAffirmationRequest struct {
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
}
