package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitNestAPI/internal/types/affirmation"
	"habitNestAPI/internal/types/subscription"
)

var ErrAffirmationLimitReached = errors.New("daily affirmation limit reached for current subscription tier")

type AffirmationService struct {
	db *pgxpool.Pool
}

func NewAffirmationService(db *pgxpool.Pool) *AffirmationService {
	return &AffirmationService{db: db}
}

// GetCatalog lists the built-in affirmations plus the user's own custom ones.
func (s *AffirmationService) GetCatalog(ctx context.Context, clerkID string) ([]*affirmation.Affirmation, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, text, category, is_custom, created_at
	FROM affirmations
	WHERE owner_id IS NULL OR owner_id = $1
	ORDER BY is_custom, category, created_at
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch affirmations: %w", err)
	}
	defer rows.Close()

	var affirmations []*affirmation.Affirmation
	for rows.Next() {
		a := &affirmation.Affirmation{}
		if err := rows.Scan(&a.ID, &a.Text, &a.Category, &a.IsCustom, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan affirmation: %w", err)
		}
		affirmations = append(affirmations, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating affirmations: %w", err)
	}

	return affirmations, nil
}

// GetDaily picks the affirmation of the day: a hash of (user, date) over the
// built-in catalog, so the pick is stable all day and differs per user.
func (s *AffirmationService) GetDaily(ctx context.Context, clerkID string) (*affirmation.DailyAffirmation, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM affirmations WHERE owner_id IS NULL`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count affirmations: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("affirmation catalog is empty")
	}

	today := time.Now().UTC().Format("2006-01-02")
	h := fnv.New32a()
	h.Write([]byte(userID.String() + today))
	offset := int(h.Sum32()) % count
	if offset < 0 {
		offset += count
	}

	query := `
	SELECT id, text, category, is_custom, created_at
	FROM affirmations
	WHERE owner_id IS NULL
	ORDER BY created_at, id
	OFFSET $1 LIMIT 1
	`

	daily := &affirmation.DailyAffirmation{Date: today}
	err = s.db.QueryRow(ctx, query, offset).Scan(
		&daily.ID,
		&daily.Text,
		&daily.Category,
		&daily.IsCustom,
		&daily.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily affirmation: %w", err)
	}

	return daily, nil
}

// CreateAffirmation adds a user-authored affirmation. Free-tier users are
// capped per calendar day; the count and insert share a transaction with the
// user row locked so concurrent creates cannot both pass the cap.
func (s *AffirmationService) CreateAffirmation(ctx context.Context, clerkID string, req *affirmation.CreateAffirmationRequest) (*affirmation.Affirmation, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("affirmation text is required")
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var tier string
	if err := s.db.QueryRow(ctx, `SELECT subscription_tier FROM users WHERE id = $1`, userID).Scan(&tier); err != nil {
		return nil, fmt.Errorf("failed to get subscription tier: %w", err)
	}
	limits := subscription.LimitsFor(tier)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if limits.DailyAffirmations > 0 {
		if _, err := tx.Exec(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
			return nil, fmt.Errorf("failed to lock user row: %w", err)
		}

		var todayCount int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM affirmations WHERE owner_id = $1 AND created_at::date = CURRENT_DATE`,
			userID).Scan(&todayCount)
		if err != nil {
			return nil, fmt.Errorf("failed to count affirmations: %w", err)
		}
		if todayCount >= limits.DailyAffirmations {
			return nil, ErrAffirmationLimitReached
		}
	}

	category := req.Category
	if category == "" {
		category = "personal"
	}

	a := &affirmation.Affirmation{}
	query := `
	INSERT INTO affirmations (id, owner_id, text, category, is_custom, created_at)
	VALUES ($1, $2, $3, $4, true, NOW())
	RETURNING id, text, category, is_custom, created_at
	`
	err = tx.QueryRow(ctx, query, uuid.New(), userID, req.Text, category).Scan(
		&a.ID,
		&a.Text,
		&a.Category,
		&a.IsCustom,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create affirmation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}

	return a, nil
}

func (s *AffirmationService) GetFavorites(ctx context.Context, clerkID string) ([]*affirmation.FavoriteWithText, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT f.id, f.user_id, f.affirmation_id, f.saved_at, a.text, a.category
	FROM affirmation_favorites f
	JOIN affirmations a ON a.id = f.affirmation_id
	WHERE f.user_id = $1
	ORDER BY f.saved_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*affirmation.FavoriteWithText
	for rows.Next() {
		f := &affirmation.FavoriteWithText{}
		err := rows.Scan(&f.ID, &f.UserID, &f.AffirmationID, &f.SavedAt, &f.Text, &f.Category)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}

	return favorites, nil
}

func (s *AffirmationService) AddFavorite(ctx context.Context, clerkID string, affirmationID string) (*affirmation.Favorite, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	affirmationUUID, err := uuid.Parse(affirmationID)
	if err != nil {
		return nil, fmt.Errorf("invalid affirmation id")
	}

	query := `
	INSERT INTO affirmation_favorites (id, user_id, affirmation_id, saved_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, affirmation_id) DO UPDATE SET saved_at = affirmation_favorites.saved_at
	RETURNING id, user_id, affirmation_id, saved_at
	`

	f := &affirmation.Favorite{}
	err = s.db.QueryRow(ctx, query, uuid.New(), userID, affirmationUUID).Scan(
		&f.ID,
		&f.UserID,
		&f.AffirmationID,
		&f.SavedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save favorite: %w", err)
	}

	return f, nil
}

func (s *AffirmationService) RemoveFavorite(ctx context.Context, clerkID string, affirmationID string) error {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	affirmationUUID, err := uuid.Parse(affirmationID)
	if err != nil {
		return fmt.Errorf("invalid affirmation id")
	}

	result, err := s.db.Exec(ctx,
		`DELETE FROM affirmation_favorites WHERE user_id = $1 AND affirmation_id = $2`,
		userID, affirmationUUID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("favorite not found")
	}

	return nil
}
