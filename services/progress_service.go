package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitNestAPI/internal/progress"
)

type ProgressService struct {
	db *pgxpool.Pool

	// now is swappable in tests; the streak walk needs a reference date and
	// must not read the clock itself.
	now func() time.Time
}

func NewProgressService(db *pgxpool.Pool) *ProgressService {
	return &ProgressService{db: db, now: time.Now}
}

// GetProgress reads the stored progress row without recalculating, lazily
// creating a zeroed row on first read, and annotates the full badge catalog
// with earned flags.
func (s *ProgressService) GetProgress(ctx context.Context, clerkID string) (*progress.ProgressResponse, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := loadOrCreateProgress(ctx, tx, userID, false)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}

	earned := make(map[string]bool, len(p.Badges))
	for _, id := range p.Badges {
		earned[id] = true
	}

	badges := make([]*progress.BadgeWithStatus, 0, len(progress.Catalog))
	for _, b := range progress.Catalog {
		badges = append(badges, &progress.BadgeWithStatus{Badge: b, Earned: earned[b.ID]})
	}

	return &progress.ProgressResponse{
		CurrentStreak:    p.CurrentStreak,
		LongestStreak:    p.LongestStreak,
		TotalCompletions: p.TotalCompletions,
		Badges:           badges,
	}, nil
}

// Recalculate runs the full read-compute-write cycle: load completions,
// recompute streaks and totals, evaluate badges, persist. The whole cycle
// runs in one transaction with the progress row locked FOR UPDATE, so two
// concurrent calls for the same user cannot lose a longest-streak peak or
// drop a badge from the union.
func (s *ProgressService) Recalculate(ctx context.Context, clerkID string) (*progress.RecalculateResponse, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stored, err := loadOrCreateProgress(ctx, tx, userID, true)
	if err != nil {
		return nil, err
	}

	var totalHabits int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM habits WHERE user_id = $1 AND is_active = true`,
		userID).Scan(&totalHabits)
	if err != nil {
		return nil, fmt.Errorf("failed to count habits: %w", err)
	}

	// No active habits: report zeroes, leave longest streak and badges as
	// stored. The zeroed current streak is persisted so reads agree with
	// this response.
	if totalHabits == 0 {
		_, err = tx.Exec(ctx,
			`UPDATE user_progress SET current_streak = 0, total_completions = 0, updated_at = NOW() WHERE user_id = $1`,
			userID)
		if err != nil {
			return nil, fmt.Errorf("failed to persist progress: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("transaction commit failed: %w", err)
		}
		return &progress.RecalculateResponse{
			CurrentStreak:    0,
			LongestStreak:    stored.LongestStreak,
			TotalCompletions: 0,
			BadgesAwarded:    []string{},
		}, nil
	}

	records, err := loadCompletions(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	totalCompletions := 0
	for _, r := range records {
		if r.Completed {
			totalCompletions++
		}
	}

	current, longest := progress.CalculateStreaks(records, totalHabits, s.now())
	if stored.LongestStreak > longest {
		longest = stored.LongestStreak
	}

	awarded := progress.EvaluateBadges(current, totalCompletions, stored.Badges)
	merged := progress.UnionBadges(stored.Badges, awarded)

	badgesJSON, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode badges: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_progress
		SET current_streak = $2,
			longest_streak = $3,
			total_completions = $4,
			badges = $5,
			updated_at = NOW()
		WHERE user_id = $1
	`, userID, current, longest, totalCompletions, badgesJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to persist progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}

	return &progress.RecalculateResponse{
		CurrentStreak:    current,
		LongestStreak:    longest,
		TotalCompletions: totalCompletions,
		BadgesAwarded:    awarded,
	}, nil
}

// loadOrCreateProgress fetches the user's progress row inside tx, inserting
// a zeroed one if absent. With forUpdate the row is locked for the rest of
// the transaction.
func loadOrCreateProgress(ctx context.Context, tx pgx.Tx, userID uuid.UUID, forUpdate bool) (*progress.UserProgress, error) {
	query := `
	SELECT id, user_id, current_streak, longest_streak, total_completions, badges, created_at, updated_at
	FROM user_progress
	WHERE user_id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	p := &progress.UserProgress{}
	var badgesJSON []byte
	err := tx.QueryRow(ctx, query, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.CurrentStreak,
		&p.LongestStreak,
		&p.TotalCompletions,
		&badgesJSON,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		insert := `
		INSERT INTO user_progress (id, user_id, current_streak, longest_streak, total_completions, badges, created_at, updated_at)
		VALUES ($1, $2, 0, 0, 0, '[]'::jsonb, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = user_progress.updated_at
		RETURNING id, user_id, current_streak, longest_streak, total_completions, badges, created_at, updated_at
		`
		err = tx.QueryRow(ctx, insert, uuid.New(), userID).Scan(
			&p.ID,
			&p.UserID,
			&p.CurrentStreak,
			&p.LongestStreak,
			&p.TotalCompletions,
			&badgesJSON,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	p.Badges = []string{}
	if len(badgesJSON) > 0 {
		if err := json.Unmarshal(badgesJSON, &p.Badges); err != nil {
			return nil, fmt.Errorf("failed to decode badges: %w", err)
		}
	}

	return p, nil
}

// loadCompletions reads the user's entire completion history for active
// habits. Deliberately unbounded: the streak walk needs the full history,
// unlike the month-scoped calendar read.
func loadCompletions(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]progress.CompletionRecord, error) {
	query := `
	SELECT hc.habit_id, hc.date, hc.completed
	FROM habit_completions hc
	JOIN habits h ON h.id = hc.habit_id
	WHERE h.user_id = $1 AND h.is_active = true
	`

	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions: %w", err)
	}
	defer rows.Close()

	var records []progress.CompletionRecord
	for rows.Next() {
		var r progress.CompletionRecord
		if err := rows.Scan(&r.HabitID, &r.Date, &r.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completions: %w", err)
	}

	return records, nil
}
