package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitNestAPI/internal/types/calendar"
	"habitNestAPI/internal/types/habit"
	"habitNestAPI/internal/types/subscription"
)

var ErrHabitLimitReached = errors.New("habit limit reached for current subscription tier")

type HabitService struct {
	db *pgxpool.Pool
}

func NewHabitService(db *pgxpool.Pool) *HabitService {
	return &HabitService{db: db}
}

// GetHabits returns the user's active habits in sort order, each annotated
// with whether it has been completed today.
func (s *HabitService) GetHabits(ctx context.Context, clerkID string) ([]*habit.HabitWithToday, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		h.id,
		h.user_id,
		h.title,
		h.color,
		h.is_active,
		h.sort_order,
		h.created_at,
		h.updated_at,
		COALESCE(hc.completed, false) AS completed_today
	FROM habits h
	LEFT JOIN habit_completions hc ON hc.habit_id = h.id AND hc.date = CURRENT_DATE
	WHERE h.user_id = $1 AND h.is_active = true
	ORDER BY h.sort_order, h.created_at
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch habits: %w", err)
	}
	defer rows.Close()

	var habits []*habit.HabitWithToday
	for rows.Next() {
		h := &habit.HabitWithToday{}
		err := rows.Scan(
			&h.ID,
			&h.UserID,
			&h.Title,
			&h.Color,
			&h.IsActive,
			&h.SortOrder,
			&h.CreatedAt,
			&h.UpdatedAt,
			&h.CompletedToday,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habits: %w", err)
	}

	return habits, nil
}

// CreateHabit inserts a new habit at the end of the sort order. Free-tier
// users are capped on active habit count; the count and the insert run in
// one transaction so two concurrent creates cannot both slip under the cap.
func (s *HabitService) CreateHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("habit title is required")
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

	if limits.MaxHabits > 0 {
		// Lock the user row so the count-then-insert pair is serialized per
		// user.
		if _, err := tx.Exec(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
			return nil, fmt.Errorf("failed to lock user row: %w", err)
		}

		var activeCount int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM habits WHERE user_id = $1 AND is_active = true`,
			userID).Scan(&activeCount)
		if err != nil {
			return nil, fmt.Errorf("failed to count habits: %w", err)
		}
		if activeCount >= limits.MaxHabits {
			return nil, ErrHabitLimitReached
		}
	}

	color := req.Color
	if color == "" {
		color = "#6C5CE7"
	}

	h := &habit.Habit{}
	query := `
	INSERT INTO habits (id, user_id, title, color, is_active, sort_order, created_at, updated_at)
	VALUES ($1, $2, $3, $4, true,
		COALESCE((SELECT MAX(sort_order) + 1 FROM habits WHERE user_id = $2), 0),
		NOW(), NOW())
	RETURNING id, user_id, title, color, is_active, sort_order, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query, uuid.New(), userID, req.Title, color).Scan(
		&h.ID,
		&h.UserID,
		&h.Title,
		&h.Color,
		&h.IsActive,
		&h.SortOrder,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("transaction commit failed: %w", err)
	}

	return h, nil
}

func (s *HabitService) UpdateHabit(ctx context.Context, clerkID string, habitID string, req *habit.UpdateHabitRequest) (*habit.Habit, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	habitUUID, err := uuid.Parse(habitID)
	if err != nil {
		return nil, fmt.Errorf("invalid habit id")
	}

	query := `
	UPDATE habits
	SET
		title = COALESCE(NULLIF($3, ''), title),
		color = COALESCE(NULLIF($4, ''), color),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND is_active = true
	RETURNING id, user_id, title, color, is_active, sort_order, created_at, updated_at
	`

	h := &habit.Habit{}
	err = s.db.QueryRow(ctx, query, habitUUID, userID, req.Title, req.Color).Scan(
		&h.ID,
		&h.UserID,
		&h.Title,
		&h.Color,
		&h.IsActive,
		&h.SortOrder,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("habit not found")
		}
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	return h, nil
}

// DeleteHabit soft-deletes by flipping is_active. Completion history is kept
// so past streak data stays intact.
func (s *HabitService) DeleteHabit(ctx context.Context, clerkID string, habitID string) error {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	habitUUID, err := uuid.Parse(habitID)
	if err != nil {
		return fmt.Errorf("invalid habit id")
	}

	result, err := s.db.Exec(ctx,
		`UPDATE habits SET is_active = false, updated_at = NOW() WHERE id = $1 AND user_id = $2 AND is_active = true`,
		habitUUID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("habit not found")
	}

	return nil
}

func (s *HabitService) ReorderHabits(ctx context.Context, clerkID string, habitIDs []string) error {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, id := range habitIDs {
		habitUUID, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("invalid habit id %q", id)
		}
		_, err = tx.Exec(ctx,
			`UPDATE habits SET sort_order = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
			habitUUID, userID, i)
		if err != nil {
			return fmt.Errorf("failed to reorder habit: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

// ToggleCompletion upserts the (habit, date) completion record. The date
// defaults to today and must be canonical YYYY-MM-DD; anything else is
// rejected here so the completion table never holds ambiguous dates.
func (s *HabitService) ToggleCompletion(ctx context.Context, clerkID string, habitID string, req *habit.ToggleCompletionRequest) (*habit.Completion, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	habitUUID, err := uuid.Parse(habitID)
	if err != nil {
		return nil, fmt.Errorf("invalid habit id")
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil || parsed.Format("2006-01-02") != req.Date {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", req.Date)
		}
		date = parsed
	}

	// Ownership check before the write; a habit id belonging to another
	// user must look identical to one that does not exist.
	var owned bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM habits WHERE id = $1 AND user_id = $2)`,
		habitUUID, userID).Scan(&owned)
	if err != nil {
		return nil, fmt.Errorf("failed to check habit: %w", err)
	}
	if !owned {
		return nil, fmt.Errorf("habit not found")
	}

	query := `
	INSERT INTO habit_completions (id, habit_id, date, completed, created_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW(), NOW())
	ON CONFLICT (habit_id, date)
	DO UPDATE SET
		completed = $4,
		updated_at = NOW()
	RETURNING id, habit_id, date, completed, created_at, updated_at
	`

	c := &habit.Completion{}
	err = s.db.QueryRow(ctx, query, uuid.New(), habitUUID, date, req.Completed).Scan(
		&c.ID,
		&c.HabitID,
		&c.Date,
		&c.Completed,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle completion: %w", err)
	}

	return c, nil
}

// GetCalendar returns one month of per-day completion state across the
// user's active habits. This read is range-scoped, unlike the recalculation
// path which always loads the full history.
func (s *HabitService) GetCalendar(ctx context.Context, clerkID string, year int, month int) (*calendar.CalendarResponse, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	var totalHabits int
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM habits WHERE user_id = $1 AND is_active = true`,
		userID).Scan(&totalHabits)
	if err != nil {
		return nil, fmt.Errorf("failed to count habits: %w", err)
	}

	query := `
	SELECT hc.habit_id, hc.date, hc.completed
	FROM habit_completions hc
	JOIN habits h ON h.id = hc.habit_id
	WHERE h.user_id = $1
		AND h.is_active = true
		AND hc.date >= $2
		AND hc.date <= $3
	ORDER BY hc.date
	`

	rows, err := s.db.Query(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer rows.Close()

	type dayEntry struct {
		habits    []calendar.HabitDay
		completed int
	}
	dayMap := make(map[string]*dayEntry)
	for rows.Next() {
		var habitID uuid.UUID
		var date time.Time
		var completed bool
		if err := rows.Scan(&habitID, &date, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		key := date.Format("2006-01-02")
		entry, ok := dayMap[key]
		if !ok {
			entry = &dayEntry{}
			dayMap[key] = entry
		}
		entry.habits = append(entry.habits, calendar.HabitDay{HabitID: habitID.String(), Completed: completed})
		if completed {
			entry.completed++
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar rows: %w", err)
	}

	var days []*calendar.CalendarDay
	today := time.Now().UTC().Format("2006-01-02")

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		day := &calendar.CalendarDay{
			Date:    d,
			IsToday: dateStr == today,
		}
		if entry, ok := dayMap[dateStr]; ok {
			day.Habits = entry.habits
			day.AllDone = totalHabits > 0 && entry.completed == totalHabits
		}
		days = append(days, day)
	}

	return &calendar.CalendarResponse{
		Year:  year,
		Month: month,
		Days:  days,
	}, nil
}
