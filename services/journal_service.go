package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitNestAPI/internal/types/journal"
)

type JournalService struct {
	db *pgxpool.Pool
}

func NewJournalService(db *pgxpool.Pool) *JournalService {
	return &JournalService{db: db}
}

// GetEntries lists the user's journal newest first. When year and month are
// both nonzero the list is scoped to that month.
func (s *JournalService) GetEntries(ctx context.Context, clerkID string, year int, month int) ([]*journal.Entry, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, title, content, mood, entry_date, created_at, updated_at
	FROM journal_entries
	WHERE user_id = $1
	`
	args := []any{userID}

	if year != 0 && month != 0 {
		startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		endDate := startDate.AddDate(0, 1, -1)
		query += ` AND entry_date >= $2 AND entry_date <= $3`
		args = append(args, startDate, endDate)
	}
	query += ` ORDER BY entry_date DESC, created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*journal.Entry
	for rows.Next() {
		e := &journal.Entry{}
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Title,
			&e.Content,
			&e.Mood,
			&e.EntryDate,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}

	return entries, nil
}

func (s *JournalService) CreateEntry(ctx context.Context, clerkID string, req *journal.CreateEntryRequest) (*journal.Entry, error) {
	if req.Content == "" {
		return nil, fmt.Errorf("journal content is required")
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	entryDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil || parsed.Format("2006-01-02") != req.Date {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", req.Date)
		}
		entryDate = parsed
	}

	query := `
	INSERT INTO journal_entries (id, user_id, title, content, mood, entry_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING id, user_id, title, content, mood, entry_date, created_at, updated_at
	`

	e := &journal.Entry{}
	err = s.db.QueryRow(ctx, query, uuid.New(), userID, req.Title, req.Content, req.Mood, entryDate).Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&e.Content,
		&e.Mood,
		&e.EntryDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	return e, nil
}

func (s *JournalService) UpdateEntry(ctx context.Context, clerkID string, entryID string, req *journal.UpdateEntryRequest) (*journal.Entry, error) {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	entryUUID, err := uuid.Parse(entryID)
	if err != nil {
		return nil, fmt.Errorf("invalid entry id")
	}

	query := `
	UPDATE journal_entries
	SET
		title = COALESCE(NULLIF($3, ''), title),
		content = COALESCE(NULLIF($4, ''), content),
		mood = COALESCE($5, mood),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, title, content, mood, entry_date, created_at, updated_at
	`

	e := &journal.Entry{}
	err = s.db.QueryRow(ctx, query, entryUUID, userID, req.Title, req.Content, req.Mood).Scan(
		&e.ID,
		&e.UserID,
		&e.Title,
		&e.Content,
		&e.Mood,
		&e.EntryDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("journal entry not found")
		}
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}

	return e, nil
}

func (s *JournalService) DeleteEntry(ctx context.Context, clerkID string, entryID string) error {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	entryUUID, err := uuid.Parse(entryID)
	if err != nil {
		return fmt.Errorf("invalid entry id")
	}

	result, err := s.db.Exec(ctx,
		`DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`,
		entryUUID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("journal entry not found")
	}

	return nil
}
