package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitNestAPI/internal/types/habit"
	"habitNestAPI/services"
	"habitNestAPI/tests/helpers"
)

// seedHabitWithHistory creates a habit and marks it completed for each of
// the given day offsets relative to today (0 = today, 1 = yesterday...).
func seedHabitWithHistory(t *testing.T, habitService *services.HabitService, clerkID, title string, dayOffsets []int) string {
	t.Helper()
	ctx := context.Background()

	created, err := habitService.CreateHabit(ctx, clerkID, &habit.CreateHabitRequest{Title: title})
	require.NoError(t, err)

	for _, offset := range dayOffsets {
		date := time.Now().AddDate(0, 0, -offset).Format("2006-01-02")
		_, err := habitService.ToggleCompletion(ctx, clerkID, created.ID.String(), &habit.ToggleCompletionRequest{
			Date:      date,
			Completed: true,
		})
		require.NoError(t, err)
	}

	return created.ID.String()
}

func TestRecalculate_FullCycle(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	clerkID := "user_progress_" + time.Now().Format("20060102150405")
	helpers.SeedTestUser(t, pool, clerkID)

	habitService := services.NewHabitService(pool)
	progressService := services.NewProgressService(pool)

	// Two habits, both done today and yesterday; only one done two days ago.
	seedHabitWithHistory(t, habitService, clerkID, "Meditate", []int{0, 1, 2})
	seedHabitWithHistory(t, habitService, clerkID, "Read", []int{0, 1})

	ctx := context.Background()
	result, err := progressService.Recalculate(ctx, clerkID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.CurrentStreak)
	assert.GreaterOrEqual(t, result.LongestStreak, 2)
	assert.Equal(t, 5, result.TotalCompletions)
	assert.Empty(t, result.BadgesAwarded)
}

func TestRecalculate_Idempotent(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	clerkID := "user_idem_" + time.Now().Format("20060102150405")
	helpers.SeedTestUser(t, pool, clerkID)

	habitService := services.NewHabitService(pool)
	progressService := services.NewProgressService(pool)

	seedHabitWithHistory(t, habitService, clerkID, "Stretch", []int{0, 1, 2})

	ctx := context.Background()
	first, err := progressService.Recalculate(ctx, clerkID)
	require.NoError(t, err)
	second, err := progressService.Recalculate(ctx, clerkID)
	require.NoError(t, err)

	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)
	assert.Equal(t, first.LongestStreak, second.LongestStreak)
	assert.Equal(t, first.TotalCompletions, second.TotalCompletions)
	// The first call may award badges; the second must not re-award them.
	assert.Empty(t, second.BadgesAwarded)
}

func TestRecalculate_LongestStreakNeverDecreases(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	clerkID := "user_longest_" + time.Now().Format("20060102150405")
	helpers.SeedTestUser(t, pool, clerkID)

	habitService := services.NewHabitService(pool)
	progressService := services.NewProgressService(pool)

	habitID := seedHabitWithHistory(t, habitService, clerkID, "Run", []int{0, 1, 2, 3})

	ctx := context.Background()
	first, err := progressService.Recalculate(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 4, first.CurrentStreak)
	assert.Equal(t, 4, first.LongestStreak)

	// Un-complete today: current streak drops, longest must not.
	today := time.Now().Format("2006-01-02")
	_, err = habitService.ToggleCompletion(ctx, clerkID, habitID, &habit.ToggleCompletionRequest{
		Date:      today,
		Completed: false,
	})
	require.NoError(t, err)

	second, err := progressService.Recalculate(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 3, second.CurrentStreak)
	assert.Equal(t, 4, second.LongestStreak)
}

func TestRecalculate_NoActiveHabits(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	clerkID := "user_nohabits_" + time.Now().Format("20060102150405")
	helpers.SeedTestUser(t, pool, clerkID)

	progressService := services.NewProgressService(pool)

	ctx := context.Background()
	result, err := progressService.Recalculate(ctx, clerkID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, 0, result.LongestStreak)
	assert.Equal(t, 0, result.TotalCompletions)
	assert.Empty(t, result.BadgesAwarded)
}

func TestRecalculate_ArchivedHabitStopsCounting(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	clerkID := "user_archived_" + time.Now().Format("20060102150405")
	helpers.SeedTestUser(t, pool, clerkID)

	habitService := services.NewHabitService(pool)
	progressService := services.NewProgressService(pool)

	seedHabitWithHistory(t, habitService, clerkID, "Keep", []int{0, 1})
	abandoned := seedHabitWithHistory(t, habitService, clerkID, "Abandon", []int{5, 6})

	ctx := context.Background()
	// With both habits active neither day is fully complete.
	result, err := progressService.Recalculate(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CurrentStreak)

	// Soft-delete the abandoned habit; the kept habit's run now counts.
	require.NoError(t, habitService.DeleteHabit(ctx, clerkID, abandoned))

	result, err = progressService.Recalculate(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CurrentStreak)
}

func TestGetProgress_LazyCreatesZeroedRow(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	clerkID := "user_lazy_" + time.Now().Format("20060102150405")
	helpers.SeedTestUser(t, pool, clerkID)

	progressService := services.NewProgressService(pool)

	ctx := context.Background()
	p, err := progressService.GetProgress(ctx, clerkID)
	require.NoError(t, err)

	assert.Equal(t, 0, p.CurrentStreak)
	assert.Equal(t, 0, p.LongestStreak)
	assert.Equal(t, 0, p.TotalCompletions)
	require.NotEmpty(t, p.Badges)
	for _, b := range p.Badges {
		assert.False(t, b.Earned)
	}
}

func TestRecalculate_BadgeUnion(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	clerkID := "user_badges_" + time.Now().Format("20060102150405")
	helpers.SeedTestUser(t, pool, clerkID)

	habitService := services.NewHabitService(pool)
	progressService := services.NewProgressService(pool)

	// Seven consecutive days earns the 7-day streak badge.
	offsets := []int{0, 1, 2, 3, 4, 5, 6}
	habitID := seedHabitWithHistory(t, habitService, clerkID, "Journal", offsets)

	ctx := context.Background()
	first, err := progressService.Recalculate(ctx, clerkID)
	require.NoError(t, err)
	assert.Contains(t, first.BadgesAwarded, "7daystreak")

	// Break the streak; the badge must survive in the stored set.
	today := time.Now().Format("2006-01-02")
	_, err = habitService.ToggleCompletion(ctx, clerkID, habitID, &habit.ToggleCompletionRequest{
		Date:      today,
		Completed: false,
	})
	require.NoError(t, err)

	_, err = progressService.Recalculate(ctx, clerkID)
	require.NoError(t, err)

	p, err := progressService.GetProgress(ctx, clerkID)
	require.NoError(t, err)
	for _, b := range p.Badges {
		if b.ID == "7daystreak" {
			assert.True(t, b.Earned)
		}
	}
}
