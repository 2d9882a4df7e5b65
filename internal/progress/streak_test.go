package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func records(dates map[string]int) []CompletionRecord {
	var recs []CompletionRecord
	for d, completed := range dates {
		date, _ := time.Parse("2006-01-02", d)
		for i := 0; i < completed; i++ {
			recs = append(recs, CompletionRecord{HabitID: uuid.New(), Date: date, Completed: true})
		}
	}
	return recs
}

func TestCalculateStreaks_NoHabits(t *testing.T) {
	today := day(t, "2026-03-10")

	current, longest := CalculateStreaks(records(map[string]int{"2026-03-09": 1}), 0, today)
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)

	current, longest = CalculateStreaks(nil, 3, today)
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}

func TestCalculateStreaks_AllHabitsRequired(t *testing.T) {
	today := day(t, "2026-03-10")

	// 3 habits, but only 2 done on the most recent day.
	recs := records(map[string]int{"2026-03-10": 2})
	current, longest := CalculateStreaks(recs, 3, today)
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}

func TestCalculateStreaks_PartialDayBreaksRun(t *testing.T) {
	today := day(t, "2026-03-10")

	// Two habits: today and yesterday fully done, two days ago only one of two.
	recs := records(map[string]int{
		"2026-03-10": 2,
		"2026-03-09": 2,
		"2026-03-08": 1,
	})
	current, longest := CalculateStreaks(recs, 2, today)
	assert.Equal(t, 2, current)
	assert.GreaterOrEqual(t, longest, 2)
}

func TestCalculateStreaks_GapToleranceBoundary(t *testing.T) {
	// Completions on day 1 and day 3, day 2 missing entirely. Walking back
	// from day 3 the streak must stop there: a 2-day gap breaks it.
	today := day(t, "2026-03-03")
	recs := records(map[string]int{
		"2026-03-03": 1,
		"2026-03-01": 1,
	})
	current, _ := CalculateStreaks(recs, 1, today)
	assert.Equal(t, 1, current)
}

func TestCalculateStreaks_YesterdayKeepsStreakAlive(t *testing.T) {
	// No entry yet for today; the streak ending yesterday still counts.
	today := day(t, "2026-03-10")
	recs := records(map[string]int{
		"2026-03-09": 1,
		"2026-03-08": 1,
		"2026-03-07": 1,
	})
	current, longest := CalculateStreaks(recs, 1, today)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestCalculateStreaks_TwoDayOldHistoryIsStale(t *testing.T) {
	today := day(t, "2026-03-10")
	recs := records(map[string]int{
		"2026-03-08": 1,
		"2026-03-07": 1,
	})
	current, longest := CalculateStreaks(recs, 1, today)
	assert.Equal(t, 0, current)
	assert.Equal(t, 2, longest)
}

func TestCalculateStreaks_IncompleteTodayIsSkippedNotFatal(t *testing.T) {
	// Today has one of two habits done; the finished run through yesterday
	// must still be the current streak.
	today := day(t, "2026-03-10")
	recs := records(map[string]int{
		"2026-03-10": 1,
		"2026-03-09": 2,
		"2026-03-08": 2,
	})
	current, _ := CalculateStreaks(recs, 2, today)
	assert.Equal(t, 2, current)
}

func TestCalculateStreaks_LongestSurvivesReset(t *testing.T) {
	// A long historical run with a gap before a short recent run.
	today := day(t, "2026-03-10")
	recs := records(map[string]int{
		"2026-03-01": 1,
		"2026-03-02": 1,
		"2026-03-03": 1,
		"2026-03-04": 1,
		"2026-03-05": 1,
		"2026-03-09": 1,
		"2026-03-10": 1,
	})
	current, longest := CalculateStreaks(recs, 1, today)
	assert.Equal(t, 2, current)
	assert.Equal(t, 5, longest)
}

func TestCalculateStreaks_IncompletedRecordsDoNotCount(t *testing.T) {
	today := day(t, "2026-03-10")
	recs := []CompletionRecord{
		{HabitID: uuid.New(), Date: day(t, "2026-03-10"), Completed: true},
		{HabitID: uuid.New(), Date: day(t, "2026-03-10"), Completed: false},
	}
	current, longest := CalculateStreaks(recs, 2, today)
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}

func TestCalculateStreaks_FutureDatedRecordsDoNotAnchor(t *testing.T) {
	// A completion toggled for a date after the reference date must not
	// start a streak or earn streak credit.
	today := day(t, "2026-03-10")
	recs := records(map[string]int{"2026-04-09": 1})
	current, longest := CalculateStreaks(recs, 1, today)
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}

func TestCalculateStreaks_FutureRunDoesNotInflateLongest(t *testing.T) {
	// A run of future-dated completions is invisible to both walks; only
	// today's completion counts.
	today := day(t, "2026-03-10")
	recs := records(map[string]int{
		"2026-03-13": 1,
		"2026-03-12": 1,
		"2026-03-11": 1,
		"2026-03-10": 1,
	})
	current, longest := CalculateStreaks(recs, 1, today)
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, longest)
}

func TestCalculateStreaks_ReferenceDateUsesUTCDay(t *testing.T) {
	// A reference time whose local calendar day is already one ahead of the
	// UTC day. Completion dates are written against the UTC day, so the walk
	// must judge "yesterday" against 03-10, not 03-11.
	loc := time.FixedZone("UTC+14", 14*3600)
	today := time.Date(2026, 3, 11, 1, 0, 0, 0, loc) // 2026-03-10T11:00Z
	recs := records(map[string]int{"2026-03-09": 1})
	current, _ := CalculateStreaks(recs, 1, today)
	assert.Equal(t, 1, current)
}

func TestCalculateStreaks_Deterministic(t *testing.T) {
	today := day(t, "2026-03-10")
	recs := records(map[string]int{
		"2026-03-10": 1,
		"2026-03-09": 1,
	})

	c1, l1 := CalculateStreaks(recs, 1, today)
	c2, l2 := CalculateStreaks(recs, 1, today)
	assert.Equal(t, c1, c2)
	assert.Equal(t, l1, l2)
}

func TestCalculateStreaks_LongestNeverBelowCurrent(t *testing.T) {
	today := day(t, "2026-03-10")
	recs := records(map[string]int{
		"2026-03-10": 1,
		"2026-03-09": 1,
		"2026-03-08": 1,
	})
	current, longest := CalculateStreaks(recs, 1, today)
	assert.GreaterOrEqual(t, longest, current)
}
