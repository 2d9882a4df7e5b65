package progress

import (
	"sort"
	"time"
)

const dayFormat = "2006-01-02"

// CalculateStreaks computes the current and longest consecutive-day streaks
// from a user's completion history. A day counts only when the number of
// completed records on it equals totalHabits, i.e. every active habit was
// done; partially completed days break streaks.
//
// The reference date (normally today) is injected so the function stays
// deterministic; it is normalized to the UTC calendar day, the same
// convention completion dates are written with. The walk tolerates a one-day
// gap between the reference date and the most recent entry, so a streak
// survives the day of the call before that day's completions are logged.
// Days after the reference date are ignored entirely, so a completion logged
// for a future date can neither anchor a streak nor extend the longest run.
//
// Known trade-off: days are always judged against the current active habit
// count. Adding or removing habits changes how historical days score, so
// streak continuity can shift retroactively. Kept deliberately; do not
// "fix" without changing the stored data model.
func CalculateStreaks(records []CompletionRecord, totalHabits int, today time.Time) (current, longest int) {
	if totalHabits == 0 || len(records) == 0 {
		return 0, 0
	}

	refDay := truncateToDay(today)
	refStr := refDay.Format(dayFormat)

	completedByDay := make(map[string]int)
	for _, r := range records {
		day := r.Date.Format(dayFormat)
		if day > refStr {
			continue
		}
		if _, seen := completedByDay[day]; !seen {
			completedByDay[day] = 0
		}
		if r.Completed {
			completedByDay[day]++
		}
	}

	days := make([]string, 0, len(completedByDay))
	for day := range completedByDay {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	isComplete := func(day string) bool {
		return completedByDay[day] == totalHabits
	}

	// Current streak: walk from the most recent day backward. Until the
	// streak starts, the expected date is the reference date with a one-day
	// tolerance; once started, each day must be exactly one before the last.
	expected := refDay
	for i, day := range days {
		date, err := time.Parse(dayFormat, day)
		if err != nil {
			break
		}

		gap := int(expected.Sub(date).Hours() / 24)
		if current == 0 {
			if gap > 1 {
				break
			}
		} else if gap > 0 {
			break
		}

		if !isComplete(day) {
			if current > 0 || i > 0 {
				break
			}
			// The most recent day is still in progress; skip it and let
			// the streak start from the day before.
			continue
		}

		current++
		expected = date.AddDate(0, 0, -1)
	}

	// Longest streak: single ascending pass counting consecutive complete
	// days; any incomplete day or date gap resets the run.
	run := 0
	var prev time.Time
	for i := len(days) - 1; i >= 0; i-- {
		date, err := time.Parse(dayFormat, days[i])
		if err != nil {
			run = 0
			continue
		}
		if !isComplete(days[i]) {
			run = 0
			prev = date
			continue
		}
		if run > 0 && int(date.Sub(prev).Hours()/24) == 1 {
			run++
		} else {
			run = 1
		}
		prev = date
		if run > longest {
			longest = run
		}
	}

	if current > longest {
		longest = current
	}
	return current, longest
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
