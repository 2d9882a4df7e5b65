package calendar

import "time"

// HabitDay is the completion state of one habit on one calendar day.
type HabitDay struct {
	HabitID   string `json:"habit_id"`
	Completed bool   `json:"completed"`
}

type CalendarDay struct {
	Date     time.Time  `json:"date"`
	AllDone  bool       `json:"all_done"`
	Habits   []HabitDay `json:"habits"`
	IsToday  bool       `json:"is_today"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}
