package query

import "eisen/internal/task"

type Counts struct {
	Overdue     int `json:"overdue_count"`
	DueToday    int `json:"due_today_count"`
	DueThisWeek int `json:"due_this_week_count"`
}

// Summarize counts over every task given; callers pass the unfiltered store.
func Summarize(tasks []task.Task, w Windows) Counts {
	var c Counts
	for _, t := range tasks {
		switch w.Classify(t) {
		case ClassOverdue:
			c.Overdue++
		case ClassDueToday:
			c.DueToday++
		case ClassDueThisWeek:
			c.DueThisWeek++
		}
	}
	return c
}
