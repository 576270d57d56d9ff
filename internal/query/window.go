package query

import (
	"time"

	"eisen/internal/task"
)

// OverdueMode selects the lower boundary that separates overdue from due today.
type OverdueMode string

const (
	OverdueBeforeToday OverdueMode = "start_of_day"
	OverdueBeforeNow   OverdueMode = "now"
)

type Class int

const (
	// ClassNone covers completed tasks and tasks without a due date.
	ClassNone Class = iota
	ClassOverdue
	ClassDueToday
	ClassDueThisWeek
	ClassDueLater
)

func (c Class) String() string {
	switch c {
	case ClassOverdue:
		return "overdue"
	case ClassDueToday:
		return "due-today"
	case ClassDueThisWeek:
		return "due-this-week"
	case ClassDueLater:
		return "due-later"
	}
	return "none"
}

type Windows struct {
	Now        time.Time
	TodayStart time.Time
	TodayEnd   time.Time
	WeekEnd    time.Time
	Mode       OverdueMode
}

func NewWindows(now time.Time, loc *time.Location, mode OverdueMode) Windows {
	if loc == nil {
		loc = time.Local
	}
	if mode != OverdueBeforeNow {
		mode = OverdueBeforeToday
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Windows{
		Now:        now,
		TodayStart: start,
		TodayEnd:   start.Add(24 * time.Hour),
		WeekEnd:    start.Add(7 * 24 * time.Hour),
		Mode:       mode,
	}
}

// overdueBefore is both the exclusive upper bound of overdue and the
// inclusive lower bound of due today.
func (w Windows) overdueBefore() time.Time {
	if w.Mode == OverdueBeforeNow {
		return w.Now
	}
	return w.TodayStart
}

func (w Windows) Classify(t task.Task) Class {
	if t.Completed || t.DueDate == nil {
		return ClassNone
	}
	due := *t.DueDate
	switch {
	case due.Before(w.overdueBefore()):
		return ClassOverdue
	case due.Before(w.TodayEnd):
		return ClassDueToday
	case due.Before(w.WeekEnd):
		return ClassDueThisWeek
	default:
		return ClassDueLater
	}
}

func (w Windows) Overdue(t task.Task) bool     { return w.Classify(t) == ClassOverdue }
func (w Windows) DueToday(t task.Task) bool    { return w.Classify(t) == ClassDueToday }
func (w Windows) DueThisWeek(t task.Task) bool { return w.Classify(t) == ClassDueThisWeek }

// DueSoon reports a due date within the next 24 hours, both ends inclusive.
// Completion is not considered.
func (w Windows) DueSoon(t task.Task) bool {
	if t.DueDate == nil {
		return false
	}
	due := *t.DueDate
	return !due.Before(w.Now) && !due.After(w.Now.Add(24*time.Hour))
}
