package query

import (
	"slices"
	"strings"

	"eisen/internal/task"
)

// Sort returns a new slice ordered by key. The ascending order is stable,
// and descending is its exact reverse, so ties come out reversed too.
// Title and category compare case-insensitively. Tasks without a due date
// sort last when ascending by due date.
func Sort(tasks []task.Task, key SortKey, order Order) []task.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, compareBy(key))
	if order == Desc {
		slices.Reverse(out)
	}
	return out
}

func compareBy(key SortKey) func(a, b task.Task) int {
	switch key {
	case SortByTitle:
		return func(a, b task.Task) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortByCategory:
		return func(a, b task.Task) int {
			return strings.Compare(strings.ToLower(a.CategoryName()), strings.ToLower(b.CategoryName()))
		}
	default:
		return compareDue
	}
}

func compareDue(a, b task.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}
