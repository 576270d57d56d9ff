package query

import (
	"slices"
	"strconv"
	"strings"

	"eisen/internal/task"
)

type clause func(task.Task) bool

// Filter is the conjunction of the clauses a Params value asks for.
// It holds no task data and can be reused across scans.
type Filter struct {
	clauses []clause
}

func NewFilter(p Params, w Windows) Filter {
	var f Filter
	if p.Search != "" {
		needle := strings.ToLower(p.Search)
		f.add(func(t task.Task) bool {
			return strings.Contains(strings.ToLower(t.Title), needle)
		})
	}
	if p.Tag != "" {
		tag := p.Tag
		f.add(func(t task.Task) bool { return t.HasTag(tag) })
	}
	if len(p.Categories) > 0 {
		set := slices.Clone(p.Categories)
		f.add(func(t task.Task) bool { return inCategories(t, set) })
	}
	if !p.ShowCompleted {
		f.add(func(t task.Task) bool { return !t.Completed })
	}
	if p.DateFrom != nil {
		from := *p.DateFrom
		f.add(func(t task.Task) bool { return t.DueDate != nil && !t.DueDate.Before(from) })
	}
	if p.DateTo != nil {
		to := *p.DateTo
		f.add(func(t task.Task) bool { return t.DueDate != nil && !t.DueDate.After(to) })
	}
	if c := namedClause(p.Filter, w); c != nil {
		f.add(c)
	}
	return f
}

func (f *Filter) add(c clause) {
	f.clauses = append(f.clauses, c)
}

func (f Filter) Match(t task.Task) bool {
	for _, c := range f.clauses {
		if !c(t) {
			return false
		}
	}
	return true
}

// Apply keeps the matching tasks in their input order.
func (f Filter) Apply(tasks []task.Task) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func namedClause(n Named, w Windows) clause {
	switch n {
	case NamedOverdue:
		return w.Overdue
	case NamedToday:
		return w.DueToday
	case NamedWeek:
		return w.DueThisWeek
	case NamedDueSoon:
		return w.DueSoon
	case NamedCompleted:
		return func(t task.Task) bool { return t.Completed }
	case NamedActive:
		return func(t task.Task) bool { return !t.Completed }
	}
	return nil
}

// inCategories matches on the category id or its name. Uncategorized tasks
// never match.
func inCategories(t task.Task, set []string) bool {
	if t.Category == nil {
		return false
	}
	id := strconv.FormatInt(t.Category.ID, 10)
	for _, c := range set {
		if c == id || c == t.Category.Name {
			return true
		}
	}
	return false
}

func Run(tasks []task.Task, p Params, w Windows) []task.Task {
	return Sort(NewFilter(p, w).Apply(tasks), p.SortBy, p.SortOrder)
}
