package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"eisen/internal/task"
)

type Named string

const (
	NamedAll       Named = "all"
	NamedOverdue   Named = "overdue"
	NamedToday     Named = "today"
	NamedWeek      Named = "week"
	NamedCompleted Named = "completed"
	NamedActive    Named = "active"
	NamedDueSoon   Named = "due-soon"
)

var NamedFilters = []Named{NamedAll, NamedOverdue, NamedToday, NamedWeek, NamedCompleted, NamedActive, NamedDueSoon}

type SortKey string

const (
	SortByDueDate  SortKey = "due_date"
	SortByTitle    SortKey = "title"
	SortByCategory SortKey = "category"
)

var SortKeys = []SortKey{SortByDueDate, SortByTitle, SortByCategory}

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Params is the parsed query-parameter bag of a listing or export request.
// Zero values mean "clause not applied" (and default sorting).
type Params struct {
	Search        string
	Filter        Named
	Tag           string
	Categories    []string
	ShowCompleted bool
	DateFrom      *time.Time
	DateTo        *time.Time
	SortBy        SortKey
	SortOrder     Order
}

// ParseParams never fails. Malformed values drop their clause or fall back
// to the default, so a bad date behaves exactly like an absent one.
func ParseParams(v url.Values, loc *time.Location) Params {
	p := Params{
		Search:    strings.TrimSpace(v.Get("search")),
		Filter:    parseNamed(v.Get("filter")),
		Tag:       strings.TrimSpace(v.Get("tag")),
		SortBy:    parseSortKey(v.Get("sort_by")),
		SortOrder: parseOrder(v.Get("sort_order")),
	}
	for _, raw := range v["categories"] {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				p.Categories = append(p.Categories, c)
			}
		}
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(v.Get("show_completed"))); err == nil {
		p.ShowCompleted = b
	}
	p.DateFrom = parseBound(v.Get("date_from"), loc, false)
	p.DateTo = parseBound(v.Get("date_to"), loc, true)
	return p
}

// parseBound reads a date-only upper bound as the last instant of that day.
func parseBound(raw string, loc *time.Location, upper bool) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := task.ParseTime(raw, loc)
	if err != nil {
		return nil
	}
	if upper {
		if _, err := time.Parse(time.DateOnly, raw); err == nil {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	return &t
}

func parseNamed(raw string) Named {
	n := Named(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range NamedFilters {
		if n == known {
			return n
		}
	}
	return NamedAll
}

func parseSortKey(raw string) SortKey {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "title":
		return SortByTitle
	case "category", "category_name":
		return SortByCategory
	}
	return SortByDueDate
}

func parseOrder(raw string) Order {
	if strings.EqualFold(strings.TrimSpace(raw), "desc") {
		return Desc
	}
	return Asc
}
