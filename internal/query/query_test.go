package query

import (
	"net/url"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eisen/internal/task"
)

var (
	testNow = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	testWin = NewWindows(testNow, time.UTC, OverdueBeforeToday)
)

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func day(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func titles(tasks []task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func ids(tasks []task.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

var (
	work = &task.Category{ID: 1, Name: "Work"}
	home = &task.Category{ID: 2, Name: "Home"}
)

func fixture() []task.Task {
	return []task.Task{
		{ID: 1, Title: "Pay rent", DueDate: at(-day(2)), Category: home, Tags: []string{"money"}},
		{ID: 2, Title: "Standup notes", DueDate: at(2 * time.Hour), Category: work, Tags: []string{"work"}},
		{ID: 3, Title: "Plan sprint", DueDate: at(day(3)), Category: work, Tags: []string{"work", "planning"}},
		{ID: 4, Title: "Renew passport", DueDate: at(day(10)), Tags: []string{}},
		{ID: 5, Title: "Read book", Tags: []string{}},
		{ID: 6, Title: "Old report", DueDate: at(-time.Hour), Completed: true, Category: work, Tags: []string{"work"}},
		{ID: 7, Title: "Early call", DueDate: at(-3 * time.Hour), Category: work, Tags: []string{"work"}},
	}
}

func TestWindowsBoundaries(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	w := NewWindows(time.Date(2026, 10, 14, 23, 30, 0, 0, time.UTC), loc, OverdueBeforeToday)

	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, loc), w.TodayStart)
	assert.Equal(t, w.TodayStart.Add(24*time.Hour), w.TodayEnd)
	assert.Equal(t, w.TodayStart.Add(7*24*time.Hour), w.WeekEnd)

	dueAt := func(ts time.Time) task.Task { return task.Task{DueDate: &ts} }
	assert.Equal(t, ClassOverdue, w.Classify(dueAt(w.TodayStart.Add(-time.Nanosecond))))
	assert.Equal(t, ClassDueToday, w.Classify(dueAt(w.TodayStart)))
	assert.Equal(t, ClassDueThisWeek, w.Classify(dueAt(w.TodayEnd)))
	assert.Equal(t, ClassDueThisWeek, w.Classify(dueAt(w.WeekEnd.Add(-time.Nanosecond))))
	assert.Equal(t, ClassDueLater, w.Classify(dueAt(w.WeekEnd)))
}

func TestClassifyIgnoresCompletedAndUndated(t *testing.T) {
	assert.Equal(t, ClassNone, testWin.Classify(task.Task{}))
	assert.Equal(t, ClassNone, testWin.Classify(task.Task{DueDate: at(-day(1)), Completed: true}))
}

func TestOverdueModeNow(t *testing.T) {
	w := NewWindows(testNow, time.UTC, OverdueBeforeNow)
	earlier := task.Task{DueDate: at(-time.Hour)}
	later := task.Task{DueDate: at(time.Hour)}

	assert.Equal(t, ClassOverdue, w.Classify(earlier))
	assert.Equal(t, ClassDueToday, w.Classify(later))
	assert.Equal(t, ClassDueToday, testWin.Classify(earlier))
}

func TestWindowsPartition(t *testing.T) {
	for _, mode := range []OverdueMode{OverdueBeforeToday, OverdueBeforeNow} {
		w := NewWindows(testNow, time.UTC, mode)
		for h := -24 * 10; h <= 24*10; h++ {
			tk := task.Task{DueDate: at(time.Duration(h) * time.Hour)}
			hits := 0
			for _, pred := range []func(task.Task) bool{w.Overdue, w.DueToday, w.DueThisWeek} {
				if pred(tk) {
					hits++
				}
			}
			inScope := tk.DueDate.Before(w.WeekEnd)
			if inScope {
				assert.Equal(t, 1, hits, "mode %s hour %d", mode, h)
			} else {
				assert.Equal(t, 0, hits, "mode %s hour %d", mode, h)
				assert.Equal(t, ClassDueLater, w.Classify(tk))
			}
		}
	}
}

func TestDueSoon(t *testing.T) {
	assert.True(t, testWin.DueSoon(task.Task{DueDate: at(0)}))
	assert.True(t, testWin.DueSoon(task.Task{DueDate: at(24 * time.Hour)}))
	assert.True(t, testWin.DueSoon(task.Task{DueDate: at(time.Hour), Completed: true}))
	assert.False(t, testWin.DueSoon(task.Task{DueDate: at(24*time.Hour + time.Second)}))
	assert.False(t, testWin.DueSoon(task.Task{DueDate: at(-time.Second)}))
	assert.False(t, testWin.DueSoon(task.Task{}))
}

func TestNamedFilters(t *testing.T) {
	cases := []struct {
		params Params
		want   []int64
	}{
		{Params{}, []int64{1, 2, 3, 4, 5, 7}},
		{Params{Filter: NamedAll, ShowCompleted: true}, []int64{1, 2, 3, 4, 5, 6, 7}},
		{Params{Filter: NamedOverdue}, []int64{1}},
		{Params{Filter: NamedToday}, []int64{2, 7}},
		{Params{Filter: NamedWeek}, []int64{3}},
		{Params{Filter: NamedCompleted, ShowCompleted: true}, []int64{6}},
		{Params{Filter: NamedCompleted}, []int64{}},
		{Params{Filter: NamedActive, ShowCompleted: true}, []int64{1, 2, 3, 4, 5, 7}},
		{Params{Filter: NamedDueSoon}, []int64{2}},
	}
	for _, tc := range cases {
		got := NewFilter(tc.params, testWin).Apply(fixture())
		if diff := cmp.Diff(tc.want, ids(got)); diff != "" {
			t.Errorf("filter %q (-want +got):\n%s", tc.params.Filter, diff)
		}
	}
}

func TestClauses(t *testing.T) {
	from := testNow
	to := testNow.Add(day(3))
	cases := []struct {
		name   string
		params Params
		want   []int64
	}{
		{"search case-insensitive", Params{Search: "PLAN"}, []int64{3}},
		{"tag", Params{Tag: "work"}, []int64{2, 3, 7}},
		{"category by name", Params{Categories: []string{"Home"}}, []int64{1}},
		{"category by id", Params{Categories: []string{"1"}}, []int64{2, 3, 7}},
		{"date range inclusive", Params{DateFrom: &from, DateTo: &to}, []int64{2, 3}},
		{"show completed", Params{ShowCompleted: true, Tag: "work"}, []int64{2, 3, 6, 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewFilter(tc.params, testWin).Apply(fixture())
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestFilterComposability(t *testing.T) {
	from := testNow.Add(-day(1))
	to := testNow.Add(day(5))
	single := []Params{
		{Search: "p", ShowCompleted: true},
		{Tag: "work", ShowCompleted: true},
		{Categories: []string{"Work"}, ShowCompleted: true},
		{ShowCompleted: false},
		{DateFrom: &from, ShowCompleted: true},
		{DateTo: &to, ShowCompleted: true},
		{Filter: NamedToday, ShowCompleted: true},
		{Filter: NamedDueSoon, ShowCompleted: true},
		{Filter: NamedCompleted, ShowCompleted: true},
	}
	merge := func(a, b Params) Params {
		m := a
		if b.Search != "" {
			m.Search = b.Search
		}
		if b.Tag != "" {
			m.Tag = b.Tag
		}
		if b.Categories != nil {
			m.Categories = b.Categories
		}
		m.ShowCompleted = a.ShowCompleted && b.ShowCompleted
		if b.DateFrom != nil {
			m.DateFrom = b.DateFrom
		}
		if b.DateTo != nil {
			m.DateTo = b.DateTo
		}
		if b.Filter != "" {
			m.Filter = b.Filter
		}
		return m
	}

	tasks := fixture()
	for i, a := range single {
		for j, b := range single {
			if i == j || (a.Filter != "" && b.Filter != "") {
				continue
			}
			both := ids(NewFilter(merge(a, b), testWin).Apply(tasks))
			onlyA := ids(NewFilter(a, testWin).Apply(tasks))
			onlyB := ids(NewFilter(b, testWin).Apply(tasks))
			var want []int64
			for _, id := range onlyA {
				if slices.Contains(onlyB, id) {
					want = append(want, id)
				}
			}
			if diff := cmp.Diff(want, both, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("pair %d,%d (-want +got):\n%s", i, j, diff)
			}
		}
	}
}

func TestSortStableAndReversal(t *testing.T) {
	tasks := []task.Task{
		{ID: 1, Title: "b", Category: work},
		{ID: 2, Title: "a", Category: home},
		{ID: 3, Title: "c"},
		{ID: 4, Title: "a", Category: work},
		{ID: 5, Title: "B", Category: home},
	}

	byTitle := Sort(tasks, SortByTitle, Asc)
	assert.Equal(t, []int64{2, 4, 1, 5, 3}, ids(byTitle))

	// Title ties keep the category order established first.
	byCat := Sort(tasks, SortByCategory, Asc)
	assert.Equal(t, []int64{3, 2, 5, 1, 4}, ids(byCat))
	assert.Equal(t, []int64{2, 4, 5, 1, 3}, ids(Sort(byCat, SortByTitle, Asc)))

	for _, key := range SortKeys {
		asc := ids(Sort(tasks, key, Asc))
		desc := ids(Sort(tasks, key, Desc))
		slices.Reverse(asc)
		assert.Equal(t, asc, desc, "key %s", key)
	}
}

func TestSortDueNulls(t *testing.T) {
	tasks := []task.Task{
		{ID: 1},
		{ID: 2, DueDate: at(day(2))},
		{ID: 3},
		{ID: 4, DueDate: at(-day(1))},
	}
	assert.Equal(t, []int64{4, 2, 1, 3}, ids(Sort(tasks, SortByDueDate, Asc)))
	assert.Equal(t, []int64{3, 1, 2, 4}, ids(Sort(tasks, SortByDueDate, Desc)))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(tasks), "input must not be reordered")
}

func TestTodayByTitleDesc(t *testing.T) {
	nine := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	six := time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: 1, Title: "Apple", DueDate: &six},
		{ID: 2, Title: "Banana", DueDate: &nine},
	}
	p := ParseParams(url.Values{
		"filter":     {"today"},
		"sort_by":    {"title"},
		"sort_order": {"desc"},
	}, time.UTC)

	assert.Equal(t, []string{"Banana", "Apple"}, titles(Run(tasks, p, testWin)))
}

func TestDashboardScenario(t *testing.T) {
	tasks := []task.Task{
		{ID: 1, DueDate: at(-day(2))},
		{ID: 2, DueDate: at(2 * time.Hour)},
		{ID: 3, DueDate: at(day(3))},
		{ID: 4, DueDate: at(day(10))},
	}
	assert.Equal(t, Counts{Overdue: 1, DueToday: 1, DueThisWeek: 1}, Summarize(tasks, testWin))
}

func TestDashboardIgnoresCompletedAndUndated(t *testing.T) {
	got := Summarize(fixture(), testWin)
	assert.Equal(t, Counts{Overdue: 1, DueToday: 2, DueThisWeek: 1}, got)
}

func TestParseParams(t *testing.T) {
	p := ParseParams(url.Values{
		"search":         {"  report "},
		"filter":         {"WEEK"},
		"tag":            {"work"},
		"categories":     {"1,Home", " 3 "},
		"show_completed": {"true"},
		"date_from":      {"2026-10-01"},
		"date_to":        {"2026-10-31T23:59:59Z"},
		"sort_by":        {"category_name"},
		"sort_order":     {"DESC"},
	}, time.UTC)

	assert.Equal(t, "report", p.Search)
	assert.Equal(t, NamedWeek, p.Filter)
	assert.Equal(t, []string{"1", "Home", "3"}, p.Categories)
	assert.True(t, p.ShowCompleted)
	require.NotNil(t, p.DateFrom)
	assert.True(t, p.DateFrom.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, p.DateTo)
	assert.Equal(t, SortByCategory, p.SortBy)
	assert.Equal(t, Desc, p.SortOrder)
}

func TestParseParamsDefaults(t *testing.T) {
	p := ParseParams(url.Values{
		"filter":         {"someday"},
		"sort_by":        {"priority"},
		"sort_order":     {"sideways"},
		"show_completed": {"maybe"},
	}, time.UTC)
	assert.Equal(t, Params{Filter: NamedAll, SortBy: SortByDueDate, SortOrder: Asc}, p)
}

func TestMalformedDateIsIgnored(t *testing.T) {
	bad := ParseParams(url.Values{"date_from": {"not-a-date"}, "date_to": {"2026-13-45"}}, time.UTC)
	absent := ParseParams(url.Values{}, time.UTC)
	assert.Equal(t, absent, bad)
	assert.Equal(t, ids(Run(fixture(), absent, testWin)), ids(Run(fixture(), bad, testWin)))
}

func TestDateOnlyUpperBoundCoversWholeDay(t *testing.T) {
	nine := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	lastMinute := time.Date(2026, 10, 14, 23, 59, 0, 0, time.UTC)
	nextDay := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: 1, DueDate: &nine},
		{ID: 2, DueDate: &lastMinute},
		{ID: 3, DueDate: &nextDay},
	}

	p := ParseParams(url.Values{"date_from": {"2026-10-14"}, "date_to": {"2026-10-14"}}, time.UTC)
	assert.Equal(t, []int64{1, 2}, ids(Run(tasks, p, testWin)))

	// An explicit time is taken as given.
	p = ParseParams(url.Values{"date_to": {"2026-10-14T09:00:00Z"}}, time.UTC)
	assert.Equal(t, []int64{1}, ids(Run(tasks, p, testWin)))
}

func TestDateOnlyUpperBoundInZone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	p := ParseParams(url.Values{"date_to": {"2026-10-14"}}, loc)
	require.NotNil(t, p.DateTo)
	assert.True(t, p.DateTo.Equal(time.Date(2026, 10, 14, 23, 59, 59, 999999999, loc)))
}

func TestSortByCategoryIgnoresCase(t *testing.T) {
	tasks := []task.Task{
		{ID: 1, Category: &task.Category{ID: 1, Name: "work"}},
		{ID: 2, Category: &task.Category{ID: 2, Name: "Zed"}},
		{ID: 3, Category: &task.Category{ID: 3, Name: "Alpha"}},
	}
	assert.Equal(t, []int64{3, 1, 2}, ids(Sort(tasks, SortByCategory, Asc)))
}
