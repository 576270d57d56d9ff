package ui

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"eisen/internal/config"
	"eisen/internal/query"
	"eisen/internal/task"
)

type Store interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	CreateTask(ctx context.Context, d task.Draft) (task.Task, error)
	UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

type mode int

const (
	modeBoard mode = iota
	modeSearch
	modeAdd
)

type Model struct {
	ctx        context.Context
	store      Store
	cfg        config.Config
	loc        *time.Location
	overdue    query.OverdueMode
	now        func() time.Time
	all        []task.Task
	visible    []task.Task
	counts     query.Counts
	params     query.Params
	cursor     int
	mode       mode
	addTo      task.Quadrant
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *task.Task
}

func Run(ctx context.Context, store Store, cfg config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	m, err := newModel(ctx, store, cfg, loc, time.Now)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

func newModel(ctx context.Context, store Store, cfg config.Config, loc *time.Location, now func() time.Time) (Model, error) {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		ctx:     ctx,
		store:   store,
		cfg:     cfg,
		loc:     loc,
		overdue: query.OverdueMode(cfg.OverdueMode),
		now:     now,
		params:  query.ParseParams(url.Values{"filter": {cfg.DefaultFilter}}, loc),
		input:   ti,
		status:  fmt.Sprintf("Press '%s' to add, '%s' to search, '%s' to cycle filters.", cfg.Keys.Add, cfg.Keys.Search, cfg.Keys.CycleFilter),
	}
	if err := m.reload(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearchMode(msg)
		case modeAdd:
			return m.updateAddMode(msg)
		}
		return m.updateBoardMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) updateSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.cfg.Keys.Cancel:
		m.mode = modeBoard
		m.input.SetValue("")
		m.input.Blur()
		m.params.Search = ""
		m.refilter()
		m.status = "Search cleared"
		return m, nil
	case m.cfg.Keys.Confirm:
		m.mode = modeBoard
		m.input.Blur()
		m.status = fmt.Sprintf("%d matching", len(m.visible))
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.params.Search = strings.TrimSpace(m.input.Value())
		m.refilter()
		return m, cmd
	}
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.cfg.Keys.Cancel:
		m.mode = modeBoard
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.CycleQuadrant:
		m.addTo = next(task.Quadrants, m.addTo)
		return m, nil
	case m.cfg.Keys.Confirm:
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.status = "Title cannot be empty"
			return m, nil
		}
		created, err := m.store.CreateTask(m.ctx, task.Draft{Title: title, Quadrant: m.addTo})
		if err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = "Added task"
			if i := slices.IndexFunc(m.visible, func(t task.Task) bool { return t.ID == created.ID }); i >= 0 {
				m.cursor = i
			}
		}
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeBoard
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateBoardMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visible))
	case m.cfg.Keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.visible))
	case m.cfg.Keys.Add:
		m.mode = modeAdd
		m.addTo = task.UrgentImportant
		if len(m.visible) > 0 {
			m.addTo = m.visible[m.cursor].Quadrant
		}
		m.input.Placeholder = "Task title"
		m.input.SetValue("")
		m.input.Focus()
		m.status = fmt.Sprintf("Add mode: type a title, %s to change quadrant, Enter to save", keyLabel(m.cfg.Keys.CycleQuadrant))
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.input.Placeholder = "Search titles"
		m.input.SetValue(m.params.Search)
		m.input.Focus()
		m.status = "Search: type to narrow, Enter to keep, Esc to clear"
	case m.cfg.Keys.CycleFilter:
		m.params.Filter = next(query.NamedFilters, m.params.Filter)
		m.refilter()
		m.status = "Filter: " + string(m.params.Filter)
	case m.cfg.Keys.CycleSort:
		m.params.SortBy = next(query.SortKeys, m.params.SortBy)
		m.refilter()
		m.status = "Sort: " + string(m.params.SortBy)
	case m.cfg.Keys.FlipOrder:
		m.params.SortOrder = next([]query.Order{query.Asc, query.Desc}, m.params.SortOrder)
		m.refilter()
		m.status = "Order: " + string(m.params.SortOrder)
	case m.cfg.Keys.ShowCompleted:
		m.params.ShowCompleted = !m.params.ShowCompleted
		m.refilter()
		m.status = "Completed " + shownHidden(m.params.ShowCompleted)
	case m.cfg.Keys.Reload:
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = "Reloaded"
		}
	case m.cfg.Keys.Toggle:
		if len(m.visible) == 0 {
			return m, nil
		}
		t := m.visible[m.cursor]
		_, err := m.store.UpdateTask(m.ctx, t.ID, task.Patch{Completed: task.Some(!t.Completed)})
		if err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = fmt.Sprintf("Marked %q %s", t.Title, humanDone(!t.Completed))
		}
	case m.cfg.Keys.Delete:
		if len(m.visible) == 0 {
			return m, nil
		}
		t := m.visible[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
	case "y", "Y":
		if err := m.store.DeleteTask(m.ctx, m.pendingDel.ID); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		} else if err := m.reload(); err != nil {
			m.status = fmt.Sprintf("reload failed: %v", err)
		} else {
			m.status = "Deleted task"
		}
	default:
		return m, nil
	}
	m.confirmDel = false
	m.pendingDel = nil
	return m, nil
}

func (m *Model) reload() error {
	tasks, err := m.store.ListTasks(m.ctx)
	if err != nil {
		return err
	}
	m.all = tasks
	m.refilter()
	return nil
}

// refilter recomputes the visible rows, grouped by quadrant in board order
// and sorted within each group.
func (m *Model) refilter() {
	w := query.NewWindows(m.now(), m.loc, m.overdue)
	m.counts = query.Summarize(m.all, w)
	sorted := query.Run(m.all, m.params, w)
	visible := make([]task.Task, 0, len(sorted))
	for _, q := range task.Quadrants {
		for _, t := range sorted {
			if t.Quadrant == q {
				visible = append(visible, t)
			}
		}
	}
	m.visible = visible
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("Eisenhower board")
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Overdue %d • Due today %d • Due this week %d\n",
		m.counts.Overdue, m.counts.DueToday, m.counts.DueThisWeek))
	b.WriteString(fmt.Sprintf("filter:%s sort:%s %s completed:%s", m.params.Filter, m.params.SortBy,
		m.params.SortOrder, shownHidden(m.params.ShowCompleted)))
	if m.params.Search != "" {
		b.WriteString(fmt.Sprintf(" search:%q", m.params.Search))
	}
	b.WriteString("\n\n")

	if len(m.all) == 0 {
		b.WriteString("No tasks yet.\n")
	} else {
		b.WriteString(m.renderBoard())
	}

	b.WriteString("---\n")
	switch m.mode {
	case modeAdd:
		b.WriteString("New task in " + quadrantTitle(m.addTo) + "\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeSearch:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	default:
		b.WriteString(m.renderDetail())
	}
	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))
	return b.String()
}

func (m Model) renderBoard() string {
	var b strings.Builder
	i := 0
	for _, q := range task.Quadrants {
		n := 0
		for _, t := range m.visible {
			if t.Quadrant == q {
				n++
			}
		}
		b.WriteString(fmt.Sprintf("== %s (%d) ==\n", quadrantTitle(q), n))
		for ; i < len(m.visible) && m.visible[i].Quadrant == q; i++ {
			t := m.visible[i]
			cursor := " "
			if i == m.cursor && m.mode == modeBoard {
				cursor = ">"
			}
			checkbox := "[ ]"
			if t.Completed {
				checkbox = "[x]"
			}
			line := fmt.Sprintf("%s %s %s", cursor, checkbox, t.Title)
			if t.DueDate != nil {
				line += "  due " + t.DueDate.In(m.loc).Format(time.DateOnly)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	if len(m.visible) == 0 {
		return "No task selected\n"
	}
	t := m.visible[m.cursor]
	due := "(none)"
	if t.DueDate != nil {
		due = t.DueDate.In(m.loc).Format("2006-01-02 15:04")
	}
	class := query.NewWindows(m.now(), m.loc, m.overdue).Classify(t)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title     : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Notes     : %s\n", emptyPlaceholder(t.Description)))
	b.WriteString(fmt.Sprintf("Category  : %s\n", emptyPlaceholder(t.CategoryName())))
	b.WriteString(fmt.Sprintf("Due       : %s (%s)\n", due, class))
	b.WriteString(fmt.Sprintf("Tags      : %s\n", emptyPlaceholder(strings.Join(t.Tags, ", "))))
	b.WriteString(fmt.Sprintf("Status    : %s\n", humanDone(t.Completed)))
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s search • %s filter • %s sort • %s order • %s completed • %s toggle • %s delete • %s reload • %s quit",
		k.Up, k.Down, k.Add, k.Search, k.CycleFilter, k.CycleSort, k.FlipOrder, k.ShowCompleted, keyLabel(k.Toggle), k.Delete, k.Reload, k.Quit)
}

func quadrantTitle(q task.Quadrant) string {
	switch q {
	case task.UrgentImportant:
		return "Do first: urgent & important"
	case task.NotUrgentImportant:
		return "Schedule: important, not urgent"
	case task.UrgentNotImportant:
		return "Delegate: urgent, not important"
	default:
		return "Drop: neither"
	}
}

func next[T comparable](all []T, cur T) T {
	i := slices.Index(all, cur)
	return all[(i+1)%len(all)]
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func shownHidden(b bool) string {
	if b {
		return "shown"
	}
	return "hidden"
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
