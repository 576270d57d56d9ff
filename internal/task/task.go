package task

import (
	"slices"
	"strings"
	"time"
)

type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    *Category  `json:"category"`
	DueDate     *time.Time `json:"due_date"`
	Quadrant    Quadrant   `json:"quadrant"`
	Completed   bool       `json:"completed"`
	ReminderSet bool       `json:"reminder_set"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (t Task) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

type Draft struct {
	Title       string
	Description string
	CategoryID  *int64
	DueDate     *time.Time
	Quadrant    Quadrant
	Completed   bool
	ReminderSet bool
	Tags        []string
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Msg: "must not be empty"}
	}
	if !d.Quadrant.Valid() {
		return &ValidationError{Field: "quadrant", Msg: "must be one of " + strings.Join(quadrantNames(), ", ")}
	}
	return nil
}

// Task builds the record a Draft describes. ID, Category and CreatedAt are
// filled in by the store.
func (d Draft) Task() Task {
	return Task{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		DueDate:     d.DueDate,
		Quadrant:    d.Quadrant,
		Completed:   d.Completed,
		ReminderSet: d.ReminderSet,
		Tags:        NormalizeTags(d.Tags),
	}
}

// NormalizeTags trims labels, drops empty ones and collapses duplicates.
// The result is sorted and never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}
