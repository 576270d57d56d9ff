package export

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"eisen/internal/task"
)

var Header = []string{"Title", "Description", "Category", "Due Date", "Quadrant", "Completed", "Tags"}

// Row shapes one task in Header order. Dates are rendered in loc.
func Row(t task.Task, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	due := ""
	if t.DueDate != nil {
		due = t.DueDate.In(loc).Format(time.DateOnly)
	}
	completed := "No"
	if t.Completed {
		completed = "Yes"
	}
	return []string{
		t.Title,
		t.Description,
		t.CategoryName(),
		due,
		string(t.Quadrant),
		completed,
		strings.Join(task.NormalizeTags(t.Tags), ","),
	}
}

func WriteCSV(w io.Writer, tasks []task.Task, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := cw.Write(Row(t, loc)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
