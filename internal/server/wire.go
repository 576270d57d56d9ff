package server

import (
	"time"

	"eisen/internal/task"
)

type createRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CategoryID  *int64        `json:"category_id"`
	DueDate     *string       `json:"due_date"`
	Quadrant    task.Quadrant `json:"quadrant"`
	Completed   bool          `json:"completed"`
	ReminderSet bool          `json:"reminder_set"`
	Tags        []string      `json:"tags"`
}

func (r createRequest) draft(loc *time.Location) (task.Draft, error) {
	d := task.Draft{
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		Quadrant:    r.Quadrant,
		Completed:   r.Completed,
		ReminderSet: r.ReminderSet,
		Tags:        r.Tags,
	}
	if r.DueDate != nil && *r.DueDate != "" {
		due, err := parseDue(*r.DueDate, loc)
		if err != nil {
			return task.Draft{}, err
		}
		d.DueDate = &due
	}
	return d, nil
}

// patchRequest decodes every field as a pointer so an explicit null can be
// told apart from a value. Only due_date and category_id may be null.
type patchRequest struct {
	Title       task.Field[*string]        `json:"title"`
	Description task.Field[*string]        `json:"description"`
	CategoryID  task.Field[*int64]         `json:"category_id"`
	DueDate     task.Field[*string]        `json:"due_date"`
	Quadrant    task.Field[*task.Quadrant] `json:"quadrant"`
	Completed   task.Field[*bool]          `json:"completed"`
	ReminderSet task.Field[*bool]          `json:"reminder_set"`
	Tags        task.Field[*[]string]      `json:"tags"`
}

func (r patchRequest) patch(loc *time.Location) (task.Patch, error) {
	var p task.Patch
	var err error
	if p.Title, err = required("title", r.Title); err != nil {
		return p, err
	}
	if p.Description, err = required("description", r.Description); err != nil {
		return p, err
	}
	if p.Quadrant, err = required("quadrant", r.Quadrant); err != nil {
		return p, err
	}
	if p.Completed, err = required("completed", r.Completed); err != nil {
		return p, err
	}
	if p.ReminderSet, err = required("reminder_set", r.ReminderSet); err != nil {
		return p, err
	}
	if p.Tags, err = required("tags", r.Tags); err != nil {
		return p, err
	}
	p.CategoryID = r.CategoryID
	if r.DueDate.Set {
		p.DueDate = task.Some[*time.Time](nil)
		if v := r.DueDate.Value; v != nil && *v != "" {
			due, err := parseDue(*v, loc)
			if err != nil {
				return p, err
			}
			p.DueDate.Value = &due
		}
	}
	return p, nil
}

func required[T any](name string, f task.Field[*T]) (task.Field[T], error) {
	if !f.Set {
		return task.Field[T]{}, nil
	}
	if f.Value == nil {
		return task.Field[T]{}, &task.ValidationError{Field: name, Msg: "must not be null"}
	}
	return task.Some(*f.Value), nil
}

func parseDue(raw string, loc *time.Location) (time.Time, error) {
	due, err := task.ParseTime(raw, loc)
	if err != nil {
		return time.Time{}, &task.ValidationError{Field: "due_date", Msg: "must be an ISO-8601 date or date-time"}
	}
	return due, nil
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}
