package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"eisen/internal/task"
)

const selectTasks = `
SELECT t.id, t.title, t.description, c.id, c.name, c.color, c.icon,
	t.due, t.quadrant, t.completed, t.reminder_set, t.tags, t.created_at
FROM tasks t
LEFT JOIN categories c ON c.id = t.category_id`

type scanner interface {
	Scan(dest ...any) error
}

// ListTasks returns every task in id order. This is the store-scan order
// that stable sorting preserves.
func (s *Store) ListTasks(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task
	err := s.retry.run(ctx, func() error {
		tasks = make([]task.Task, 0)
		rows, err := s.db.QueryContext(ctx, selectTasks+` ORDER BY t.id;`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id int64) (task.Task, error) {
	var t task.Task
	err := s.retry.run(ctx, func() error {
		var err error
		t, err = getTask(ctx, s.db, id)
		return err
	})
	return t, err
}

func (s *Store) CountTasks(ctx context.Context) (int, error) {
	var n int
	err := s.retry.run(ctx, func() error {
		return s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks;`).Scan(&n)
	})
	return n, err
}

func (s *Store) CreateTask(ctx context.Context, d task.Draft) (task.Task, error) {
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}
	t := d.Task()
	t.CreatedAt = time.Now().UTC()
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return task.Task{}, err
	}

	var created task.Task
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkCategory(ctx, tx, d.CategoryID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (title, description, category_id, due, quadrant, completed, reminder_set, tags, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			t.Title, t.Description, nullID(d.CategoryID), nullTime(t.DueDate), string(t.Quadrant),
			boolInt(t.Completed), boolInt(t.ReminderSet), tags, formatTime(t.CreatedAt))
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// UpdateTask writes only the columns the patch sets. Concurrent patches to
// the same task are last-write-wins per column; there is no version check.
func (s *Store) UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}
	sets, args, err := patchColumns(p)
	if err != nil {
		return task.Task{}, err
	}

	var updated task.Task
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if p.CategoryID.Set {
			if err := checkCategory(ctx, tx, p.CategoryID.Value); err != nil {
				return err
			}
		}
		if len(sets) > 0 {
			stmt := `UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ?;`
			res, err := tx.ExecContext(ctx, stmt, append(args, id)...)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return ErrNotFound
			}
		}
		var err error
		updated, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	return updated, nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	err := s.retry.run(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func patchColumns(p task.Patch) ([]string, []any, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Title.Set {
		set("title", strings.TrimSpace(p.Title.Value))
	}
	if p.Description.Set {
		set("description", p.Description.Value)
	}
	if p.CategoryID.Set {
		set("category_id", nullID(p.CategoryID.Value))
	}
	if p.DueDate.Set {
		set("due", nullTime(p.DueDate.Value))
	}
	if p.Quadrant.Set {
		set("quadrant", string(p.Quadrant.Value))
	}
	if p.Completed.Set {
		set("completed", boolInt(p.Completed.Value))
	}
	if p.ReminderSet.Set {
		set("reminder_set", boolInt(p.ReminderSet.Value))
	}
	if p.Tags.Set {
		tags, err := encodeTags(task.NormalizeTags(p.Tags.Value))
		if err != nil {
			return nil, nil, err
		}
		set("tags", tags)
	}
	return sets, args, nil
}

func getTask(ctx context.Context, q querier, id int64) (task.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, selectTasks+` WHERE t.id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, ErrNotFound
	}
	return t, err
}

func checkCategory(ctx context.Context, q querier, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := getCategory(ctx, q, *id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &task.ValidationError{Field: "category_id", Msg: fmt.Sprintf("category %d does not exist", *id)}
		}
		return err
	}
	return nil
}

// scanTask treats a category reference without a matching row as
// uncategorized.
func scanTask(row scanner) (task.Task, error) {
	var (
		t                      task.Task
		catID                  sql.NullInt64
		catName, catColor, ico sql.NullString
		due                    sql.NullString
		quadrant, tags         string
		created                string
		completed, reminder    int
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &catID, &catName, &catColor, &ico,
		&due, &quadrant, &completed, &reminder, &tags, &created); err != nil {
		return task.Task{}, err
	}
	if catID.Valid {
		t.Category = &task.Category{ID: catID.Int64, Name: catName.String, Color: catColor.String, Icon: ico.String}
	}
	if due.Valid {
		if parsed, err := time.Parse(time.RFC3339Nano, due.String); err == nil {
			t.DueDate = &parsed
		}
	}
	t.Quadrant = task.Quadrant(quadrant)
	t.Completed = completed == 1
	t.ReminderSet = reminder == 1
	t.Tags = decodeTags(tags)
	if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
		t.CreatedAt = parsed
	}
	return t, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

func decodeTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
