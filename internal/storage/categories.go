package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eisen/internal/task"
)

func (s *Store) ListCategories(ctx context.Context) ([]task.Category, error) {
	var cats []task.Category
	err := s.retry.run(ctx, func() error {
		cats = make([]task.Category, 0)
		rows, err := s.db.QueryContext(ctx, `SELECT id, name, color, icon FROM categories ORDER BY name, id;`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c task.Category
			if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon); err != nil {
				return err
			}
			cats = append(cats, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// CreateCategory rejects names that already exist. The comparison is exact
// and case-sensitive.
func (s *Store) CreateCategory(ctx context.Context, c task.Category) (task.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return task.Category{}, &task.ValidationError{Field: "name", Msg: "must not be empty"}
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := categoryByName(ctx, tx, c.Name); err == nil {
			return ErrCategoryExists
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO categories (name, color, icon) VALUES (?, ?, ?);`, c.Name, c.Color, c.Icon)
		if err != nil {
			return err
		}
		c.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return task.Category{}, fmt.Errorf("create category %q: %w", c.Name, err)
	}
	return c, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (task.Category, error) {
	var c task.Category
	err := s.retry.run(ctx, func() error {
		var err error
		c, err = getCategory(ctx, s.db, id)
		return err
	})
	return c, err
}

func (s *Store) CategoryByName(ctx context.Context, name string) (task.Category, error) {
	var c task.Category
	err := s.retry.run(ctx, func() error {
		var err error
		c, err = categoryByName(ctx, s.db, name)
		return err
	})
	return c, err
}

// DeleteCategory refuses while any task still references the category.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getCategory(ctx, tx, id); err != nil {
			return err
		}
		var refs int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE category_id = ?;`, id).Scan(&refs); err != nil {
			return err
		}
		if refs > 0 {
			return ErrCategoryInUse
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?;`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

func getCategory(ctx context.Context, q querier, id int64) (task.Category, error) {
	var c task.Category
	err := q.QueryRowContext(ctx, `SELECT id, name, color, icon FROM categories WHERE id = ?;`, id).
		Scan(&c.ID, &c.Name, &c.Color, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Category{}, ErrNotFound
	}
	return c, err
}

func categoryByName(ctx context.Context, q querier, name string) (task.Category, error) {
	var c task.Category
	err := q.QueryRowContext(ctx, `SELECT id, name, color, icon FROM categories WHERE name = ?;`, name).
		Scan(&c.ID, &c.Name, &c.Color, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Category{}, ErrNotFound
	}
	return c, err
}
