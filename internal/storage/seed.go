package storage

import (
	"context"
	"errors"
	"time"

	"eisen/internal/task"
)

type sample struct {
	title       string
	description string
	category    string
	due         time.Duration
	quadrant    task.Quadrant
}

var samples = []sample{
	{"Health Checkup", "Annual medical examination", "Health", 24 * time.Hour, task.UrgentImportant},
	{"Learn React Basics", "Complete React fundamentals course", "Learning", 4 * 24 * time.Hour, task.NotUrgentImportant},
	{"Team Lunch", "Coordinate team lunch meetup", "Work", 2 * 24 * time.Hour, task.UrgentNotImportant},
	{"Medical Appointment Analysis", "Annual health checkup", "Health", 9 * 24 * time.Hour, task.NotUrgentNotImportant},
}

// SeedSamples fills an empty store with the starter tasks and returns how
// many were inserted. A store that already has tasks is left alone.
func (s *Store) SeedSamples(ctx context.Context, now time.Time) (int, error) {
	n, err := s.CountTasks(ctx)
	if err != nil || n > 0 {
		return 0, err
	}
	inserted := 0
	for _, smp := range samples {
		cat, err := s.CategoryByName(ctx, smp.category)
		if errors.Is(err, ErrNotFound) {
			cat, err = s.CreateCategory(ctx, task.Category{Name: smp.category})
		}
		if err != nil {
			return inserted, err
		}
		due := now.Add(smp.due)
		_, err = s.CreateTask(ctx, task.Draft{
			Title:       smp.title,
			Description: smp.description,
			CategoryID:  &cat.ID,
			DueDate:     &due,
			Quadrant:    smp.quadrant,
		})
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
