package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"eisen/internal/query"
	"eisen/internal/task"
)

type Lister interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
}

type Service struct {
	store Lister
	loc   *time.Location
	mode  query.OverdueMode
	log   zerolog.Logger
	now   func() time.Time
}

func New(store Lister, loc *time.Location, mode query.OverdueMode, log zerolog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, loc: loc, mode: mode, log: log, now: time.Now}
}

// Sweep returns open tasks with a reminder that fall due within the next day,
// logging one line for each.
func (s *Service) Sweep(ctx context.Context) ([]task.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("reminder sweep: %w", err)
	}
	w := query.NewWindows(s.now(), s.loc, s.mode)
	var due []task.Task
	for _, t := range tasks {
		if !t.ReminderSet || t.Completed || !w.DueSoon(t) {
			continue
		}
		due = append(due, t)
		s.log.Info().
			Int64("task_id", t.ID).
			Str("title", t.Title).
			Str("quadrant", string(t.Quadrant)).
			Time("due_date", t.DueDate.In(s.loc)).
			Msg("task due soon")
	}
	return due, nil
}

// Start runs Sweep on schedule (standard five-field cron) until ctx is done.
func (s *Service) Start(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithLocation(s.loc))
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.log.Error().Err(err).Msg("reminder sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("reminder schedule %q: %w", schedule, err)
	}
	c.Start()
	s.log.Info().Str("schedule", schedule).Msg("reminders scheduled")
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}
