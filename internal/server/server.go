package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"eisen/internal/query"
	"eisen/internal/task"
)

type Store interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
	GetTask(ctx context.Context, id int64) (task.Task, error)
	CreateTask(ctx context.Context, d task.Draft) (task.Task, error)
	UpdateTask(ctx context.Context, id int64, p task.Patch) (task.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]task.Category, error)
	CreateCategory(ctx context.Context, c task.Category) (task.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type Options struct {
	Location    *time.Location
	OverdueMode query.OverdueMode
	Logger      zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	store  Store
	loc    *time.Location
	mode   query.OverdueMode
	log    zerolog.Logger
	now    func() time.Time
	router *gin.Engine
}

func New(store Store, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	router := gin.New()
	s := &Server{
		store:  store,
		loc:    opts.Location,
		mode:   opts.OverdueMode,
		log:    opts.Logger,
		now:    opts.Now,
		router: router,
	}

	router.Use(gin.Recovery(), requestID(), accessLog(s.log))

	router.GET("/healthz", s.handleHealth)
	router.GET("/dashboard", s.handleDashboard)
	router.GET("/export", s.handleExport)

	router.GET("/tasks", s.handleListTasks)
	router.POST("/tasks", s.handleCreateTask)
	router.GET("/tasks/:id", s.handleGetTask)
	router.PUT("/tasks/:id", s.handleUpdateTask)
	router.PATCH("/tasks/:id", s.handleUpdateTask)
	router.DELETE("/tasks/:id", s.handleDeleteTask)

	router.GET("/categories", s.handleListCategories)
	router.POST("/categories", s.handleCreateCategory)
	router.DELETE("/categories/:id", s.handleDeleteCategory)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) windows() query.Windows {
	return query.NewWindows(s.now(), s.loc, s.mode)
}
