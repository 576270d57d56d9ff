package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"eisen/internal/config"
	"eisen/internal/export"
	"eisen/internal/logging"
	"eisen/internal/query"
	"eisen/internal/reminder"
	"eisen/internal/server"
	"eisen/internal/storage"
	"eisen/internal/task"
	"eisen/internal/ui"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "eisen",
		Short:        "Eisenhower-matrix task service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $EISEN_CONFIG or the user config dir)")
	root.AddCommand(newServeCmd(), newBoardCmd(), newExportCmd())
	return root
}

type app struct {
	cfg   config.Config
	loc   *time.Location
	store *storage.Store
}

func open() (*app, error) {
	path := configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	firstLaunch := false
	if _, err := os.Stat(path); err != nil {
		firstLaunch = errors.Is(err, os.ErrNotExist)
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if firstLaunch {
		fmt.Fprintf(os.Stderr, "wrote default config to %s\n", path)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.DBPath, storage.RetryPolicy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay.Duration,
		MaxDelay:     cfg.Retry.MaxDelay.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &app{cfg: cfg, loc: loc, store: store}, nil
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.store.Close()
			if addr != "" {
				a.cfg.Addr = addr
			}
			return serve(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func serve(parent context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logging.New(a.cfg.Log, os.Stderr)
	mode := query.OverdueMode(a.cfg.OverdueMode)

	if a.cfg.SeedSamples {
		n, err := a.store.SeedSamples(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("seed samples: %w", err)
		}
		if n > 0 {
			log.Info().Int("tasks", n).Msg("seeded sample tasks")
		}
	}

	if a.cfg.Reminder.Enabled {
		rem := reminder.New(a.store, a.loc, mode, log.With().Str("component", "reminder").Logger())
		if err := rem.Start(ctx, a.cfg.Reminder.Schedule); err != nil {
			return err
		}
	}

	srv := server.New(a.store, server.Options{
		Location:    a.loc,
		OverdueMode: mode,
		Logger:      log,
	})
	return srv.Run(ctx, a.cfg.Addr)
}

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the terminal quadrant board",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.store.Close()
			if a.cfg.SeedSamples {
				if _, err := a.store.SeedSamples(cmd.Context(), time.Now()); err != nil {
					return fmt.Errorf("seed samples: %w", err)
				}
			}
			return ui.Run(cmd.Context(), a.store, a.cfg)
		},
	}
}

type exportFlags struct {
	filter        string
	search        string
	tag           string
	categories    []string
	showCompleted bool
	dateFrom      string
	dateTo        string
	sortBy        string
	sortOrder     string
}

// values renders the flags as the same query parameters the HTTP listing takes.
func (f exportFlags) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("filter", f.filter)
	set("search", f.search)
	set("tag", f.tag)
	set("date_from", f.dateFrom)
	set("date_to", f.dateTo)
	set("sort_by", f.sortBy)
	set("sort_order", f.sortOrder)
	v["categories"] = f.categories
	v.Set("show_completed", strconv.FormatBool(f.showCompleted))
	return v
}

func newExportCmd() *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write filtered tasks as CSV to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.store.Close()
			return exportTasks(cmd.Context(), cmd.OutOrStdout(), a.store, a.loc, query.OverdueMode(a.cfg.OverdueMode), f, time.Now())
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.filter, "filter", "all", "named filter: all, overdue, today, week, completed, active, due-soon")
	fl.StringVar(&f.search, "search", "", "case-insensitive title substring")
	fl.StringVar(&f.tag, "tag", "", "exact tag")
	fl.StringSliceVar(&f.categories, "category", nil, "category id or name (repeatable)")
	fl.BoolVar(&f.showCompleted, "show-completed", false, "include completed tasks")
	fl.StringVar(&f.dateFrom, "date-from", "", "inclusive lower due-date bound")
	fl.StringVar(&f.dateTo, "date-to", "", "inclusive upper due-date bound")
	fl.StringVar(&f.sortBy, "sort-by", "due_date", "due_date, title or category")
	fl.StringVar(&f.sortOrder, "sort-order", "asc", "asc or desc")
	return cmd
}

type lister interface {
	ListTasks(ctx context.Context) ([]task.Task, error)
}

func exportTasks(ctx context.Context, w io.Writer, store lister, loc *time.Location, mode query.OverdueMode, f exportFlags, now time.Time) error {
	all, err := store.ListTasks(ctx)
	if err != nil {
		return err
	}
	p := query.ParseParams(f.values(), loc)
	tasks := query.Run(all, p, query.NewWindows(now, loc, mode))
	return export.WriteCSV(w, tasks, loc)
}
