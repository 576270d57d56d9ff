package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "eisen.db"
	EnvConfigPath         = "EISEN_CONFIG"
)

// Duration reads and writes TOML strings such as "250ms".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Keymap struct {
	Quit          string `toml:"quit"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Add           string `toml:"add"`
	Toggle        string `toml:"toggle"`
	Delete        string `toml:"delete"`
	Search        string `toml:"search"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
	CycleFilter   string `toml:"cycle_filter"`
	CycleSort     string `toml:"cycle_sort"`
	FlipOrder     string `toml:"flip_order"`
	ShowCompleted string `toml:"show_completed"`
	Reload        string `toml:"reload"`
	CycleQuadrant string `toml:"cycle_quadrant"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Retry struct {
	MaxAttempts  int      `toml:"max_attempts"`
	InitialDelay Duration `toml:"initial_delay"`
	MaxDelay     Duration `toml:"max_delay"`
}

type Reminder struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"`
}

type Config struct {
	Addr          string   `toml:"addr"`
	DBPath        string   `toml:"db_path"`
	Timezone      string   `toml:"timezone"`
	OverdueMode   string   `toml:"overdue_mode"`
	DefaultFilter string   `toml:"default_filter"`
	SeedSamples   bool     `toml:"seed_samples"`
	Log           Log      `toml:"log"`
	Retry         Retry    `toml:"retry"`
	Reminder      Reminder `toml:"reminder"`
	Keys          Keymap   `toml:"keys"`
}

// Location resolves Timezone; "" and "Local" mean the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ResolveConfigPath prefers $EISEN_CONFIG, then the user config dir.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "eisen", DefaultConfigFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	if _, err := cfg.Location(); err != nil {
		return cfg, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.OverdueMode == "" {
		c.OverdueMode = def.OverdueMode
	}
	if c.DefaultFilter == "" {
		c.DefaultFilter = def.DefaultFilter
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = def.Retry.MaxAttempts
	}
	if c.Retry.InitialDelay.Duration <= 0 {
		c.Retry.InitialDelay = def.Retry.InitialDelay
	}
	if c.Retry.MaxDelay.Duration <= 0 {
		c.Retry.MaxDelay = def.Retry.MaxDelay
	}
	if c.Reminder.Schedule == "" {
		c.Reminder.Schedule = def.Reminder.Schedule
	}
	// Keys added after the first release.
	if c.Keys.Add == "" {
		c.Keys.Add = def.Keys.Add
	}
	if c.Keys.CycleQuadrant == "" {
		c.Keys.CycleQuadrant = def.Keys.CycleQuadrant
	}
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func Default() Config {
	return Config{
		Addr:          ":8080",
		DBPath:        DefaultDBName,
		Timezone:      "Local",
		OverdueMode:   "start_of_day",
		DefaultFilter: "all",
		SeedSamples:   true,
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Retry: Retry{
			MaxAttempts:  3,
			InitialDelay: Duration{100 * time.Millisecond},
			MaxDelay:     Duration{time.Second},
		},
		Reminder: Reminder{
			Enabled:  true,
			Schedule: "*/15 * * * *",
		},
		Keys: Keymap{
			Quit:          "q",
			Up:            "k",
			Down:          "j",
			Add:           "a",
			Toggle:        " ",
			Delete:        "d",
			Search:        "/",
			Confirm:       "enter",
			Cancel:        "esc",
			CycleFilter:   "f",
			CycleSort:     "s",
			FlipOrder:     "o",
			ShowCompleted: "c",
			Reload:        "r",
			CycleQuadrant: "tab",
		},
	}
}
