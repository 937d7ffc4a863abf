// Package config loads application settings from defaults, an optional YAML
// file and MINDMAP_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"mindmap/internal/layout"
)

// Config holds all application configuration
type Config struct {
	Environment string `yaml:"environment" validate:"oneof=development production test"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Storage
	DataDir  string `yaml:"data_dir" validate:"required"`
	DBDriver string `yaml:"db_driver" validate:"oneof=sqlite postgres mysql"`
	DBDSN    string `yaml:"db_dsn"`

	// Backups: cron expression, empty disables
	BackupSchedule string `yaml:"backup_schedule"`
	BackupDir      string `yaml:"backup_dir"`
	BackupKeep     int    `yaml:"backup_keep" validate:"gte=0"`

	// Flow file re-imported into the active mindmap whenever it is written
	WatchFile string `yaml:"watch_file"`

	// Window
	Width  int `yaml:"width" validate:"gte=0"`
	Height int `yaml:"height" validate:"gte=0"`

	Layout layout.Config `yaml:"layout"`

	// path of the YAML file that was read, if any
	Source string `yaml:"-"`
}

var validate = validator.New()

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".local", "share", "mindmap")
	return &Config{
		Environment: "development",
		LogLevel:    "info",
		DataDir:     dataDir,
		DBDriver:    "sqlite",
		BackupDir:   filepath.Join(dataDir, "backups"),
		BackupKeep:  10,
		Width:       1440,
		Height:      900,
		Layout:      layout.DefaultConfig(),
	}
}

// Load builds the configuration. The YAML file is $MINDMAP_CONFIG, or
// ~/.config/mindmap/config.yaml when that exists.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("MINDMAP_CONFIG")
	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".config", "mindmap", "config.yaml")
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Source = path
	return nil
}

func (c *Config) applyEnv() {
	c.Environment = getEnv("MINDMAP_ENV", c.Environment)
	c.LogLevel = strings.ToLower(getEnv("MINDMAP_LOG_LEVEL", c.LogLevel))
	if dir := os.Getenv("MINDMAP_DATA_DIR"); dir != "" {
		// backups follow the data dir unless set explicitly
		if c.BackupDir == filepath.Join(c.DataDir, "backups") {
			c.BackupDir = filepath.Join(dir, "backups")
		}
		c.DataDir = dir
	}
	c.DBDriver = getEnv("MINDMAP_DB_DRIVER", c.DBDriver)
	c.DBDSN = getEnv("MINDMAP_DB_DSN", c.DBDSN)
	c.BackupSchedule = getEnv("MINDMAP_BACKUP_SCHEDULE", c.BackupSchedule)
	c.BackupDir = getEnv("MINDMAP_BACKUP_DIR", c.BackupDir)
	c.BackupKeep = getEnvInt("MINDMAP_BACKUP_KEEP", c.BackupKeep)
	c.WatchFile = getEnv("MINDMAP_WATCH_FILE", c.WatchFile)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, formatFieldError(e))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	if c.DBDriver != "sqlite" && c.DBDSN == "" {
		return fmt.Errorf("invalid config: db_dsn is required for driver %s", c.DBDriver)
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DBPath is the SQLite file used when DBDriver is sqlite.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "mindmap.db")
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
