// Package config loads the TOML configuration file, creating it with
// defaults on first run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	// AppName is the directory name under the XDG config and data homes.
	AppName = "tasklist"

	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasklist.db"
	DefaultLogName        = "tasklist.log"
	DefaultSlot           = "tasks"
	DefaultNoticeDuration = 3 * time.Second
)

var ErrInvalidConfig = errors.New("invalid config")

type Storage struct {
	Backend string `toml:"backend" validate:"required,oneof=file sqlite badger memory"`
	// Path is a directory for file and badger, a database file for sqlite.
	// Empty means a default under the data dir.
	Path string `toml:"path"`
	Slot string `toml:"slot" validate:"required,excludesall=/\\"`
}

type UI struct {
	NoticeDuration string `toml:"notice_duration" validate:"required"`
}

type Log struct {
	Level string `toml:"level" validate:"required,oneof=debug info warn error"`
	File  string `toml:"file"`
}

type Keymap struct {
	Add             string `toml:"add" validate:"required"`
	Edit            string `toml:"edit" validate:"required"`
	Toggle          string `toml:"toggle" validate:"required"`
	Delete          string `toml:"delete" validate:"required"`
	Clear           string `toml:"clear" validate:"required"`
	FilterAll       string `toml:"filter_all" validate:"required"`
	FilterActive    string `toml:"filter_active" validate:"required"`
	FilterCompleted string `toml:"filter_completed" validate:"required"`
	NextFilter      string `toml:"next_filter" validate:"required"`
	Copy            string `toml:"copy" validate:"required"`
	Up              string `toml:"up" validate:"required"`
	Down            string `toml:"down" validate:"required"`
	Help            string `toml:"help" validate:"required"`
	Quit            string `toml:"quit" validate:"required"`
}

type Config struct {
	Storage Storage `toml:"storage"`
	UI      UI      `toml:"ui"`
	Log     Log     `toml:"log"`
	Keys    Keymap  `toml:"keys"`
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		Storage: Storage{
			Backend: "file",
			Slot:    DefaultSlot,
		},
		UI: UI{
			NoticeDuration: DefaultNoticeDuration.String(),
		},
		Log: Log{
			Level: "info",
		},
		Keys: Keymap{
			Add:             "a",
			Edit:            "e",
			Toggle:          " ",
			Delete:          "d",
			Clear:           "C",
			FilterAll:       "1",
			FilterActive:    "2",
			FilterCompleted: "3",
			NextFilter:      "tab",
			Copy:            "y",
			Up:              "k",
			Down:            "j",
			Help:            "?",
			Quit:            "q",
		},
	}
}

// ResolveConfigPath returns $XDG_CONFIG_HOME/tasklist/config.toml, falling
// back to ~/.config/tasklist/config.toml.
func ResolveConfigPath() string {
	return filepath.Join(userDir("XDG_CONFIG_HOME", ".config"), DefaultConfigFileName)
}

// DataDir returns $XDG_DATA_HOME/tasklist, falling back to ~/.local/share/tasklist.
func DataDir() string {
	return userDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func userDir(env, fallback string) string {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, fallback, AppName)
}

// LoadOrCreate reads the config at path. A missing file is created with
// defaults. Keys absent from an existing file keep their defaults.
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
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and that the notice duration parses.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if d, err := time.ParseDuration(c.UI.NoticeDuration); err != nil || d <= 0 {
		return fmt.Errorf("%w: ui.notice_duration %q must be a positive duration", ErrInvalidConfig, c.UI.NoticeDuration)
	}
	return nil
}

// NoticeDuration is how long transient messages stay on screen.
func (c Config) NoticeDuration() time.Duration {
	d, err := time.ParseDuration(c.UI.NoticeDuration)
	if err != nil || d <= 0 {
		return DefaultNoticeDuration
	}
	return d
}

// StoragePath resolves the storage location, defaulting under DataDir.
func (c Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case "sqlite":
		return filepath.Join(DataDir(), DefaultDBName)
	case "badger":
		return filepath.Join(DataDir(), "badger")
	default:
		return DataDir()
	}
}

// LogPath resolves the log file, defaulting under DataDir.
func (c Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(DataDir(), DefaultLogName)
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
