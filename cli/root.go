// Package cli wires configuration, storage and the session into the tasklist
// command tree. Running the root command without a subcommand starts the TUI.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tasklist/app"
	"tasklist/config"
	"tasklist/logging"
	"tasklist/store"
	"tasklist/tui"
)

var Version = "dev"

type rootOptions struct {
	configPath string
	backend    string
	ephemeral  bool
	verbose    bool

	// confirm asks a yes/no question on the terminal. Replaced in tests.
	confirm func(prompt string) (bool, error)
	// interactive reports whether stdin is a terminal.
	interactive func() bool
}

// env is everything a command needs for one run.
type env struct {
	cfg     config.Config
	area    store.Area
	tasks   *store.Tasks
	session *app.Session
	logger  *slog.Logger
	closers []io.Closer
}

func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{
		confirm:     huhConfirm,
		interactive: stdinIsTerminal,
	}
	return newRootCommand(opts)
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "tasklist",
		Short:         "A small to-do list for the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tasklist/config.toml)")
	flags.StringVar(&opts.backend, "backend", "", "storage backend: file, sqlite, badger or memory")
	flags.BoolVar(&opts.ephemeral, "ephemeral", false, "keep tasks in memory only")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		addCmd(opts),
		listCmd(opts),
		editCmd(opts),
		toggleCmd(opts),
		rmCmd(opts),
		clearCmd(opts),
		countsCmd(opts),
		exportCmd(opts),
	)
	return root
}

// open loads config, opens storage and hydrates a session. The TUI logs to a
// file so the terminal stays clean; subcommands log to stderr.
func open(cmd *cobra.Command, opts *rootOptions, forTUI bool) (*env, error) {
	path := opts.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.backend != "" {
		cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(opts.backend))
		cfg.Storage.Path = ""
	}
	if opts.ephemeral {
		cfg.Storage.Backend = store.BackendMemory
	}

	e := &env{cfg: cfg}
	if forTUI {
		logger, closer, err := logging.OpenFile(cfg.LogPath(), logging.ParseLevel(cfg.Log.Level))
		if err != nil {
			return nil, err
		}
		e.logger = logger
		e.closers = append(e.closers, closer)
	} else {
		level := slog.LevelWarn
		if opts.verbose {
			level = slog.LevelDebug
		}
		e.logger = logging.New(cmd.ErrOrStderr(), level)
	}

	area, err := store.Open(cfg.Storage.Backend, cfg.StoragePath(), e.logger)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	e.area = area
	e.closers = append(e.closers, area)

	e.tasks = store.NewTasks(area, cfg.Storage.Slot, e.logger)
	e.session = app.NewSession(e.tasks.Load(), e.tasks, e.logger)
	e.logger.Debug("session ready",
		"backend", cfg.Storage.Backend,
		"path", cfg.StoragePath(),
		"tasks", e.session.List().Len(),
	)
	return e, nil
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	e, err := open(cmd, opts, true)
	if err != nil {
		return err
	}
	defer e.Close()

	m := tui.NewModel(e.session, tui.Options{
		Keys:           e.cfg.Keys,
		NoticeDuration: e.cfg.NoticeDuration(),
		Logger:         e.logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func huhConfirm(prompt string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
