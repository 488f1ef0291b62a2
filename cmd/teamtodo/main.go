// teamtodo is a multi-user task and monthly goal tracker.
//
// Usage:
//
//	teamtodo [flags] [tui|shell]
//
// The default mode is the full-screen TUI. The shell mode reads the same
// command language as the TUI ":" palette from a line editor.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"github.com/sandeepkv93/teamtodo/internal/app"
	"github.com/sandeepkv93/teamtodo/internal/config"
	"github.com/sandeepkv93/teamtodo/internal/scheduler"
	"github.com/sandeepkv93/teamtodo/internal/state"
	"github.com/sandeepkv93/teamtodo/internal/storage"
	"github.com/sandeepkv93/teamtodo/internal/update"
	"github.com/sandeepkv93/teamtodo/internal/views"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "teamtodo failed: %v\n", err)
		os.Exit(1)
	}
}

// session is everything both front ends share.
type session struct {
	cfg    config.RuntimeConfig
	app    *app.App
	frame  *views.Frame
	engine *scheduler.Engine
	log    *slog.Logger
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("teamtodo", flag.ContinueOnError)
	configPath := flagSet.StringP("config", "c", "", "config file (default: "+config.FileName+" in the working directory)")
	backend := flagSet.String("backend", "", "storage backend: sqlite|file|memory")
	store := flagSet.String("store", "", "store path for the sqlite or file backend")
	autosave := flagSet.Duration("autosave", 0, "autosave interval, 0 disables")
	logFile := flagSet.String("log-file", "", "write debug logs to this file")
	desktop := flagSet.Bool("desktop-notifications", false, "send desktop notifications")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	mode := "tui"
	if flagSet.NArg() > 0 {
		mode = flagSet.Arg(0)
	}
	if mode != "tui" && mode != "shell" {
		return fmt.Errorf("unknown mode %q (want tui or shell)", mode)
	}

	var ov config.Overrides
	if flagSet.Changed("backend") {
		ov.Backend = backend
	}
	if flagSet.Changed("store") {
		ov.StorePath = store
	}
	if flagSet.Changed("autosave") {
		ov.AutosaveInterval = autosave
	}
	if flagSet.Changed("log-file") {
		ov.LogFile = logFile
	}
	if flagSet.Changed("desktop-notifications") {
		ov.DesktopNotifications = desktop
	}

	cfg, err := config.Load(config.LoadInput{
		ConfigPath: *configPath,
		Env:        config.EnvMap(os.Environ()),
		Overrides:  ov,
	})
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	kv, closeKV, err := openKV(cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	frame := views.NewFrame()
	a := app.New(state.New(), storage.NewAdapter(kv, cfg.Namespace), frame, app.Options{
		AvatarBaseURL:   cfg.AvatarBaseURL,
		DefaultUserName: cfg.DefaultUserName,
		Logger:          logger,
		OnToast:         update.ToastExpiry(engine, cfg.ToastDuration),
	})

	engine.Start()
	defer engine.Stop()

	if err := a.Bootstrap(context.Background()); err != nil {
		if errors.Is(err, app.ErrLoad) {
			return err
		}
		// The dataset is in memory and on screen; the error toast says the
		// write failed.
		logger.Warn("initial save failed", "err", err)
	}
	if cfg.AutosaveInterval > 0 {
		err := engine.Schedule(scheduler.Event{
			ID:        "autosave",
			Kind:      scheduler.KindAutosave,
			TriggerAt: time.Now().Add(cfg.AutosaveInterval),
			Every:     cfg.AutosaveInterval,
		})
		if err != nil {
			return fmt.Errorf("schedule autosave: %w", err)
		}
	}
	logger.Info("started", "mode", mode, "backend", cfg.Backend, "store", cfg.StorePath)

	rt := session{cfg: cfg, app: a, frame: frame, engine: engine, log: logger}
	if mode == "shell" {
		return runShell(rt)
	}
	return runTUI(rt)
}

func runTUI(rt session) error {
	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if rt.cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}
	m := update.NewModel(update.Deps{
		App:       rt.app,
		Frame:     rt.frame,
		Scheduler: rt.engine,
		Notifier:  notifier,
		Desktop:   rt.cfg.DesktopNotifications,
		Logger:    rt.log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := tea.LogToFile(path, "teamtodo")
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}

func openKV(cfg config.RuntimeConfig) (storage.KV, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemoryKV(), func() {}, nil
	case config.BackendFile:
		kv, err := storage.OpenFile(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {}, nil
	default:
		kv, err := storage.OpenSQLite(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	}
}
