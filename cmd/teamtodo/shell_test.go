package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/teamtodo/internal/app"
	"github.com/sandeepkv93/teamtodo/internal/config"
	"github.com/sandeepkv93/teamtodo/internal/scheduler"
	"github.com/sandeepkv93/teamtodo/internal/state"
	"github.com/sandeepkv93/teamtodo/internal/storage"
	"github.com/sandeepkv93/teamtodo/internal/views"
)

func newTestShell(t *testing.T, kv storage.KV) (*shell, *bytes.Buffer) {
	t.Helper()
	frame := views.NewFrame()
	a := app.New(state.New(), storage.NewAdapter(kv, ""), frame, app.Options{})
	if err := a.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	var out bytes.Buffer
	return &shell{app: a, frame: frame, out: &out}, &out
}

func TestShellRunsCommandsAndPrintsTab(t *testing.T) {
	sh, out := newTestShell(t, storage.NewMemoryKV())
	if sh.exec("tab tasks") {
		t.Fatalf("tab must not quit")
	}
	out.Reset()
	sh.exec("add Write report !high #work")
	got := out.String()
	if !strings.Contains(got, "ok: task added") || !strings.Contains(got, "Write report") {
		t.Fatalf("unexpected output:\n%s", got)
	}

	out.Reset()
	sh.exec("toggle 9")
	if got := out.String(); strings.Contains(got, "tasks:") || !strings.Contains(got, "no task matches") {
		t.Fatalf("noop should print only the message:\n%s", got)
	}
}

func TestShellErrorsDoNotPrintTab(t *testing.T) {
	sh, out := newTestShell(t, storage.NewMemoryKV())
	sh.exec("add")
	if got := out.String(); !strings.HasPrefix(got, "error:") || strings.Contains(got, "stats:") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestShellStorageErrorStillShowsChange(t *testing.T) {
	kv := storage.NewMemoryKV()
	sh, out := newTestShell(t, kv)
	sh.exec("tab tasks")
	kv.FailWrites = errors.New("disk full")
	out.Reset()
	sh.exec("add Survives the failure")
	got := out.String()
	if !strings.Contains(got, "disk full") || !strings.Contains(got, "Survives the failure") {
		t.Fatalf("expected error and updated panel:\n%s", got)
	}
}

func TestShellQuitHelpAndComplete(t *testing.T) {
	sh, out := newTestShell(t, storage.NewMemoryKV())
	if !sh.exec("quit") || !sh.exec("EXIT") {
		t.Fatalf("quit and exit should stop the shell")
	}
	sh.exec("help")
	if !strings.Contains(out.String(), "goal progress <ref> <n>") {
		t.Fatalf("help missing goal progress:\n%s", out.String())
	}
	got := sh.complete("user ")
	if len(got) != 3 {
		t.Fatalf("expected 3 user completions, got %v", got)
	}
}

func TestHandleEvent(t *testing.T) {
	sh, _ := newTestShell(t, storage.NewMemoryKV())
	rt := session{app: sh.app, frame: sh.frame, log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	handleEvent(rt, scheduler.Event{Kind: scheduler.KindAutosave})
	toasts := sh.frame.Toasts()
	last := toasts[len(toasts)-1]
	if last.Message != "data auto-saved" {
		t.Fatalf("expected autosave toast, got %+v", last)
	}
	handleEvent(rt, scheduler.Event{Kind: scheduler.KindToastExpiry, Ref: last.ID})
	for _, tt := range sh.frame.Toasts() {
		if tt.ID == last.ID {
			t.Fatalf("toast should be dismissed")
		}
	}
}

func TestReportDropsLogsNewDropsOnce(t *testing.T) {
	engine := scheduler.NewEngine(1)
	engine.Start()
	defer engine.Stop()

	at := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 10; i++ {
		if err := engine.Schedule(scheduler.Event{ID: "autosave", Kind: scheduler.KindAutosave, TriggerAt: at}); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected the full buffer to drop events")
	}

	var logs bytes.Buffer
	rt := session{engine: engine, log: slog.New(slog.NewTextHandler(&logs, nil))}
	var drops scheduler.DropWatch
	reportDrops(rt, &drops)
	reportDrops(rt, &drops)
	if got := strings.Count(logs.String(), "scheduler events dropped"); got != 1 {
		t.Fatalf("expected one drop warning, got %d:\n%s", got, logs.String())
	}
	if !strings.Contains(logs.String(), "pending=0") {
		t.Fatalf("expected pending count in warning, got %s", logs.String())
	}
}

func TestOpenKVBackends(t *testing.T) {
	dir := t.TempDir()
	for _, cfg := range []config.RuntimeConfig{
		{Backend: config.BackendMemory},
		{Backend: config.BackendFile, StorePath: filepath.Join(dir, "data.json")},
		{Backend: config.BackendSQLite, StorePath: filepath.Join(dir, "data.db")},
	} {
		kv, closeKV, err := openKV(cfg)
		if err != nil {
			t.Fatalf("%s: %v", cfg.Backend, err)
		}
		if err := kv.Set(context.Background(), "k", "v"); err != nil {
			t.Fatalf("%s set: %v", cfg.Backend, err)
		}
		closeKV()
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teamtodo.log")
	logger, closeLog, err := newLogger(path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("hello", "k", 1)
	closeLog()

	quiet, closeQuiet, err := newLogger("")
	if err != nil || quiet == nil {
		t.Fatalf("discard logger: %v", err)
	}
	closeQuiet()
}

func TestRunRejectsUnknownMode(t *testing.T) {
	if err := run([]string{"--backend", "memory", "gui"}); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}
