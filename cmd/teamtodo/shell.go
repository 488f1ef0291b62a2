package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/sandeepkv93/teamtodo/internal/app"
	"github.com/sandeepkv93/teamtodo/internal/scheduler"
	"github.com/sandeepkv93/teamtodo/internal/state"
	"github.com/sandeepkv93/teamtodo/internal/storage"
	"github.com/sandeepkv93/teamtodo/internal/views"
)

var shellCommands = []string{
	"add ", "toggle ", "edit ", "delete ",
	"user add ", "user delete ", "user switch ",
	"tab ", "filter ", "search ", "sort ", "period ",
	"goal add ", "goal progress ", "goal delete ",
	"save", "show", "help", "quit",
}

// shell runs command lines against the app and prints the current tab.
type shell struct {
	app   *app.App
	frame *views.Frame
	out   io.Writer
}

// exec handles one line and reports whether the shell should exit.
func (s *shell) exec(line string) bool {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return false
	case "exit", "quit", "q":
		return true
	case "help", "?":
		s.printHelp()
		return false
	case "show", "ls":
		s.printTab()
		return false
	}

	res, err := s.app.Run(line)
	switch {
	case err != nil:
		fmt.Fprintf(s.out, "error: %v\n", err)
		// A failed write still changed memory and the views.
		var se *storage.StorageError
		if !errors.As(err, &se) {
			return false
		}
	case res.Noop:
		fmt.Fprintf(s.out, "%s\n", res.Message)
		return false
	default:
		fmt.Fprintf(s.out, "ok: %s\n", res.Message)
	}
	s.printTab()
	return false
}

func (s *shell) printTab() {
	var body string
	switch s.app.Selection().Tab {
	case state.TabTasks:
		body = views.RenderTaskPanel(s.frame.Tasks(), -1)
	case state.TabGoals:
		body = views.RenderGoalsPanel(s.frame.Goals(), -1)
	case state.TabUsers:
		body = views.RenderUsersPanel(s.frame.Users(), -1)
	default:
		body = views.RenderStatsPanel(s.frame.Stats())
	}
	fmt.Fprintln(s.out, body)
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, `commands:
  add <text> [!high|!medium|!low] [#category]
  toggle <ref> | edit <ref> <text> | delete <ref>
  user add <name> | user delete <ref> | user switch <ref>
  tab <dashboard|tasks|goals|users>
  filter <all|pending|completed|high|medium|low> [user:<ref>|user:all]
  search [text] | sort <newest|oldest|priority> | period <monthly|quarterly>
  goal add <total> <title> | goal progress <ref> <n> | goal delete <ref>
  save | show | help | quit
refs are an id, a unique id prefix, or the row number shown in the list`)
}

func (s *shell) complete(line string) []string {
	var out []string
	for _, c := range shellCommands {
		if strings.HasPrefix(c, strings.ToLower(line)) {
			out = append(out, c)
		}
	}
	return out
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".teamtodo_history")
}

func runShell(rt session) error {
	go drainEvents(rt)

	sh := &shell{app: rt.app, frame: rt.frame, out: os.Stdout}
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(sh.complete)

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if path := historyFile(); path != "" {
			if f, err := os.Create(path); err == nil {
				_, _ = line.WriteHistory(f)
				_ = f.Close()
			}
		}
	}()

	fmt.Fprintf(sh.out, "teamtodo shell (%s backend). Type 'help' for commands.\n", rt.cfg.Backend)
	sh.printTab()
	for {
		input, err := line.Prompt("teamtodo> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(sh.out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if sh.exec(input) {
			return nil
		}
	}
}

// drainEvents handles scheduler events while the shell blocks on input.
// It returns when the engine stops.
func drainEvents(rt session) {
	var drops scheduler.DropWatch
	for ev := range rt.engine.C() {
		handleEvent(rt, ev)
		reportDrops(rt, &drops)
	}
}

// reportDrops logs events the engine could not deliver since the last
// check. A dropped autosave is retried on its next tick.
func reportDrops(rt session, drops *scheduler.DropWatch) {
	if n := drops.Check(rt.engine); n > 0 {
		rt.log.Warn("scheduler events dropped", "dropped", n, "pending", rt.engine.Pending())
	}
}

func handleEvent(rt session, ev scheduler.Event) {
	switch ev.Kind {
	case scheduler.KindAutosave:
		if err := rt.app.Autosave(); err != nil {
			rt.log.Error("autosave failed", "err", err)
		}
	case scheduler.KindToastExpiry:
		rt.frame.DismissToast(ev.Ref)
	}
}
