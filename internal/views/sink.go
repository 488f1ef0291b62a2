package views

import (
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Toast struct {
	ID      int
	Level   Level
	Message string
	At      time.Time
}

// View names a renderable region.
type View string

const (
	ViewTasks View = "tasks"
	ViewStats View = "stats"
	ViewGoals View = "goals"
	ViewUsers View = "users"
)

// Sink receives freshly built view-models. It stands between the command
// handlers and whatever draws the screen.
type Sink interface {
	RenderTasks(TaskListView)
	RenderStats(StatsView)
	RenderGoals(GoalsView)
	RenderUsers(UsersView)
	PushToast(Toast) Toast
}

// Frame is the in-memory Sink both front ends draw from. It is safe for
// concurrent use.
type Frame struct {
	mu      sync.Mutex
	tasks   TaskListView
	stats   StatsView
	goals   GoalsView
	users   UsersView
	toasts  []Toast
	nextID  int
	renders map[View]int
}

// MaxToasts is how many toasts a Frame keeps. Older ones are evicted.
const MaxToasts = 40

func NewFrame() *Frame {
	return &Frame{renders: make(map[View]int)}
}

func (f *Frame) RenderTasks(v TaskListView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = v
	f.renders[ViewTasks]++
}

func (f *Frame) RenderStats(v StatsView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = v
	f.renders[ViewStats]++
}

func (f *Frame) RenderGoals(v GoalsView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.goals = v
	f.renders[ViewGoals]++
}

func (f *Frame) RenderUsers(v UsersView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = v
	f.renders[ViewUsers]++
}

// PushToast stores t with a fresh id and returns it. Only the newest toasts
// are kept.
func (f *Frame) PushToast(t Toast) Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	f.toasts = append(f.toasts, t)
	if len(f.toasts) > MaxToasts {
		f.toasts = f.toasts[len(f.toasts)-MaxToasts:]
	}
	return t
}

// DismissToast removes the toast with id. It reports whether one was found.
func (f *Frame) DismissToast(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.toasts {
		if t.ID == id {
			f.toasts = append(f.toasts[:i], f.toasts[i+1:]...)
			return true
		}
	}
	return false
}

func (f *Frame) Tasks() TaskListView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks
}

func (f *Frame) Stats() StatsView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *Frame) Goals() GoalsView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.goals
}

func (f *Frame) Users() UsersView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users
}

func (f *Frame) Toasts() []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Toast(nil), f.toasts...)
}

// Renders counts how often v has been rendered.
func (f *Frame) Renders(v View) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renders[v]
}
