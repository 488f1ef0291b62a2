package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/teamtodo/internal/commands"
	"github.com/sandeepkv93/teamtodo/internal/model"
	"github.com/sandeepkv93/teamtodo/internal/state"
	"github.com/sandeepkv93/teamtodo/internal/views"
)

// Persister is the storage side of the app. *storage.Adapter implements it.
type Persister interface {
	Load(ctx context.Context) (model.Dataset, error)
	Save(ctx context.Context, d model.Dataset) error
	SaveActiveUser(ctx context.Context, id string) error
}

type Options struct {
	AvatarBaseURL   string
	DefaultUserName string
	Logger          *slog.Logger
	Now             func() time.Time
	// OnToast is called after every toast reaches the sink, outside the
	// app lock.
	OnToast func(views.Toast)
}

// App owns the command handlers. Every handler validates, mutates the
// store, persists the full dataset and re-renders the affected views, in
// that order, before it returns. Handlers are serialized by a mutex.
type App struct {
	mu      sync.Mutex
	store   *state.Store
	persist Persister
	sink    views.Sink
	opts    Options
	log     *slog.Logger
}

func New(store *state.Store, persist Persister, sink views.Sink, opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if strings.TrimSpace(opts.DefaultUserName) == "" {
		opts.DefaultUserName = "My User"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &App{store: store, persist: persist, sink: sink, opts: opts, log: logger}
}

// Handlers is the dispatch table for commands.Execute.
func (a *App) Handlers() commands.Handlers {
	return commands.Handlers{
		Add:          a.AddTask,
		Toggle:       a.ToggleTask,
		Edit:         a.EditTask,
		Delete:       a.DeleteTask,
		UserAdd:      a.AddUser,
		UserDelete:   a.DeleteUser,
		UserSwitch:   a.SwitchUser,
		Tab:          a.SwitchTab,
		Filter:       a.ChangeFilter,
		Search:       a.Search,
		Sort:         a.ChangeSort,
		Period:       a.ChangeStatsPeriod,
		GoalAdd:      a.AddGoal,
		GoalProgress: a.SetGoalProgress,
		GoalDelete:   a.DeleteGoal,
		Save:         a.Save,
	}
}

// Run parses one command line and executes it.
func (a *App) Run(line string) (commands.Result, error) {
	cmd, err := commands.Parse(line)
	if err != nil {
		return commands.Result{}, err
	}
	res, err := commands.Execute(cmd, a.Handlers())
	a.log.Debug("command handled", "type", cmd.Type, "noop", res.Noop, "err", err)
	return res, err
}

func (a *App) Selection() state.Selection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Selection()
}

// Bootstrap loads the dataset, guarantees at least one user and a valid
// active user, persists, and renders every view.
func (a *App) Bootstrap(ctx context.Context) error {
	a.mu.Lock()
	d, err := a.persist.Load(ctx)
	if err != nil {
		a.mu.Unlock()
		a.log.Error("load failed", "err", err)
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	a.store.Replace(d)

	if len(a.store.Users()) == 0 {
		u := model.NewUser(a.opts.DefaultUserName, a.opts.AvatarBaseURL)
		a.store.AddUser(u)
		a.store.SetActiveUser(u.ID)
		a.log.Info("created default user", "id", u.ID)
	} else if _, ok := a.store.User(a.store.ActiveUserID()); !ok {
		a.store.SetActiveUser(a.store.Users()[0].ID)
	}

	err = a.persist.Save(ctx, a.store.Dataset())
	a.render(views.ViewUsers, views.ViewTasks, views.ViewStats, views.ViewGoals)
	a.mu.Unlock()
	if err != nil {
		a.storageFailed(err)
		return err
	}
	return nil
}

func (a *App) AddUser(args commands.UserAddArgs) (commands.Result, error) {
	u := model.NewUser(args.Name, a.opts.AvatarBaseURL)
	if err := u.Validate(); err != nil {
		return commands.Result{}, invalid("name", err.Error())
	}
	a.mu.Lock()
	a.store.AddUser(u)
	return a.commit(fmt.Sprintf("user %s added", u.Name), views.ViewUsers)
}

// DeleteUser keeps the user's tasks and goals with their now stale
// assignee. The last remaining user cannot be deleted.
func (a *App) DeleteUser(args commands.RefArgs) (commands.Result, error) {
	a.mu.Lock()
	id, ok, err := a.resolveUser(args.Ref)
	if err != nil || !ok {
		a.mu.Unlock()
		return notFound("user", args.Ref, err)
	}
	if len(a.store.Users()) <= 1 {
		a.mu.Unlock()
		return commands.Result{}, invalid("user", "cannot delete the last user")
	}
	u, _ := a.store.User(id)
	a.store.RemoveUser(id)
	return a.commit(fmt.Sprintf("user %s deleted", u.Name), views.ViewUsers, views.ViewTasks)
}

func (a *App) SwitchUser(args commands.RefArgs) (commands.Result, error) {
	a.mu.Lock()
	id, ok, err := a.resolveUser(args.Ref)
	if err != nil || !ok {
		a.mu.Unlock()
		return notFound("user", args.Ref, err)
	}
	a.store.SetActiveUser(id)
	u, _ := a.store.User(id)
	if err := a.persist.SaveActiveUser(context.Background(), id); err != nil {
		a.render(views.ViewUsers, views.ViewTasks, views.ViewStats, views.ViewGoals)
		a.mu.Unlock()
		a.storageFailed(err)
		return commands.Result{Message: "switched to " + u.Name}, err
	}
	return a.commit("switched to "+u.Name, views.ViewUsers, views.ViewTasks, views.ViewStats, views.ViewGoals)
}

// AddTask prepends a task assigned to the active user. An empty priority
// means medium.
func (a *App) AddTask(args commands.AddArgs) (commands.Result, error) {
	text := strings.TrimSpace(args.Text)
	if text == "" {
		return commands.Result{}, invalid("text", "task text is required")
	}
	p, err := model.ParsePriority(args.Priority)
	if err != nil {
		return commands.Result{}, invalid("priority", fmt.Sprintf("unknown priority %q", args.Priority))
	}
	a.mu.Lock()
	t := model.NewTask(text, p, args.Category, a.store.ActiveUserID(), a.opts.Now())
	if err := t.Validate(); err != nil {
		a.mu.Unlock()
		return commands.Result{}, invalid("task", err.Error())
	}
	a.store.PrependTask(t)
	return a.commit("task added", views.ViewTasks, views.ViewStats)
}

func (a *App) ToggleTask(args commands.RefArgs) (commands.Result, error) {
	a.mu.Lock()
	id, ok, err := a.resolveTask(args.Ref)
	if err != nil || !ok {
		a.mu.Unlock()
		return notFound("task", args.Ref, err)
	}
	now := a.opts.Now()
	var done bool
	a.store.UpdateTask(id, func(t *model.Task) {
		t.Toggle(now)
		done = t.Completed
	})
	msg := "task reopened"
	if done {
		msg = "task completed"
	}
	return a.commit(msg, views.ViewTasks, views.ViewStats)
}

func (a *App) EditTask(args commands.EditArgs) (commands.Result, error) {
	text := strings.TrimSpace(args.Text)
	if text == "" {
		return commands.Result{}, invalid("text", "task text is required")
	}
	a.mu.Lock()
	id, ok, err := a.resolveTask(args.Ref)
	if err != nil || !ok {
		a.mu.Unlock()
		return notFound("task", args.Ref, err)
	}
	now := a.opts.Now()
	a.store.UpdateTask(id, func(t *model.Task) { t.Rename(text, now) })
	return a.commit("task updated", views.ViewTasks)
}

func (a *App) DeleteTask(args commands.RefArgs) (commands.Result, error) {
	a.mu.Lock()
	id, ok, err := a.resolveTask(args.Ref)
	if err != nil || !ok {
		a.mu.Unlock()
		return notFound("task", args.Ref, err)
	}
	a.store.RemoveTask(id)
	return a.commit("task deleted", views.ViewTasks, views.ViewStats)
}

// SwitchTab ignores unknown tabs without rendering anything.
func (a *App) SwitchTab(args commands.TabArgs) (commands.Result, error) {
	tab, err := state.ParseTab(args.Tab)
	if err != nil {
		return commands.Result{Message: fmt.Sprintf("unknown tab %q", args.Tab), Noop: true}, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.SetTab(tab)
	a.render(tabView(tab))
	return commands.Result{Message: "tab " + string(tab)}, nil
}

func (a *App) ChangeFilter(args commands.FilterArgs) (commands.Result, error) {
	status, err := model.ParseStatusFilter(args.Status)
	if err != nil {
		return commands.Result{}, invalid("status", err.Error())
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	assignee := model.AssigneeAll
	if ref := strings.TrimSpace(args.User); ref != "" && !strings.EqualFold(ref, model.AssigneeAll) {
		id, ok, err := a.resolveUser(ref)
		if err != nil {
			return commands.Result{}, err
		}
		if !ok {
			return commands.Result{}, invalid("user", fmt.Sprintf("no user matches %q", ref))
		}
		assignee = id
	}
	a.store.SetFilters(status, assignee)
	a.render(views.ViewTasks)
	return commands.Result{Message: "filter " + string(status)}, nil
}

func (a *App) Search(args commands.SearchArgs) (commands.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.SetSearch(args.Query)
	a.render(views.ViewTasks)
	if a.store.Selection().Search == "" {
		return commands.Result{Message: "search cleared"}, nil
	}
	return commands.Result{Message: fmt.Sprintf("search %q", a.store.Selection().Search)}, nil
}

func (a *App) ChangeSort(args commands.SortArgs) (commands.Result, error) {
	order, err := model.ParseSortOrder(args.Order)
	if err != nil {
		return commands.Result{}, invalid("sort", err.Error())
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.SetSort(order)
	a.render(views.ViewTasks)
	return commands.Result{Message: "sort " + string(order)}, nil
}

func (a *App) ChangeStatsPeriod(args commands.PeriodArgs) (commands.Result, error) {
	period, err := model.ParseStatsPeriod(args.Period)
	if err != nil {
		return commands.Result{}, invalid("period", err.Error())
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.SetStatsPeriod(period)
	a.render(views.ViewStats)
	return commands.Result{Message: "period " + string(period)}, nil
}

func (a *App) AddGoal(args commands.GoalAddArgs) (commands.Result, error) {
	title := strings.TrimSpace(args.Title)
	if title == "" {
		return commands.Result{}, invalid("title", "goal title is required")
	}
	if args.Total < 0 {
		return commands.Result{}, invalid("total", "goal total must not be negative")
	}
	a.mu.Lock()
	g := model.NewGoal(title, args.Total, a.store.ActiveUserID(), a.opts.Now())
	if err := g.Validate(); err != nil {
		a.mu.Unlock()
		return commands.Result{}, invalid("goal", err.Error())
	}
	a.store.AddGoal(g)
	return a.commit("goal added", views.ViewGoals)
}

// SetGoalProgress clamps the count into [0, total].
func (a *App) SetGoalProgress(args commands.GoalProgressArgs) (commands.Result, error) {
	a.mu.Lock()
	id, ok, err := a.resolveGoal(args.Ref)
	if err != nil || !ok {
		a.mu.Unlock()
		return notFound("goal", args.Ref, err)
	}
	var g model.Goal
	a.store.UpdateGoal(id, func(goal *model.Goal) {
		goal.SetProgress(args.Completed)
		g = *goal
	})
	return a.commit(fmt.Sprintf("goal %d/%d", g.CompletedTasks, g.TotalTasks), views.ViewGoals)
}

func (a *App) DeleteGoal(args commands.RefArgs) (commands.Result, error) {
	a.mu.Lock()
	id, ok, err := a.resolveGoal(args.Ref)
	if err != nil || !ok {
		a.mu.Unlock()
		return notFound("goal", args.Ref, err)
	}
	a.store.RemoveGoal(id)
	return a.commit("goal deleted", views.ViewGoals)
}

// Save flushes the full dataset on request.
func (a *App) Save() (commands.Result, error) {
	a.mu.Lock()
	err := a.persist.Save(context.Background(), a.store.Dataset())
	a.mu.Unlock()
	if err != nil {
		a.storageFailed(err)
		return commands.Result{}, err
	}
	a.toast(views.LevelSuccess, "data saved")
	return commands.Result{Message: "data saved"}, nil
}

// Autosave is the periodic unconditional flush.
func (a *App) Autosave() error {
	a.mu.Lock()
	err := a.persist.Save(context.Background(), a.store.Dataset())
	a.mu.Unlock()
	if err != nil {
		a.storageFailed(err)
		return err
	}
	a.log.Debug("autosaved")
	a.toast(views.LevelSuccess, "data auto-saved")
	return nil
}

// commit persists and renders after a mutation. The caller holds a.mu;
// commit releases it.
func (a *App) commit(msg string, vs ...views.View) (commands.Result, error) {
	err := a.persist.Save(context.Background(), a.store.Dataset())
	a.render(vs...)
	a.mu.Unlock()
	if err != nil {
		a.storageFailed(err)
		return commands.Result{Message: msg}, err
	}
	a.toast(views.LevelSuccess, msg)
	return commands.Result{Message: msg}, nil
}

func (a *App) render(vs ...views.View) {
	now := a.opts.Now()
	for _, v := range vs {
		switch v {
		case views.ViewTasks:
			a.sink.RenderTasks(views.BuildTaskList(a.store, a.opts.AvatarBaseURL))
		case views.ViewStats:
			sel := a.store.Selection()
			a.sink.RenderStats(views.BuildStats(a.store.Tasks(), sel.StatsPeriod, now))
		case views.ViewGoals:
			a.sink.RenderGoals(views.BuildGoals(a.store.Goals(), a.store.Users(), now, a.opts.AvatarBaseURL))
		case views.ViewUsers:
			a.sink.RenderUsers(views.BuildUsers(a.store.Users(), a.store.Tasks(), a.store.ActiveUserID()))
		}
	}
}

func (a *App) storageFailed(err error) {
	a.log.Error("storage write failed", "err", err)
	a.toast(views.LevelError, "save failed: "+err.Error())
}

func (a *App) toast(level views.Level, msg string) {
	t := a.sink.PushToast(views.Toast{Level: level, Message: msg, At: a.opts.Now()})
	if a.opts.OnToast != nil {
		a.opts.OnToast(t)
	}
}

func (a *App) resolveUser(ref string) (string, bool, error) {
	ids := userIDs(a.store.Users())
	return resolveRef("user", ref, ids, ids)
}

func (a *App) resolveTask(ref string) (string, bool, error) {
	return resolveRef("task", ref, taskIDs(a.store.Tasks()), taskIDs(a.store.VisibleTasks()))
}

func (a *App) resolveGoal(ref string) (string, bool, error) {
	goals := a.store.Goals()
	return resolveRef("goal", ref, goalIDs(goals), goalIDs(model.GoalsForMonth(goals, a.opts.Now())))
}

// notFound turns a failed lookup into a no-op result. Validation errors
// from the lookup pass through.
func notFound(kind, ref string, err error) (commands.Result, error) {
	if err != nil && errors.Is(err, ErrValidation) {
		return commands.Result{}, err
	}
	return commands.Result{Message: fmt.Sprintf("no %s matches %q", kind, ref), Noop: true}, nil
}

func tabView(t state.Tab) views.View {
	switch t {
	case state.TabTasks:
		return views.ViewTasks
	case state.TabGoals:
		return views.ViewGoals
	case state.TabUsers:
		return views.ViewUsers
	default:
		return views.ViewStats
	}
}
