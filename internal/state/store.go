package state

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sandeepkv93/teamtodo/internal/model"
)

type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabTasks     Tab = "tasks"
	TabGoals     Tab = "goals"
	TabUsers     Tab = "users"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabDashboard, TabTasks, TabGoals, TabUsers}

func ParseTab(raw string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(Tabs, t) {
		return "", fmt.Errorf("state: unknown tab %q", raw)
	}
	return t, nil
}

// Selection is the transient, non-persisted UI state, except ActiveUserID
// which is saved under current-user.
type Selection struct {
	ActiveUserID   string
	Tab            Tab
	StatusFilter   model.StatusFilter
	AssigneeFilter string
	Search         string
	Sort           model.SortOrder
	StatsPeriod    model.StatsPeriod
}

func DefaultSelection() Selection {
	return Selection{
		Tab:            TabDashboard,
		StatusFilter:   model.FilterAll,
		AssigneeFilter: model.AssigneeAll,
		Sort:           model.SortNewest,
		StatsPeriod:    model.PeriodMonthly,
	}
}

// Store is the single owner of the in-memory collections. Every read
// returns a copy; every change goes through a method. Store is not safe
// for concurrent use.
type Store struct {
	users []model.User
	tasks []model.Task
	goals []model.Goal
	sel   Selection
}

func New() *Store {
	return &Store{
		users: []model.User{},
		tasks: []model.Task{},
		goals: []model.Goal{},
		sel:   DefaultSelection(),
	}
}

// Replace installs a loaded dataset, keeping the rest of the selection.
func (s *Store) Replace(d model.Dataset) {
	d = d.Clone()
	s.users = nonNil(d.Users)
	s.tasks = nonNil(d.Tasks)
	s.goals = nonNil(d.Goals)
	s.sel.ActiveUserID = d.ActiveUserID
}

// Dataset snapshots the persisted part of the state.
func (s *Store) Dataset() model.Dataset {
	return model.Dataset{
		Users:        slices.Clone(s.users),
		Tasks:        slices.Clone(s.tasks),
		Goals:        slices.Clone(s.goals),
		ActiveUserID: s.sel.ActiveUserID,
	}
}

func (s *Store) Users() []model.User               { return slices.Clone(s.users) }
func (s *Store) Tasks() []model.Task               { return slices.Clone(s.tasks) }
func (s *Store) Goals() []model.Goal               { return slices.Clone(s.goals) }
func (s *Store) Selection() Selection              { return s.sel }
func (s *Store) ActiveUserID() string              { return s.sel.ActiveUserID }
func (s *Store) User(id string) (model.User, bool) { return model.FindUser(s.users, id) }

func (s *Store) Task(id string) (model.Task, bool) {
	i := s.taskIndex(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) Goal(id string) (model.Goal, bool) {
	i := s.goalIndex(id)
	if i < 0 {
		return model.Goal{}, false
	}
	return s.goals[i], true
}

func (s *Store) AddUser(u model.User) {
	s.users = append(s.users, u)
}

// RemoveUser deletes the user. Tasks and goals keep the stale assignee id.
// When the active user is removed the first remaining user becomes active.
func (s *Store) RemoveUser(id string) bool {
	i := slices.IndexFunc(s.users, func(u model.User) bool { return u.ID == id })
	if i < 0 {
		return false
	}
	s.users = slices.Delete(s.users, i, i+1)
	if s.sel.ActiveUserID == id {
		s.sel.ActiveUserID = ""
		if len(s.users) > 0 {
			s.sel.ActiveUserID = s.users[0].ID
		}
	}
	if s.sel.AssigneeFilter == id {
		s.sel.AssigneeFilter = model.AssigneeAll
	}
	return true
}

// SetActiveUser selects an existing user. An empty id clears the selection.
func (s *Store) SetActiveUser(id string) bool {
	if id != "" {
		if _, ok := s.User(id); !ok {
			return false
		}
	}
	s.sel.ActiveUserID = id
	return true
}

// PrependTask inserts t at the head, so the stored order is newest first.
func (s *Store) PrependTask(t model.Task) {
	s.tasks = slices.Insert(s.tasks, 0, t)
}

func (s *Store) UpdateTask(id string, fn func(*model.Task)) bool {
	i := s.taskIndex(id)
	if i < 0 {
		return false
	}
	fn(&s.tasks[i])
	return true
}

func (s *Store) RemoveTask(id string) bool {
	i := s.taskIndex(id)
	if i < 0 {
		return false
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return true
}

func (s *Store) AddGoal(g model.Goal) {
	s.goals = append(s.goals, g)
}

func (s *Store) UpdateGoal(id string, fn func(*model.Goal)) bool {
	i := s.goalIndex(id)
	if i < 0 {
		return false
	}
	fn(&s.goals[i])
	return true
}

func (s *Store) RemoveGoal(id string) bool {
	i := s.goalIndex(id)
	if i < 0 {
		return false
	}
	s.goals = slices.Delete(s.goals, i, i+1)
	return true
}

func (s *Store) SetTab(t Tab) {
	s.sel.Tab = t
}

func (s *Store) SetFilters(status model.StatusFilter, assignee string) {
	if assignee == "" {
		assignee = model.AssigneeAll
	}
	s.sel.StatusFilter = status
	s.sel.AssigneeFilter = assignee
}

func (s *Store) SetSearch(q string) {
	s.sel.Search = strings.TrimSpace(q)
}

func (s *Store) SetSort(o model.SortOrder) {
	s.sel.Sort = o
}

func (s *Store) SetStatsPeriod(p model.StatsPeriod) {
	s.sel.StatsPeriod = p
}

// VisibleTasks applies the current filters, search and sort.
func (s *Store) VisibleTasks() []model.Task {
	out := model.FilterTasks(s.tasks, s.sel.StatusFilter, s.sel.AssigneeFilter)
	out = model.SearchTasks(out, s.sel.Search)
	return model.SortTasks(out, s.sel.Sort)
}

func (s *Store) taskIndex(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

func (s *Store) goalIndex(id string) int {
	return slices.IndexFunc(s.goals, func(g model.Goal) bool { return g.ID == id })
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
