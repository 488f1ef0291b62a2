package views

import (
	"cmp"
	"slices"
	"time"

	"github.com/sandeepkv93/teamtodo/internal/model"
	"github.com/sandeepkv93/teamtodo/internal/state"
)

// UnassignedName is shown for tasks and goals whose assignee no longer exists.
const UnassignedName = "Unassigned"

type Assignee struct {
	ID        string
	Name      string
	AvatarURL string
	Missing   bool
}

// ResolveAssignee joins an assignee id with the user list. A stale id gets
// the placeholder name and an avatar derived from the id itself.
func ResolveAssignee(users []model.User, id, avatarBase string) Assignee {
	if u, ok := model.FindUser(users, id); ok {
		return Assignee{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
	}
	return Assignee{ID: id, Name: UnassignedName, AvatarURL: model.AvatarFor(avatarBase, id), Missing: true}
}

type TaskRow struct {
	Position  int
	ID        string
	Text      string
	Completed bool
	Priority  model.Priority
	Category  string
	Assignee  Assignee
	CreatedAt time.Time
}

type TaskListView struct {
	Rows         []TaskRow
	Total        int
	Status       model.StatusFilter
	AssigneeName string
	Search       string
	Sort         model.SortOrder
}

func BuildTaskList(s *state.Store, avatarBase string) TaskListView {
	sel := s.Selection()
	users := s.Users()
	visible := s.VisibleTasks()

	out := TaskListView{
		Rows:         make([]TaskRow, 0, len(visible)),
		Total:        len(s.Tasks()),
		Status:       sel.StatusFilter,
		AssigneeName: model.AssigneeAll,
		Search:       sel.Search,
		Sort:         sel.Sort,
	}
	if sel.AssigneeFilter != "" && sel.AssigneeFilter != model.AssigneeAll {
		out.AssigneeName = ResolveAssignee(users, sel.AssigneeFilter, avatarBase).Name
	}
	for i, t := range visible {
		out.Rows = append(out.Rows, TaskRow{
			Position:  i + 1,
			ID:        t.ID,
			Text:      t.Text,
			Completed: t.Completed,
			Priority:  t.Priority,
			Category:  t.Category,
			Assignee:  ResolveAssignee(users, t.Assignee, avatarBase),
			CreatedAt: t.CreatedAt,
		})
	}
	return out
}

type CategoryCount struct {
	Name  string
	Count int
}

type StatsView struct {
	Period     model.StatsPeriod
	Start      time.Time
	End        time.Time
	Total      int
	Completed  int
	Rate       int
	Categories []CategoryCount
	Priority   model.PriorityCounts
	Trend      []model.SeriesPoint
}

// BuildStats summarizes tasks created inside the period window. The trend
// covers all tasks regardless of the window.
func BuildStats(tasks []model.Task, period model.StatsPeriod, now time.Time) StatsView {
	start, end := model.PeriodWindow(period, now)
	inWindow := model.TasksInWindow(tasks, start, end)

	byCategory := model.AggregateByCategory(inWindow)
	categories := make([]CategoryCount, 0, len(byCategory))
	for name, n := range byCategory {
		categories = append(categories, CategoryCount{Name: name, Count: n})
	}
	slices.SortFunc(categories, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return StatsView{
		Period:     period,
		Start:      start,
		End:        end,
		Total:      len(inWindow),
		Completed:  model.CountCompleted(inWindow),
		Rate:       model.CompletionRate(inWindow),
		Categories: categories,
		Priority:   model.AggregateByPriority(inWindow),
		Trend:      model.TrailingCompletionSeries(tasks, now, model.DefaultTrendBuckets),
	}
}

type GoalRow struct {
	Position  int
	ID        string
	Title     string
	Assignee  Assignee
	Done      int
	Total     int
	Percent   int
	Completed bool
}

type GoalsView struct {
	Month   string
	Rows    []GoalRow
	Summary model.GoalSummary
}

// BuildGoals lists the goals created in the current month.
func BuildGoals(goals []model.Goal, users []model.User, now time.Time, avatarBase string) GoalsView {
	monthly := model.GoalsForMonth(goals, now)
	out := GoalsView{
		Month:   now.Format("January 2006"),
		Rows:    make([]GoalRow, 0, len(monthly)),
		Summary: model.SummarizeGoals(monthly),
	}
	for i, g := range monthly {
		out.Rows = append(out.Rows, GoalRow{
			Position:  i + 1,
			ID:        g.ID,
			Title:     g.Title,
			Assignee:  ResolveAssignee(users, g.Assignee, avatarBase),
			Done:      g.CompletedTasks,
			Total:     g.TotalTasks,
			Percent:   model.GoalPercent(g),
			Completed: g.Completed,
		})
	}
	return out
}

type UserRow struct {
	Position  int
	ID        string
	Name      string
	AvatarURL string
	Active    bool
	Open      int
	Done      int
}

type UsersView struct {
	Rows       []UserRow
	ActiveName string
}

func BuildUsers(users []model.User, tasks []model.Task, activeID string) UsersView {
	out := UsersView{Rows: make([]UserRow, 0, len(users))}
	for i, u := range users {
		row := UserRow{Position: i + 1, ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL, Active: u.ID == activeID}
		for _, t := range tasks {
			if t.Assignee != u.ID {
				continue
			}
			if t.Completed {
				row.Done++
			} else {
				row.Open++
			}
		}
		if row.Active {
			out.ActiveName = u.Name
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
