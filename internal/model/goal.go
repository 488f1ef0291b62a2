package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrEmptyTitle       = errors.New("model: goal title is required")
	ErrInvalidGoalCount = errors.New("model: invalid goal task count")
)

// Goal progress is supplied by the user; it is not derived from tasks.
type Goal struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Assignee       string    `json:"assignee"`
	TotalTasks     int       `json:"totalTasks"`
	CompletedTasks int       `json:"completedTasks"`
	Completed      bool      `json:"completed"`
	CreatedAt      time.Time `json:"createdAt"`
}

func NewGoal(title string, total int, assignee string, now time.Time) Goal {
	return Goal{
		ID:         NewID(GoalIDPrefix),
		Title:      strings.TrimSpace(title),
		Assignee:   assignee,
		TotalTasks: total,
		CreatedAt:  Timestamp(now),
	}
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return errors.New("model: goal id is required")
	}
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if g.TotalTasks < 0 {
		return fmt.Errorf("%w: total %d", ErrInvalidGoalCount, g.TotalTasks)
	}
	if g.CompletedTasks < 0 || g.CompletedTasks > g.TotalTasks {
		return fmt.Errorf("%w: completed %d of %d", ErrInvalidGoalCount, g.CompletedTasks, g.TotalTasks)
	}
	if g.CreatedAt.IsZero() {
		return errors.New("model: goal createdAt is required")
	}
	return nil
}

// SetProgress clamps completed into [0, TotalTasks] and marks the goal done
// once every counted task is complete.
func (g *Goal) SetProgress(completed int) {
	if completed < 0 {
		completed = 0
	}
	if completed > g.TotalTasks {
		completed = g.TotalTasks
	}
	g.CompletedTasks = completed
	g.Completed = g.TotalTasks > 0 && completed == g.TotalTasks
}

func GoalPercent(g Goal) int {
	return percent(g.CompletedTasks, g.TotalTasks)
}

type GoalSummary struct {
	Total     int
	Completed int
	Percent   int
}

func SummarizeGoals(goals []Goal) GoalSummary {
	done := 0
	for _, g := range goals {
		if g.Completed {
			done++
		}
	}
	return GoalSummary{Total: len(goals), Completed: done, Percent: percent(done, len(goals))}
}

// GoalsForMonth keeps goals created in the calendar month of now, judged in
// now's location.
func GoalsForMonth(goals []Goal, now time.Time) []Goal {
	y, m, _ := now.Date()
	out := make([]Goal, 0, len(goals))
	for _, g := range goals {
		gy, gm, _ := g.CreatedAt.In(now.Location()).Date()
		if gy == y && gm == m {
			out = append(out, g)
		}
	}
	return out
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}
