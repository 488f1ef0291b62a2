package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrEmptyText       = errors.New("model: task text is required")
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// ParsePriority accepts the lowercase names, single-letter shorthands and
// an empty string, which maps to medium.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "low", "l":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
}

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority"`
	Category  string    `json:"category,omitempty"`
	Assignee  string    `json:"assignee"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewTask(text string, priority Priority, category, assignee string, now time.Time) Task {
	now = Timestamp(now)
	return Task{
		ID:        NewID(TaskIDPrefix),
		Text:      strings.TrimSpace(text),
		Priority:  priority,
		Category:  strings.TrimSpace(category),
		Assignee:  assignee,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyText
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task createdAt is required")
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return errors.New("model: task updatedAt precedes createdAt")
	}
	return nil
}

// Toggle flips completion and refreshes UpdatedAt. A clock reading earlier
// than CreatedAt is pulled forward so UpdatedAt never precedes it.
func (t *Task) Toggle(now time.Time) {
	t.Completed = !t.Completed
	t.touch(now)
}

func (t *Task) Rename(text string, now time.Time) {
	t.Text = strings.TrimSpace(text)
	t.touch(now)
}

func (t *Task) touch(now time.Time) {
	now = Timestamp(now)
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.UpdatedAt = now
}

// Timestamp normalizes a clock reading to the form that survives a JSON
// round trip unchanged: UTC, no monotonic component.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Round(0)
}
