package model

import (
	"fmt"
	"slices"
	"strings"
)

type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterCompleted StatusFilter = "completed"
	FilterPending   StatusFilter = "pending"
	FilterHigh      StatusFilter = "high"
	FilterMedium    StatusFilter = "medium"
	FilterLow       StatusFilter = "low"
)

// AssigneeAll disables the assignee filter.
const AssigneeAll = "all"

var statusFilterCycle = []StatusFilter{FilterAll, FilterPending, FilterCompleted, FilterHigh, FilterMedium, FilterLow}

func (f StatusFilter) IsValid() bool {
	return slices.Contains(statusFilterCycle, f)
}

func ParseStatusFilter(raw string) (StatusFilter, error) {
	f := StatusFilter(strings.ToLower(strings.TrimSpace(raw)))
	if f == "" {
		return FilterAll, nil
	}
	if !f.IsValid() {
		return "", fmt.Errorf("model: invalid status filter %q", raw)
	}
	return f, nil
}

// Next returns the filter after f in display order, wrapping around.
func (f StatusFilter) Next() StatusFilter {
	i := slices.Index(statusFilterCycle, f)
	return statusFilterCycle[(i+1)%len(statusFilterCycle)]
}

func (f StatusFilter) match(t Task) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	default:
		return t.Priority == Priority(f)
	}
}

// FilterTasks applies the status and assignee filters with AND semantics,
// preserving input order.
func FilterTasks(tasks []Task, status StatusFilter, assignee string) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !status.match(t) {
			continue
		}
		if assignee != "" && assignee != AssigneeAll && t.Assignee != assignee {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SearchTasks keeps tasks whose text or category contains query, ignoring
// case. An empty query keeps everything.
func SearchTasks(tasks []Task, query string) []Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(tasks)
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Text), q) || strings.Contains(strings.ToLower(t.Category), q) {
			out = append(out, t)
		}
	}
	return out
}

type SortOrder string

const (
	SortNewest   SortOrder = "newest"
	SortOldest   SortOrder = "oldest"
	SortPriority SortOrder = "priority"
)

func ParseSortOrder(raw string) (SortOrder, error) {
	switch s := SortOrder(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortPriority:
		return s, nil
	default:
		return "", fmt.Errorf("model: invalid sort order %q", raw)
	}
}

// SortTasks orders a copy of tasks. Newest is the stored order, since new
// tasks are prepended.
func SortTasks(tasks []Task, order SortOrder) []Task {
	out := slices.Clone(tasks)
	switch order {
	case SortOldest:
		slices.Reverse(out)
	case SortPriority:
		slices.SortStableFunc(out, func(a, b Task) int {
			return a.Priority.rank() - b.Priority.rank()
		})
	}
	return out
}
