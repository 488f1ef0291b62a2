package model

import (
	"fmt"
	"strings"
	"time"
)

// Uncategorized labels tasks without a category in category counts.
const Uncategorized = "uncategorized"

// DefaultTrendBuckets is the number of points in the completion trend.
const DefaultTrendBuckets = 7

type StatsPeriod string

const (
	PeriodMonthly   StatsPeriod = "monthly"
	PeriodQuarterly StatsPeriod = "quarterly"
)

func ParseStatsPeriod(raw string) (StatsPeriod, error) {
	switch p := StatsPeriod(strings.ToLower(strings.TrimSpace(raw))); p {
	case PeriodMonthly, PeriodQuarterly:
		return p, nil
	default:
		return "", fmt.Errorf("model: invalid stats period %q", raw)
	}
}

type PriorityCounts struct {
	High   int
	Medium int
	Low    int
}

type SeriesPoint struct {
	Label string
	Start time.Time
	End   time.Time
	Rate  int
}

func AggregateByCategory(tasks []Task) map[string]int {
	out := make(map[string]int)
	for _, t := range tasks {
		c := t.Category
		if strings.TrimSpace(c) == "" {
			c = Uncategorized
		}
		out[c]++
	}
	return out
}

// AggregateByPriority counts every value other than high and medium as low.
func AggregateByPriority(tasks []Task) PriorityCounts {
	var out PriorityCounts
	for _, t := range tasks {
		switch t.Priority {
		case PriorityHigh:
			out.High++
		case PriorityMedium:
			out.Medium++
		default:
			out.Low++
		}
	}
	return out
}

func CountCompleted(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// CompletionRate is the rounded completed percentage, 0 for no tasks.
func CompletionRate(tasks []Task) int {
	return percent(CountCompleted(tasks), len(tasks))
}

// PeriodWindow returns the first instant of the current month (monthly) or
// of the current three-month block (quarterly), and now. Both ends are
// inclusive.
func PeriodWindow(period StatsPeriod, now time.Time) (time.Time, time.Time) {
	y, m, _ := now.Date()
	if period == PeriodQuarterly {
		m = time.Month((int(m)-1)/3*3 + 1)
	}
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), now
}

// TasksInWindow keeps tasks created within [start, end].
func TasksInWindow(tasks []Task, start, end time.Time) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.CreatedAt.Before(start) || t.CreatedAt.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TrailingCompletionSeries computes completion rates over calendar-month
// buckets [first of month, first of next month), the last bucket being the
// month of now, oldest first. The buckets are a month wide even though the
// original chart called them weeks.
func TrailingCompletionSeries(tasks []Task, now time.Time, buckets int) []SeriesPoint {
	if buckets <= 0 {
		return nil
	}
	y, m, _ := now.Date()
	out := make([]SeriesPoint, 0, buckets)
	for i := buckets - 1; i >= 0; i-- {
		start := time.Date(y, m-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, 0)
		in := make([]Task, 0)
		for _, t := range tasks {
			if !t.CreatedAt.Before(start) && t.CreatedAt.Before(end) {
				in = append(in, t)
			}
		}
		out = append(out, SeriesPoint{
			Label: start.Format("Jan 2006"),
			Start: start,
			End:   end,
			Rate:  CompletionRate(in),
		})
	}
	return out
}
