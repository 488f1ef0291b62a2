package model

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func sampleTasks() []Task {
	return []Task{
		{ID: "t1", Text: "Buy milk", Priority: PriorityHigh, Category: "life", Assignee: "u1", Completed: true, CreatedAt: at(2026, 10, 5, 9)},
		{ID: "t2", Text: "Write report", Priority: PriorityMedium, Category: "work", Assignee: "u2", CreatedAt: at(2026, 10, 2, 9)},
		{ID: "t3", Text: "Stretch", Priority: PriorityLow, Assignee: "u1", Completed: true, CreatedAt: at(2026, 9, 20, 9)},
		{ID: "t4", Text: "Plan trip", Priority: Priority("urgent"), Category: "life", Assignee: "u1", CreatedAt: at(2026, 8, 1, 0)},
	}
}

func TestFilterTasksComposesStatusAndAssignee(t *testing.T) {
	tasks := sampleTasks()
	ids := func(in []Task) []string {
		out := make([]string, 0, len(in))
		for _, t := range in {
			out = append(out, t.ID)
		}
		return out
	}
	cases := []struct {
		status   StatusFilter
		assignee string
		want     []string
	}{
		{FilterAll, AssigneeAll, []string{"t1", "t2", "t3", "t4"}},
		{FilterCompleted, AssigneeAll, []string{"t1", "t3"}},
		{FilterPending, "u1", []string{"t4"}},
		{FilterHigh, "", []string{"t1"}},
		{FilterLow, AssigneeAll, []string{"t3"}},
		{FilterAll, "u2", []string{"t2"}},
		{FilterAll, "ghost", []string{}},
	}
	for _, tc := range cases {
		got := ids(FilterTasks(tasks, tc.status, tc.assignee))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("filter %s/%s mismatch (-want +got):\n%s", tc.status, tc.assignee, diff)
		}
	}
}

func TestFilterTasksIsIdempotent(t *testing.T) {
	once := FilterTasks(sampleTasks(), FilterPending, "u1")
	twice := FilterTasks(once, FilterPending, "u1")
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second filter changed result (-once +twice):\n%s", diff)
	}
}

func TestSearchAndSort(t *testing.T) {
	found := SearchTasks(sampleTasks(), "LIFE")
	if len(found) != 2 || found[0].ID != "t1" || found[1].ID != "t4" {
		t.Fatalf("unexpected search result: %+v", found)
	}
	oldest := SortTasks(sampleTasks(), SortOldest)
	if oldest[0].ID != "t4" || oldest[3].ID != "t1" {
		t.Fatalf("unexpected oldest order: %+v", oldest)
	}
	byPriority := SortTasks(sampleTasks(), SortPriority)
	got := []string{byPriority[0].ID, byPriority[1].ID, byPriority[2].ID, byPriority[3].ID}
	if diff := cmp.Diff([]string{"t1", "t2", "t3", "t4"}, got); diff != "" {
		t.Fatalf("unexpected priority order (-want +got):\n%s", diff)
	}
}

func TestAggregates(t *testing.T) {
	tasks := sampleTasks()
	cats := AggregateByCategory(tasks)
	if diff := cmp.Diff(map[string]int{"life": 2, "work": 1, Uncategorized: 1}, cats); diff != "" {
		t.Fatalf("category counts mismatch (-want +got):\n%s", diff)
	}
	if got := AggregateByPriority(tasks); got != (PriorityCounts{High: 1, Medium: 1, Low: 2}) {
		t.Fatalf("unexpected priority counts: %+v", got)
	}
}

func TestCompletionRate(t *testing.T) {
	if got := CompletionRate(nil); got != 0 {
		t.Fatalf("expected 0 for empty set, got %d", got)
	}
	all := FilterTasks(sampleTasks(), FilterCompleted, AssigneeAll)
	if got := CompletionRate(all); got != 100 {
		t.Fatalf("expected 100 for all completed, got %d", got)
	}
	if got := CompletionRate(sampleTasks()); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
	three := sampleTasks()[:3]
	if got := CompletionRate(three); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
}

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2026, 8, 17, 15, 30, 0, 0, time.UTC)
	start, end := PeriodWindow(PeriodMonthly, now)
	if !start.Equal(at(2026, 8, 1, 0)) || !end.Equal(now) {
		t.Fatalf("unexpected monthly window: %s - %s", start, end)
	}
	start, _ = PeriodWindow(PeriodQuarterly, now)
	if !start.Equal(at(2026, 7, 1, 0)) {
		t.Fatalf("unexpected quarterly start: %s", start)
	}
	start, _ = PeriodWindow(PeriodQuarterly, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	if !start.Equal(at(2026, 1, 1, 0)) {
		t.Fatalf("unexpected Q1 start: %s", start)
	}
}

func TestTasksInWindowIsInclusive(t *testing.T) {
	start, end := at(2026, 10, 2, 9), at(2026, 10, 5, 9)
	got := TasksInWindow(sampleTasks(), start, end)
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t2" {
		t.Fatalf("expected both boundary tasks, got %+v", got)
	}
}

func TestTrailingCompletionSeriesUsesMonthBuckets(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	tasks := append(sampleTasks(),
		Task{ID: "t5", Priority: PriorityLow, Completed: true, CreatedAt: at(2026, 4, 1, 0)},
		Task{ID: "t6", Priority: PriorityLow, CreatedAt: at(2026, 3, 31, 23)},
		Task{ID: "t7", Priority: PriorityLow, Completed: true, CreatedAt: at(2026, 10, 1, 0)},
	)
	series := TrailingCompletionSeries(tasks, now, DefaultTrendBuckets)
	if len(series) != 7 {
		t.Fatalf("expected 7 points, got %d", len(series))
	}
	labels := make([]string, 0, len(series))
	rates := make([]int, 0, len(series))
	for _, p := range series {
		labels = append(labels, p.Label)
		rates = append(rates, p.Rate)
	}
	wantLabels := []string{"Apr 2026", "May 2026", "Jun 2026", "Jul 2026", "Aug 2026", "Sep 2026", "Oct 2026"}
	if diff := cmp.Diff(wantLabels, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	// Oct: t1 done, t2 pending, t7 done -> 67. Sep: t3 done. Aug: t4 pending. Apr: t5 done.
	if diff := cmp.Diff([]int{100, 0, 0, 0, 0, 100, 67}, rates); diff != "" {
		t.Fatalf("rates mismatch (-want +got):\n%s", diff)
	}
	if !series[6].End.Equal(at(2026, 11, 1, 0)) {
		t.Fatalf("unexpected last bucket end: %s", series[6].End)
	}
}
