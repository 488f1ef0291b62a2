package scheduler

import (
	"testing"
	"time"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(Event{ID: "later", TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(Event{ID: "sooner", TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(Event{
			ID:        "evt",
			TriggerAt: now,
		}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}

	var watch DropWatch
	if got := watch.Check(engine); got != engine.Dropped() {
		t.Fatalf("first check should report every drop: got %d want %d", got, engine.Dropped())
	}
	if got := watch.Check(engine); got != 0 {
		t.Fatalf("second check should report nothing new, got %d", got)
	}
}

func TestScheduleValidatesTriggerTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(Event{ID: "bad"}); err != ErrInvalidTriggerTime {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
}

func TestEngineRepeatsRecurringEvents(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	ev := Event{ID: "autosave", Kind: KindAutosave, TriggerAt: time.Now().UTC().Add(10 * time.Millisecond), Every: 15 * time.Millisecond}
	if err := engine.Schedule(ev); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.Kind != KindAutosave || second.Kind != KindAutosave {
		t.Fatalf("unexpected kinds: %s %s", first.Kind, second.Kind)
	}
	if !second.TriggerAt.After(first.TriggerAt) {
		t.Fatalf("recurrence must move forward: %s then %s", first.TriggerAt, second.TriggerAt)
	}
	if engine.Pending() != 1 {
		t.Fatalf("expected the next occurrence queued, pending=%d", engine.Pending())
	}
}

func TestEngineCancelRemovesPendingEvents(t *testing.T) {
	engine := NewEngine(4)
	engine.Start()
	defer engine.Stop()

	at := time.Now().UTC().Add(40 * time.Millisecond)
	_ = engine.Schedule(Event{ID: "toast-1", Kind: KindToastExpiry, Ref: 1, TriggerAt: at})
	_ = engine.Schedule(Event{ID: "toast-2", Kind: KindToastExpiry, Ref: 2, TriggerAt: at})
	if n := engine.Cancel("toast-1"); n != 1 {
		t.Fatalf("expected one cancelled event, got %d", n)
	}

	got := waitEvent(t, engine.C(), time.Second)
	if got.Ref != 2 {
		t.Fatalf("cancelled event fired: %+v", got)
	}
	select {
	case ev := <-engine.C():
		t.Fatalf("unexpected extra event %+v", ev)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestNextOccurrenceSkipsMissedTicks(t *testing.T) {
	base := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	next := nextOccurrence(base, time.Minute, base.Add(150*time.Second))
	if !next.Equal(base.Add(3 * time.Minute)) {
		t.Fatalf("unexpected next occurrence %s", next)
	}
	if got := nextOccurrence(base, time.Minute, base); !got.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected on-time occurrence %s", got)
	}
}

func TestScheduleAfterStop(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()
	if err := engine.Schedule(Event{ID: "late", TriggerAt: time.Now()}); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}
