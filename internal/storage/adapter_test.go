package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/sandeepkv93/teamtodo/internal/model"
)

func sampleDataset() model.Dataset {
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	alice := model.User{ID: "user_a", Name: "Alice", AvatarURL: "https://avatars.example/user_a"}
	bob := model.User{ID: "user_b", Name: "Bob"}

	milk := model.NewTask("Buy milk", model.PriorityHigh, "errands", alice.ID, now)
	report := model.NewTask("Write report", model.PriorityLow, "", bob.ID, now.Add(-48*time.Hour))
	report.Toggle(now)

	goal := model.NewGoal("Ship v1", 4, alice.ID, now)
	goal.SetProgress(2)

	return model.Dataset{
		Users:        []model.User{alice, bob},
		Tasks:        []model.Task{milk, report},
		Goals:        []model.Goal{goal},
		ActiveUserID: bob.ID,
	}
}

func TestAdapterRoundTrip(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a := NewAdapter(kv, "")
			want := sampleDataset()

			if err := a.Save(ctx, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := a.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAdapterLoadEmptyStore(t *testing.T) {
	got, err := NewAdapter(NewMemoryKV(), "").Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Users == nil || got.Tasks == nil || got.Goals == nil {
		t.Fatalf("expected empty non-nil collections, got %#v", got)
	}
	if len(got.Users)+len(got.Tasks)+len(got.Goals) != 0 || got.ActiveUserID != "" {
		t.Fatalf("expected empty dataset, got %#v", got)
	}
}

func TestAdapterSaveWritesEmptyCollectionsAndClearsActiveUser(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	a := NewAdapter(kv, "")
	if err := a.SaveActiveUser(ctx, "user_a"); err != nil {
		t.Fatalf("save active: %v", err)
	}

	if err := a.Save(ctx, model.Dataset{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	want := map[string]string{"users": "[]", "tasks": "[]", "goals": "[]"}
	if diff := cmp.Diff(want, kv.Snapshot()); diff != "" {
		t.Fatalf("stored keys mismatch (-want +got):\n%s", diff)
	}

	got, err := a.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(model.Dataset{}, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("load mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapterNamespacePrefixesKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	a := NewAdapter(kv, "team1:")
	if err := a.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, k := range []string{"team1:users", "team1:tasks", "team1:goals", "team1:current-user"} {
		if _, ok := kv.Snapshot()[k]; !ok {
			t.Fatalf("expected key %q in %v", k, kv.Snapshot())
		}
	}
	other, err := NewAdapter(kv, "").Load(ctx)
	if err != nil {
		t.Fatalf("load default namespace: %v", err)
	}
	if len(other.Users) != 0 {
		t.Fatalf("namespaces must not overlap, got %#v", other.Users)
	}
}

func TestAdapterLoadReportsCorruptKey(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	if err := kv.Set(ctx, "tasks", "{oops"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := NewAdapter(kv, "").Load(ctx)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Key != "tasks" {
		t.Fatalf("expected StorageError naming tasks, got %#v", err)
	}
}

func TestAdapterSaveWrapsWriteFailure(t *testing.T) {
	kv := NewMemoryKV()
	boom := errors.New("quota exceeded")
	kv.FailWrites = boom

	err := NewAdapter(kv, "").Save(context.Background(), sampleDataset())
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if se.Key != "users" || !errors.Is(err, boom) {
		t.Fatalf("unexpected storage error: %#v", se)
	}
}

func TestAdapterSaveUsesSQLiteTransaction(t *testing.T) {
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer kv.Close()
	a := NewAdapter(kv, "")
	ctx := context.Background()

	if err := a.Save(ctx, sampleDataset()); err != nil {
		t.Fatalf("save: %v", err)
	}
	cleared := sampleDataset()
	cleared.ActiveUserID = ""
	if err := a.Save(ctx, cleared); err != nil {
		t.Fatalf("save cleared: %v", err)
	}
	keys, err := kv.keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if diff := cmp.Diff([]string{"goals", "tasks", "users"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapterFileSaveIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")
	kv, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	a := NewAdapter(kv, "")
	old := sampleDataset()
	if err := a.Save(ctx, old); err != nil {
		t.Fatalf("save: %v", err)
	}

	calls := 0
	kv.write = func(string, io.Reader) error {
		calls++
		return errors.New("disk full")
	}
	next := sampleDataset()
	next.Users = next.Users[:1]
	next.Tasks = nil
	err = a.Save(ctx, next)
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "save" {
		t.Fatalf("expected batched save error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one file write attempt, got %d", calls)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := NewAdapter(reopened, "").Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(old, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("file changed after failed save (-want +got):\n%s", diff)
	}
}
