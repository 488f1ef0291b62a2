package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandeepkv93/teamtodo/internal/model"
)

const (
	KeyUsers       = "users"
	KeyTasks       = "tasks"
	KeyGoals       = "goals"
	KeyCurrentUser = "current-user"
)

// Adapter maps a model.Dataset onto four independent keys of a KV. It holds
// no state besides the store and the key namespace.
type Adapter struct {
	kv        KV
	namespace string
}

func NewAdapter(kv KV, namespace string) *Adapter {
	return &Adapter{kv: kv, namespace: strings.TrimSpace(namespace)}
}

func (a *Adapter) key(name string) string {
	return a.namespace + name
}

// Load reads the dataset. Missing keys yield empty collections and an empty
// active user id.
func (a *Adapter) Load(ctx context.Context) (model.Dataset, error) {
	out := model.Dataset{
		Users: []model.User{},
		Tasks: []model.Task{},
		Goals: []model.Goal{},
	}
	if err := a.loadJSON(ctx, KeyUsers, &out.Users); err != nil {
		return model.Dataset{}, err
	}
	if err := a.loadJSON(ctx, KeyTasks, &out.Tasks); err != nil {
		return model.Dataset{}, err
	}
	if err := a.loadJSON(ctx, KeyGoals, &out.Goals); err != nil {
		return model.Dataset{}, err
	}
	active, ok, err := a.kv.Get(ctx, a.key(KeyCurrentUser))
	if err != nil {
		return model.Dataset{}, &StorageError{Op: "get", Key: a.key(KeyCurrentUser), Err: err}
	}
	if ok {
		out.ActiveUserID = active
	}
	return out, nil
}

func (a *Adapter) loadJSON(ctx context.Context, name string, dst any) error {
	k := a.key(name)
	raw, ok, err := a.kv.Get(ctx, k)
	if err != nil {
		return &StorageError{Op: "get", Key: k, Err: err}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return &StorageError{Op: "decode", Key: k, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}
	return nil
}

// Save writes all three collections and the active user id, unconditionally.
// An empty active id removes the current-user key.
func (a *Adapter) Save(ctx context.Context, d model.Dataset) error {
	batch := Batch{Set: make(map[string]string, 4)}
	for _, item := range []struct {
		name  string
		value any
	}{
		{KeyUsers, nonNil(d.Users)},
		{KeyTasks, nonNil(d.Tasks)},
		{KeyGoals, nonNil(d.Goals)},
	} {
		payload, err := json.Marshal(item.value)
		if err != nil {
			return &StorageError{Op: "encode", Key: a.key(item.name), Err: err}
		}
		batch.Set[a.key(item.name)] = string(payload)
	}
	if d.ActiveUserID != "" {
		batch.Set[a.key(KeyCurrentUser)] = d.ActiveUserID
	} else {
		batch.Remove = append(batch.Remove, a.key(KeyCurrentUser))
	}

	if b, ok := a.kv.(Batcher); ok {
		if err := b.Apply(ctx, batch); err != nil {
			return &StorageError{Op: "save", Key: a.namespace + "*", Err: err}
		}
		return nil
	}
	for _, name := range []string{KeyUsers, KeyTasks, KeyGoals, KeyCurrentUser} {
		k := a.key(name)
		v, ok := batch.Set[k]
		if !ok {
			continue
		}
		if err := a.kv.Set(ctx, k, v); err != nil {
			return &StorageError{Op: "set", Key: k, Err: err}
		}
	}
	for _, k := range batch.Remove {
		if err := a.kv.Remove(ctx, k); err != nil {
			return &StorageError{Op: "remove", Key: k, Err: err}
		}
	}
	return nil
}

// SaveActiveUser persists only the active user selection.
func (a *Adapter) SaveActiveUser(ctx context.Context, id string) error {
	k := a.key(KeyCurrentUser)
	if id == "" {
		if err := a.kv.Remove(ctx, k); err != nil {
			return &StorageError{Op: "remove", Key: k, Err: err}
		}
		return nil
	}
	if err := a.kv.Set(ctx, k, id); err != nil {
		return &StorageError{Op: "set", Key: k, Err: err}
	}
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
