package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// FileKV keeps every key in one JSON object file. Each write rewrites the
// whole file atomically.
type FileKV struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	write  func(path string, r io.Reader) error
}

func OpenFile(path string) (*FileKV, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("storage: empty file path")
	}
	kv := &FileKV{path: trimmed, values: make(map[string]string), write: atomic.WriteFile}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return kv, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return kv, nil
	}
	if err := json.Unmarshal(raw, &kv.values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, trimmed, err)
	}
	if kv.values == nil {
		kv.values = make(map[string]string)
	}
	return kv, nil
}

func (f *FileKV) Path() string { return f.path }

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flush(); err != nil {
		f.restore(key, prev, had)
		return err
	}
	return nil
}

func (f *FileKV) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.flush(); err != nil {
		f.restore(key, prev, had)
		return err
	}
	return nil
}

// Apply writes the whole batch with a single file rewrite. On failure
// neither the file nor the in-memory values change.
func (f *FileKV) Apply(_ context.Context, b Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := maps.Clone(f.values)
	for k, v := range b.Set {
		next[k] = v
	}
	for _, k := range b.Remove {
		delete(next, k)
	}
	if err := f.flushValues(next); err != nil {
		return err
	}
	f.values = next
	return nil
}

func (f *FileKV) restore(key, prev string, had bool) {
	if had {
		f.values[key] = prev
		return
	}
	delete(f.values, key)
}

func (f *FileKV) flush() error {
	return f.flushValues(f.values)
}

func (f *FileKV) flushValues(values map[string]string) error {
	dir := filepath.Dir(f.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return f.write(f.path, bytes.NewReader(append(payload, '\n')))
}
