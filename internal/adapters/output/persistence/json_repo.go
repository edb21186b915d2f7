package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONSettingsRepository keeps every setting in one flat JSON object. The
// file is re-read on every Get and Set so separate processes always see the
// last saved value. Set is a read-modify-write guarded only within this
// process: two processes saving at the same instant can lose one update.
// Use the sqlite backend when several writers run concurrently.
type JSONSettingsRepository struct {
	filepath string
	mu       sync.RWMutex
}

func NewJSONSettingsRepository(filepath string) *JSONSettingsRepository {
	return &JSONSettingsRepository{filepath: filepath}
}

func (r *JSONSettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values, err := r.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (r *JSONSettingsRepository) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return r.writeAtomic(data)
}

func (r *JSONSettingsRepository) read() (map[string]string, error) {
	data, err := os.ReadFile(r.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode settings %q: %w", r.filepath, err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

// writeAtomic replaces the file via rename so a crash never leaves a
// half-written password behind.
func (r *JSONSettingsRepository) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.filepath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, r.filepath)
}
