package ports

import "context"

// SettingsStore is the persisted string key/value state shared by every
// front end. ok is false when the key was never written.
type SettingsStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
