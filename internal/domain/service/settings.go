package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"gsm-relay-remote/internal/domain/model"
	"gsm-relay-remote/internal/domain/validator"
	"gsm-relay-remote/internal/ports"
)

// SettingsService is the single owner of the shared settings. It keeps no
// cached copy: every accessor goes back to the store, so a command is always
// built against the most recently persisted value. Writers are serialised
// and every successful write is published to subscribers.
type SettingsService struct {
	store  ports.SettingsStore
	logger *slog.Logger

	writeMu sync.Mutex

	subMu   sync.RWMutex
	subs    map[int]func(model.SettingChange)
	nextSub int
}

func NewSettingsService(store ports.SettingsStore, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SettingsService{
		store:  store,
		logger: logger,
		subs:   make(map[int]func(model.SettingChange)),
	}
}

// Subscribe registers fn for change notifications until cancel is called.
func (s *SettingsService) Subscribe(fn func(model.SettingChange)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Load returns a snapshot of every setting. Stored values that fail
// validation are returned as stored and reported in Settings.Problems so the
// caller can still show and repair them.
func (s *SettingsService) Load(ctx context.Context) (*model.Settings, error) {
	name, err := s.DeviceName(ctx)
	if err != nil {
		return nil, err
	}
	phone, key, err := s.destination(ctx)
	if err != nil {
		return nil, err
	}
	password, stored, err := s.storedPassword(ctx)
	if err != nil {
		return nil, err
	}
	admin, _, err := s.get(ctx, model.KeyAdminNumber)
	if err != nil {
		return nil, err
	}

	templates := make(map[model.TemplateSlot]string, 3)
	for _, slot := range []model.TemplateSlot{model.TemplateOpen, model.TemplateHoldOpen, model.TemplateClose} {
		raw, ok, err := s.get(ctx, slot.Key())
		if err != nil {
			return nil, err
		}
		if ok {
			templates[slot] = raw
		}
	}

	problems := make(map[string]error)
	if key != "" {
		if err := validator.CheckPhoneNumber(fieldFor(key), phone); err != nil {
			problems[key] = err
		}
	}
	if stored {
		if err := validator.CheckPassword("stored password", password); err != nil {
			problems[model.KeyPassword] = err
		}
	}
	if admin != "" {
		if err := validator.CheckPhoneNumber("admin number", admin); err != nil {
			problems[model.KeyAdminNumber] = err
		}
	}

	return &model.Settings{
		Profile:     model.DeviceProfile{Name: name, PhoneNumber: phone},
		Credentials: model.Credentials{Password: password},
		AdminNumber: admin,
		Templates:   templates,
		Problems:    problems,
	}, nil
}

// Destination returns the relay's phone number, falling back to the legacy
// gsmNumber key. A stored value that is not a valid phone number is
// rejected rather than handed to a dispatcher.
func (s *SettingsService) Destination(ctx context.Context) (string, error) {
	phone, key, err := s.destination(ctx)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", &model.MissingConfigurationError{Key: model.KeyPhoneNumber}
	}
	if err := validator.CheckPhoneNumber(fieldFor(key), phone); err != nil {
		return "", err
	}
	return phone, nil
}

// destination returns the raw stored number and the key it came from, or
// an empty key when neither is set.
func (s *SettingsService) destination(ctx context.Context) (string, string, error) {
	for _, key := range []string{model.KeyPhoneNumber, model.KeyGSMNumber} {
		v, ok, err := s.get(ctx, key)
		if err != nil {
			return "", "", err
		}
		if ok && strings.TrimSpace(v) != "" {
			return v, key, nil
		}
	}
	return "", "", nil
}

func fieldFor(key string) string {
	if key == model.KeyGSMNumber {
		return "stored GSM number"
	}
	return "stored phone number"
}

// Password returns the current access password, or the factory default
// when none was ever saved.
func (s *SettingsService) Password(ctx context.Context) (string, error) {
	p, _, err := s.storedPassword(ctx)
	if err != nil {
		return "", err
	}
	if err := validator.CheckPassword("stored password", p); err != nil {
		return "", err
	}
	return p, nil
}

// storedPassword returns the raw stored password, or the factory default
// with stored=false.
func (s *SettingsService) storedPassword(ctx context.Context) (password string, stored bool, err error) {
	p, ok, err := s.get(ctx, model.KeyPassword)
	if err != nil {
		return "", false, err
	}
	if !ok || p == "" {
		return model.FactoryPassword, false, nil
	}
	return p, true, nil
}

// DeviceName returns the stored name exactly as saved, empty when unset.
func (s *SettingsService) DeviceName(ctx context.Context) (string, error) {
	name, _, err := s.get(ctx, model.KeyDeviceName)
	return name, err
}

// Template returns the raw text for slot, or MissingConfigurationError.
func (s *SettingsService) Template(ctx context.Context, slot model.TemplateSlot) (string, error) {
	key := slot.Key()
	if key == "" {
		return "", &model.InvalidInputError{Field: "template", Value: string(slot), Reason: "unknown slot"}
	}
	raw, ok, err := s.get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return "", &model.MissingConfigurationError{Key: key}
	}
	return raw, nil
}

func (s *SettingsService) SaveProfile(ctx context.Context, profile model.DeviceProfile) error {
	if err := validator.CheckPhoneNumber("phone number", profile.PhoneNumber); err != nil {
		return err
	}

	return s.write(ctx, [][2]string{
		{model.KeyDeviceName, profile.Name},
		{model.KeyPhoneNumber, profile.PhoneNumber},
		{model.KeyGSMNumber, profile.PhoneNumber},
	})
}

// SaveCredentials stores the password without telling the device. It is
// for bringing the store back in line with a device whose password was
// changed some other way; ChangePassword is the normal path.
func (s *SettingsService) SaveCredentials(ctx context.Context, creds model.Credentials) error {
	if err := validator.CheckPassword("password", creds.Password); err != nil {
		return err
	}

	return s.write(ctx, [][2]string{{model.KeyPassword, creds.Password}})
}

// SaveTemplate stores raw verbatim. An empty value clears the slot.
func (s *SettingsService) SaveTemplate(ctx context.Context, slot model.TemplateSlot, raw string) error {
	key := slot.Key()
	if key == "" {
		return &model.InvalidInputError{Field: "template", Value: string(slot), Reason: "unknown slot"}
	}

	return s.write(ctx, [][2]string{{key, raw}})
}

// InitTemplates writes the suggested factory templates into empty slots, or
// into every slot when overwrite is set. It returns the slots written.
func (s *SettingsService) InitTemplates(ctx context.Context, overwrite bool) ([]model.TemplateSlot, error) {
	var changes []model.SettingChange
	defer func() { s.publish(changes) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	defaults := model.DefaultTemplates()
	var written []model.TemplateSlot
	for _, slot := range []model.TemplateSlot{model.TemplateOpen, model.TemplateHoldOpen, model.TemplateClose} {
		if !overwrite {
			current, ok, err := s.get(ctx, slot.Key())
			if err != nil {
				return written, err
			}
			if ok && strings.TrimSpace(current) != "" {
				continue
			}
		}
		changed, err := s.setLocked(ctx, [][2]string{{slot.Key(), defaults[slot]}})
		changes = append(changes, changed...)
		if err != nil {
			return written, err
		}
		written = append(written, slot)
	}
	return written, nil
}

// SaveAdmin persists the admin number together with the relay number the
// admin command was sent to.
func (s *SettingsService) SaveAdmin(ctx context.Context, adminNumber, gsmNumber string) error {
	if err := validator.CheckPhoneNumber("admin number", adminNumber); err != nil {
		return err
	}
	if err := validator.CheckPhoneNumber("GSM number", gsmNumber); err != nil {
		return err
	}

	return s.write(ctx, [][2]string{
		{model.KeyAdminNumber, adminNumber},
		{model.KeyGSMNumber, gsmNumber},
		{model.KeyPhoneNumber, gsmNumber},
	})
}

// RotatePassword reads the current password, hands it to send, and stores
// newPassword only if send succeeds. The whole sequence runs under the
// write lock so two rotations cannot interleave.
func (s *SettingsService) RotatePassword(ctx context.Context, newPassword string, send func(oldPassword string) error) error {
	if err := validator.CheckPassword("new password", newPassword); err != nil {
		return err
	}

	var changes []model.SettingChange
	defer func() { s.publish(changes) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	old, err := s.Password(ctx)
	if err != nil {
		return err
	}
	if err := send(old); err != nil {
		return err
	}
	changes, err = s.setLocked(ctx, [][2]string{{model.KeyPassword, newPassword}})
	if err != nil {
		return fmt.Errorf("command sent but new password not saved: %w", err)
	}
	return nil
}

func (s *SettingsService) get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return v, ok, nil
}

// write applies pairs in order and notifies subscribers after the lock is
// released. Changes that landed before a failure are still published.
func (s *SettingsService) write(ctx context.Context, pairs [][2]string) error {
	s.writeMu.Lock()
	changes, err := s.setLocked(ctx, pairs)
	s.writeMu.Unlock()

	s.publish(changes)
	return err
}

// setLocked must be called with writeMu held.
func (s *SettingsService) setLocked(ctx context.Context, pairs [][2]string) ([]model.SettingChange, error) {
	changes := make([]model.SettingChange, 0, len(pairs))
	for _, kv := range pairs {
		previous, _, err := s.get(ctx, kv[0])
		if err != nil {
			return changes, err
		}
		if err := s.store.Set(ctx, kv[0], kv[1]); err != nil {
			return changes, fmt.Errorf("write %s: %w", kv[0], err)
		}
		if previous != kv[1] {
			changes = append(changes, model.SettingChange{Key: kv[0], Value: kv[1], Previous: previous})
		}
	}
	return changes, nil
}

func (s *SettingsService) publish(changes []model.SettingChange) {
	if len(changes) == 0 {
		return
	}

	s.subMu.RLock()
	subs := make([]func(model.SettingChange), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, change := range changes {
		if change.Key == model.KeyPassword {
			s.logger.Info("setting changed", "key", change.Key)
		} else {
			s.logger.Info("setting changed", "key", change.Key, "value", change.Value)
		}
		for _, fn := range subs {
			fn(change)
		}
	}
}
