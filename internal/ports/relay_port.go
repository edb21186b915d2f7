package ports

import (
	"context"
	"gsm-relay-remote/internal/domain/model"
)

// RelayPort is what input adapters drive.
type RelayPort interface {
	SetRelay(ctx context.Context, on bool) (model.RelayCommand, error)
	SetLatchTime(ctx context.Context, seconds int) (model.RelayCommand, error)
	SetupAdmin(ctx context.Context, adminNumber, gsmNumber string) (model.RelayCommand, error)
	ChangePassword(ctx context.Context, newPassword string) (model.RelayCommand, error)
	AddAuthorizedUser(ctx context.Context, user model.AuthorizedUser) (model.RelayCommand, error)
	QueryStatus(ctx context.Context, query model.StatusQuery) (model.RelayCommand, error)
	SendTemplate(ctx context.Context, slot model.TemplateSlot) (model.RelayCommand, error)
}

// SettingsPort is the settings-editing surface.
type SettingsPort interface {
	Load(ctx context.Context) (*model.Settings, error)
	SaveProfile(ctx context.Context, profile model.DeviceProfile) error
	SaveCredentials(ctx context.Context, creds model.Credentials) error
	SaveTemplate(ctx context.Context, slot model.TemplateSlot, raw string) error
	InitTemplates(ctx context.Context, overwrite bool) ([]model.TemplateSlot, error)
	Subscribe(fn func(model.SettingChange)) (cancel func())
}
