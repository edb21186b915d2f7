package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"gsm-relay-remote/internal/domain/command"
	"gsm-relay-remote/internal/domain/model"
	"gsm-relay-remote/internal/domain/validator"
	"gsm-relay-remote/internal/ports"
)

// StatusPasswordPolicy selects the password status queries are built with.
// Status queries have always gone out with the factory password whatever
// the configured one is. Both choices are offered and factory stays the
// default.
type StatusPasswordPolicy string

const (
	StatusPasswordFactory    StatusPasswordPolicy = "factory"
	StatusPasswordConfigured StatusPasswordPolicy = "configured"
)

func ParseStatusPasswordPolicy(s string) (StatusPasswordPolicy, error) {
	switch p := StatusPasswordPolicy(s); p {
	case StatusPasswordFactory, StatusPasswordConfigured:
		return p, nil
	}
	return "", fmt.Errorf("unknown status password policy %q (want factory or configured)", s)
}

var (
	_ ports.RelayPort    = (*RelayService)(nil)
	_ ports.SettingsPort = (*SettingsService)(nil)
)

// RelayService runs each user action as validate, read, build, dispatch and,
// where the action saves state, persist. Nothing is persisted or dispatched
// once a step fails.
type RelayService struct {
	settings     *SettingsService
	dispatcher   ports.Dispatcher
	logger       *slog.Logger
	statusPolicy StatusPasswordPolicy
	newID        func() string
}

type RelayOption func(*RelayService)

func WithStatusPasswordPolicy(p StatusPasswordPolicy) RelayOption {
	return func(s *RelayService) { s.statusPolicy = p }
}

func WithLogger(logger *slog.Logger) RelayOption {
	return func(s *RelayService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewRelayService(settings *SettingsService, dispatcher ports.Dispatcher, opts ...RelayOption) *RelayService {
	s := &RelayService{
		settings:     settings,
		dispatcher:   dispatcher,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		statusPolicy: StatusPasswordFactory,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RelayService) SetRelay(ctx context.Context, on bool) (model.RelayCommand, error) {
	intent := model.IntentRelayOff
	if on {
		intent = model.IntentRelayOn
	}
	return s.buildAndSend(ctx, intent, func(password string) (string, error) {
		return command.RelayToggle(password, on)
	})
}

func (s *RelayService) SetLatchTime(ctx context.Context, seconds int) (model.RelayCommand, error) {
	if err := validator.CheckLatchSeconds(seconds); err != nil {
		return model.RelayCommand{}, err
	}
	return s.buildAndSend(ctx, model.IntentLatchTime, func(password string) (string, error) {
		return command.LatchTime(password, seconds)
	})
}

func (s *RelayService) AddAuthorizedUser(ctx context.Context, user model.AuthorizedUser) (model.RelayCommand, error) {
	if err := validator.CheckIndex(user.Index); err != nil {
		return model.RelayCommand{}, err
	}
	if err := validator.CheckPhoneNumber("authorized number", user.PhoneNumber); err != nil {
		return model.RelayCommand{}, err
	}
	return s.buildAndSend(ctx, model.IntentAuthorizedUserAdd, func(password string) (string, error) {
		return command.AuthorizedUserAdd(password, user)
	})
}

// SetupAdmin registers adminNumber on the relay reachable at gsmNumber and,
// once the handoff succeeds, saves both numbers.
func (s *RelayService) SetupAdmin(ctx context.Context, adminNumber, gsmNumber string) (model.RelayCommand, error) {
	if err := validator.CheckPhoneNumber("admin number", adminNumber); err != nil {
		return model.RelayCommand{}, err
	}
	if err := validator.CheckPhoneNumber("GSM number", gsmNumber); err != nil {
		return model.RelayCommand{}, err
	}

	password, err := s.settings.Password(ctx)
	if err != nil {
		return model.RelayCommand{}, err
	}
	body, err := command.AdminSetup(password, adminNumber)
	if err != nil {
		return model.RelayCommand{}, err
	}
	cmd, err := s.send(ctx, model.IntentAdminSetup, gsmNumber, body)
	if err != nil {
		return model.RelayCommand{}, err
	}
	if err := s.settings.SaveAdmin(ctx, adminNumber, gsmNumber); err != nil {
		return cmd, fmt.Errorf("admin command sent but settings not saved: %w", err)
	}
	return cmd, nil
}

// ChangePassword sends {old}P{new} and only then makes newPassword current.
func (s *RelayService) ChangePassword(ctx context.Context, newPassword string) (model.RelayCommand, error) {
	if err := validator.CheckPassword("new password", newPassword); err != nil {
		return model.RelayCommand{}, err
	}
	destination, err := s.settings.Destination(ctx)
	if err != nil {
		return model.RelayCommand{}, err
	}

	var cmd model.RelayCommand
	err = s.settings.RotatePassword(ctx, newPassword, func(oldPassword string) error {
		body, err := command.PasswordChange(oldPassword, newPassword)
		if err != nil {
			return err
		}
		cmd, err = s.send(ctx, model.IntentPasswordChange, destination, body)
		return err
	})
	return cmd, err
}

func (s *RelayService) QueryStatus(ctx context.Context, query model.StatusQuery) (model.RelayCommand, error) {
	if _, err := command.ParseStatusQuery(string(query)); err != nil {
		return model.RelayCommand{}, err
	}
	destination, err := s.settings.Destination(ctx)
	if err != nil {
		return model.RelayCommand{}, err
	}

	password := model.FactoryPassword
	configured, err := s.settings.Password(ctx)
	if err != nil {
		return model.RelayCommand{}, err
	}
	switch s.statusPolicy {
	case StatusPasswordConfigured:
		password = configured
	default:
		if configured != model.FactoryPassword {
			s.logger.Warn("status query uses the factory password, not the configured one",
				"query", query, "policy", s.statusPolicy)
		}
	}

	body, err := command.StatusQuery(password, query)
	if err != nil {
		return model.RelayCommand{}, err
	}
	return s.send(ctx, model.IntentStatusQuery, destination, body)
}

// SendTemplate dispatches a stored custom template without any encoding.
func (s *RelayService) SendTemplate(ctx context.Context, slot model.TemplateSlot) (model.RelayCommand, error) {
	destination, err := s.settings.Destination(ctx)
	if err != nil {
		return model.RelayCommand{}, err
	}
	raw, err := s.settings.Template(ctx, slot)
	if err != nil {
		return model.RelayCommand{}, err
	}
	body, err := command.Template(slot, raw)
	if err != nil {
		return model.RelayCommand{}, err
	}
	return s.send(ctx, model.IntentTemplate, destination, body)
}

// buildAndSend reads the destination and the current password immediately
// before rendering.
func (s *RelayService) buildAndSend(ctx context.Context, intent model.Intent, build func(password string) (string, error)) (model.RelayCommand, error) {
	destination, err := s.settings.Destination(ctx)
	if err != nil {
		return model.RelayCommand{}, err
	}
	password, err := s.settings.Password(ctx)
	if err != nil {
		return model.RelayCommand{}, err
	}
	body, err := build(password)
	if err != nil {
		return model.RelayCommand{}, err
	}
	return s.send(ctx, intent, destination, body)
}

func (s *RelayService) send(ctx context.Context, intent model.Intent, destination, body string) (model.RelayCommand, error) {
	if destination == "" {
		return model.RelayCommand{}, &model.MissingConfigurationError{Key: model.KeyPhoneNumber}
	}

	cmd := model.RelayCommand{
		ID:          s.newID(),
		Intent:      intent,
		Destination: destination,
		Body:        body,
	}
	// bodies carry the password and are never logged
	s.logger.Info("dispatching command", "command_id", cmd.ID, "intent", cmd.Intent, "destination", cmd.Destination)

	if err := s.dispatcher.Dispatch(ctx, cmd); err != nil {
		var dispatchErr *model.DispatchError
		if !errors.As(err, &dispatchErr) {
			err = &model.DispatchError{Destination: destination, Err: err}
		}
		s.logger.Error("dispatch failed", "command_id", cmd.ID, "intent", cmd.Intent, "error", err.Error())
		return model.RelayCommand{}, err
	}

	s.logger.Info("command handed off", "command_id", cmd.ID, "intent", cmd.Intent)
	return cmd, nil
}
