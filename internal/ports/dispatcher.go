package ports

import (
	"context"
	"gsm-relay-remote/internal/domain/model"
)

// Dispatcher hands a rendered command to the host's message facility.
// A nil error means the handoff was accepted, not that the device got it.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd model.RelayCommand) error
}
