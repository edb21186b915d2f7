package sms

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gsm-relay-remote/internal/domain/model"
)

// PrintDispatcher writes the request instead of sending it.
type PrintDispatcher struct {
	w io.Writer
}

func NewPrintDispatcher(w io.Writer) *PrintDispatcher {
	return &PrintDispatcher{w: w}
}

func (d *PrintDispatcher) Dispatch(_ context.Context, cmd model.RelayCommand) error {
	if strings.TrimSpace(cmd.Destination) == "" {
		return &model.MissingConfigurationError{Key: model.KeyPhoneNumber}
	}
	if _, err := fmt.Fprintf(d.w, "%s\t%s\n", cmd.Destination, cmd.Body); err != nil {
		return &model.DispatchError{Destination: cmd.Destination, Err: err}
	}
	return nil
}
