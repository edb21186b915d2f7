package model

import "fmt"

// InvalidInputError reports a value rejected by validation.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// MissingConfigurationError reports a required setting that was never saved.
type MissingConfigurationError struct {
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Key)
}

// DispatchError reports that the host could not accept the compose request.
// It says nothing about delivery.
type DispatchError struct {
	Destination string
	Err         error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch to %s: %v", e.Destination, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
