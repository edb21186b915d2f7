package command

import (
	"strings"

	"gsm-relay-remote/internal/domain/model"
)

// Template returns a user-supplied body verbatim. Templates bypass the
// protocol grammar entirely: a malformed one is only noticed by watching
// the device.
func Template(slot model.TemplateSlot, raw string) (string, error) {
	key := slot.Key()
	if key == "" {
		return "", &model.InvalidInputError{Field: "template", Value: string(slot), Reason: "unknown slot"}
	}
	if strings.TrimSpace(raw) == "" {
		return "", &model.MissingConfigurationError{Key: key}
	}
	return raw, nil
}
