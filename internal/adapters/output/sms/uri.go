// Package sms holds the Dispatcher adapters that hand rendered commands to
// something able to send an SMS.
package sms

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"gsm-relay-remote/internal/domain/model"
)

// ErrNoHandler means nothing on the host can open sms: requests.
var ErrNoHandler = errors.New("no application available to handle sms: requests")

// URIDispatcher asks the desktop to open an sms: compose request, the same
// handoff a phone browser performs for an sms: link.
type URIDispatcher struct {
	opener  []string
	timeout time.Duration
}

func NewURIDispatcher(opener []string) *URIDispatcher {
	return &URIDispatcher{opener: opener, timeout: 5 * time.Second}
}

func (d *URIDispatcher) Dispatch(ctx context.Context, cmd model.RelayCommand) error {
	if strings.TrimSpace(cmd.Destination) == "" {
		return &model.MissingConfigurationError{Key: model.KeyPhoneNumber}
	}
	if len(d.opener) == 0 {
		return &model.DispatchError{Destination: cmd.Destination, Err: ErrNoHandler}
	}
	if _, err := exec.LookPath(d.opener[0]); err != nil {
		return &model.DispatchError{Destination: cmd.Destination, Err: fmt.Errorf("%w: %s not found", ErrNoHandler, d.opener[0])}
	}

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	args := append(append([]string{}, d.opener[1:]...), ComposeURI(cmd.Destination, cmd.Body))
	out, err := exec.CommandContext(runCtx, d.opener[0], args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return &model.DispatchError{Destination: cmd.Destination, Err: fmt.Errorf("run %s: %w", d.opener[0], err)}
	}
	return nil
}

// ComposeURI renders sms:{destination}?body={body} with the body escaped the
// way encodeURIComponent does it, so '#' survives as %23.
func ComposeURI(destination, body string) string {
	return "sms:" + destination + "?body=" + encodeURIComponent(body)
}

func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
