package sms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"gsm-relay-remote/internal/domain/model"
	"gsm-relay-remote/internal/domain/validator"
)

const ctrlZ = "\x1a"

// Port is the subset of a serial port the modem dispatcher needs.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

type PortOpener func(name string, baud int) (Port, error)

// OpenSerial opens a real serial device.
func OpenSerial(name string, baud int) (Port, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ModemDispatcher sends the command through a locally attached GSM modem
// in text mode. The port is opened per message and closed afterwards.
type ModemDispatcher struct {
	portName    string
	baud        int
	open        PortOpener
	replyWait   time.Duration
	sendTimeout time.Duration
	mu          sync.Mutex
}

func NewModemDispatcher(portName string, baud int, open PortOpener) *ModemDispatcher {
	if open == nil {
		open = OpenSerial
	}
	return &ModemDispatcher{
		portName:    portName,
		baud:        baud,
		open:        open,
		replyWait:   2 * time.Second,
		sendTimeout: 60 * time.Second,
	}
}

func (d *ModemDispatcher) Dispatch(ctx context.Context, cmd model.RelayCommand) error {
	if strings.TrimSpace(cmd.Destination) == "" {
		return &model.MissingConfigurationError{Key: model.KeyPhoneNumber}
	}
	// the number is quoted into AT+CMGS, so nothing but digits and '+' may pass
	if err := validator.CheckPhoneNumber("destination", cmd.Destination); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	port, err := d.open(d.portName, d.baud)
	if err != nil {
		return &model.DispatchError{Destination: cmd.Destination, Err: fmt.Errorf("open modem %s: %w", d.portName, err)}
	}
	defer port.Close()

	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		return &model.DispatchError{Destination: cmd.Destination, Err: err}
	}

	// the body step is labelled so the password never reaches an error message
	steps := []struct {
		label  string
		send   string
		expect string
		wait   time.Duration
	}{
		{"AT", "AT\r", "OK", d.replyWait},
		{"AT+CMGF=1", "AT+CMGF=1\r", "OK", d.replyWait},
		{"AT+CMGS", fmt.Sprintf("AT+CMGS=\"%s\"\r", cmd.Destination), ">", d.replyWait},
		{"message body", cmd.Body + ctrlZ, "+CMGS:", d.sendTimeout},
	}
	for _, step := range steps {
		if _, err := port.Write([]byte(step.send)); err != nil {
			return &model.DispatchError{Destination: cmd.Destination, Err: fmt.Errorf("write %s: %w", step.label, err)}
		}
		if err := awaitReply(ctx, port, step.expect, step.wait); err != nil {
			return &model.DispatchError{Destination: cmd.Destination, Err: fmt.Errorf("%s: %w", step.label, err)}
		}
	}
	return nil
}

var errModemRejected = errors.New("modem replied ERROR")

// awaitReply reads until expect shows up, the modem reports an error, or
// wait elapses.
func awaitReply(ctx context.Context, port io.Reader, expect string, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	var buf bytes.Buffer
	chunk := make([]byte, 128)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := port.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			reply := buf.String()
			if strings.Contains(reply, expect) {
				return nil
			}
			if line := errorLine(reply); line != "" {
				return fmt.Errorf("%w: %s", errModemRejected, line)
			}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read from modem: %w", err)
		}
	}
	return fmt.Errorf("no %q from modem within %s", expect, wait)
}

// errorLine returns only the modem's status line so echoed input stays out
// of error messages.
func errorLine(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "ERROR" || strings.HasPrefix(line, "+CMS ERROR") || strings.HasPrefix(line, "+CME ERROR") {
			return line
		}
	}
	return ""
}
