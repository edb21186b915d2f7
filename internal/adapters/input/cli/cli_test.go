package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gsm-relay-remote/internal/adapters/output/persistence"
	"gsm-relay-remote/internal/adapters/output/sms"
	"gsm-relay-remote/internal/config"
	"gsm-relay-remote/internal/domain/model"
	"gsm-relay-remote/internal/domain/service"
)

type harness struct {
	store *persistence.JSONSettingsRepository
	sent  bytes.Buffer
	wired int
	cfg   config.Config
}

func newHarness(t *testing.T, seed map[string]string) *harness {
	t.Helper()
	h := &harness{store: persistence.NewJSONSettingsRepository(filepath.Join(t.TempDir(), "settings.json"))}
	for k, v := range seed {
		require.NoError(t, h.store.Set(context.Background(), k, v))
	}
	return h
}

func (h *harness) wire(_ context.Context, cfg config.Config) (Deps, error) {
	h.wired++
	h.cfg = cfg
	policy, err := service.ParseStatusPasswordPolicy(cfg.StatusPassword)
	if err != nil {
		return Deps{}, err
	}
	settings := service.NewSettingsService(h.store, nil)
	relay := service.NewRelayService(settings, sms.NewPrintDispatcher(&h.sent), service.WithStatusPasswordPolicy(policy))
	return Deps{Relay: relay, Settings: settings}, nil
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	cmd := NewRootCommand(config.Default(), h.wire)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) stored(t *testing.T, key string) string {
	t.Helper()
	v, _, err := h.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

const relayNumber = "+15550001111"

func configured() map[string]string {
	return map[string]string{model.KeyPhoneNumber: relayNumber}
}

func TestRelayOnOff(t *testing.T) {
	h := newHarness(t, configured())

	out, err := h.run("", "relay", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "relay_on handed off to "+relayNumber)

	_, err = h.run("", "relay", "off")
	require.NoError(t, err)
	assert.Equal(t, relayNumber+"\t1234CC\n"+relayNumber+"\t1234DD\n", h.sent.String())
}

func TestRelayWithoutDestination(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.run("", "relay", "on")
	var missing *model.MissingConfigurationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, ExitCode(err))
	assert.Empty(t, h.sent.String())
}

func TestRelayLatch(t *testing.T) {
	h := newHarness(t, configured())

	_, err := h.run("", "relay", "latch", "soon")
	var invalid *model.InvalidInputError
	require.ErrorAs(t, err, &invalid)

	_, err = h.run("", "relay", "latch", "1000")
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, h.sent.String())

	_, err = h.run("", "relay", "latch", "5")
	require.NoError(t, err)
	assert.Equal(t, relayNumber+"\t1234GOT005#\n", h.sent.String())
}

func TestTemplateCommands(t *testing.T) {
	h := newHarness(t, configured())

	_, err := h.run("", "open")
	var missing *model.MissingConfigurationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, model.KeyOpenCommand, missing.Key)

	out, err := h.run("", "settings", "set", "open", "GATE OPEN #")
	require.NoError(t, err)
	assert.Contains(t, out, "saved openCommand")

	_, err = h.run("", "open")
	require.NoError(t, err)
	assert.Equal(t, relayNumber+"\tGATE OPEN #\n", h.sent.String())
}

func TestStatusPasswordPolicy(t *testing.T) {
	seed := configured()
	seed[model.KeyPassword] = "9999"
	h := newHarness(t, seed)

	_, err := h.run("", "status", "signal")
	require.NoError(t, err)
	assert.Equal(t, relayNumber+"\t1234CSQ#\n", h.sent.String())

	h.sent.Reset()
	_, err = h.run("", "--status-password", "configured", "status", "log")
	require.NoError(t, err)
	assert.Equal(t, "configured", h.cfg.StatusPassword)
	assert.Equal(t, relayNumber+"\t9999LOG#\n", h.sent.String())
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t, configured())

	tests := [][]string{
		{"bogus"},
		{"status", "battery"},
		{"relay", "latch"},
		{"users", "add", "1"},
		{"settings", "set", "colour", "red"},
		{"--dispatcher", "fax", "relay", "on"},
		{"relay", "on", "--no-such-flag"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := h.run("", args...)
			require.Error(t, err)
			assert.Equal(t, 2, ExitCode(err))
		})
	}
	assert.Zero(t, h.wired)
	assert.Empty(t, h.sent.String())
}

func TestAdminSetupPersistsAfterHandoff(t *testing.T) {
	h := newHarness(t, nil)

	out, err := h.run("", "admin", "setup", "+15550003333", "+15550004444")
	require.NoError(t, err)
	assert.Equal(t, "+15550004444\t1234TEL00+15550003333#\n", h.sent.String())
	assert.Contains(t, out, "saved adminNumber")
	assert.Equal(t, "+15550003333", h.stored(t, model.KeyAdminNumber))
	assert.Equal(t, "+15550004444", h.stored(t, model.KeyPhoneNumber))
	assert.Equal(t, "+15550004444", h.stored(t, model.KeyGSMNumber))
}

func TestAdminPasswordConfirmation(t *testing.T) {
	h := newHarness(t, configured())

	out, err := h.run("n\n", "admin", "password", "5678")
	require.NoError(t, err)
	assert.Contains(t, out, "password unchanged")
	assert.Empty(t, h.sent.String())
	assert.Empty(t, h.stored(t, model.KeyPassword))

	out, err = h.run("yes\n", "admin", "password", "5678")
	require.NoError(t, err)
	assert.Contains(t, out, "saved password")
	assert.NotContains(t, out, "5678")
	assert.Equal(t, relayNumber+"\t1234P5678\n", h.sent.String())
	assert.Equal(t, "5678", h.stored(t, model.KeyPassword))

	h.sent.Reset()
	_, err = h.run("", "admin", "password", "--yes", "0000")
	require.NoError(t, err)
	assert.Equal(t, relayNumber+"\t5678P0000\n", h.sent.String())
}

func TestAdminPasswordRejectsBadValueBeforePrompt(t *testing.T) {
	h := newHarness(t, configured())

	out, err := h.run("y\n", "admin", "password", "12a4")
	var invalid *model.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.NotContains(t, out, "[y/N]")
	assert.NotContains(t, err.Error(), "12a4")
}

func TestUsersAdd(t *testing.T) {
	h := newHarness(t, configured())

	_, err := h.run("", "users", "add", "7", "+15550005555")
	require.NoError(t, err)
	assert.Equal(t, relayNumber+"\t1234A007#+15550005555#\n", h.sent.String())

	_, err = h.run("", "users", "add", "201", "+15550005555")
	var invalid *model.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "index", invalid.Field)
}

func TestSettingsSetAndShow(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.run("", "settings", "set", "name", "Gate")
	var missing *model.MissingConfigurationError
	require.ErrorAs(t, err, &missing)

	_, err = h.run("", "settings", "set", "phone", "0044")
	var invalid *model.InvalidInputError
	require.ErrorAs(t, err, &invalid)

	_, err = h.run("", "settings", "set", "phone", relayNumber)
	require.NoError(t, err)
	_, err = h.run("", "settings", "set", "name", "Front Gate")
	require.NoError(t, err)

	out, err := h.run("", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Front Gate")
	assert.Contains(t, out, relayNumber)
	assert.Contains(t, out, "****")
	assert.NotContains(t, out, "1234")

	out, err = h.run("", "settings", "show", "--reveal")
	require.NoError(t, err)
	assert.Contains(t, out, "1234")
}

func TestRepairCorruptStoredPassword(t *testing.T) {
	seed := configured()
	seed[model.KeyPassword] = "12"
	h := newHarness(t, seed)

	_, err := h.run("", "relay", "on")
	var invalid *model.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, h.sent.String())

	out, err := h.run("", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "**** (invalid)")
	assert.Contains(t, out, "settings set password VALUE")

	_, err = h.run("", "settings", "set", "name", "Gate")
	require.NoError(t, err)

	_, err = h.run("", "settings", "set", "password", "43x1")
	require.ErrorAs(t, err, &invalid)

	out, err = h.run("", "settings", "set", "password", "4321")
	require.NoError(t, err)
	assert.Contains(t, out, "saved password")
	assert.Empty(t, h.sent.String())

	out, err = h.run("", "settings", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "invalid")

	_, err = h.run("", "relay", "on")
	require.NoError(t, err)
	assert.Equal(t, relayNumber+"\t4321CC\n", h.sent.String())
}

func TestShowFlagsInvalidStoredNumber(t *testing.T) {
	h := newHarness(t, map[string]string{model.KeyPhoneNumber: "abc"})

	out, err := h.run("", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "abc (invalid)")
	assert.Contains(t, out, model.DefaultDeviceName)

	_, err = h.run("", "settings", "set", "phone", relayNumber)
	require.NoError(t, err)
	assert.Equal(t, relayNumber, h.stored(t, model.KeyPhoneNumber))
}

func TestSettingsInit(t *testing.T) {
	h := newHarness(t, map[string]string{model.KeyCloseCommand: "SHUT#"})

	out, err := h.run("", "settings", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "saved openCommand")
	assert.NotContains(t, out, "saved closeCommand")
	assert.Equal(t, "SHUT#", h.stored(t, model.KeyCloseCommand))

	out, err = h.run("", "settings", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already set")

	_, err = h.run("", "settings", "init", "--overwrite")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTemplates()[model.TemplateClose], h.stored(t, model.KeyCloseCommand))
}

func TestWiringFailureIsReported(t *testing.T) {
	cmd := NewRootCommand(config.Default(), func(context.Context, config.Config) (Deps, error) {
		return Deps{}, errors.New("store unavailable")
	})
	cmd.SetArgs([]string{"relay", "on"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	require.EqualError(t, err, "store unavailable")
	assert.Equal(t, 1, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(&model.DispatchError{Destination: relayNumber, Err: sms.ErrNoHandler}))
	assert.Equal(t, 2, ExitCode(usageError{errors.New("bad flag")}))
}
