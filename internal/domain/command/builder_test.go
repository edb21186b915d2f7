package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gsm-relay-remote/internal/domain/model"
)

func TestRelayToggle(t *testing.T) {
	for _, p := range []string{"0000", "1234", "9876"} {
		on, err := RelayToggle(p, true)
		require.NoError(t, err)
		assert.Equal(t, p+"CC", on)

		off, err := RelayToggle(p, false)
		require.NoError(t, err)
		assert.Equal(t, p+"DD", off)
	}

	_, err := RelayToggle("12", true)
	assertInvalid(t, err)
}

func TestLatchTime(t *testing.T) {
	body, err := LatchTime("1234", 5)
	require.NoError(t, err)
	assert.Equal(t, "1234GOT005#", body)

	body, err = LatchTime("1234", 120)
	require.NoError(t, err)
	assert.Equal(t, "1234GOT120#", body)

	body, err = LatchTime("1234", 0)
	require.NoError(t, err)
	assert.Equal(t, "1234GOT000#", body)

	body, err = LatchTime("1234", 1000)
	assertInvalid(t, err)
	assert.Empty(t, body)

	_, err = LatchTime("1234", -1)
	assertInvalid(t, err)
}

func TestAdminSetup(t *testing.T) {
	body, err := AdminSetup("1234", "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "1234TEL00+15551234567#", body)

	_, err = AdminSetup("1234", "0123456")
	assertInvalid(t, err)
	_, err = AdminSetup("abcd", "+15551234567")
	assertInvalid(t, err)
}

func TestPasswordChangeUsesOldPassword(t *testing.T) {
	body, err := PasswordChange("1234", "5678")
	require.NoError(t, err)
	assert.Equal(t, "1234P5678", body)

	_, err = PasswordChange("1234", "567")
	assertInvalid(t, err)
	_, err = PasswordChange("", "5678")
	assertInvalid(t, err)
}

func TestAuthorizedUserAdd(t *testing.T) {
	body, err := AuthorizedUserAdd("1234", model.AuthorizedUser{Index: 7, PhoneNumber: "+15551234567"})
	require.NoError(t, err)
	assert.Equal(t, "1234A007#+15551234567#", body)

	body, err = AuthorizedUserAdd("1234", model.AuthorizedUser{Index: 200, PhoneNumber: "15551234567"})
	require.NoError(t, err)
	assert.Equal(t, "1234A200#15551234567#", body)

	body, err = AuthorizedUserAdd("1234", model.AuthorizedUser{Index: 0, PhoneNumber: "15551234567"})
	require.NoError(t, err)
	assert.Equal(t, "1234A000#15551234567#", body)

	body, err = AuthorizedUserAdd("1234", model.AuthorizedUser{Index: 201, PhoneNumber: "+15551234567"})
	assertInvalid(t, err)
	assert.Empty(t, body)

	_, err = AuthorizedUserAdd("1234", model.AuthorizedUser{Index: 1, PhoneNumber: "abc"})
	assertInvalid(t, err)
}

func TestStatusQuery(t *testing.T) {
	want := map[model.StatusQuery]string{
		model.StatusRelay:         "1234T#",
		model.StatusSignalLevel:   "1234CSQ#",
		model.StatusStoredNumbers: "1234A?#",
		model.StatusEventLog:      "1234LOG#",
	}
	for _, q := range StatusQueries() {
		body, err := StatusQuery("1234", q)
		require.NoError(t, err)
		assert.Equal(t, want[q], body)
	}

	_, err := StatusQuery("1234", model.StatusQuery("battery"))
	assertInvalid(t, err)

	q, err := ParseStatusQuery("signal")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSignalLevel, q)
	_, err = ParseStatusQuery("SIGNAL")
	assertInvalid(t, err)
}

func TestTemplatePassesThroughVerbatim(t *testing.T) {
	body, err := Template(model.TemplateHoldOpen, " 1234GOT999# ")
	require.NoError(t, err)
	assert.Equal(t, " 1234GOT999# ", body)

	body, err = Template(model.TemplateOpen, "anything goes")
	require.NoError(t, err)
	assert.Equal(t, "anything goes", body)

	_, err = Template(model.TemplateClose, "   ")
	var missing *model.MissingConfigurationError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, model.KeyCloseCommand, missing.Key)

	_, err = Template(model.TemplateSlot("lock"), "x")
	assertInvalid(t, err)
}

func assertInvalid(t *testing.T, err error) {
	t.Helper()
	var invalid *model.InvalidInputError
	assert.True(t, errors.As(err, &invalid), "expected InvalidInputError, got %v", err)
}
