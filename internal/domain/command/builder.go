// Package command renders user intents into the literal SMS bodies the relay
// firmware understands. Every renderer revalidates its inputs; no partial
// body is ever returned alongside an error.
package command

import (
	"fmt"

	"gsm-relay-remote/internal/domain/model"
	"gsm-relay-remote/internal/domain/validator"
)

// Literal grammar tokens.
const (
	tokenOn        = "CC"
	tokenOff       = "DD"
	tokenLatch     = "GOT"
	tokenAdmin     = "TEL00"
	tokenPassword  = "P"
	tokenAddUser   = "A"
	tokenSeparator = "#"
)

// RelayToggle renders {p}CC to energise the relay and {p}DD to release it.
func RelayToggle(password string, on bool) (string, error) {
	if err := validator.CheckPassword("password", password); err != nil {
		return "", err
	}
	if on {
		return password + tokenOn, nil
	}
	return password + tokenOff, nil
}

// LatchTime renders {p}GOT{sss}#.
func LatchTime(password string, seconds int) (string, error) {
	if err := validator.CheckPassword("password", password); err != nil {
		return "", err
	}
	if err := validator.CheckLatchSeconds(seconds); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%03d%s", password, tokenLatch, seconds, tokenSeparator), nil
}

// AdminSetup renders {p}TEL00{admin}#.
func AdminSetup(password, adminNumber string) (string, error) {
	if err := validator.CheckPassword("password", password); err != nil {
		return "", err
	}
	if err := validator.CheckPhoneNumber("admin number", adminNumber); err != nil {
		return "", err
	}
	return password + tokenAdmin + adminNumber + tokenSeparator, nil
}

// PasswordChange renders {old}P{new}. The body is authenticated with the
// password being replaced, so it must be built before the new one is stored.
func PasswordChange(oldPassword, newPassword string) (string, error) {
	if err := validator.CheckPassword("current password", oldPassword); err != nil {
		return "", err
	}
	if err := validator.CheckPassword("new password", newPassword); err != nil {
		return "", err
	}
	return oldPassword + tokenPassword + newPassword, nil
}

// AuthorizedUserAdd renders {p}A{iii}#{phone}#.
func AuthorizedUserAdd(password string, user model.AuthorizedUser) (string, error) {
	if err := validator.CheckPassword("password", password); err != nil {
		return "", err
	}
	if err := validator.CheckIndex(user.Index); err != nil {
		return "", err
	}
	if err := validator.CheckPhoneNumber("authorized number", user.PhoneNumber); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%03d%s%s%s", password, tokenAddUser, user.Index, tokenSeparator, user.PhoneNumber, tokenSeparator), nil
}
