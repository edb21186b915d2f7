// Package validator holds the pure predicates guarding command rendering.
package validator

import (
	"regexp"
	"strconv"
	"strings"

	"gsm-relay-remote/internal/domain/model"
)

const (
	MinIndex       = 0
	MaxIndex       = 200
	MinLatchSecond = 0
	MaxLatchSecond = 999
)

var (
	phoneRe    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	passwordRe = regexp.MustCompile(`^[0-9]{4}$`)
)

// IsValidPhoneNumber accepts E.164-like numbers: optional '+', no leading zero, 2 to 15 digits.
func IsValidPhoneNumber(s string) bool {
	return phoneRe.MatchString(s)
}

func IsValidPassword(s string) bool {
	return passwordRe.MatchString(s)
}

func IsValidIndex(n int) bool {
	return n >= MinIndex && n <= MaxIndex
}

func IsValidLatchSeconds(n int) bool {
	return n >= MinLatchSecond && n <= MaxLatchSecond
}

// CheckPhoneNumber is IsValidPhoneNumber with a tagged failure.
func CheckPhoneNumber(field, s string) error {
	if s == "" {
		return &model.InvalidInputError{Field: field, Reason: "must not be empty"}
	}
	if !IsValidPhoneNumber(s) {
		return &model.InvalidInputError{Field: field, Value: s, Reason: "must be in E.164 format"}
	}
	return nil
}

func CheckPassword(field, s string) error {
	if !IsValidPassword(s) {
		// the value is a secret, keep it out of the message
		return &model.InvalidInputError{Field: field, Reason: "must be exactly 4 digits"}
	}
	return nil
}

func CheckIndex(n int) error {
	if !IsValidIndex(n) {
		return &model.InvalidInputError{Field: "index", Value: strconv.Itoa(n), Reason: "must be between 000 and 200"}
	}
	return nil
}

func CheckLatchSeconds(n int) error {
	if !IsValidLatchSeconds(n) {
		return &model.InvalidInputError{Field: "latch time", Value: strconv.Itoa(n), Reason: "must be between 0 and 999 seconds"}
	}
	return nil
}

// ParseIndex converts user text such as "7" or "007" into a checked index.
func ParseIndex(s string) (int, error) {
	n, err := parseNonNegative("index", s)
	if err != nil {
		return 0, err
	}
	if err := CheckIndex(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ParseLatchSeconds converts user text into checked latch seconds.
func ParseLatchSeconds(s string) (int, error) {
	n, err := parseNonNegative("latch time", s)
	if err != nil {
		return 0, err
	}
	if err := CheckLatchSeconds(n); err != nil {
		return 0, err
	}
	return n, nil
}

func parseNonNegative(field, s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, &model.InvalidInputError{Field: field, Reason: "must not be empty"}
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return 0, &model.InvalidInputError{Field: field, Value: s, Reason: "must be a whole number"}
		}
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &model.InvalidInputError{Field: field, Value: s, Reason: "out of range"}
	}
	return n, nil
}
