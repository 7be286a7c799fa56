// Package validator checks decoded request bodies before any domain logic runs.
// Checks are evaluated in order and only the first violation is reported.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	EmailRX        = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$")
	AlphanumericRX = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// SpecialCharacters is the set a password must draw at least one character from.
const SpecialCharacters = "!@#$%^&*"

// Error is the first rule an input violated.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type Validator struct {
	first *Error
}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) Valid() bool {
	return v.first == nil
}

// Err returns the first violation as an *Error, or nil.
func (v *Validator) Err() error {
	if v.first == nil {
		return nil
	}
	return v.first
}

// Check records msg against key unless cond holds or an earlier check failed.
func (v *Validator) Check(cond bool, key, msg string) {
	if cond || v.first != nil {
		return
	}
	v.first = &Error{Field: key, Message: msg}
}

// Required reports a field missing from the request body.
func (v *Validator) Required(value *string, key string) bool {
	ok := value != nil
	v.Check(ok, key, fmt.Sprintf("%q is required", key))
	return ok
}

// NotEmpty reports a field that is present but holds an empty string.
func (v *Validator) NotEmpty(value, key string) bool {
	ok := value != ""
	v.Check(ok, key, fmt.Sprintf("%q is not allowed to be empty", key))
	return ok
}

func (v *Validator) Email(value, key string) {
	if !v.NotEmpty(value, key) {
		return
	}
	v.Check(EmailRX.MatchString(value), key, fmt.Sprintf("%q must be a valid email", key))
}

// Username enforces alphanumeric characters only, 3 to 30 long.
func (v *Validator) Username(value, key string) {
	if !v.NotEmpty(value, key) {
		return
	}
	v.Check(AlphanumericRX.MatchString(value), key, fmt.Sprintf("%q must only contain alpha-numeric characters", key))
	v.Check(len(value) >= 3, key, fmt.Sprintf("%q length must be at least 3 characters long", key))
	v.Check(len(value) <= 30, key, fmt.Sprintf("%q length must be less than or equal to 30 characters long", key))
}

// Password enforces a minimum of 8 characters, at most 72 bytes (the bcrypt
// input limit) and at least one character from SpecialCharacters.
func (v *Validator) Password(value, key string) {
	if !v.NotEmpty(value, key) {
		return
	}
	v.Check(utf8.RuneCountInString(value) >= 8, key, fmt.Sprintf("%q length must be at least 8 characters long", key))
	v.Check(len(value) <= 72, key, fmt.Sprintf("%q length must be less than or equal to 72 bytes long", key))
	v.Check(strings.ContainsAny(value, SpecialCharacters), key, "Password must contain at least one special character")
}
