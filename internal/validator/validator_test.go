package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstViolationWins(t *testing.T) {
	t.Parallel()

	v := New()
	v.Check(true, "a", "never")
	v.Check(false, "b", "first")
	v.Check(false, "c", "second")
	require.False(t, v.Valid())

	var verr *Error
	require.True(t, errors.As(v.Err(), &verr))
	assert.Equal(t, "b", verr.Field)
	assert.Equal(t, "first", verr.Error())
}

func TestValidNoError(t *testing.T) {
	t.Parallel()

	v := New()
	v.Username("user1", "username")
	v.Email("u1@x.com", "email")
	v.Password("Aa1!aaaa", "password")
	assert.True(t, v.Valid())
	assert.NoError(t, v.Err())
}

func TestRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		check func(v *Validator)
		msg   string
	}{
		{"missing username", func(v *Validator) { v.Required(nil, "username") }, `"username" is required`},
		{"empty username", func(v *Validator) { v.Username("", "username") }, `"username" is not allowed to be empty`},
		{"username symbols", func(v *Validator) { v.Username("bob_1", "username") }, `"username" must only contain alpha-numeric characters`},
		{"username short", func(v *Validator) { v.Username("ab", "username") }, `"username" length must be at least 3 characters long`},
		{"username long", func(v *Validator) { v.Username(strings.Repeat("a", 31), "username") }, `"username" length must be less than or equal to 30 characters long`},
		{"empty email", func(v *Validator) { v.Email("", "email") }, `"email" is not allowed to be empty`},
		{"blank email", func(v *Validator) { v.Email(" ", "email") }, `"email" must be a valid email`},
		{"bad email", func(v *Validator) { v.Email("not-an-email", "email") }, `"email" must be a valid email`},
		{"email without tld", func(v *Validator) { v.Email("a@localhost", "email") }, `"email" must be a valid email`},
		{"empty password", func(v *Validator) { v.Password("", "password") }, `"password" is not allowed to be empty`},
		{"short password", func(v *Validator) { v.Password("Aa1!", "password") }, `"password" length must be at least 8 characters long`},
		{"long password", func(v *Validator) { v.Password(strings.Repeat("a", 72)+"!", "password") }, `"password" length must be less than or equal to 72 bytes long`},
		{"multibyte password", func(v *Validator) { v.Password(strings.Repeat("é", 36)+"!", "password") }, `"password" length must be less than or equal to 72 bytes long`},
		{"no special char", func(v *Validator) { v.Password("Aa1aaaaa", "password") }, "Password must contain at least one special character"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := New()
			tc.check(v)
			require.Error(t, v.Err())
			assert.Equal(t, tc.msg, v.Err().Error())
		})
	}
}

func TestBoundaries(t *testing.T) {
	t.Parallel()

	v := New()
	v.Username("abc", "username")
	v.Username(strings.Repeat("a", 30), "username")
	v.Password("aaaaaaa!", "password")
	v.Password(strings.Repeat("a", 71)+"!", "password")
	v.Password(strings.Repeat("é", 35)+"a!", "password")
	assert.True(t, v.Valid())
}

func TestRequiredTellsMissingFromEmpty(t *testing.T) {
	t.Parallel()

	empty := ""
	v := New()
	assert.True(t, v.Required(&empty, "title"))
	assert.True(t, v.Valid())
	assert.False(t, v.NotEmpty(empty, "title"))
	assert.Equal(t, `"title" is not allowed to be empty`, v.Err().Error())

	v = New()
	assert.False(t, v.Required(nil, "title"))
	assert.Equal(t, `"title" is required`, v.Err().Error())
}
