// Package accounts implements registration and login on top of a user store.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/harlequingg/taskmanager/internal/auth"
	"github.com/harlequingg/taskmanager/internal/data"
	"github.com/harlequingg/taskmanager/internal/validator"
)

const (
	ErrEmailExists        Error = "Email already exists"
	ErrUsernameExists     Error = "Username already exists, please choose a different one"
	ErrEmailNotRegistered Error = "Invalid email, User not registered!"
	ErrIncorrectPassword  Error = "Incorrect password"
)

// Error is a registration conflict or a login rejection. Its text is safe to
// show to the client.
type Error string

func (e Error) Error() string { return string(e) }

type (
	// RegisterInput and LoginInput hold decoded request bodies. A nil field
	// was absent from the body.
	RegisterInput struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}

	LoginInput struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}

	Service struct {
		users  data.Users
		hasher *auth.Hasher
		tokens *auth.Tokens
	}
)

func New(users data.Users, hasher *auth.Hasher, tokens *auth.Tokens) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (in RegisterInput) Validate() error {
	v := validator.New()
	if v.Required(in.Username, "username") {
		v.Username(*in.Username, "username")
	}
	if v.Required(in.Email, "email") {
		v.Email(*in.Email, "email")
	}
	if v.Required(in.Password, "password") {
		v.Password(*in.Password, "password")
	}
	return v.Err()
}

func (in LoginInput) Validate() error {
	v := validator.New()
	if v.Required(in.Email, "email") {
		v.Email(*in.Email, "email")
	}
	if v.Required(in.Password, "password") {
		v.NotEmpty(*in.Password, "password")
	}
	return v.Err()
}

// Register validates in, rejects an email or username already in use (email
// first) and stores the new user with a hashed password. The store's unique
// constraints decide races between concurrent registrations.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*data.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	username, email, password := *in.Username, *in.Email, *in.Password

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailExists
	case !errors.Is(err, data.ErrNotFound):
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	_, err = s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, ErrUsernameExists
	case !errors.Is(err, data.ErrNotFound):
		return nil, fmt.Errorf("lookup user by username: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &data.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	err = s.users.InsertUser(ctx, u)
	switch {
	case errors.Is(err, data.ErrDuplicateEmail):
		return nil, ErrEmailExists
	case errors.Is(err, data.ErrDuplicateUsername):
		return nil, ErrUsernameExists
	case err != nil:
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and returns a signed token for the user. The
// two rejection reasons are reported separately and take different amounts of
// time, so callers can tell whether an email is registered.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, *data.User, error) {
	if err := in.Validate(); err != nil {
		return "", nil, err
	}
	u, err := s.users.GetUserByEmail(ctx, *in.Email)
	switch {
	case errors.Is(err, data.ErrNotFound):
		return "", nil, ErrEmailNotRegistered
	case err != nil:
		return "", nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if !s.hasher.Verify(*in.Password, u.PasswordHash) {
		return "", nil, ErrIncorrectPassword
	}
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}
