// Package session holds the authentication state of the client: status,
// token, username and the auth form, backed by the durable credential slots.
//
// Store is not safe for concurrent use; the orchestrator serializes access.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"violet-client/internal/model"
	"violet-client/internal/storage"
)

var ErrInvalidCredentials = errors.New("username and password are required")

// Form mirrors the login/register form fields.
type Form struct {
	Mode     model.AuthMode `json:"mode"`
	Username string         `json:"username"`
	Password string         `json:"-"`
}

type credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type Store struct {
	slots    storage.Slots
	validate *validator.Validate
	current  model.Session
	form     Form
}

func NewStore(slots storage.Slots) *Store {
	return &Store{
		slots:    slots,
		validate: validator.New(),
		current:  model.Session{Status: model.StatusUnauthenticated},
		form:     Form{Mode: model.AuthModeLogin},
	}
}

// Load reads the persisted credentials. It does not touch in-memory state;
// callers Adopt what they get back.
func (s *Store) Load(ctx context.Context) (storage.Credentials, bool, error) {
	creds, ok, err := s.slots.Load(ctx)
	if err != nil {
		return storage.Credentials{}, false, fmt.Errorf("load session failed: %w", err)
	}
	return creds, ok, nil
}

// Validate checks credentials before any network call.
func (s *Store) Validate(username, password string) error {
	err := s.validate.Struct(credentials{
		Username: strings.TrimSpace(username),
		Password: password,
	})
	if err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Persist writes both slots. It does not touch in-memory state.
func (s *Store) Persist(ctx context.Context, token, username string) error {
	if err := s.slots.Save(ctx, storage.Credentials{Token: token, Username: username}); err != nil {
		return fmt.Errorf("persist session failed: %w", err)
	}
	return nil
}

// Adopt marks the session authenticated in memory.
func (s *Store) Adopt(token, username string) {
	s.current = model.Session{
		Token:     token,
		Username:  username,
		Status:    model.StatusAuthenticated,
		ExpiresAt: tokenExpiry(token),
	}
	s.form.Password = ""
}

// Forget clears the persisted slots.
func (s *Store) Forget(ctx context.Context) error {
	if err := s.slots.Clear(ctx); err != nil {
		return fmt.Errorf("clear session failed: %w", err)
	}
	return nil
}

// Reset returns the in-memory state to unauthenticated with an empty form.
func (s *Store) Reset() {
	s.current = model.Session{Status: model.StatusUnauthenticated}
	s.form = Form{Mode: model.AuthModeLogin}
}

func (s *Store) Session() model.Session {
	out := s.current
	if s.current.ExpiresAt != nil {
		exp := *s.current.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out
}

func (s *Store) Authenticated() bool {
	return s.current.Authenticated()
}

func (s *Store) Token() string {
	return s.current.Token
}

func (s *Store) Form() Form {
	return s.form
}

func (s *Store) SetMode(mode model.AuthMode) {
	s.form.Mode = mode
}

func (s *Store) SetUsername(username string) {
	s.form.Username = username
}

func (s *Store) SetPassword(password string) {
	s.form.Password = password
}

// Registered switches the form to login mode and clears the password.
func (s *Store) Registered() {
	s.form.Mode = model.AuthModeLogin
	s.form.Password = ""
}

// tokenExpiry reads the exp claim without verifying the signature. Opaque
// tokens have no expiry.
func tokenExpiry(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
