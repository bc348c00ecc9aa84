// Package storage persists the two session slots (token and username) so a
// restarted client can restore an authenticated session.
package storage

import (
	"context"
	"errors"
)

var ErrEmptyCredentials = errors.New("token and username must both be set")

type Credentials struct {
	Token    string
	Username string
}

func (c Credentials) complete() bool {
	return c.Token != "" && c.Username != ""
}

// Slots stores the token and username together. Implementations write and
// clear both slots atomically; Load reports ok only when both are present.
type Slots interface {
	Load(ctx context.Context) (Credentials, bool, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
	Close() error
}

type Keys struct {
	Token    string
	Username string
}

func DefaultKeys() Keys {
	return Keys{Token: "voilet_token", Username: "voilet_username"}
}
