package model

import "time"

type SessionStatus string

const (
	StatusUnauthenticated SessionStatus = "unauthenticated"
	StatusAuthenticated   SessionStatus = "authenticated"
)

type AuthMode string

const (
	AuthModeLogin    AuthMode = "login"
	AuthModeRegister AuthMode = "register"
)

// Session is the authenticated identity used to authorize backend calls.
// Token is never serialized.
type Session struct {
	Token     string        `json:"-"`
	Username  string        `json:"username,omitempty"`
	Status    SessionStatus `json:"status"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Token != ""
}
