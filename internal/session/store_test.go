package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"violet-client/internal/model"
	"violet-client/internal/storage"
)

func TestValidate(t *testing.T) {
	store := NewStore(storage.NewMemorySlots(storage.DefaultKeys()))

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{name: "both present", username: "alice", password: "secret"},
		{name: "empty username", username: "", password: "secret", wantErr: true},
		{name: "blank username", username: "   ", password: "secret", wantErr: true},
		{name: "empty password", username: "alice", password: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Validate(tt.username, tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCredentials)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPersistLoadAndForget(t *testing.T) {
	ctx := context.Background()
	slots := storage.NewMemorySlots(storage.DefaultKeys())

	first := NewStore(slots)
	require.NoError(t, first.Persist(ctx, "tok1", "alice"))
	first.Adopt("tok1", "alice")
	assert.True(t, first.Authenticated())

	second := NewStore(slots)
	creds, restored, err := second.Load(ctx)
	require.NoError(t, err)
	assert.True(t, restored)
	assert.False(t, second.Authenticated())
	second.Adopt(creds.Token, creds.Username)
	assert.Equal(t, "tok1", second.Token())
	assert.Equal(t, "alice", second.Session().Username)
	assert.Nil(t, second.Session().ExpiresAt)

	require.NoError(t, second.Forget(ctx))
	second.Reset()
	assert.False(t, second.Authenticated())

	third := NewStore(slots)
	_, restored, err = third.Load(ctx)
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Equal(t, model.StatusUnauthenticated, third.Session().Status)
}

func TestAdoptDecodesJWTExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("unknown-to-client"))
	require.NoError(t, err)

	store := NewStore(storage.NewMemorySlots(storage.DefaultKeys()))
	store.Adopt(token, "alice")

	got := store.Session().ExpiresAt
	require.NotNil(t, got)
	assert.True(t, exp.Equal(*got))
}

func TestFormTransitions(t *testing.T) {
	store := NewStore(storage.NewMemorySlots(storage.DefaultKeys()))
	assert.Equal(t, model.AuthModeLogin, store.Form().Mode)

	store.SetMode(model.AuthModeRegister)
	store.SetUsername("bob")
	store.SetPassword("pw")
	store.Registered()

	form := store.Form()
	assert.Equal(t, model.AuthModeLogin, form.Mode)
	assert.Equal(t, "bob", form.Username)
	assert.Empty(t, form.Password)

	store.Reset()
	assert.Empty(t, store.Form().Username)
}
