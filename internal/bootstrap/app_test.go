package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"violet-client/internal/config"
	"violet-client/internal/storage"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	t.Setenv("VIOLET_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("VIOLET_STORAGE_DRIVER", driver)
	t.Setenv("VIOLET_STORAGE_DIR", filepath.Join(t.TempDir(), "session"))
	t.Setenv("VIOLET_LOG_FILE", filepath.Join(t.TempDir(), "violet.log"))
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNewWithConfigWiresOrchestrator(t *testing.T) {
	for _, driver := range []string{"memory", "badger"} {
		t.Run(driver, func(t *testing.T) {
			a, err := NewWithConfig(context.Background(), testConfig(t, driver))
			require.NoError(t, err)

			assert.NotNil(t, a.Orchestrator)
			assert.NotNil(t, a.Backend)
			assert.Nil(t, a.MQConn)
			assert.Nil(t, a.Relay)
			assert.False(t, a.Orchestrator.Snapshot().Session.Authenticated())
			assert.NoError(t, a.Close())
		})
	}
}

func TestRestoreThroughBadger(t *testing.T) {
	cfg := testConfig(t, "badger")
	ctx := context.Background()

	slots, err := storage.NewBadgerSlots(cfg.Storage.Dir, storage.Keys{Token: cfg.Storage.TokenKey, Username: cfg.Storage.UsernameKey})
	require.NoError(t, err)
	require.NoError(t, slots.Save(ctx, storage.Credentials{Token: "tok1", Username: "alice"}))
	require.NoError(t, slots.Close())

	a, err := NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	creds, ok, err := a.Slots.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", creds.Username)
}
