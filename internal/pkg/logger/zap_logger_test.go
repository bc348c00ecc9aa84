package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "violet.log")
	l := NewZapLogger(Options{FilePath: path})

	l.Info("Orchestrator", "collection selected", map[string]interface{}{"collection_id": 7})
	l.Error("Backend", "request failed", map[string]interface{}{"error": errors.New("boom")})
	l.Debug("Orchestrator", "hidden below info", nil)
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, `"message":"collection selected"`)
	assert.Contains(t, content, `"module":"Orchestrator"`)
	assert.Contains(t, content, `"collection_id":7`)
	assert.Contains(t, content, `"level":"ERROR"`)
	assert.NotContains(t, content, "hidden below info")
}

func TestNewZapLoggerWithoutSinksIsNop(t *testing.T) {
	l := NewZapLogger(Options{})
	assert.NotPanics(t, func() {
		l.Warn("Storage", "nothing happens", nil)
	})
}
