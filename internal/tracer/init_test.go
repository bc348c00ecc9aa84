package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"violet-client/internal/config"
	"violet-client/internal/pkg/logger"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown := Init(config.TracingConfig{Enabled: false}, logger.NewNop())
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitEnabledReturnsShutdown(t *testing.T) {
	shutdown := Init(config.TracingConfig{
		Enabled:     true,
		Endpoint:    "127.0.0.1:1",
		ServiceName: "violet-client-test",
	}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing was recorded, so there is nothing to export.
	_ = shutdown(ctx)
}
