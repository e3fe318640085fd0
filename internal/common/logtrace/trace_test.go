package logtrace

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestRequestIdFromContext(t *testing.T) {
	assert.Equal(t, "", RequestIdFromContext(nil)) //nolint:staticcheck
	assert.Equal(t, "", RequestIdFromContext(context.Background()))

	ctx := WithRequestId(context.Background(), "0190c6c4-1f5e-7a3b-9c1d-2e3f4a5b6c7d")
	assert.Equal(t, "0190c6c4-1f5e-7a3b-9c1d-2e3f4a5b6c7d", RequestIdFromContext(ctx))
}

func TestInitLogger(t *testing.T) {
	saved := log.Logger
	defer func() { log.Logger = saved }()

	InitLogger("debug")
	assert.Equal(t, zerolog.DebugLevel, log.Logger.GetLevel())

	InitLogger("not-a-level")
	assert.Equal(t, zerolog.InfoLevel, log.Logger.GetLevel())

	InitLogger("")
	assert.Equal(t, zerolog.InfoLevel, log.Logger.GetLevel())
}
