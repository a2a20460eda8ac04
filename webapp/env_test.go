package webapp_test

import (
	"os"
	"testing"

	"github.com/corewire/respond/webapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("RESPOND_PORT", "8080")
	t.Setenv("RESPOND_SERVICE_NAME", "unit-svc")
	t.Setenv("RESPOND_LOG_LEVEL", "debug")
	t.Setenv("RESPOND_DEFAULT_HEADERS", `{"Server":"unit"}`)

	env, err := webapp.ParseEnv[webapp.BaseEnvironment]()()
	require.NoError(t, err)

	assert.Equal(t, 8080, env.Port)
	assert.Equal(t, "unit-svc", env.ServiceName)
	assert.Equal(t, "/healthz", env.HealthCheckPath, "default applies")
	assert.Equal(t, zapcore.DebugLevel, env.LogLevel)
	assert.Equal(t, `{"Server":"unit"}`, env.DefaultHeaders)
}

func TestParseEnvMissingRequired(t *testing.T) {
	t.Setenv("RESPOND_PORT", "8080")
	// register cleanup via t.Setenv, then clear any ambient value.
	t.Setenv("RESPOND_SERVICE_NAME", "x")
	require.NoError(t, os.Unsetenv("RESPOND_SERVICE_NAME"))

	_, err := webapp.ParseEnv[webapp.BaseEnvironment]()()
	require.Error(t, err)
}
