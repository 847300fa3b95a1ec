package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"maiveui/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ESTIMATOR_URL", "http://localhost:8787")

	config, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, "release", config.Server.GinMode)
	assert.Equal(t, "http://localhost:8787", config.Estimator.BaseURL)
	assert.Equal(t, 5*time.Minute, config.Estimator.Timeout)
	assert.Equal(t, "8081", config.Ops.Port)
	assert.True(t, config.Ops.Enabled)
	assert.Empty(t, config.Database.URL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ESTIMATOR_URL", "http://estimator:9000")
	t.Setenv("ESTIMATOR_TIMEOUT", "90s")
	t.Setenv("PORT", "3000")
	t.Setenv("OPS_ENABLED", "false")
	t.Setenv("DATABASE_URL", "postgres://localhost/maive")

	config, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "3000", config.Server.Port)
	assert.Equal(t, 90*time.Second, config.Estimator.Timeout)
	assert.False(t, config.Ops.Enabled)
	assert.Equal(t, "postgres://localhost/maive", config.Database.URL)
}

func TestLoad_RequiresEstimatorURL(t *testing.T) {
	t.Setenv("ESTIMATOR_URL", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
