package config

import (
	"testing"

	"sharpq/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Pin the variables this test asserts on, in case the environment sets them.
	t.Setenv("PORT", "")
	t.Setenv("SHARPEN_STEP", "")
	t.Setenv("DATA_PVALUE_COLUMN", "")
	t.Setenv("PROFILING_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, stats.DefaultStep, cfg.Sharpen.DefaultStep)
	assert.Equal(t, "p_value", cfg.Data.PValueColumn)
	assert.False(t, cfg.Profiling.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SHARPEN_STEP", "0.01")
	t.Setenv("SHARPEN_MAX_PARALLEL", "16")
	t.Setenv("PROFILING_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 0.01, cfg.Sharpen.DefaultStep)
	assert.Equal(t, 16, cfg.Sharpen.MaxParallel)
	assert.True(t, cfg.Profiling.Enabled)
}

func TestLoad_InvalidStep(t *testing.T) {
	t.Setenv("SHARPEN_STEP", "1.5")

	_, err := Load()
	require.Error(t, err)
}
