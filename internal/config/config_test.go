package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/routes")
	t.Setenv("SOLVER_URL", "")
	t.Setenv("SOLVER_TIMEOUT", "")
	t.Setenv("OSRM_URL", "http://osrm:5000/")
	t.Setenv("OSRM_TIMEOUT", "not-a-duration")
	t.Setenv("GENERATE_RATE_LIMIT", "")
	t.Setenv("SOLVER_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/post", cfg.SolverURL)
	assert.Equal(t, 30*time.Second, cfg.SolverTimeout)
	assert.Equal(t, "http://osrm:5000", cfg.OSRMURL)
	assert.Equal(t, 10*time.Second, cfg.OSRMTimeout)
	assert.Equal(t, 2.0, cfg.GenerateRateLimit)
	assert.Equal(t, "http", cfg.SolverMode)
}

func TestLoadRejectsUnknownSolverMode(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/routes")
	t.Setenv("SOLVER_MODE", "quantum")

	_, err := Load()
	require.Error(t, err)
}

func TestIntFallback(t *testing.T) {
	t.Setenv("SOME_INT", "12x")
	assert.Equal(t, 7, Int("SOME_INT", 7))

	t.Setenv("SOME_INT", "12")
	assert.Equal(t, 12, Int("SOME_INT", 7))
}
