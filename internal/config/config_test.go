package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-timesheets-client/internal/config"
)

func TestConfig_Defaults(t *testing.T) {
	for _, v := range []string{"API_BASE_URL", "REQUEST_TIMEOUT", "REFRESH_TIMEOUT", "SESSION_BACKEND", "SESSION_KEY", "REDIS_DB", "ENV"} {
		t.Setenv(v, "")
	}
	cfg := config.New()

	require.Equal(t, "http://localhost:8000/api", cfg.GetBaseURL())
	require.Equal(t, 15*time.Second, cfg.GetRequestTimeout())
	require.Equal(t, 10*time.Second, cfg.GetRefreshTimeout())
	require.Equal(t, config.BackendFile, cfg.GetSessionBackend())
	require.Equal(t, "dev-timesheets-auth", cfg.GetSessionKey())
	require.Equal(t, 0, cfg.GetRedisDB())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, "/auth/login", cfg.GetLoginPath())
}

func TestConfig_FromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("API_BASE_URL", "https://timesheets.example.com/api/")
	t.Setenv("REFRESH_TIMEOUT", "3s")
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("SESSION_BACKEND", config.BackendRedis)
	t.Setenv("SESSION_DIR", dir)
	t.Setenv("REDIS_DB", "2")

	cfg := config.New()

	require.Equal(t, "https://timesheets.example.com/api", cfg.GetBaseURL())
	require.Equal(t, 3*time.Second, cfg.GetRefreshTimeout())
	require.Equal(t, 15*time.Second, cfg.GetRequestTimeout())
	require.Equal(t, config.BackendRedis, cfg.GetSessionBackend())
	require.Equal(t, filepath.Clean(dir), filepath.Clean(cfg.GetSessionDir()))
	require.Equal(t, 2, cfg.GetRedisDB())
}
