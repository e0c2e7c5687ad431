package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetBootstrapTimeout() time.Duration
	GetLoginPath() string
}

type API struct{}

var _ APIConfig = API{}

// GetBaseURL returns the remote API root, e.g. "https://timesheets.example.com/api".
func (API) GetBaseURL() string {
	return strings.TrimRight(GetEnv("API_BASE_URL", "http://localhost:8000/api"), "/")
}

func (API) GetRequestTimeout() time.Duration {
	return GetDuration("REQUEST_TIMEOUT", 15*time.Second)
}

// GetRefreshTimeout bounds a single refresh attempt. Callers can stop waiting
// on a refresh but can't cancel it, so this is the only thing that ends a hung one.
func (API) GetRefreshTimeout() time.Duration {
	return GetDuration("REFRESH_TIMEOUT", 10*time.Second)
}

func (API) GetBootstrapTimeout() time.Duration {
	return GetDuration("BOOTSTRAP_TIMEOUT", 10*time.Second)
}

func (API) GetLoginPath() string {
	return GetEnv("LOGIN_PATH", "/auth/login")
}
