package config

import (
	"os"
	"path/filepath"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type SessionConfig interface {
	GetSessionBackend() string
	GetSessionDir() string
	GetSessionKey() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionBackend() string {
	return GetEnv("SESSION_BACKEND", BackendFile)
}

func (Session) GetSessionDir() string {
	if dir := os.Getenv("SESSION_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dev-timesheets"
	}
	return filepath.Join(home, ".dev-timesheets")
}

// GetSessionKey is the single fixed key the persisted session lives under.
func (Session) GetSessionKey() string {
	return GetEnv("SESSION_KEY", "dev-timesheets-auth")
}

func (Session) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Session) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Session) GetRedisDB() int {
	return GetInt("REDIS_DB", 0)
}
