package config

import (
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Session
}

// New loads a .env file from the working directory when one exists and
// returns the environment backed configuration.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
