package config

import (
	"log"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	BackendConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Backend
	Session
}

func New() Config {
	// A missing .env is fine, values may come from the real environment
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded configuration from .env\n")
	}
	return mainConfig{}
}
