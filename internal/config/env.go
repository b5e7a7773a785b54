package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// EnvConfig holds overrides read from the environment. Empty strings and a
// negative RedisDB mean "not set".
type EnvConfig struct {
	StoreBackend  string `env:"TUIZ_STORE_BACKEND"`
	DBPath        string `env:"TUIZ_DB_PATH"`
	RedisAddr     string `env:"TUIZ_REDIS_ADDR"`
	RedisPassword string `env:"TUIZ_REDIS_PASSWORD"`
	RedisDB       int    `env:"TUIZ_REDIS_DB" envDefault:"-1"`
	LogLevel      string `env:"TUIZ_LOG_LEVEL"`
	LogPath       string `env:"TUIZ_LOG_PATH"`
	Bank          string `env:"TUIZ_BANK"`
}

// LoadEnv loads dotenvPath into the process environment, without overriding
// variables already set, then parses the TUIZ_* variables. A missing dotenv
// file is not an error.
func LoadEnv(dotenvPath string) (EnvConfig, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return EnvConfig{}, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
