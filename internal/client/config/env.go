package config

import (
	"errors"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// parseEnv loads dotenv (when the file exists) and overlays IAM_* variables.
// godotenv never overrides variables that are already set.
func parseEnv(cfg *Config, dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return cleanenv.ReadEnv(cfg)
}
