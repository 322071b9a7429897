package config

import (
	"github.com/joho/godotenv"

	"github.com/courtbook/courtbook/logger"
)

// LoadEnv loads a local .env file if present. In deployed environments the
// variables come from the process environment and the file is absent.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.InfoLogger.Info("No .env file found, using process environment")
	}
}
