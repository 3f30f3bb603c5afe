package config

import (
	"log"

	"github.com/joho/godotenv"

	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
)

// Load reads .env (when present) and the environment, and fails on missing
// required settings.
func Load() (pkgconfig.Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v; using system environment variables", err)
	}

	cfg := pkgconfig.Load()
	if err := cfg.Validate(); err != nil {
		return pkgconfig.Config{}, err
	}
	return cfg, nil
}
