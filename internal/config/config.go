package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	Secret      string
	DatabaseDSN string
	HTTPPort    string
}

// Load reads configuration from environment variables with reasonable defaults.
// A postgres:// DSN selects the postgres driver; anything else is treated as a
// sqlite file path.
func Load() Config {
	_ = godotenv.Load()

	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "3000"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "crediario.db"
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 3000", port)
		port = "3000"
	}

	return Config{Secret: secret, DatabaseDSN: dsn, HTTPPort: port}
}
