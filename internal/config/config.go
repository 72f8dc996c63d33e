package config

import (
	"os"
)

type Config struct {
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// Shared secret for verifying identity-provider tokens
	TokenSecret string
	// Insert demo rooms on first start
	SeedDemo bool
}

func Load() *Config {
	return &Config{
		Port:        getenv("PORT", "8080"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBUser:      getenv("DB_USER", "postgres"),
		DBPassword:  getenv("DB_PASSWORD", "postgres"),
		DBName:      getenv("DB_NAME", "roombook_db"),
		DBSSLMode:   getenv("DB_SSLMODE", "disable"),
		TokenSecret: getenv("TOKEN_SECRET", "supersecret_change_me"),
		SeedDemo:    getenv("SEED_DEMO", "false") == "true",
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}
