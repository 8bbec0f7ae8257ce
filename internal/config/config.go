// Package config handles resolving configuration.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPort   = "3000"
	DefaultDBHost = "localhost"
	DefaultDBPort = "5432"
	DefaultDBUser = "postgres"
	DefaultDBName = "postgres"
)

// Config holds all application settings, resolved once at process start.
type Config struct {
	Port      string
	JWTSecret string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	DevMode bool
}

// Load resolves configuration from the environment, optionally merging a
// dotenv file first. A missing dotenv file is not an error; explicitly set
// environment variables always win over file values.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Port:       getEnv("PORT", DefaultPort),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		DBHost:     getEnv("DB_HOST", DefaultDBHost),
		DBPort:     getEnv("DB_PORT", DefaultDBPort),
		DBUser:     getEnv("DB_USER", DefaultDBUser),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", DefaultDBName),
		DevMode:    os.Getenv("IS_DEVELOPMENT") == "true",
	}
	return cfg, nil
}

// ValidateServe checks the settings that only the serve path depends on.
// Kept separate from Load so offline commands (user, seed) work without a
// signing secret configured.
func (c *Config) ValidateServe() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set to serve")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort("", c.Port)
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// String satisfies [fmt.Stringer]; sensitive values are masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %s, DB: %s@%s:%s/%s, Dev: %t, JWTSecret: ***}",
		c.Port, c.DBUser, c.DBHost, c.DBPort, c.DBName, c.DevMode,
	)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
