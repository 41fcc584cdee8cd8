package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerURL string
	SocketURL string
	TokenPath string

	// Timezone overrides the presentation zone; empty means the process
	// local zone.
	Timezone string

	LogLevel string
	Env      string
}

func LoadConfig() (*Config, error) {
	// A .env file is a development convenience; absence is not an error.
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	return &Config{
		ServerURL: GetEnv("SERVER_URL", "http://localhost:4000/graphql"),
		SocketURL: GetEnv("SOCKET_URL", "ws://localhost:4000/socket"),
		TokenPath: GetEnv("TOKEN_PATH", filepath.Join(home, ".webtext", "token")),
		Timezone:  GetEnv("TIMEZONE", ""),
		Env:       GetEnv("ENV", "development"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
	}, nil
}

// Location resolves the presentation timezone every server instant is
// rendered in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("resolve timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
