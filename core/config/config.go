package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultHost        = "localhost"
	DefaultPort        = 4001
	DefaultConsistency = "weak"
)

// Config holds the remote store connection settings.
type Config struct {
	Host        string
	Port        int
	HTTPS       bool
	User        string
	Pass        string
	Consistency string
}

// LoadConfig loads connection settings from environment variables and an
// optional .env file. Missing settings fall back to defaults.
func LoadConfig() Config {

	_ = godotenv.Load()

	return Config{
		Host:        getEnvOrDefault("RQ_HOST", DefaultHost),
		Port:        getEnvOrDefaultInt("RQ_PORT", DefaultPort),
		HTTPS:       getEnvOrDefaultBool("RQ_HTTPS", false),
		User:        os.Getenv("RQ_USER"),
		Pass:        os.Getenv("RQ_PASS"),
		Consistency: getEnvOrDefault("RQ_CONSISTENCY", DefaultConsistency),
	}
}

// Validate checks that the configuration has usable values.
func (c Config) Validate() error {

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("RQ_PORT must be a valid port number (1-65535)")
	}

	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("RQ_HOST cannot be empty or contain only whitespace")
	}

	switch strings.ToLower(strings.TrimSpace(c.Consistency)) {
	case "none", "weak", "linearizable", "strong":
	default:
		return fmt.Errorf("RQ_CONSISTENCY must be one of: none, weak, linearizable, strong (got %q)", c.Consistency)
	}

	return nil
}

// BaseURL builds the HTTP base URL for the remote store from the configuration.
func (c Config) BaseURL() string {
	scheme := "http"
	if c.HTTPS {
		scheme = "https"
	}
	u := &url.URL{
		Scheme: scheme,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Pass)
	}
	return u.String()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		p, err := strconv.Atoi(value)
		if err == nil {
			return p
		}
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}
