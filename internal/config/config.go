// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment
// variables. It is passed explicitly into constructors; nothing reads
// process-wide state after Load returns.
type Config struct {
	ClientID     string
	ClientSecret string
	LastFMAPIKey string
	DBPath       string
	HTTPTimeout  time.Duration
}

// HasClientCredentials returns true when both ClientID and ClientSecret are
// non-empty. The credential manager refuses to renew without them.
func (c *Config) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Load reads configuration from environment variables (after merging an
// optional .env file) and returns a validated Config.
// VINYLVAULT_CLIENT_ID and VINYLVAULT_CLIENT_SECRET identify the upstream
// client; VINYLVAULT_LASTFM_API_KEY is optional and enables tag enrichment.
// Optional variables with defaults: VINYLVAULT_DB_PATH (vinylvault.db),
// VINYLVAULT_HTTP_TIMEOUT (10s).
func Load() (*Config, error) {
	_ = godotenv.Load()

	clientID := os.Getenv("VINYLVAULT_CLIENT_ID")
	clientSecret := os.Getenv("VINYLVAULT_CLIENT_SECRET")
	lastFMKey := os.Getenv("VINYLVAULT_LASTFM_API_KEY")

	dbPath := "vinylvault.db"
	if v, ok := os.LookupEnv("VINYLVAULT_DB_PATH"); ok {
		dbPath = v
	}

	httpTimeout := 10 * time.Second
	if v, ok := os.LookupEnv("VINYLVAULT_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("VINYLVAULT_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		httpTimeout = parsed
	}

	return &Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		LastFMAPIKey: lastFMKey,
		DBPath:       dbPath,
		HTTPTimeout:  httpTimeout,
	}, nil
}
