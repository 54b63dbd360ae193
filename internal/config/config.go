package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the server and the sync CLI.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	BillingAPIURL   string `envconfig:"BILLING_API_URL"`
	BillingAPIToken string `envconfig:"BILLING_API_TOKEN"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	SyncPageSize  int     `envconfig:"SYNC_PAGE_SIZE" default:"100"`
	SyncRateLimit float64 `envconfig:"SYNC_RATE_LIMIT" default:"3"` // API requests per second
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
