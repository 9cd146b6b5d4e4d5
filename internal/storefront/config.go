package storefront

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// EnvPrefix namespaces the terminal client's environment variables.
const EnvPrefix = "STOREFRONT_"

// Config holds the terminal client settings.
type Config struct {
	APIURL       string        `env:"API_URL" envDefault:"http://localhost:4000"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"5s"`
	MaxRetries   int           `env:"MAX_RETRIES" envDefault:"2"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"warn"`
}

// LoadConfig reads STOREFRONT_* environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadPrefixed(cfg, EnvPrefix); err != nil {
		return nil, fmt.Errorf("load storefront client config: %w", err)
	}
	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("STOREFRONT_FETCH_TIMEOUT must be positive, got %s", cfg.FetchTimeout)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("STOREFRONT_MAX_RETRIES must not be negative, got %d", cfg.MaxRetries)
	}
	return cfg, nil
}

// HTTPClient returns the transport settings for the API client.
func (c *Config) HTTPClient() httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = c.FetchTimeout
	hc.MaxRetries = c.MaxRetries
	return hc
}
