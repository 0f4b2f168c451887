package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default values
const (
	DefaultStorePath         = "atomic.db"
	DefaultFetchConcurrency  = 4
	DefaultTimeoutSeconds    = 10
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 4
	DefaultMaxRedirects      = 10
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Store defaults
	v.SetDefault("store.path", DefaultStorePath)
	v.SetDefault("store.populate", true)

	// Validation defaults
	v.SetDefault("validate.fetch_items", false)
	v.SetDefault("validate.fetch_concurrency", DefaultFetchConcurrency)
	v.SetDefault("validate.strict", false)

	// Client defaults
	v.SetDefault("client.timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("client.requests_per_second", DefaultRequestsPerSecond) // Polite to the servers we fetch from
	v.SetDefault("client.burst", DefaultBurst)
	v.SetDefault("client.block_private_ip", true)
	v.SetDefault("client.max_redirects", DefaultMaxRedirects)

	v.SetDefault("log.json", false)
}

// BindEnvVars explicitly binds the settings most often overridden in CI
func BindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("store.path", EnvPrefix+"_STORE_PATH")
	_ = v.BindEnv("validate.fetch_items", EnvPrefix+"_VALIDATE_FETCH_ITEMS")
	_ = v.BindEnv("validate.strict", EnvPrefix+"_VALIDATE_STRICT")
	_ = v.BindEnv("log.json", EnvPrefix+"_LOG_JSON")
}

// Default returns the configuration produced by SetDefaults alone
func Default() *Config {
	return &Config{
		Store: StoreConfig{Path: DefaultStorePath, Populate: true},
		Validation: ValidateConfig{
			FetchConcurrency: DefaultFetchConcurrency,
		},
		Client: ClientConfig{
			TimeoutSeconds:    DefaultTimeoutSeconds,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
			BlockPrivateIP:    true,
			MaxRedirects:      DefaultMaxRedirects,
		},
	}
}

// GetStorePath returns the configured store path
func (c *Config) GetStorePath() string {
	if c.Store.Path == "" {
		return DefaultStorePath // Fallback default
	}
	return c.Store.Path
}

// ClientTimeout returns the per-request timeout
func (c *Config) ClientTimeout() time.Duration {
	if c.Client.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.Client.TimeoutSeconds) * time.Second
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Store: %s, Validate: {FetchItems: %t, Concurrency: %d, Strict: %t}}",
		c.Store.Path, c.Validation.FetchItems, c.Validation.FetchConcurrency, c.Validation.Strict)
}
