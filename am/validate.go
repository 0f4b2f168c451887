package am

import "github.com/soheilade/atomic-server/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Store path is optional - empty falls back to DefaultStorePath

	if c.Validation.FetchConcurrency < 1 {
		return errors.Newf("validate.fetch_concurrency must be >= 1, got %d", c.Validation.FetchConcurrency)
	}

	// Timeout: 0 would mean no timeout at all for remote fetches
	if c.Client.TimeoutSeconds <= 0 {
		return errors.Newf("client.timeout_seconds must be > 0, got %d", c.Client.TimeoutSeconds)
	}

	// Rate limit: 0 = unlimited, negative = invalid
	if c.Client.RequestsPerSecond < 0 {
		return errors.Newf("client.requests_per_second must be >= 0, got %f", c.Client.RequestsPerSecond)
	}
	if c.Client.RequestsPerSecond > 0 && c.Client.Burst < 1 {
		return errors.Newf("client.burst must be >= 1 when rate limited, got %d", c.Client.Burst)
	}

	if c.Client.MaxRedirects < 0 {
		return errors.Newf("client.max_redirects must be >= 0, got %d", c.Client.MaxRedirects)
	}

	return nil
}
