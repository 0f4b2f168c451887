// Package am loads atomic-server configuration from TOML files and ATOMIC_*
// environment variables.
package am

// Config represents the atomic-server configuration
type Config struct {
	Store      StoreConfig    `mapstructure:"store" toml:"store" json:"store" yaml:"store"`
	Validation ValidateConfig `mapstructure:"validate" toml:"validate" json:"validate" yaml:"validate"`
	Client     ClientConfig   `mapstructure:"client" toml:"client" json:"client" yaml:"client"`
	Log        LogConfig      `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// StoreConfig configures the persistent atom store
type StoreConfig struct {
	Path     string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`                 // SQLite file (default: atomic.db)
	Populate bool   `mapstructure:"populate" toml:"populate" json:"populate" yaml:"populate"` // Load the default ontology before validating (default: true)
}

// ValidateConfig configures validation runs
type ValidateConfig struct {
	FetchItems       bool `mapstructure:"fetch_items" toml:"fetch_items" json:"fetch_items" yaml:"fetch_items"`                         // Fetch every subject over HTTP
	FetchConcurrency int  `mapstructure:"fetch_concurrency" toml:"fetch_concurrency" json:"fetch_concurrency" yaml:"fetch_concurrency"` // Parallel fetches (default: 4)
	Strict           bool `mapstructure:"strict" toml:"strict" json:"strict" yaml:"strict"`                                             // Treat missing required properties as failures
}

// ClientConfig configures the HTTP client used to fetch subjects
type ClientConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`                 // Per-request timeout (default: 10)
	RequestsPerSecond float64 `mapstructure:"requests_per_second" toml:"requests_per_second" json:"requests_per_second" yaml:"requests_per_second"` // 0 = unlimited
	Burst             int     `mapstructure:"burst" toml:"burst" json:"burst" yaml:"burst"`
	BlockPrivateIP    bool    `mapstructure:"block_private_ip" toml:"block_private_ip" json:"block_private_ip" yaml:"block_private_ip"` // SSRF protection (default: true)
	MaxRedirects      int     `mapstructure:"max_redirects" toml:"max_redirects" json:"max_redirects" yaml:"max_redirects"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
}

// Config file names and locations
const (
	ProjectConfigName = "atomic.toml"
	SystemConfigPath  = "/etc/atomic/atomic.toml"
	UserConfigDir     = ".atomic"
	EnvPrefix         = "ATOMIC"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
