package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at fresh temp dirs so no
// real user or project config leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	chdir(t, dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultStorePath, cfg.Store.Path)
	assert.True(t, cfg.Store.Populate)
	assert.True(t, cfg.Client.BlockPrivateIP)
	assert.Equal(t, DefaultFetchConcurrency, cfg.Validation.FetchConcurrency)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero concurrency", func(c *Config) { c.Validation.FetchConcurrency = 0 }, "validate.fetch_concurrency"},
		{"zero timeout", func(c *Config) { c.Client.TimeoutSeconds = 0 }, "client.timeout_seconds"},
		{"negative rate", func(c *Config) { c.Client.RequestsPerSecond = -1 }, "client.requests_per_second"},
		{"unlimited rate ignores burst", func(c *Config) { c.Client.RequestsPerSecond = 0; c.Client.Burst = 0 }, ""},
		{"limited rate needs burst", func(c *Config) { c.Client.Burst = 0 }, "client.burst"},
		{"negative redirects", func(c *Config) { c.Client.MaxRedirects = -1 }, "client.max_redirects"},
		{"empty store path", func(c *Config) { c.Store.Path = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetStorePathFallback(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultStorePath, cfg.GetStorePath())
	assert.Equal(t, 10*time.Second, cfg.ClientTimeout())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[store]
path = "custom.db"

[validate]
strict = true
`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "custom.db", cfg.Store.Path)
	assert.True(t, cfg.Validation.Strict)
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Client.TimeoutSeconds, "defaults fill the rest")
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadProjectConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(`
[validate]
fetch_items = true
fetch_concurrency = 8
`), 0644))

	// Project files are found from subdirectories too
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))
	chdir(t, sub)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Validation.FetchItems)
	assert.Equal(t, 8, cfg.Validation.FetchConcurrency)
	assert.Equal(t, SourceProject, ConfigSources["validate.fetch_concurrency"].Source)

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, again, "config is cached until Reset")
}

func TestLoadUserConfigBelowProject(t *testing.T) {
	dir := isolate(t)
	home := os.Getenv("HOME")
	require.NoError(t, os.MkdirAll(filepath.Join(home, UserConfigDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, UserConfigDir, ProjectConfigName), []byte(`
[store]
path = "user.db"
populate = false
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(`
[store]
path = "project.db"
`), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "project.db", cfg.Store.Path)
	assert.False(t, cfg.Store.Populate, "user settings survive when the project file does not set them")
	assert.Equal(t, SourceUser, ConfigSources["store.populate"].Source)
	assert.Equal(t, SourceProject, ConfigSources["store.path"].Source)
}

func TestLoadEnvironmentOverridesFiles(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(`
[validate]
strict = false
`), 0644))
	t.Setenv("ATOMIC_VALIDATE_STRICT", "true")
	t.Setenv("ATOMIC_STORE_PATH", "env.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Validation.Strict)
	assert.Equal(t, "env.db", cfg.Store.Path)
	assert.Equal(t, "env.db", GetString("store.path"))
	assert.True(t, GetBool("validate.strict"))
}

func TestGetConfigIntrospection(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigName), []byte(`
[client]
burst = 2
`), 0644))
	t.Setenv("ATOMIC_LOG_JSON", "true")

	introspection, err := GetConfigIntrospection()
	require.NoError(t, err)

	byKey := map[string]SettingInfo{}
	for _, s := range introspection.Settings {
		byKey[s.Key] = s
	}

	assert.Equal(t, SourceProject, byKey["client.burst"].Source)
	assert.Equal(t, SourceEnvironment, byKey["log.json"].Source)
	assert.Equal(t, "ATOMIC_LOG_JSON", byKey["log.json"].SourcePath)
	assert.Equal(t, SourceDefault, byKey["store.path"].Source)

	for i := 1; i < len(introspection.Settings); i++ {
		assert.Less(t, introspection.Settings[i-1].Key, introspection.Settings[i].Key)
	}
}

// chdir changes the working directory for the duration of the test
// (testing.T.Chdir is unavailable before Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
