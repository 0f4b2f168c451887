package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soheilade/atomic-server/errors"
)

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", ProjectConfigName)

	require.NoError(t, WriteDefault(path, false))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	check, err := CheckFile(path)
	require.NoError(t, err)
	assert.Empty(t, check.UnknownKeys)
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectConfigName)
	require.NoError(t, os.WriteFile(path, []byte("[store]\npath = \"mine.db\"\n"), 0644))

	err := WriteDefault(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.NotEmpty(t, errors.GetAllHints(err))

	require.NoError(t, WriteDefault(path, true))
	backup, err := os.ReadFile(path + ".back1")
	require.NoError(t, err)
	assert.Contains(t, string(backup), "mine.db")
}

func TestBackupRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectConfigName)

	for _, content := range []string{"one", "two", "three", "four"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		require.NoError(t, createBackup(path))
	}

	for suffix, want := range map[string]string{".back1": "four", ".back2": "three", ".back3": "two"} {
		got, err := os.ReadFile(path + suffix)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), suffix)
	}
}

func TestUpdateSetting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectConfigName)

	require.NoError(t, UpdateSetting(path, "validate.strict", true))
	require.NoError(t, UpdateSetting(path, "store.path", "other.db"))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Validation.Strict)
	assert.Equal(t, "other.db", cfg.Store.Path)
}

func TestUpdateSettingInvalidKey(t *testing.T) {
	err := UpdateSetting(filepath.Join(t.TempDir(), ProjectConfigName), "validate..strict", true)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestCheckFile(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantUnknown []string
		wantErr     string
	}{
		{
			name:    "valid",
			content: "[validate]\nstrict = true\n",
		},
		{
			name:        "unknown keys",
			content:     "[validate]\nfetch_itmes = true\n\n[server]\nport = 1\n",
			wantUnknown: []string{"validate.fetch_itmes", "server.port"},
		},
		{
			name:    "wrong type",
			content: "[validate]\nfetch_concurrency = \"four\"\n",
			wantErr: ProjectConfigName,
		},
		{
			name:    "syntax error",
			content: "[validate\n",
			wantErr: "parse",
		},
		{
			name:    "invalid value",
			content: "[client]\ntimeout_seconds = 0\n",
			wantErr: "client.timeout_seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ProjectConfigName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			check, err := CheckFile(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if len(tt.wantUnknown) == 0 {
				assert.Empty(t, check.UnknownKeys)
			}
			for _, key := range tt.wantUnknown {
				assert.Contains(t, check.UnknownKeys, key)
			}
		})
	}
}
