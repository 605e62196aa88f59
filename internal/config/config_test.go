package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "yt-dlp", cfg.Platform.YtdlpPath)
	assert.Equal(t, "downloads", cfg.Platform.DownloadsDir)
	assert.Equal(t, 4, cfg.Platform.Workers)
	assert.Equal(t, 10*time.Minute, cfg.Platform.CommandTimeout)
	assert.Equal(t, FlagBackendStatic, cfg.Flags.Backend)
	assert.Empty(t, cfg.Flags.Enabled)
}

func TestLoadFlags(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("FLAGS_ENABLED", "1, 3")
	t.Setenv("INVIDIOUS_URL", "https://inv.example/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, cfg.Flags.Enabled)
	assert.Equal(t, "https://inv.example", cfg.Search.InvidiousURL)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "No credentials",
			env:  map[string]string{"API_KEY": "", "JWT_SECRET": ""},
		},
		{
			name: "Bad flag list",
			env:  map[string]string{"API_KEY": "k", "FLAGS_ENABLED": "one"},
		},
		{
			name: "Unknown backend",
			env:  map[string]string{"API_KEY": "k", "FLAG_BACKEND": "redis"},
		},
		{
			name: "Bad timeout",
			env:  map[string]string{"API_KEY": "k", "COMMAND_TIMEOUT": "soon"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MongoBackendNeedsURI(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("FLAG_BACKEND", FlagBackendMongo)
	t.Setenv("MONGODB_URI", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI is required")

	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "ytplatform", cfg.MongoDB.Database)
}

func TestLoad_PostgresBackendNeedsCredentials(t *testing.T) {
	t.Setenv("API_KEY", "k")
	t.Setenv("FLAG_BACKEND", FlagBackendPostgres)
	t.Setenv("POSTGRES_USER", "bot")
	t.Setenv("POSTGRES_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_PASSWORD is required")

	t.Setenv("POSTGRES_PASSWORD", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "bot", cfg.Postgres.User)
}
