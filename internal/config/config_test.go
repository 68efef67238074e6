package config

import (
	"os"
	"path/filepath"
	"testing"

	"quill/internal/models"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:             "development",
		Port:            "8000",
		JWTSecret:       "secure-secret-at-least-32-chars-long",
		DBDriver:        "postgres",
		DBPassword:      "secure-password",
		DBSSLMode:       "require",
		SearchLanguages: "en,ro",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid development", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.DBDriver = "sqlite"; c.DBPath = "" }, true},
		{"sqlite with path", func(c *Config) { c.DBDriver = "sqlite"; c.DBPath = "quill.db" }, false},
		{"bad search language", func(c *Config) { c.SearchLanguages = "en,klingon" }, true},
		{"negative workers", func(c *Config) { c.ReindexWorkers = -1 }, true},
		{"production with default secret", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, true},
		{"production with short secret", func(c *Config) { c.Env = "prod"; c.JWTSecret = "short" }, true},
		{"production with weak db password", func(c *Config) { c.Env = "production"; c.DBPassword = "password" }, true},
		{"production with ssl disabled", func(c *Config) { c.Env = "production"; c.DBSSLMode = "disable" }, true},
		{"production hardened", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("DB_PATH", "file::memory:")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("SEARCH_LANGUAGES", "ro")
	t.Setenv("TAGGER_CMD_RO", "/opt/treetagger/cmd/tree-tagger-romanian")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, []models.Language{models.LanguageRomanian}, c.SearchLanguageList())
	assert.Equal(t, "/opt/treetagger/cmd/tree-tagger-romanian", c.TaggerCommands()[models.LanguageRomanian])
	assert.Equal(t, "tree-tagger-english", c.TaggerCommands()[models.LanguageEnglish])
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("QUILL_DOTENV_NEW=from-file\nQUILL_DOTENV_SET=from-file\n"), 0o600))

	t.Setenv("QUILL_DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("QUILL_DOTENV_NEW") })

	loadDotEnv(filepath.Join(dir, "missing.env"), path)

	assert.Equal(t, "from-file", os.Getenv("QUILL_DOTENV_NEW"))
	assert.Equal(t, "from-env", os.Getenv("QUILL_DOTENV_SET"))
}
