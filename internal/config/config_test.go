package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "proxy", cfg.AI.Provider)
	assert.Equal(t, 90, cfg.Relay.TimeoutSeconds)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	original := DefaultConfig()
	original.Server.Port = 9100
	original.AI.Provider = "anthropic"
	original.AI.APIKey = "sk-never-written"
	original.Generate.MaxConcepts = 5

	require.NoError(t, original.Save(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-never-written")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, loaded.Server.Port)
	assert.Equal(t, "anthropic", loaded.AI.Provider)
	assert.Equal(t, 5, loaded.Generate.MaxConcepts)
	assert.Empty(t, loaded.AI.APIKey)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PDF2STUDY_SERVER__PORT", "8123")
	t.Setenv("PDF2STUDY_AI__PROVIDER", "groq")
	t.Setenv("GEMINI_API_KEY", "relay-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("GEMINI_INSECURE_SSL", "yes")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "groq", cfg.AI.Provider)
	assert.Equal(t, "relay-key", cfg.Relay.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Relay.Model)
	assert.True(t, cfg.Relay.InsecureTLS)
}

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.local")
	require.NoError(t, os.WriteFile(path, []byte("PDF2STUDY_TEST_A=from-file\nPDF2STUDY_TEST_B=\"quoted\"\n"), 0o644))
	t.Setenv("PDF2STUDY_TEST_A", "from-env")
	t.Setenv("PDF2STUDY_TEST_B", "")
	os.Unsetenv("PDF2STUDY_TEST_B")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("PDF2STUDY_TEST_A"))
	assert.Equal(t, "quoted", os.Getenv("PDF2STUDY_TEST_B"))
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing")))
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"port":     func(c *Config) { c.Server.Port = 0 },
		"provider": func(c *Config) { c.AI.Provider = "skynet" },
		"expander": func(c *Config) { c.Generate.Expander = "magic" },
		"concepts": func(c *Config) { c.Generate.MaxConcepts = 0 },
		"timeout":  func(c *Config) { c.Relay.TimeoutSeconds = 0 },
		"storage":  func(c *Config) { c.Storage.Path = "" },
		"backend":  func(c *Config) { c.Storage.Backend = "redis" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
