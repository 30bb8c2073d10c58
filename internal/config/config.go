// Package config loads pdf2study settings from defaults, .pdf2study.yml and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
)

// LoadEnvFile loads KEY=VALUE pairs from path into the process
// environment. Variables that are already set win. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PDF2STUDY_*), then the GEMINI_* relay
// variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// PDF2STUDY_SERVER__PORT -> server.port
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.Relay.APIKey == "" {
		cfg.Relay.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if m := os.Getenv("GEMINI_MODEL"); m != "" {
		cfg.Relay.Model = m
	}
	switch strings.ToLower(os.Getenv("GEMINI_INSECURE_SSL")) {
	case "1", "true", "yes":
		cfg.Relay.InsecureTLS = true
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path. Keys are
// never written.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validExpanders = map[string]bool{"gemini": true, "provider": true, "none": true}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("server rate limits must be non-negative")
	}
	if c.AI.Provider != "" {
		if _, ok := ai.Lookup(c.AI.Provider); !ok {
			return fmt.Errorf("invalid ai.provider %q: must be one of %s", c.AI.Provider, strings.Join(ai.ProviderIDs(), ", "))
		}
	}
	if !validExpanders[c.Generate.Expander] {
		return fmt.Errorf("invalid generate.expander %q: must be one of gemini, provider, none", c.Generate.Expander)
	}
	if c.Generate.MaxConcepts <= 0 {
		return fmt.Errorf("generate.max_concepts must be positive")
	}
	if c.Relay.TimeoutSeconds <= 0 {
		return fmt.Errorf("relay.timeout_seconds must be positive")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	switch c.Storage.Backend {
	case "sqlite", "file":
	default:
		return fmt.Errorf("invalid storage.backend %q: must be sqlite or file", c.Storage.Backend)
	}
	return nil
}

// FallbackAI is the chat config used until one is saved.
func (c *Config) FallbackAI() ai.AIConfig {
	return ai.AIConfig{
		Provider: c.AI.Provider,
		Model:    c.AI.Model,
		Endpoint: c.AI.Endpoint,
		APIKey:   c.AI.APIKey,
	}
}

// RelayTimeout is Relay.TimeoutSeconds as a duration.
func (c *Config) RelayTimeout() time.Duration {
	return time.Duration(c.Relay.TimeoutSeconds) * time.Second
}
