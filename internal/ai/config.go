package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thywilljoshua/pdf-to-study/internal/storage"
)

// ConfigKey is the global storage key of the active AI configuration.
const ConfigKey = "mfin_ai_config"

// AIConfig is the single active provider selection for a profile.
type AIConfig struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey,omitempty"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint,omitempty"`
}

// Redacted returns a copy safe to print or send to a page.
func (c AIConfig) Redacted() AIConfig {
	if c.APIKey == "" {
		return c
	}
	k := []rune(c.APIKey)
	if len(k) <= 8 {
		c.APIKey = strings.Repeat("*", len(k))
	} else {
		c.APIKey = string(k[:4]) + strings.Repeat("*", len(k)-8) + string(k[len(k)-4:])
	}
	return c
}

// ConfigStore persists AIConfig in local storage.
type ConfigStore struct {
	local    storage.Local
	fallback AIConfig
}

type ConfigOption func(*ConfigStore)

// WithFallback sets the config Get returns when nothing usable is stored.
func WithFallback(cfg AIConfig) ConfigOption {
	return func(s *ConfigStore) { s.fallback = cfg }
}

func NewConfigStore(local storage.Local, opts ...ConfigOption) *ConfigStore {
	s := &ConfigStore{local: local}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the stored config. Absent or corrupt state yields the fallback.
func (s *ConfigStore) Get() AIConfig {
	raw, ok := storage.Lookup(s.local, ConfigKey)
	if !ok {
		return s.fallback
	}
	var cfg AIConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return s.fallback
	}
	return cfg
}

// Save validates and overwrites the stored config. Nothing is written when
// validation fails.
func (s *ConfigStore) Save(cfg AIConfig) error {
	cfg = AIConfig{
		Provider: strings.ToLower(strings.TrimSpace(cfg.Provider)),
		APIKey:   strings.TrimSpace(cfg.APIKey),
		Model:    strings.TrimSpace(cfg.Model),
		Endpoint: strings.TrimSpace(cfg.Endpoint),
	}
	if err := Validate(cfg); err != nil {
		return err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding AI config: %w", err)
	}
	if err := s.local.Set(ConfigKey, string(raw)); err != nil {
		return fmt.Errorf("saving AI config: %w", err)
	}
	return nil
}

// Clear removes the stored config.
func (s *ConfigStore) Clear() error {
	return s.local.Remove(ConfigKey)
}

// Validate applies the save-time checks: a known provider, plus a key or
// endpoint when the provider has no usable default.
func Validate(cfg AIConfig) error {
	if cfg.Provider == "" {
		return ErrNoProvider
	}
	p, ok := Lookup(cfg.Provider)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if p.NeedsKey && strings.TrimSpace(cfg.APIKey) == "" {
		return fmt.Errorf("%s: %w", p.Label, ErrMissingKey)
	}
	if p.NeedsEndpoint && strings.TrimSpace(cfg.Endpoint) == "" && p.DefaultEndpoint == "" {
		return fmt.Errorf("%s: %w", p.Label, ErrMissingEndpoint)
	}
	return nil
}
