package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/thywilljoshua/pdf-to-study/internal/ai"
)

// RunAIWizard asks for a provider, model, endpoint and key, starting from
// current. The result is not saved; callers pass it to ai.ConfigStore.Save.
func RunAIWizard(current ai.AIConfig) (ai.AIConfig, error) {
	providers := ai.Providers()
	items := make([]string, len(providers))
	cursor := 0
	for i, p := range providers {
		items[i] = fmt.Sprintf("%-10s %s", p.ID, p.Label)
		if p.ID == current.Provider {
			cursor = i
		}
	}

	providerPrompt := promptui.Select{
		Label:     "Select AI provider",
		Items:     items,
		CursorPos: cursor,
		Size:      len(items),
	}
	idx, _, err := providerPrompt.Run()
	if err != nil {
		return ai.AIConfig{}, fmt.Errorf("provider selection: %w", err)
	}
	desc := providers[idx]
	cfg := ai.AIConfig{Provider: desc.ID}

	model := current.Model
	if current.Provider != desc.ID || model == "" {
		model = desc.DefaultModel()
	}
	if len(desc.Models) > 1 {
		sel := promptui.SelectWithAdd{
			Label:    "Model",
			Items:    desc.Models,
			AddLabel: "Other...",
		}
		_, model, err = sel.Run()
		if err != nil {
			return ai.AIConfig{}, fmt.Errorf("model selection: %w", err)
		}
	} else {
		p := promptui.Prompt{Label: "Model", Default: model}
		if model, err = p.Run(); err != nil {
			return ai.AIConfig{}, fmt.Errorf("model: %w", err)
		}
	}
	cfg.Model = strings.TrimSpace(model)

	if desc.NeedsEndpoint || desc.DefaultEndpoint != "" {
		def := desc.DefaultEndpoint
		if current.Provider == desc.ID && current.Endpoint != "" {
			def = current.Endpoint
		}
		p := promptui.Prompt{
			Label:   "Endpoint",
			Default: def,
			Validate: func(s string) error {
				if desc.NeedsEndpoint && strings.TrimSpace(s) == "" {
					return errors.New("endpoint is required")
				}
				return nil
			},
		}
		endpoint, err := p.Run()
		if err != nil {
			return ai.AIConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		cfg.Endpoint = strings.TrimSpace(endpoint)
	}

	if desc.NeedsKey {
		if desc.KeyHintURL != "" {
			fmt.Printf("Get a key at %s\n", desc.KeyHintURL)
		}
		p := promptui.Prompt{
			Label: "API key",
			Mask:  '*',
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" && !(current.Provider == desc.ID && current.APIKey != "") {
					return errors.New("API key is required")
				}
				return nil
			},
		}
		key, err := p.Run()
		if err != nil {
			return ai.AIConfig{}, fmt.Errorf("api key: %w", err)
		}
		cfg.APIKey = strings.TrimSpace(key)
		if cfg.APIKey == "" {
			cfg.APIKey = current.APIKey
		}
	}
	return cfg, nil
}
