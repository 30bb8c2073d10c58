package ai

import "strings"

// Family groups providers that share a wire format.
type Family string

const (
	FamilyProxy     Family = "proxy"
	FamilyGemini    Family = "gemini"
	FamilyAnthropic Family = "anthropic"
	FamilyOpenAI    Family = "openai-compatible"
)

// ProviderDescriptor is one row of the compiled-in provider table.
type ProviderDescriptor struct {
	ID              string   `json:"id"`
	Label           string   `json:"label"`
	Family          Family   `json:"family"`
	NeedsKey        bool     `json:"needsKey"`
	NeedsEndpoint   bool     `json:"needsEndpoint"`
	DefaultEndpoint string   `json:"defaultEndpoint,omitempty"`
	Models          []string `json:"models"`
	KeyHintURL      string   `json:"keyHintUrl,omitempty"`
}

// DefaultModel is the first listed model. Providers with an empty list take
// a free-text model and have no default.
func (p ProviderDescriptor) DefaultModel() string {
	if len(p.Models) == 0 {
		return ""
	}
	return p.Models[0]
}

var providers = []ProviderDescriptor{
	{
		ID:              "proxy",
		Label:           "Local proxy",
		Family:          FamilyProxy,
		DefaultEndpoint: "/api/gemini",
		Models:          []string{},
	},
	{
		ID:              "gemini",
		Label:           "Google Gemini",
		Family:          FamilyGemini,
		NeedsKey:        true,
		DefaultEndpoint: "https://generativelanguage.googleapis.com/v1beta/models",
		Models:          []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-3-flash-preview"},
		KeyHintURL:      "https://aistudio.google.com/app/apikey",
	},
	{
		ID:              "anthropic",
		Label:           "Anthropic Claude",
		Family:          FamilyAnthropic,
		NeedsKey:        true,
		DefaultEndpoint: "https://api.anthropic.com/v1/messages",
		Models:          []string{"claude-sonnet-4-5", "claude-haiku-4-5", "claude-opus-4-1"},
		KeyHintURL:      "https://console.anthropic.com/settings/keys",
	},
	{
		ID:              "openai",
		Label:           "OpenAI",
		Family:          FamilyOpenAI,
		NeedsKey:        true,
		DefaultEndpoint: "https://api.openai.com/v1/chat/completions",
		Models:          []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"},
		KeyHintURL:      "https://platform.openai.com/api-keys",
	},
	{
		ID:              "deepseek",
		Label:           "DeepSeek",
		Family:          FamilyOpenAI,
		NeedsKey:        true,
		DefaultEndpoint: "https://api.deepseek.com/chat/completions",
		Models:          []string{"deepseek-chat", "deepseek-reasoner"},
		KeyHintURL:      "https://platform.deepseek.com/api_keys",
	},
	{
		ID:              "openrouter",
		Label:           "OpenRouter",
		Family:          FamilyOpenAI,
		NeedsKey:        true,
		DefaultEndpoint: "https://openrouter.ai/api/v1/chat/completions",
		Models:          []string{"openai/gpt-4o-mini", "anthropic/claude-sonnet-4.5", "google/gemini-2.5-flash"},
		KeyHintURL:      "https://openrouter.ai/keys",
	},
	{
		ID:              "groq",
		Label:           "Groq",
		Family:          FamilyOpenAI,
		NeedsKey:        true,
		DefaultEndpoint: "https://api.groq.com/openai/v1/chat/completions",
		Models:          []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"},
		KeyHintURL:      "https://console.groq.com/keys",
	},
	{
		ID:              "qwen",
		Label:           "Qwen (DashScope)",
		Family:          FamilyOpenAI,
		NeedsKey:        true,
		DefaultEndpoint: "https://dashscope-intl.aliyuncs.com/compatible-mode/v1/chat/completions",
		Models:          []string{"qwen-plus", "qwen-turbo", "qwen-max"},
		KeyHintURL:      "https://dashscope.console.aliyun.com/apiKey",
	},
	{
		ID:              "ollama",
		Label:           "Ollama (local)",
		Family:          FamilyOpenAI,
		DefaultEndpoint: "http://localhost:11434/v1/chat/completions",
		Models:          []string{},
	},
	{
		ID:            "custom",
		Label:         "Custom OpenAI-compatible endpoint",
		Family:        FamilyOpenAI,
		NeedsEndpoint: true,
		Models:        []string{},
	},
}

// Providers returns a copy of the provider table in display order.
func Providers() []ProviderDescriptor {
	out := make([]ProviderDescriptor, len(providers))
	for i, p := range providers {
		p.Models = append([]string{}, p.Models...)
		out[i] = p
	}
	return out
}

// Lookup finds a provider by id, case-insensitively.
func Lookup(id string) (ProviderDescriptor, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range providers {
		if p.ID == id {
			p.Models = append([]string{}, p.Models...)
			return p, true
		}
	}
	return ProviderDescriptor{}, false
}

// ProviderIDs lists every known provider id.
func ProviderIDs() []string {
	ids := make([]string, len(providers))
	for i, p := range providers {
		ids[i] = p.ID
	}
	return ids
}
