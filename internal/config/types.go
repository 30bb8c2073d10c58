package config

// FileName is the project config file looked up in the working directory.
const FileName = ".pdf2study.yml"

// EnvPrefix prefixes environment overrides. Nested keys use "__", e.g.
// PDF2STUDY_SERVER__PORT.
const EnvPrefix = "PDF2STUDY_"

// Config is the top-level configuration, corresponding to .pdf2study.yml.
type Config struct {
	// Root holds html/, pdfs/ and extracted/.
	Root     string         `yaml:"root" koanf:"root"`
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	AI       AIConfig       `yaml:"ai" koanf:"ai"`
	Generate GenerateConfig `yaml:"generate" koanf:"generate"`
	Storage  StorageConfig  `yaml:"storage" koanf:"storage"`
	Relay    RelayConfig    `yaml:"relay" koanf:"relay"`
}

// ServerConfig controls `pdf2study serve`.
type ServerConfig struct {
	Host        string   `yaml:"host" koanf:"host"`
	Port        int      `yaml:"port" koanf:"port"`
	RateLimit   float64  `yaml:"rate_limit" koanf:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst" koanf:"rate_burst"`
	CORSOrigins []string `yaml:"cors_origins" koanf:"cors_origins"`
}

// AIConfig is the provider used when nothing was saved through the
// settings dialog or `ai configure`.
type AIConfig struct {
	Provider string `yaml:"provider" koanf:"provider"`
	Model    string `yaml:"model" koanf:"model"`
	Endpoint string `yaml:"endpoint,omitempty" koanf:"endpoint"`
	APIKey   string `yaml:"-" koanf:"api_key"`
}

// GenerateConfig controls page generation.
type GenerateConfig struct {
	// Expander is "gemini" (SDK), "provider" (the saved AI config) or "none".
	Expander    string `yaml:"expander" koanf:"expander"`
	Model       string `yaml:"model" koanf:"model"`
	MaxConcepts int    `yaml:"max_concepts" koanf:"max_concepts"`
	PDFDir      string `yaml:"pdf_dir" koanf:"pdf_dir"`
	OutputDir   string `yaml:"output_dir" koanf:"output_dir"`
}

// StorageConfig locates the profile that stands in for the browser's
// local storage. Backend is "sqlite" or "file" (one JSON object).
type StorageConfig struct {
	Backend string `yaml:"backend" koanf:"backend"`
	Path    string `yaml:"path" koanf:"path"`
}

// RelayConfig configures POST /api/gemini. The key and model also come
// from GEMINI_API_KEY and GEMINI_MODEL.
type RelayConfig struct {
	APIKey         string `yaml:"-" koanf:"api_key"`
	Model          string `yaml:"model" koanf:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	InsecureTLS    bool   `yaml:"insecure_tls" koanf:"insecure_tls"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Root: ".",
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8000,
			RateLimit: 2,
			RateBurst: 5,
		},
		AI: AIConfig{
			Provider: "proxy",
			Model:    "gemini-3-flash-preview",
		},
		Generate: GenerateConfig{
			Expander:    "gemini",
			Model:       "gemini-3-flash-preview",
			MaxConcepts: 8,
			PDFDir:      "pdfs",
			OutputDir:   "html",
		},
		Storage: StorageConfig{Backend: "sqlite", Path: ".pdf2study/profile.db"},
		Relay: RelayConfig{
			Model:          "gemini-3-flash-preview",
			TimeoutSeconds: 90,
		},
	}
}
