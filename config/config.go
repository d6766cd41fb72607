package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Mode selects which pipeline runs for a new question.
type Mode string

const (
	// ModeImage sends the screenshots to a vision-capable backend directly.
	ModeImage Mode = "image"
	// ModeText flattens the screenshots to text via OCR first and sends a
	// minimal prompt tuned for a terminal FINAL ANSWER line.
	ModeText Mode = "text"
)

// Provider names. The first three are vision-capable; ollama is text-only.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// Settings is the mutable, persisted part of the configuration. It is only
// changed through Store.Update, which re-validates and notifies subscribers.
type Settings struct {
	Provider        string  `json:"provider"`
	Mode            Mode    `json:"mode"`
	ExtractionModel string  `json:"extraction_model"`
	SolutionModel   string  `json:"solution_model"`
	DebuggingModel  string  `json:"debugging_model"`
	Language        string  `json:"language"`
	Opacity         float64 `json:"opacity"`
}

// Config is the full runtime configuration: validated settings plus the
// credentials loaded from the environment. Keys for inactive providers are
// carried but ignored.
type Config struct {
	Settings

	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string
	OllamaURL    string

	EnableFileLogging bool
}

// APIKeyFor returns the credential for a provider name, empty when unset.
func (c Config) APIKeyFor(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return c.OpenAIKey
	case ProviderAnthropic:
		return c.AnthropicKey
	case ProviderGemini:
		return c.GeminiKey
	default:
		return ""
	}
}

// Per-stage model allow-lists. Values outside the list silently fall back to
// the first entry, so a stale persisted choice never breaks a pipeline.
var (
	ExtractionModels = []string{"gpt-4o-mini", "claude-haiku-4-5", "gemini-2.5-flash", "llama3.2"}
	SolutionModels   = []string{"gpt-4o", "claude-sonnet-4-5", "gemini-2.5-pro", "llama3.2"}
	DebuggingModels  = []string{"gpt-4o", "claude-sonnet-4-5", "gemini-2.5-pro", "llama3.2"}
)

var providers = []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama}

// DefaultSettings returns the documented fallbacks applied whenever a field
// is missing or invalid.
func DefaultSettings() Settings {
	return Settings{
		Provider:        ProviderOpenAI,
		Mode:            ModeImage,
		ExtractionModel: ExtractionModels[0],
		SolutionModel:   SolutionModels[0],
		DebuggingModel:  DebuggingModels[0],
		Language:        "python",
		Opacity:         1.0,
	}
}

// normalize validates s in place, replacing invalid fields with defaults.
// Invalid values never error; they fall back silently.
func normalize(s *Settings) {
	def := DefaultSettings()
	if !contains(providers, s.Provider) {
		s.Provider = def.Provider
	}
	if s.Mode != ModeImage && s.Mode != ModeText {
		s.Mode = def.Mode
	}
	if !contains(ExtractionModels, s.ExtractionModel) {
		s.ExtractionModel = def.ExtractionModel
	}
	if !contains(SolutionModels, s.SolutionModel) {
		s.SolutionModel = def.SolutionModel
	}
	if !contains(DebuggingModels, s.DebuggingModel) {
		s.DebuggingModel = def.DebuggingModel
	}
	if strings.TrimSpace(s.Language) == "" {
		s.Language = def.Language
	}
	if s.Opacity < 0.1 {
		s.Opacity = 0.1
	}
	if s.Opacity > 1.0 {
		s.Opacity = 1.0
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// loadEnv pulls credentials and flags from the environment, trying .env in
// the current and executable directories first.
func loadEnv() Config {
	envPaths := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		envPaths = append(envPaths, filepath.Join(filepath.Dir(execPath), ".env"))
	}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			godotenv.Load(envPath)
			break
		}
	}

	return Config{
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
		GeminiKey:         os.Getenv("GEMINI_API_KEY"),
		OllamaURL:         getEnvWithDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
