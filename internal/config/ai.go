package config

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// apiKeyLen and apiKeyPrefix describe the Gemini API key format. Keys that
// do not match are rejected before any request is attempted.
const (
	apiKeyLen    = 39
	apiKeyPrefix = "AIza"
)

// ErrInvalidAPIKey is returned for keys that fail the format check.
var ErrInvalidAPIKey = errors.New("invalid API key: must be 39 characters and start with \"AIza\"")

// GeminiModels defines which Gemini models to use for different tasks.
type GeminiModels struct {
	// Question is for scenario question generation (needs to be fast).
	Question string `json:"question"`

	// Summary is for end-of-session performance summaries.
	Summary string `json:"summary"`

	// Broadcast is for emergency broadcast generation with search grounding.
	Broadcast string `json:"broadcast"`

	// Chat is for simulated contact replies (needs to be fast).
	Chat string `json:"chat"`

	// Recommendations is for personalized dashboard recommendations.
	Recommendations string `json:"recommendations"`
}

// AIConfig holds all AI-related configuration. The API key may be supplied
// at startup via GEMINI_API_KEY or later through the setup endpoint, so
// access goes through SetAPIKey/APIKey.
type AIConfig struct {
	mu        sync.RWMutex
	apiKey    string
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration. An invalid key in
// the environment is ignored; the app then stays gated behind setup.
func DefaultAIConfig() *AIConfig {
	cfg := &AIConfig{
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			Question:        getEnv("GEMINI_MODEL_QUESTION", "gemini-2.5-flash"),
			Summary:         getEnv("GEMINI_MODEL_SUMMARY", "gemini-2.5-flash"),
			Broadcast:       getEnv("GEMINI_MODEL_BROADCAST", "gemini-2.5-flash"),
			Chat:            getEnv("GEMINI_MODEL_CHAT", "gemini-2.5-flash"),
			Recommendations: getEnv("GEMINI_MODEL_RECS", "gemini-2.5-flash"),
		},
		TimeoutMS: 30000,
	}
	if key := os.Getenv("GEMINI_API_KEY"); ValidateAPIKey(key) == nil {
		cfg.apiKey = strings.TrimSpace(key)
	}
	return cfg
}

// ValidateAPIKey checks the Gemini key format.
func ValidateAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if len(key) != apiKeyLen || !strings.HasPrefix(key, apiKeyPrefix) {
		return ErrInvalidAPIKey
	}
	return nil
}

// SetAPIKey validates and installs a new key.
func (c *AIConfig) SetAPIKey(key string) error {
	if err := ValidateAPIKey(key); err != nil {
		return err
	}
	c.mu.Lock()
	c.apiKey = strings.TrimSpace(key)
	c.mu.Unlock()
	return nil
}

// APIKey returns the current key, or empty when not configured.
func (c *AIConfig) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// IsEnabled returns true if the AI API is configured.
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey() != ""
}

// KeyPreview returns a redacted form of the current key for status display.
func (c *AIConfig) KeyPreview() string {
	key := c.APIKey()
	if key == "" {
		return ""
	}
	return key[:8] + "..." + key[len(key)-4:]
}

// ModelEndpoint returns the full endpoint for a given model.
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}
