package config

import "os"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Sentiment is for per-product review analysis (needs to be fast)
	Sentiment string `json:"sentiment"`

	// Quality is for quality-indicator extraction (needs to be fast)
	Quality string `json:"quality"`

	// Recommendation is for the final comparison summary (quality over speed)
	Recommendation string `json:"recommendation"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			Sentiment:      getEnv("GEMINI_MODEL_SENTIMENT", "gemini-2.0-flash"),
			Quality:        getEnv("GEMINI_MODEL_QUALITY", "gemini-2.0-flash"),
			Recommendation: getEnv("GEMINI_MODEL_RECOMMEND", "gemini-1.5-pro"),
		},
		TimeoutMS: 10000, // 10 second default timeout
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}
