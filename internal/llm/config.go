// Package llm provides the Gemini client used for CV content generation and its model configuration.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short list output: responsibilities, details, skill suggestions
	TierLite ModelTier = "lite"
	// TierStandard is for single entries, summaries, and full CV drafts
	TierStandard ModelTier = "standard"
	// TierAdvanced is for tailoring an existing CV against a job description
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Sampling defaults. Temperature is used when Config.Temperature is unset.
const (
	DefaultTemperature float32 = 0.7
	DefaultTopK        int32   = 40
	DefaultTopP        float32 = 0.95
)

// DefaultSystemInstruction frames every generation call.
const DefaultSystemInstruction = "You are an experienced CV writer. Write concise, achievement-focused content " +
	"in a professional tone, without first-person pronouns. Do not invent employers, dates or qualifications " +
	"that the input does not support."

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	TopK        int32
	TopP        float32
	// MaxOutputTokens bounds the response per tier; zero leaves the model default.
	MaxOutputTokens   map[ModelTier]int32
	SystemInstruction string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
		TopK:        DefaultTopK,
		TopP:        DefaultTopP,
		MaxOutputTokens: map[ModelTier]int32{
			TierLite:     1024,
			TierStandard: 4096,
			TierAdvanced: 8192,
		},
		SystemInstruction: DefaultSystemInstruction,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := c.clone()
	newConfig.Models[tier] = model
	return newConfig
}

// WithSingleModel returns a new Config that uses model for every tier.
// An empty model returns an unchanged copy.
func (c *Config) WithSingleModel(model string) *Config {
	newConfig := c.clone()
	if model == "" {
		return newConfig
	}
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		newConfig = newConfig.WithModel(tier, model)
	}
	return newConfig
}

func (c *Config) temperature() float32 {
	if c.Temperature <= 0 {
		return DefaultTemperature
	}
	return c.Temperature
}

// maxOutputTokens returns the response bound for tier, or zero.
func (c *Config) maxOutputTokens(tier ModelTier) int32 {
	return c.MaxOutputTokens[tier]
}

func (c *Config) clone() *Config {
	newConfig := &Config{
		Provider:          c.Provider,
		Models:            make(map[ModelTier]string, len(c.Models)),
		Temperature:       c.Temperature,
		TopK:              c.TopK,
		TopP:              c.TopP,
		MaxOutputTokens:   make(map[ModelTier]int32, len(c.MaxOutputTokens)),
		SystemInstruction: c.SystemInstruction,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	for k, v := range c.MaxOutputTokens {
		newConfig.MaxOutputTokens[k] = v
	}
	return newConfig
}
