// Package llm provides the model configuration and client abstraction for the
// inference backend.
package llm

// ModelTier represents the capability level required by a call site.
type ModelTier string

const (
	// TierLite is for classification and tag extraction.
	TierLite ModelTier = "lite"
	// TierStandard is for structured parsing of report text.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for customer-facing draft generation.
	TierAdvanced ModelTier = "advanced"
)

// Config holds the model selection per tier and the sampling temperature.
type Config struct {
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the default Gemini model mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.2,
	}
}

// Model returns the model name for a tier, falling back through standard and
// lite when the requested tier is not configured.
func (c *Config) Model(tier ModelTier) string {
	if m, ok := c.Models[tier]; ok {
		return m
	}
	if m, ok := c.Models[TierStandard]; ok {
		return m
	}
	if m, ok := c.Models[TierLite]; ok {
		return m
	}
	return ""
}
