package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigModel_Fallback(t *testing.T) {
	cfg := &Config{Models: map[ModelTier]string{TierLite: "lite-model"}}

	assert.Equal(t, "lite-model", cfg.Model(TierLite))
	// Advanced is not configured; standard is also missing, so lite wins.
	assert.Equal(t, "lite-model", cfg.Model(TierAdvanced))

	empty := &Config{Models: map[ModelTier]string{}}
	assert.Equal(t, "", empty.Model(TierStandard))
}

func TestDefaultConfig_CoversAllTiers(t *testing.T) {
	cfg := DefaultConfig()
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		assert.NotEmpty(t, cfg.Model(tier))
	}
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "")
	assert.Error(t, err)
}
