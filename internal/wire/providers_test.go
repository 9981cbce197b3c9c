package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storygen-ai-api/internal/application/story"
	"storygen-ai-api/internal/config"
)

func TestProvideStoryOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.Groq.Temperature = 0
	cfg.Groq.TopP = 0.5
	cfg.Groq.MaxTokens = 256

	opts := ProvideStoryOptions(cfg)
	assert.Zero(t, opts.Temperature)
	assert.InDelta(t, 0.5, opts.TopP, 1e-9)
	assert.Equal(t, 256, opts.MaxTokens)
	assert.Equal(t, story.DefaultOptions().ProbeMaxTokens, opts.ProbeMaxTokens)

	cfg.Groq.Temperature = 1.2
	assert.InDelta(t, 1.2, ProvideStoryOptions(cfg).Temperature, 1e-9)
}
