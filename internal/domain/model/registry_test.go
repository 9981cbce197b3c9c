package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrder(t *testing.T) {
	assert.Equal(t, []string{
		"llama-3.3-70b-versatile",
		"llama-3.1-8b-instant",
		"gemma2-9b-it",
		"deepseek-r1-distill-llama-70b",
		"qwen/qwen3-32b",
	}, Names())
}

func TestCandidatesProductionFirst(t *testing.T) {
	candidates := Candidates()
	require.Len(t, candidates, int(modelCount))

	seenPreview := false
	for _, id := range candidates {
		spec := MustLookup(id)
		if spec.Tier == TierPreview {
			seenPreview = true
			continue
		}
		assert.False(t, seenPreview, "production model %s after a preview model", spec.Name)
	}
	assert.Len(t, ByTier(TierProduction), 3)
	assert.Len(t, ByTier(TierPreview), 2)
}

func TestLookupAndParse(t *testing.T) {
	for _, spec := range All() {
		id, ok := Parse(spec.Name)
		require.True(t, ok, spec.Name)
		assert.Equal(t, spec.ID, id)
		assert.Equal(t, spec.Name, id.String())

		got, ok := Lookup(id)
		require.True(t, ok)
		assert.Equal(t, spec, got)
		assert.Positive(t, got.MaxTokens)
		assert.Positive(t, got.ContextWindow)
	}

	_, ok := Parse("gpt-4")
	assert.False(t, ok)
	_, ok = Lookup(ID(-1))
	assert.False(t, ok)
	assert.False(t, modelCount.Valid())
	assert.Panics(t, func() { MustLookup(modelCount) })
}

func TestDefaultIsProduction(t *testing.T) {
	spec := MustLookup(Default)
	assert.Equal(t, TierProduction, spec.Tier)
	assert.Equal(t, "llama-3.3-70b-versatile", spec.Name)
}

func TestSpecJSON(t *testing.T) {
	raw, err := json.Marshal(MustLookup(DeepSeekR1Llama70B))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "Preview", got["tier"])
	assert.Equal(t, "deepseek-r1-distill-llama-70b", got["name"])
	assert.NotContains(t, got, "ID")
}
