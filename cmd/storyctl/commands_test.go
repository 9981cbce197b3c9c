package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storygen-ai-api/pkg/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", t.TempDir(), "--config-env", "test"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestImagePromptsCommand(t *testing.T) {
	out, err := run(t, "--api-key", "gsk_test", "--pretty=false", "image-prompts",
		"--character", "A Tall Knight", "--background", "Background: a frozen lake")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "a tall knight, portrait, detailed, high quality, digital art, fantasy style, concept art", got["character_prompt"])
	assert.Equal(t, "a frozen lake, landscape, detailed, high quality, digital art, fantasy style, matte painting", got["background_prompt"])
}

func TestModelsCommand(t *testing.T) {
	out, err := run(t, "--api-key", "gsk_test", "models")
	require.NoError(t, err)

	var got struct {
		Production map[string]any `json:"production_models"`
		Preview    map[string]any `json:"preview_models"`
		Current    string         `json:"current_model"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Production, 3)
	assert.Len(t, got.Preview, 2)
	assert.Equal(t, "llama-3.3-70b-versatile", got.Current)
}

func TestInfoCommand(t *testing.T) {
	out, err := run(t, "--api-key", "gsk_test", "info")
	require.NoError(t, err)
	assert.Contains(t, out, `"provider": "Groq"`)
	assert.Contains(t, out, `"api_status": "active"`)
}

func TestMissingAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	_, err := run(t, "models")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}

func TestGenerateRequiresPrompt(t *testing.T) {
	_, err := run(t, "--api-key", "gsk_test", "generate")
	require.Error(t, err)
}
