package prompt

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FormatStory(t *testing.T) {
	r := NewRegistry()

	msgs, err := r.Format(context.Background(), PromptStoryV1, map[string]any{
		"user_prompt": "a magical forest adventure",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "creative storyteller")
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Prompt: a magical forest adventure")
	assert.NotContains(t, msgs[1].Content, "{user_prompt}")
}

func TestRegistry_FormatDescriptionsEmbedStory(t *testing.T) {
	r := NewRegistry()
	story := "Mira walked into the glowing woods."

	for _, id := range []PromptID{PromptCharacterV1, PromptBackgroundV1} {
		t.Run(string(id), func(t *testing.T) {
			msgs, err := r.Format(context.Background(), id, map[string]any{"story": story})
			require.NoError(t, err)
			require.Len(t, msgs, 2)
			assert.Contains(t, msgs[1].Content, "Story: "+story)
		})
	}
}

func TestRegistry_CachesTemplates(t *testing.T) {
	r := NewRegistry()

	a, err := r.ChatTemplate(PromptCharacterV1)
	require.NoError(t, err)
	b, err := r.ChatTemplate(PromptCharacterV1)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestRegistry_UnknownPrompt(t *testing.T) {
	_, err := NewRegistry().ChatTemplate(PromptID("nope"))
	assert.EqualError(t, err, "unknown prompt id: nope")
}
