package groq

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storygen-ai-api/internal/domain/model"
	"storygen-ai-api/internal/domain/service"
	apperrors "storygen-ai-api/pkg/errors"
	"storygen-ai-api/pkg/logger"
)

const okBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "llama-3.3-70b-versatile",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  Once upon a time.  "}}
  ],
  "usage": {"prompt_tokens": 12, "completion_tokens": 30, "total_tokens": 42}
}`

type recordingUsage struct {
	mu     sync.Mutex
	inputs []service.LLMUsageInput
}

func (r *recordingUsage) Record(_ context.Context, in service.LLMUsageInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, in)
	return nil
}

type capturedRequest struct {
	path          string
	authorization string
	body          map[string]any
}

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.authorization = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestClient(baseURL string, recorder service.LLMUsageRecorder) *Client {
	return NewClient(Config{BaseURL: baseURL, Timeout: 2 * time.Second}, recorder, logger.Discard())
}

func storyRequest() *model.GenerationRequest {
	return &model.GenerationRequest{
		Model: model.Llama33Versatile,
		Messages: []*schema.Message{
			schema.SystemMessage("You are a creative storyteller."),
			schema.UserMessage("Write a story about a fox."),
		},
		MaxTokens:   1000,
		Temperature: 0.8,
		TopP:        0.9,
	}
}

func TestComplete_Success(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, okBody)
	recorder := &recordingUsage{}
	c := newTestClient(srv.URL, recorder)

	ctx := service.WithWorkflow(context.Background(), service.WorkflowStory)
	res, err := c.Complete(ctx, "gsk_test", storyRequest())
	require.NoError(t, err)

	assert.Equal(t, "Once upon a time.", res.Text)
	require.NotNil(t, res.Usage)
	assert.Equal(t, 12, res.Usage.PromptTokens)
	assert.Equal(t, 30, res.Usage.CompletionTokens)
	assert.Equal(t, 42, res.Usage.TotalTokens)

	assert.Equal(t, "/chat/completions", captured.path)
	assert.Equal(t, "Bearer gsk_test", captured.authorization)
	assert.Equal(t, "llama-3.3-70b-versatile", captured.body["model"])
	assert.Equal(t, false, captured.body["stream"])
	assert.InDelta(t, 1000, captured.body["max_tokens"], 0)
	assert.InDelta(t, 0.8, captured.body["temperature"], 1e-9)
	assert.InDelta(t, 0.9, captured.body["top_p"], 1e-9)

	messages := captured.body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
	assert.Equal(t, "Write a story about a fox.", messages[1].(map[string]any)["content"])

	require.Len(t, recorder.inputs, 1)
	in := recorder.inputs[0]
	assert.Equal(t, service.WorkflowStory, in.Workflow)
	assert.Equal(t, "groq", in.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", in.Model)
	assert.Equal(t, "success", in.Status)
	assert.Equal(t, 12, in.PromptTokens)
	assert.Equal(t, 30, in.CompletionTokens)
	assert.Equal(t, 42, in.TotalTokens)
}

func TestComplete_NoUsage(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK,
		`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hi"}}]}`)
	c := newTestClient(srv.URL, nil)

	res, err := c.Complete(context.Background(), "gsk_test", storyRequest())
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Text)
	assert.Nil(t, res.Usage)
}

func TestComplete_Unauthorized(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, `{"error":{"message":"Invalid API Key"}}`)
	recorder := &recordingUsage{}
	c := newTestClient(srv.URL, recorder)

	_, err := c.Complete(context.Background(), "gsk_bad", storyRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.Len(t, recorder.inputs, 1)
	assert.Equal(t, "error", recorder.inputs[0].Status)
}

func TestComplete_RateLimitedSleepsOnce(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`)
	c := newTestClient(srv.URL, nil)

	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) { slept = append(slept, d) }

	_, err := c.Complete(context.Background(), "gsk_test", storyRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrRateLimited)
	assert.Equal(t, []time.Duration{DefaultRateLimitBackoff}, slept)
}

func TestComplete_ServerErrorCarriesBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `{"error":{"message":"upstream exploded"}}`)
	c := newTestClient(srv.URL, nil)

	_, err := c.Complete(context.Background(), "gsk_test", storyRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBackend)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, http.StatusInternalServerError, appErr.UpstreamStatus)
	assert.Contains(t, appErr.Detail, "upstream exploded")
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`)
	c := newTestClient(srv.URL, nil)

	_, err := c.Complete(context.Background(), "gsk_test", storyRequest())
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeBackendError, appErr.Code)
	assert.Equal(t, http.StatusOK, appErr.UpstreamStatus)
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil, logger.Discard())

	_, err := c.Complete(context.Background(), "gsk_test", storyRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
}

func TestComplete_RejectsBadInput(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, okBody)
	c := newTestClient(srv.URL, nil)

	_, err := c.Complete(context.Background(), "", storyRequest())
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)

	req := storyRequest()
	req.Model = model.ID(99)
	_, err = c.Complete(context.Background(), "gsk_test", req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	req = storyRequest()
	req.Messages = nil
	_, err = c.Complete(context.Background(), "gsk_test", req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	assert.Empty(t, captured.path)
}

func TestComplete_DoesNotKeepAPIKey(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, okBody)
	c := newTestClient(srv.URL, nil)

	_, err := c.Complete(context.Background(), "gsk_first", storyRequest())
	require.NoError(t, err)
	assert.Equal(t, "Bearer gsk_first", captured.authorization)

	_, err = c.Complete(context.Background(), "gsk_second", storyRequest())
	require.NoError(t, err)
	assert.Equal(t, "Bearer gsk_second", captured.authorization)
}
