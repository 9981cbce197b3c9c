// Package groq 提供 Groq chat completion 后端客户端
package groq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"storygen-ai-api/internal/domain/model"
	"storygen-ai-api/internal/domain/service"
	apperrors "storygen-ai-api/pkg/errors"
	"storygen-ai-api/pkg/logger"
	"storygen-ai-api/pkg/tracer"
)

const (
	// DefaultBaseURL Groq 的 OpenAI 兼容端点
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	DefaultTimeout          = 60 * time.Second
	DefaultRateLimitBackoff = 2 * time.Second

	providerName = "groq"
)

// Config 客户端配置
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	RateLimitBackoff time.Duration
	HTTPClient       *http.Client
}

// Client 单次同步调用 chat completion 端点。
// 不持有 API Key，每次调用由调用方传入。
type Client struct {
	sdk              openai.Client
	timeout          time.Duration
	rateLimitBackoff time.Duration
	sleep            func(ctx context.Context, d time.Duration)
	recorder         service.LLMUsageRecorder
	log              *slog.Logger
}

// NewClient 创建 Groq 客户端
func NewClient(cfg Config, recorder service.LLMUsageRecorder, log *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimitBackoff <= 0 {
		cfg.RateLimitBackoff = DefaultRateLimitBackoff
	}

	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		// 重试由调用方（模型探测循环）负责
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		sdk:              openai.NewClient(opts...),
		timeout:          cfg.Timeout,
		rateLimitBackoff: cfg.RateLimitBackoff,
		sleep:            sleepContext,
		recorder:         recorder,
		log:              log,
	}
}

// Complete 发送一次 chat completion 请求并映射失败类型：
// 401 -> Unauthorized，429 -> 等待固定间隔后 RateLimited，超时 -> Timeout，其它非 200 -> BackendError。
func (c *Client) Complete(ctx context.Context, apiKey string, req *model.GenerationRequest) (*model.GenerationResult, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperrors.Configuration("groq api key is empty")
	}
	if req == nil {
		return nil, apperrors.Validation("generation request is nil")
	}
	spec, ok := model.Lookup(req.Model)
	if !ok {
		return nil, apperrors.Validation(fmt.Sprintf("unknown model id %d", int(req.Model)))
	}

	messages, err := convertMessages(req.Messages)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	workflow := service.WorkflowFromContext(ctx)
	ctx, span := tracer.StartLLM(ctx, "groq.chat_completion", providerName, spec.Name, workflow)
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var captured capturedResponse
	start := time.Now()
	completion, err := c.sdk.Chat.Completions.New(callCtx, buildParams(spec, req, messages),
		option.WithAPIKey(apiKey),
		option.WithJSONSet("stream", false),
		option.WithMiddleware(captured.middleware),
	)
	elapsed := time.Since(start)

	if err != nil {
		mapped := c.mapError(ctx, callCtx, err, &captured)
		c.record(ctx, workflow, spec.Name, "error", nil, elapsed)
		tracer.Fail(span, mapped)
		return nil, mapped
	}

	if len(completion.Choices) == 0 {
		mapped := apperrors.Backend(http.StatusOK, "response contained no choices")
		c.record(ctx, workflow, spec.Name, "error", nil, elapsed)
		tracer.Fail(span, mapped)
		return nil, mapped
	}

	result := &model.GenerationResult{
		Text: strings.TrimSpace(completion.Choices[0].Message.Content),
	}
	if completion.Usage.TotalTokens > 0 || completion.Usage.PromptTokens > 0 {
		result.Usage = &model.TokenUsage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		}
		tracer.RecordUsage(span, result.Usage.PromptTokens, result.Usage.CompletionTokens, result.Usage.TotalTokens)
	}
	c.record(ctx, workflow, spec.Name, "success", result.Usage, elapsed)

	return result, nil
}

func (c *Client) mapError(ctx, callCtx context.Context, err error, captured *capturedResponse) error {
	log := logger.FromContext(ctx, c.log)

	switch status := captured.status; {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized()
	case status == http.StatusTooManyRequests:
		log.Warn("groq api rate limit reached, waiting", "backoff", c.rateLimitBackoff)
		c.sleep(ctx, c.rateLimitBackoff)
		return apperrors.RateLimited()
	case status != 0 && status != http.StatusOK:
		return apperrors.Backend(status, strings.TrimSpace(string(captured.body)))
	}

	if isTimeout(callCtx, err) {
		return apperrors.Timeout(err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return apperrors.Backend(captured.status, err.Error())
}

func (c *Client) record(ctx context.Context, workflow, modelName, status string, usage *model.TokenUsage, elapsed time.Duration) {
	if c.recorder == nil {
		return
	}
	in := service.LLMUsageInput{
		Workflow:   workflow,
		Provider:   providerName,
		Model:      modelName,
		Status:     status,
		DurationMs: int(elapsed.Milliseconds()),
	}
	if usage != nil {
		in.PromptTokens = usage.PromptTokens
		in.CompletionTokens = usage.CompletionTokens
		in.TotalTokens = usage.TotalTokens
	}
	if err := c.recorder.Record(ctx, in); err != nil {
		logger.FromContext(ctx, c.log).Debug("record llm usage failed", "error", err)
	}
}

func buildParams(spec model.Spec, req *model.GenerationRequest, messages []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(spec.Name),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	params.Temperature = openai.Float(req.Temperature)
	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}
	return params
}

func convertMessages(messages []*schema.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages are empty")
	}
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			result = append(result, openai.SystemMessage(msg.Content))
		case schema.User:
			result = append(result, openai.UserMessage(msg.Content))
		case schema.Assistant:
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}
	return result, nil
}

// capturedResponse 记录上游原始状态码与错误响应体
type capturedResponse struct {
	status int
	body   []byte
}

func (cr *capturedResponse) middleware(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
	resp, err := next(req)
	if err != nil || resp == nil {
		return resp, err
	}
	cr.status = resp.StatusCode
	if resp.StatusCode != http.StatusOK && resp.Body != nil {
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr == nil {
			cr.body = body
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	return resp, nil
}

func isTimeout(callCtx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
