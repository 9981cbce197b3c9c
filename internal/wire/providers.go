package wire

import (
	"log/slog"

	"storygen-ai-api/internal/application/story"
	"storygen-ai-api/internal/config"
	"storygen-ai-api/internal/domain/service"
	"storygen-ai-api/internal/infrastructure/groq"
	"storygen-ai-api/internal/interfaces/http/handler"
	"storygen-ai-api/internal/interfaces/http/router"
	"storygen-ai-api/internal/workflow/prompt"
)

// App HTTP 应用依赖容器
type App struct {
	Router  *router.Router
	Service *story.Service
}

// ProvideGroqClient 提供 Groq 客户端
func ProvideGroqClient(cfg *config.Config, recorder service.LLMUsageRecorder, log *slog.Logger) *groq.Client {
	return groq.NewClient(groq.Config{
		BaseURL:          cfg.Groq.BaseURL,
		Timeout:          cfg.Groq.Timeout,
		RateLimitBackoff: cfg.Groq.RateLimitBackoff,
	}, recorder, log)
}

// ProvideNormalizer 提供文本清洗器
func ProvideNormalizer(cfg *config.Config) *story.Normalizer {
	return story.NewNormalizer(story.NormalizerConfig{
		SimilarityThreshold: cfg.Normalizer.SimilarityThreshold,
		Window:              cfg.Normalizer.Window,
		MinSentenceLength:   cfg.Normalizer.MinSentenceLength,
	})
}

// ProvidePromptComposer 提供图像提示词组装器
func ProvidePromptComposer(cfg *config.Config) *story.PromptComposer {
	return story.NewPromptComposer(cfg.ImagePrompt.MaxLength)
}

// ProvideStoryOptions 由配置生成参数。temperature 为 0 是合法值，原样使用；
// 其余字段为 0 时回落到默认生成参数
func ProvideStoryOptions(cfg *config.Config) story.Options {
	opts := story.DefaultOptions()
	opts.Temperature = cfg.Groq.Temperature
	if cfg.Groq.TopP > 0 {
		opts.TopP = cfg.Groq.TopP
	}
	if cfg.Groq.MaxTokens > 0 {
		opts.MaxTokens = cfg.Groq.MaxTokens
	}
	if cfg.Groq.ProbeMaxTokens > 0 {
		opts.ProbeMaxTokens = cfg.Groq.ProbeMaxTokens
	}
	return opts
}

// ProvideStoryService 提供故事生成服务
func ProvideStoryService(
	cfg *config.Config,
	completer story.Completer,
	prompts *prompt.Registry,
	normalizer *story.Normalizer,
	composer *story.PromptComposer,
	opts story.Options,
	log *slog.Logger,
) (*story.Service, error) {
	return story.NewService(cfg.Groq.APIKey, completer, prompts, normalizer, composer, opts, log)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, svc *story.Service) *handler.HealthHandler {
	return handler.NewHealthHandler(svc, cfg.App.Version)
}
