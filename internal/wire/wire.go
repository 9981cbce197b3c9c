//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"log/slog"

	"github.com/google/wire"

	"storygen-ai-api/internal/application/story"
	"storygen-ai-api/internal/application/usage"
	"storygen-ai-api/internal/config"
	"storygen-ai-api/internal/domain/service"
	"storygen-ai-api/internal/infrastructure/groq"
	"storygen-ai-api/internal/interfaces/http/handler"
	"storygen-ai-api/internal/interfaces/http/router"
	"storygen-ai-api/internal/workflow/prompt"
)

// BackendSet LLM 后端提供者集合
var BackendSet = wire.NewSet(
	usage.NewRecorder,
	wire.Bind(new(service.LLMUsageRecorder), new(*usage.Recorder)),
	ProvideGroqClient,
	wire.Bind(new(story.Completer), new(*groq.Client)),
)

// StorySet 故事生成服务提供者集合
var StorySet = wire.NewSet(
	BackendSet,
	prompt.NewRegistry,
	ProvideNormalizer,
	ProvidePromptComposer,
	ProvideStoryOptions,
	ProvideStoryService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewStoryHandler,
	handler.NewModelHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// InitializeStoryService 仅初始化故事生成服务（用于 CLI）
func InitializeStoryService(cfg *config.Config, log *slog.Logger) (*story.Service, error) {
	wire.Build(StorySet)
	return nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(cfg *config.Config, log *slog.Logger) (*App, error) {
	wire.Build(
		StorySet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
