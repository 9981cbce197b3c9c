package story

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"storygen-ai-api/internal/domain/model"
	"storygen-ai-api/internal/domain/service"
	"storygen-ai-api/internal/workflow/prompt"
	apperrors "storygen-ai-api/pkg/errors"
	"storygen-ai-api/pkg/logger"
	"storygen-ai-api/pkg/metrics"
	"storygen-ai-api/pkg/tracer"
)

const providerDisplayName = "Groq"

// Completer 定义应用层对 LLM 后端的最小依赖（port）。
// 由基础设施层提供具体实现（例如 groq.Client）。
type Completer interface {
	Complete(ctx context.Context, apiKey string, req *model.GenerationRequest) (*model.GenerationResult, error)
}

// Options 生成参数
type Options struct {
	Temperature         float64
	TopP                float64
	MaxTokens           int
	ProbeMaxTokens      int
	ProbePrompt         string
	SetModelProbePrompt string
}

// DefaultOptions 返回默认生成参数
func DefaultOptions() Options {
	return Options{
		Temperature:         0.8,
		TopP:                0.9,
		MaxTokens:           1000,
		ProbeMaxTokens:      10,
		ProbePrompt:         "Test connection",
		SetModelProbePrompt: "Test",
	}
}

// StoryResult 一次完整生成的结果
type StoryResult struct {
	Story                 string     `json:"story"`
	CharacterDescription  string     `json:"character_description"`
	BackgroundDescription string     `json:"background_description"`
	ModelUsed             string     `json:"model_used"`
	ModelInfo             model.Spec `json:"groq_model_info"`
}

// ModelCatalog 可用模型列表
type ModelCatalog struct {
	Production map[string]model.Spec `json:"production_models"`
	Preview    map[string]model.Spec `json:"preview_models"`
	Current    string                `json:"current_model"`
}

// ModelInfo 当前模型信息
type ModelInfo struct {
	Provider  string     `json:"provider"`
	Model     string     `json:"model"`
	ModelType string     `json:"model_type"`
	Specs     model.Spec `json:"specs"`
	APIStatus string     `json:"api_status"`
}

// Service 故事生成服务，持有 API Key 与当前模型。
// current 只会被模型探测或 SetModel 修改，并始终是注册表中的模型。
type Service struct {
	apiKey     string
	completer  Completer
	prompts    *prompt.Registry
	normalizer *Normalizer
	composer   *PromptComposer
	opts       Options
	candidates []model.ID
	log        *slog.Logger

	mu       sync.RWMutex
	current  model.ID
	selected bool

	probeGroup singleflight.Group
}

// NewService 创建故事生成服务
func NewService(
	apiKey string,
	completer Completer,
	prompts *prompt.Registry,
	normalizer *Normalizer,
	composer *PromptComposer,
	opts Options,
	log *slog.Logger,
) (*Service, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperrors.Configuration(
			"groq api key is required: pass it explicitly or set GROQ_API_KEY (get one at https://console.groq.com/)")
	}
	if completer == nil {
		return nil, apperrors.Configuration("llm backend not configured")
	}
	if prompts == nil {
		prompts = prompt.NewRegistry()
	}
	if normalizer == nil {
		normalizer = NewNormalizer(NormalizerConfig{})
	}
	if composer == nil {
		composer = NewPromptComposer(0)
	}
	if log == nil {
		log = logger.Discard()
	}

	return &Service{
		apiKey:     apiKey,
		completer:  completer,
		prompts:    prompts,
		normalizer: normalizer,
		composer:   composer,
		opts:       opts,
		candidates: model.Candidates(),
		log:        log,
		current:    model.Default,
	}, nil
}

// CurrentModel 返回当前模型，以及它是否已经通过探测
func (s *Service) CurrentModel() (model.Spec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.MustLookup(s.current), s.selected
}

// GenerateStoryAndDescriptions 依次生成故事、角色描述、背景描述。
// 后两步都以清洗后的故事文本为输入；任一步失败立即返回该错误，不返回部分结果。
// 模型在开始时读取一次，三次调用使用同一个模型。
func (s *Service) GenerateStoryAndDescriptions(ctx context.Context, userPrompt string) (*StoryResult, error) {
	spec, _ := s.CurrentModel()
	return s.generateAll(ctx, userPrompt, spec)
}

// GenerateStoryWithModel 使用指定模型完成一次生成，不修改当前模型
func (s *Service) GenerateStoryWithModel(ctx context.Context, userPrompt, modelName string) (*StoryResult, error) {
	id, ok := model.Parse(modelName)
	if !ok {
		return nil, unknownModel(modelName)
	}
	return s.generateAll(ctx, userPrompt, model.MustLookup(id))
}

func (s *Service) generateAll(ctx context.Context, userPrompt string, spec model.Spec) (*StoryResult, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return nil, apperrors.Validation("prompt is required")
	}

	ctx = logger.WithContext(ctx, logger.ModelKey, spec.Name)
	log := logger.FromContext(ctx, s.log)

	ctx, span := tracer.StartLLM(ctx, "story.generate", providerDisplayName, spec.Name, "")
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		metrics.StoryGenerationTotal.WithLabelValues(spec.Name, status).Inc()
		metrics.StoryGenerationDuration.WithLabelValues(spec.Name).Observe(time.Since(start).Seconds())
	}()

	log.Info("starting story generation")

	story, err := s.generate(ctx, spec.ID, service.WorkflowStory, prompt.PromptStoryV1, map[string]any{
		"user_prompt": userPrompt,
	})
	if err != nil {
		logger.Error(ctx, s.log, "story generation failed", err)
		tracer.Fail(span, err)
		return nil, err
	}
	log.Info("story generated")

	vars := map[string]any{"story": story}

	character, err := s.generate(ctx, spec.ID, service.WorkflowCharacter, prompt.PromptCharacterV1, vars)
	if err != nil {
		logger.Error(ctx, s.log, "character description generation failed", err)
		tracer.Fail(span, err)
		return nil, err
	}
	log.Info("character description generated")

	background, err := s.generate(ctx, spec.ID, service.WorkflowBackground, prompt.PromptBackgroundV1, vars)
	if err != nil {
		logger.Error(ctx, s.log, "background description generation failed", err)
		tracer.Fail(span, err)
		return nil, err
	}
	log.Info("background description generated")

	status = "success"
	metrics.StoryWordCount.Observe(float64(len(strings.Fields(story))))

	return &StoryResult{
		Story:                 story,
		CharacterDescription:  character,
		BackgroundDescription: background,
		ModelUsed:             "groq-" + spec.Name,
		ModelInfo:             spec,
	}, nil
}

func (s *Service) generate(ctx context.Context, id model.ID, workflow string, promptID prompt.PromptID, vars map[string]any) (string, error) {
	ctx = service.WithWorkflow(ctx, workflow)

	msgs, err := s.prompts.Format(ctx, promptID, vars)
	if err != nil {
		return "", err
	}

	res, err := s.completer.Complete(ctx, s.apiKey, &model.GenerationRequest{
		Model:       id,
		Messages:    msgs,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
		TopP:        s.opts.TopP,
	})
	if err != nil {
		return "", err
	}
	return s.normalizer.Normalize(res.Text), nil
}

// ListAvailableModels 按分级列出注册表中的模型
func (s *Service) ListAvailableModels() ModelCatalog {
	current, _ := s.CurrentModel()
	catalog := ModelCatalog{
		Production: make(map[string]model.Spec),
		Preview:    make(map[string]model.Spec),
		Current:    current.Name,
	}
	for _, spec := range model.All() {
		if spec.Tier == model.TierProduction {
			catalog.Production[spec.Name] = spec
		} else {
			catalog.Preview[spec.Name] = spec
		}
	}
	return catalog
}

// GetModelInfo 返回当前模型信息
func (s *Service) GetModelInfo() ModelInfo {
	current, _ := s.CurrentModel()
	return ModelInfo{
		Provider:  providerDisplayName,
		Model:     current.Name,
		ModelType: current.Tier.String(),
		Specs:     current,
		APIStatus: "active",
	}
}

// CreateImagePrompts 由角色与背景描述生成图像提示词
func (s *Service) CreateImagePrompts(characterDesc, backgroundDesc string) ImagePrompts {
	return s.composer.CreateImagePrompts(characterDesc, backgroundDesc)
}
