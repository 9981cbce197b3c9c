package handler

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"storygen-ai-api/internal/application/story"
	"storygen-ai-api/internal/interfaces/http/dto"
	"storygen-ai-api/pkg/logger"
)

// StoryHandler 故事生成处理器
type StoryHandler struct {
	svc *story.Service
	log *slog.Logger
}

// NewStoryHandler 创建故事生成处理器
func NewStoryHandler(svc *story.Service, log *slog.Logger) *StoryHandler {
	return &StoryHandler{svc: svc, log: log}
}

// GenerateStory 生成故事及角色、背景描述
// @Summary 生成故事
// @Description 依次生成故事、角色描述与背景描述，并附带图像提示词
// @Tags Stories
// @Accept json
// @Produce json
// @Param body body dto.GenerateStoryRequest true "生成参数"
// @Success 200 {object} dto.Response[story.StoryResult]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/stories [post]
func (h *StoryHandler) GenerateStory(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	var (
		result *story.StoryResult
		err    error
	)
	if name := strings.TrimSpace(req.Model); name != "" {
		result, err = h.svc.GenerateStoryWithModel(ctx, req.Prompt, name)
	} else {
		result, err = h.svc.GenerateStoryAndDescriptions(ctx, req.Prompt)
	}
	if err != nil {
		logger.Error(ctx, h.log, "failed to generate story", err)
		dto.FromError(c, err)
		return
	}

	dto.Success(c, storyResponse{
		StoryResult:  result,
		ImagePrompts: h.svc.CreateImagePrompts(result.CharacterDescription, result.BackgroundDescription),
	})
}

// CreateImagePrompts 由描述文本生成图像提示词
// @Summary 生成图像提示词
// @Tags Stories
// @Accept json
// @Produce json
// @Param body body dto.ImagePromptRequest true "描述文本"
// @Success 200 {object} dto.Response[story.ImagePrompts]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/image-prompts [post]
func (h *StoryHandler) CreateImagePrompts(c *gin.Context) {
	var req dto.ImagePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.CharacterDescription) == "" && strings.TrimSpace(req.BackgroundDescription) == "" {
		dto.BadRequest(c, "character_description or background_description is required")
		return
	}

	dto.Success(c, h.svc.CreateImagePrompts(req.CharacterDescription, req.BackgroundDescription))
}

type storyResponse struct {
	*story.StoryResult
	ImagePrompts story.ImagePrompts `json:"image_prompts"`
}
