package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"storygen-ai-api/internal/application/story"
	"storygen-ai-api/internal/interfaces/http/dto"
	"storygen-ai-api/pkg/logger"
)

// ModelHandler 模型管理处理器
type ModelHandler struct {
	svc *story.Service
	log *slog.Logger
}

// NewModelHandler 创建模型管理处理器
func NewModelHandler(svc *story.Service, log *slog.Logger) *ModelHandler {
	return &ModelHandler{svc: svc, log: log}
}

// ListModels 列出可用模型
// @Summary 列出可用模型
// @Tags Models
// @Produce json
// @Success 200 {object} dto.Response[story.ModelCatalog]
// @Router /v1/models [get]
func (h *ModelHandler) ListModels(c *gin.Context) {
	dto.Success(c, h.svc.ListAvailableModels())
}

// GetCurrentModel 当前模型信息
// @Summary 当前模型信息
// @Tags Models
// @Produce json
// @Success 200 {object} dto.Response[story.ModelInfo]
// @Router /v1/models/current [get]
func (h *ModelHandler) GetCurrentModel(c *gin.Context) {
	dto.Success(c, h.svc.GetModelInfo())
}

// SetCurrentModel 切换模型，目标模型需通过一次探测
// @Summary 切换模型
// @Tags Models
// @Accept json
// @Produce json
// @Param body body dto.SetModelRequest true "模型名称"
// @Success 200 {object} dto.Response[story.ModelInfo]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/models/current [put]
func (h *ModelHandler) SetCurrentModel(c *gin.Context) {
	var req dto.SetModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if _, err := h.svc.SetModel(c.Request.Context(), req.Model); err != nil {
		dto.FromError(c, err)
		return
	}
	dto.Success(c, h.svc.GetModelInfo())
}

// SelectModel 重新探测并选择第一个可用模型
// @Summary 重新选择模型
// @Tags Models
// @Produce json
// @Success 200 {object} dto.Response[story.ModelInfo]
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/models/select [post]
func (h *ModelHandler) SelectModel(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.svc.SelectWorkingModel(ctx); err != nil {
		logger.Error(ctx, h.log, "model selection failed", err)
		dto.FromError(c, err)
		return
	}
	dto.Success(c, h.svc.GetModelInfo())
}
