// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storygen-ai-api/internal/application/story"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	svc     *story.Service
	version string
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(svc *story.Service, version string) *HealthHandler {
	return &HealthHandler{svc: svc, version: version}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessResponse struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
	Tier   string `json:"tier,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Ready 就绪检查接口，只有在模型探测成功后才就绪
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "not_ready"})
		return
	}
	spec, selected := h.svc.CurrentModel()
	if !selected {
		c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "not_ready"})
		return
	}
	c.JSON(http.StatusOK, readinessResponse{
		Status: "ok",
		Model:  spec.Name,
		Tier:   spec.Tier.String(),
	})
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
