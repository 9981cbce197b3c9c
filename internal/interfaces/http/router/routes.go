package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers) {
	v1.POST("/stories", h.Story.GenerateStory)
	v1.POST("/image-prompts", h.Story.CreateImagePrompts)

	models := v1.Group("/models")
	{
		models.GET("", h.Model.ListModels)
		models.GET("/current", h.Model.GetCurrentModel)
		models.PUT("/current", h.Model.SetCurrentModel)
		models.POST("/select", h.Model.SelectModel)
	}
}
