package dto

// GenerateStoryRequest 生成故事请求
type GenerateStoryRequest struct {
	Prompt string `json:"prompt" binding:"required,max=4000"`
	// Model 可选，仅本次生成使用该模型，不改变服务的当前模型
	Model string `json:"model,omitempty"`
}

// ImagePromptRequest 图像提示词请求
type ImagePromptRequest struct {
	CharacterDescription  string `json:"character_description"`
	BackgroundDescription string `json:"background_description"`
}

// SetModelRequest 切换模型请求
type SetModelRequest struct {
	Model string `json:"model" binding:"required"`
}
