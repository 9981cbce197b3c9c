package model

import "github.com/cloudwego/eino/schema"

// GenerationRequest 单次 chat completion 请求
type GenerationRequest struct {
	Model       ID
	Messages    []*schema.Message
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// TokenUsage Token 用量
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerationResult 单次 chat completion 结果
type GenerationResult struct {
	Text  string
	Usage *TokenUsage
}
