package service

import "context"

// LLMUsageInput 一次 chat completion 调用的用量与结果
type LLMUsageInput struct {
	Workflow string
	Provider string
	Model    string

	Status           string // success / error
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int // 上游返回的总量，缺失时为 0
	DurationMs       int
}

// LLMUsageRecorder 记录 LLM 用量，返回的错误只用于调试日志，不影响调用结果
type LLMUsageRecorder interface {
	Record(ctx context.Context, in LLMUsageInput) error
}
