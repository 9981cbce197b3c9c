// Package usage 记录 LLM 调用用量
package usage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"storygen-ai-api/internal/domain/service"
	"storygen-ai-api/pkg/logger"
	"storygen-ai-api/pkg/metrics"
)

// Recorder 将 LLM 用量写入 Prometheus 指标与日志，不做持久化
type Recorder struct {
	log *slog.Logger
}

// NewRecorder 创建用量记录器
func NewRecorder(log *slog.Logger) *Recorder {
	return &Recorder{log: log}
}

// Record 累加调用次数、耗时与 token 指标，成功调用输出一条 tokens used 日志
func (r *Recorder) Record(ctx context.Context, in service.LLMUsageInput) error {
	if r == nil {
		return nil
	}
	if in.PromptTokens < 0 || in.CompletionTokens < 0 || in.TotalTokens < 0 {
		return fmt.Errorf("invalid token usage")
	}

	workflow := strings.TrimSpace(in.Workflow)
	modelName := strings.TrimSpace(in.Model)
	status := in.Status
	if status == "" {
		status = "success"
	}

	metrics.LLMCallTotal.WithLabelValues(workflow, modelName, status).Inc()
	if in.DurationMs > 0 {
		metrics.LLMCallDuration.WithLabelValues(workflow, modelName).Observe(float64(in.DurationMs) / 1000)
	}
	if in.PromptTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(workflow, modelName, "prompt").Add(float64(in.PromptTokens))
	}
	if in.CompletionTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(workflow, modelName, "completion").Add(float64(in.CompletionTokens))
	}

	total := in.TotalTokens
	if total == 0 {
		total = in.PromptTokens + in.CompletionTokens
	}
	if status == "success" && total > 0 {
		logger.FromContext(ctx, r.log).Info("tokens used",
			"provider", in.Provider,
			"model", modelName,
			"workflow", workflow,
			"total", total,
			"prompt", in.PromptTokens,
			"completion", in.CompletionTokens,
		)
	}
	return nil
}
