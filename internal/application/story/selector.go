package story

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"storygen-ai-api/internal/domain/model"
	"storygen-ai-api/internal/domain/service"
	"storygen-ai-api/internal/workflow/prompt"
	apperrors "storygen-ai-api/pkg/errors"
	"storygen-ai-api/pkg/logger"
	"storygen-ai-api/pkg/metrics"
)

const selectKey = "select"

// SelectWorkingModel 按优先级依次探测候选模型（先 Production 后 Preview），
// 第一个返回非空内容的模型成为当前模型。全部失败时当前模型保持不变。
// 并发调用会合并为一次探测；共享的探测不随单个调用方取消，调用方取消时只有它自己提前返回。
func (s *Service) SelectWorkingModel(ctx context.Context) (model.Spec, error) {
	ch := s.probeGroup.DoChan(selectKey, func() (any, error) {
		return s.selectWorkingModel(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return model.Spec{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.Spec{}, res.Err
		}
		return res.Val.(model.Spec), nil
	}
}

func (s *Service) selectWorkingModel(ctx context.Context) (model.Spec, error) {
	log := logger.FromContext(ctx, s.log)

	tried := make([]string, 0, len(s.candidates))
	var lastErr error
	for _, id := range s.candidates {
		spec := model.MustLookup(id)
		tried = append(tried, spec.Name)

		if err := s.probe(ctx, id, s.opts.ProbePrompt); err != nil {
			log.Warn("model probe failed", "model", spec.Name, "error", err)
			lastErr = err
			if ctxErr := ctx.Err(); ctxErr != nil {
				return model.Spec{}, ctxErr
			}
			continue
		}

		s.commit(id)
		log.Info("groq api connected", "model", spec.Name, "tier", spec.Tier.String())
		log.Info("model specs", "model", spec.Name, "description", spec.Description)
		if spec.Tier == model.TierPreview {
			log.Warn("using preview model, not recommended for production use", "model", spec.Name)
		}
		return spec, nil
	}

	return model.Spec{}, apperrors.AllModelsUnavailable(tried, lastErr)
}

// SetModel 手动切换模型。目标模型先经过一次探测，失败时当前模型保持不变。
func (s *Service) SetModel(ctx context.Context, name string) (model.Spec, error) {
	id, ok := model.Parse(name)
	if !ok {
		return model.Spec{}, unknownModel(name)
	}
	spec := model.MustLookup(id)

	if err := s.probe(ctx, id, s.opts.SetModelProbePrompt); err != nil {
		logger.Error(ctx, s.log, "failed to set model", err, "model", spec.Name)
		return model.Spec{}, apperrors.ModelUnavailable(spec.Name, err)
	}

	s.commit(id)
	logger.FromContext(ctx, s.log).Info("switched model", "model", spec.Name)
	return spec, nil
}

// probe 发送一次最小请求，空响应视为失败
func (s *Service) probe(ctx context.Context, id model.ID, text string) error {
	spec := model.MustLookup(id)
	ctx = service.WithWorkflow(ctx, service.WorkflowProbe)

	system, err := prompt.SystemPrompt()
	if err != nil {
		return err
	}

	res, err := s.completer.Complete(ctx, s.apiKey, &model.GenerationRequest{
		Model:       id,
		Messages:    []*schema.Message{schema.SystemMessage(system), schema.UserMessage(text)},
		MaxTokens:   s.opts.ProbeMaxTokens,
		Temperature: spec.DefaultTemperature,
		TopP:        s.opts.TopP,
	})
	if err == nil && (res == nil || res.Text == "") {
		err = fmt.Errorf("model %s returned an empty response", spec.Name)
	}
	if err != nil {
		metrics.ModelProbeTotal.WithLabelValues(spec.Name, "error").Inc()
		return err
	}
	metrics.ModelProbeTotal.WithLabelValues(spec.Name, "success").Inc()
	return nil
}

func (s *Service) commit(id model.ID) {
	s.mu.Lock()
	prev := model.MustLookup(s.current)
	s.current = id
	s.selected = true
	s.mu.Unlock()

	next := model.MustLookup(id)
	metrics.CurrentModel.WithLabelValues(prev.Name, prev.Tier.String()).Set(0)
	metrics.CurrentModel.WithLabelValues(next.Name, next.Tier.String()).Set(1)
}

func unknownModel(name string) error {
	return apperrors.Validation(fmt.Sprintf("model %s not available, choose from: %v", name, model.Names()))
}
