package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/ppiankov/schemeqa/internal/llm"
	"github.com/ppiankov/schemeqa/internal/metrics"
	"github.com/ppiankov/schemeqa/internal/model"
)

// Generator composes the customer-facing answer from resolved scheme records
type Generator struct {
	completer llm.Completer
	provider  string
	logger    *zap.Logger
}

// NewGenerator creates a generator
func NewGenerator(completer llm.Completer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{completer: completer, provider: llm.NameOf(completer), logger: logger}
}

// Messages builds the step-structured conversation embedding details verbatim
func (g *Generator) Messages(message string, details []model.SchemeRecord) ([]model.Message, error) {
	detailsJSON, err := model.DetailsJSON(details)
	if err != nil {
		return nil, fmt.Errorf("serialize scheme details: %w", err)
	}

	system, err := render(generateTemplate, generateData{
		Delimiter: Delimiter,
		Details:   detailsJSON,
	})
	if err != nil {
		return nil, err
	}

	return []model.Message{
		model.SystemMessage(system),
		model.UserMessage(WrapUser(message)),
	}, nil
}

// Generate asks the completion service for a step-structured answer and
// returns its final step. It does not retry.
func (g *Generator) Generate(ctx context.Context, message string, details []model.SchemeRecord) (string, error) {
	ctx, span := tracer.Start(ctx, "pipeline.generate")
	defer span.End()
	span.SetAttributes(attribute.Int("details", len(details)))

	messages, err := g.Messages(message, details)
	if err != nil {
		return "", &Error{Kind: KindGenerationFailed, Stage: StageGenerate, Err: err}
	}

	start := time.Now()
	resp, err := g.completer.Complete(ctx, messages)
	metrics.CompletionDuration.WithLabelValues(StageGenerate).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CompletionsTotal.WithLabelValues(g.provider, StageGenerate, metrics.OutcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", &Error{
			Kind:  KindGenerationFailed,
			Stage: StageGenerate,
			Err:   &Error{Kind: KindCompletionService, Stage: StageGenerate, Err: err},
		}
	}

	answer := FinalStep(resp.Text)
	if answer == "" {
		metrics.CompletionsTotal.WithLabelValues(g.provider, StageGenerate, metrics.OutcomeParse).Inc()
		err := errors.New("final step is empty")
		span.SetStatus(codes.Error, err.Error())
		g.logger.Debug("empty final step", zap.String("raw", resp.Text))
		return "", &Error{Kind: KindGenerationFailed, Stage: StageGenerate, Raw: resp.Text, Err: err}
	}

	metrics.CompletionsTotal.WithLabelValues(g.provider, StageGenerate, metrics.OutcomeOK).Inc()
	span.SetAttributes(attribute.Int("tokens", resp.TokensUsed))
	return answer, nil
}
