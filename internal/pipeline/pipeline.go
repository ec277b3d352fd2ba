// Package pipeline answers financial-assistance questions in three stages:
// identify the relevant schemes, resolve their catalog records, and generate
// an answer grounded on those records.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ppiankov/schemeqa/internal/llm"
	"github.com/ppiankov/schemeqa/internal/metrics"
	"github.com/ppiankov/schemeqa/internal/model"
)

var tracer = otel.Tracer("schemeqa/pipeline")

// User-facing fallbacks used by Answer
const (
	MsgIdentifyUnavailable = "Sorry, I was unable to identify relevant schemes for your question right now."
	MsgGenerationFailed    = "Sorry, I could not generate an answer right now. Please try again later."
)

// Catalog is what the pipeline reads from the scheme catalog
type Catalog interface {
	Lookup
	Categories() model.CategoryIndex
}

// Pipeline runs identify, resolve and generate for each question
type Pipeline struct {
	identifier *Identifier
	resolver   *Resolver
	generator  *Generator
	logger     *zap.Logger
}

// New wires the three stages around one completer and catalog
func New(completer llm.Completer, catalog Catalog, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	identifier, err := NewIdentifier(completer, catalog.Categories(), logger)
	if err != nil {
		return nil, fmt.Errorf("build identifier: %w", err)
	}

	return &Pipeline{
		identifier: identifier,
		resolver:   NewResolver(catalog, logger),
		generator:  NewGenerator(completer, logger),
		logger:     logger,
	}, nil
}

// Process answers one question. Every call makes two completion calls, the
// second only after the first succeeds. Errors are *Error values and are
// returned as-is.
func (p *Pipeline) Process(ctx context.Context, message string) (*model.Result, error) {
	res := &model.Result{RequestID: uuid.NewString(), Question: message}
	log := p.logger.With(zap.String("request_id", res.RequestID))

	ctx, span := tracer.Start(ctx, "pipeline.process")
	defer span.End()
	span.SetAttributes(attribute.String("request_id", res.RequestID))

	start := time.Now()
	err := p.run(ctx, log, res, false)
	p.finish(span, log, start, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Answer is Process for interactive callers: failures become a fallback
// answer with Degraded set instead of an error. An unparsable classification
// is treated as "no schemes" and generation still runs.
func (p *Pipeline) Answer(ctx context.Context, message string) *model.Result {
	res := &model.Result{RequestID: uuid.NewString(), Question: message}
	log := p.logger.With(zap.String("request_id", res.RequestID))

	ctx, span := tracer.Start(ctx, "pipeline.answer")
	defer span.End()
	span.SetAttributes(attribute.String("request_id", res.RequestID))

	start := time.Now()
	err := p.run(ctx, log, res, true)
	p.finish(span, log, start, err)
	if err == nil {
		return res
	}

	res.Degraded = true
	res.Error = err.Error()

	var pe *Error
	if errors.As(err, &pe) && pe.Stage == StageIdentify {
		res.Answer = MsgIdentifyUnavailable
	} else {
		res.Answer = MsgGenerationFailed
	}
	return res
}

func (p *Pipeline) run(ctx context.Context, log *zap.Logger, res *model.Result, tolerateParse bool) error {
	matches, err := p.identifier.Identify(ctx, res.Question)
	if err != nil {
		if !tolerateParse || !errors.Is(err, ErrClassificationParse) {
			return err
		}
		log.Warn("classification unparsable, continuing without schemes", zap.Error(err))
		res.Degraded = true
		matches = []model.Match{}
	}
	res.Matches = matches

	res.Details = p.resolver.Resolve(matches)
	log.Debug("schemes resolved",
		zap.Int("matches", len(matches)),
		zap.Int("details", len(res.Details)),
	)

	answer, err := p.generator.Generate(ctx, res.Question, res.Details)
	if err != nil {
		return err
	}
	res.Answer = answer
	return nil
}

func (p *Pipeline) finish(span trace.Span, log *zap.Logger, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("question failed", zap.Error(err), zap.Duration("elapsed", elapsed))
	} else {
		log.Info("question answered", zap.Duration("elapsed", elapsed))
	}
	metrics.PipelineDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
