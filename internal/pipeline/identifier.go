package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/ppiankov/schemeqa/internal/llm"
	"github.com/ppiankov/schemeqa/internal/metrics"
	"github.com/ppiankov/schemeqa/internal/model"
)

// matchListSchema accepts a list of objects carrying string category and
// financial_scheme fields. Extra fields are ignored.
const matchListSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["category", "financial_scheme"],
    "properties": {
      "category": {"type": "string"},
      "financial_scheme": {"type": "string"}
    }
  }
}`

var matchSchema = mustSchema(matchListSchema)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile match schema: %v", err))
	}
	return schema
}

// Identifier asks the completion service which catalog schemes a question is about
type Identifier struct {
	completer llm.Completer
	provider  string
	system    string
	logger    *zap.Logger
}

// NewIdentifier renders the classification instruction for categories once
func NewIdentifier(completer llm.Completer, categories model.CategoryIndex, logger *zap.Logger) (*Identifier, error) {
	categoriesJSON, err := categories.PromptJSON()
	if err != nil {
		return nil, fmt.Errorf("serialize categories: %w", err)
	}

	system, err := render(identifyTemplate, identifyData{
		Delimiter:  Delimiter,
		Categories: categoriesJSON,
	})
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Identifier{
		completer: completer,
		provider:  llm.NameOf(completer),
		system:    system,
		logger:    logger,
	}, nil
}

// SystemPrompt returns the rendered classification instruction
func (id *Identifier) SystemPrompt() string {
	return id.system
}

// Messages builds the two-message conversation for one question
func (id *Identifier) Messages(message string) []model.Message {
	return []model.Message{
		model.SystemMessage(id.system),
		model.UserMessage(WrapUser(message)),
	}
}

// Identify returns the (category, scheme) pairs the completion service picked.
// An empty list is a valid answer.
func (id *Identifier) Identify(ctx context.Context, message string) ([]model.Match, error) {
	ctx, span := tracer.Start(ctx, "pipeline.identify")
	defer span.End()

	start := time.Now()
	resp, err := id.completer.Complete(ctx, id.Messages(message))
	metrics.CompletionDuration.WithLabelValues(StageIdentify).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CompletionsTotal.WithLabelValues(id.provider, StageIdentify, metrics.OutcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return nil, &Error{Kind: KindCompletionService, Stage: StageIdentify, Err: err}
	}

	matches, err := ParseMatches(resp.Text)
	if err != nil {
		metrics.CompletionsTotal.WithLabelValues(id.provider, StageIdentify, metrics.OutcomeParse).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparsable classification")
		id.logger.Debug("classification response unparsable",
			zap.String("raw", resp.Text),
			zap.Error(err),
		)
		return nil, &Error{Kind: KindClassificationParse, Stage: StageIdentify, Raw: resp.Text, Err: err}
	}

	metrics.CompletionsTotal.WithLabelValues(id.provider, StageIdentify, metrics.OutcomeOK).Inc()
	metrics.MatchesTotal.Add(float64(len(matches)))
	span.SetAttributes(
		attribute.Int("matches", len(matches)),
		attribute.Int("tokens", resp.TokensUsed),
	)

	return matches, nil
}

// NormalizeClassification applies the tolerated repairs to a classification
// response: surrounding whitespace is trimmed, one surrounding Markdown code
// fence (``` or ```json) is removed, and single quotes become double quotes.
// A single quote inside a scheme name is therefore turned into a stray
// double quote and the response fails to parse.
func NormalizeClassification(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimSuffix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(strings.TrimPrefix(s, "```"), "json")
		}
		s = strings.TrimSpace(s)
	}

	return strings.ReplaceAll(s, "'", `"`)
}

// ParseMatches normalizes raw and decodes it into matches, rejecting
// anything that is not a list of objects with both string fields
func ParseMatches(raw string) ([]model.Match, error) {
	doc := NormalizeClassification(raw)
	if doc == "" {
		return nil, errors.New("empty response")
	}
	if !json.Valid([]byte(doc)) {
		return nil, errors.New("response is not valid JSON")
	}

	result, err := matchSchema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate response: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("response does not match schema: %s", strings.Join(problems, "; "))
	}

	matches := []model.Match{}
	if err := json.Unmarshal([]byte(doc), &matches); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}
	return matches, nil
}
