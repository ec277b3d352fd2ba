// Package web answers questions from live web pages: fetch, extract visible
// text, chunk it, and ask the completion service to answer from the chunks.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/schemeqa/internal/extract"
	"github.com/ppiankov/schemeqa/internal/llm"
	"github.com/ppiankov/schemeqa/internal/metrics"
	"github.com/ppiankov/schemeqa/internal/model"
)

const maxParallelFetches = 4

// ErrNoContent is returned when none of the pages yielded any text
var ErrNoContent = errors.New("no page content available")

var groundedTemplate = template.Must(template.New("grounded").Parse(`Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.

{{range .Chunks}}{{.}}

{{end}}`))

// PageFetcher is what the answerer needs from a Fetcher
type PageFetcher interface {
	FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error)
}

// Source describes how one URL contributed to an answer
type Source struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Chunks    int    `json:"chunks"`
	Used      int    `json:"used"`
	FromCache bool   `json:"from_cache,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Answer is the result of answering from web pages
type Answer struct {
	RequestID string   `json:"request_id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Summary   []string `json:"summary"`
	Sources   []Source `json:"sources"`
}

// Options tune chunking and prompt size
type Options struct {
	ChunkSize       int
	ChunkOverlap    int
	MaxContextChars int
	SummaryLines    int
}

// OptionsFromModel maps the web section of the config
func OptionsFromModel(cfg model.WebConfig) Options {
	return Options{
		ChunkSize:       cfg.ChunkSize,
		ChunkOverlap:    cfg.ChunkOverlap,
		MaxContextChars: cfg.MaxContextChars,
		SummaryLines:    cfg.SummaryLines,
	}
}

// Answerer answers questions from a set of web pages
type Answerer struct {
	fetcher   PageFetcher
	completer llm.Completer
	splitter  *extract.Splitter
	opts      Options
	logger    *zap.Logger
}

// NewAnswerer creates an answerer
func NewAnswerer(fetcher PageFetcher, completer llm.Completer, opts Options, logger *zap.Logger) *Answerer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = 12000
	}
	if opts.SummaryLines <= 0 {
		opts.SummaryLines = 3
	}
	return &Answerer{
		fetcher:   fetcher,
		completer: completer,
		splitter:  extract.NewSplitter(opts.ChunkSize, opts.ChunkOverlap),
		opts:      opts,
		logger:    logger,
	}
}

type page struct {
	chunks []string
}

// Ask fetches every URL concurrently and answers the question from their
// text. Pages that fail are reported in Sources; the call fails only when
// no page produced any text.
func (a *Answerer) Ask(ctx context.Context, question string, urls []string) (*Answer, error) {
	if len(urls) == 0 {
		return nil, errors.New("no URLs to answer from")
	}

	ans := &Answer{
		RequestID: uuid.NewString(),
		Question:  question,
		Sources:   make([]Source, len(urls)),
	}
	log := a.logger.With(zap.String("request_id", ans.RequestID))
	pages := make([]page, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, u := range urls {
		g.Go(func() error {
			ans.Sources[i].URL = u
			res, err := a.fetcher.FetchWithRetry(gctx, u)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Warn("page fetch failed", zap.String("url", u), zap.Error(err))
				ans.Sources[i].Error = err.Error()
				return nil
			}
			ans.Sources[i].FromCache = res.FromCache

			parsed, err := extract.ParseString(res.HTML)
			if err != nil {
				ans.Sources[i].Error = fmt.Sprintf("parse html: %v", err)
				return nil
			}
			ans.Sources[i].Title = parsed.Title
			pages[i].chunks = a.splitter.Split(parsed.Text)
			ans.Sources[i].Chunks = len(pages[i].chunks)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	chunks := a.stuff(pages, ans.Sources)
	if len(chunks) == 0 {
		return nil, ErrNoContent
	}
	log.Debug("context assembled", zap.Int("chunks", len(chunks)), zap.Int("pages", len(urls)))

	var buf bytes.Buffer
	if err := groundedTemplate.Execute(&buf, struct{ Chunks []string }{chunks}); err != nil {
		return nil, fmt.Errorf("render grounded prompt: %w", err)
	}

	messages := []model.Message{
		model.SystemMessage(strings.TrimSpace(buf.String())),
		model.UserMessage(fmt.Sprintf("Question: %s\nHelpful Answer:", question)),
	}

	start := time.Now()
	resp, err := a.completer.Complete(ctx, messages)
	metrics.CompletionDuration.WithLabelValues("web").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CompletionsTotal.WithLabelValues(llm.NameOf(a.completer), "web", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("web answer completion: %w", err)
	}
	metrics.CompletionsTotal.WithLabelValues(llm.NameOf(a.completer), "web", metrics.OutcomeOK).Inc()

	ans.Answer = strings.TrimSpace(resp.Text)
	ans.Summary = Summary(ans.Answer, a.opts.SummaryLines)
	return ans, nil
}

// stuff takes chunks in page order until the context budget, counted in
// characters, is spent
func (a *Answerer) stuff(pages []page, sources []Source) []string {
	var out []string
	total := 0
	for i, p := range pages {
		for _, chunk := range p.chunks {
			n := utf8.RuneCountInString(chunk)
			if total+n > a.opts.MaxContextChars {
				return out
			}
			out = append(out, chunk)
			total += n
			sources[i].Used++
		}
	}
	return out
}

// Summary returns the first n non-empty lines of text
func Summary(text string, n int) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if len(lines) == n {
			break
		}
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
