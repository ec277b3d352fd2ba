package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/schemeqa/internal/model"
)

var errNotRun = errors.New("question was not processed")

// Answerer answers one question, degrading instead of failing
type Answerer interface {
	Answer(ctx context.Context, question string) *model.Result
}

// AskJob answers a single question. Index is its position in the batch.
type AskJob struct {
	Index    int
	Question string
	Answerer Answerer
}

// Execute executes the ask job
func (j *AskJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &AskResult{Index: j.Index, Question: j.Question, Error: err}
	}
	res := j.Answerer.Answer(ctx, j.Question)
	out := &AskResult{Index: j.Index, Question: j.Question, Result: res}
	if res != nil && res.Error != "" {
		out.Error = errors.New(res.Error)
	}
	return out
}

// AskResult represents the result of an ask job
type AskResult struct {
	Index    int
	Question string
	Result   *model.Result
	Error    error
}

// GetError returns the error from the ask result
func (r *AskResult) GetError() error {
	return r.Error
}

// BatchProcessor answers many questions concurrently
type BatchProcessor struct {
	answerer    Answerer
	concurrency int
	progress    func(done, total int)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(answerer Answerer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		answerer:    answerer,
		concurrency: concurrency,
	}
}

// WithProgress registers a callback invoked after each finished question
func (b *BatchProcessor) WithProgress(fn func(done, total int)) *BatchProcessor {
	b.progress = fn
	return b
}

// ProcessQuestions answers the questions on the worker pool. There is one
// result per question, in input order; questions the pool never ran
// because ctx ended carry ctx's error.
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string) []*AskResult {
	if len(questions) == 0 {
		return []*AskResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	if b.progress != nil {
		finished := 0
		total := len(questions)
		pool.OnResult(func(Result) {
			finished++
			b.progress(finished, total)
		})
	}
	pool.Start()

	for i, q := range questions {
		if !pool.Submit(&AskJob{Index: i, Question: q, Answerer: b.answerer}) {
			break
		}
	}

	askResults := make([]*AskResult, len(questions))
	for _, result := range pool.Wait() {
		r := result.(*AskResult)
		askResults[r.Index] = r
	}

	for i, r := range askResults {
		if r != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = errNotRun
		}
		askResults[i] = &AskResult{Index: i, Question: questions[i], Error: err}
	}
	return askResults
}

// ProcessFile reads questions from a file and answers them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AskResult, error) {
	questions, err := ReadQuestionsFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	return b.ProcessQuestions(ctx, questions), nil
}

// ReadQuestionsFile reads questions from a file (one per line)
func ReadQuestionsFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadQuestions(file)
}

// ReadQuestions reads one question per line, skipping blank lines and
// # comments and dropping exact duplicates
func ReadQuestions(r io.Reader) ([]string, error) {
	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return questions, nil
}
