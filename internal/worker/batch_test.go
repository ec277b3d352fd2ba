package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/schemeqa/internal/model"
)

// mockAnswerer implements Answerer
type mockAnswerer struct {
	mu      sync.Mutex
	asked   []string
	degrade map[string]bool
}

func (m *mockAnswerer) Answer(ctx context.Context, question string) *model.Result {
	time.Sleep(5 * time.Millisecond)
	m.mu.Lock()
	m.asked = append(m.asked, question)
	m.mu.Unlock()

	res := &model.Result{Question: question, Answer: "answer to " + question}
	if m.degrade[question] {
		res.Degraded = true
		res.Error = "completion service unavailable"
	}
	return res
}

func TestBatchProcessor_ProcessQuestions(t *testing.T) {
	answerer := &mockAnswerer{}
	processor := NewBatchProcessor(answerer, 2)

	questions := []string{"What grants exist?", "Can I get a loan?", "Is there a bursary?"}
	results := processor.ProcessQuestions(context.Background(), questions)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Question != questions[i] {
			t.Errorf("result %d: expected question %q, got %q", i, questions[i], res.Question)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %q: %v", res.Question, res.Error)
		}
		if res.Result == nil || res.Result.Answer != "answer to "+questions[i] {
			t.Errorf("unexpected result for %q: %+v", res.Question, res.Result)
		}
	}
}

func TestBatchProcessor_DegradedAnswer(t *testing.T) {
	answerer := &mockAnswerer{degrade: map[string]bool{"bad": true}}
	results := NewBatchProcessor(answerer, 2).ProcessQuestions(context.Background(), []string{"good", "bad"})

	if results[0].GetError() != nil {
		t.Errorf("expected no error for good question, got %v", results[0].GetError())
	}
	if results[1].GetError() == nil {
		t.Error("expected error for degraded answer")
	}
	if results[1].Result == nil || !results[1].Result.Degraded {
		t.Error("expected degraded result to be kept")
	}
}

func TestBatchProcessor_Progress(t *testing.T) {
	var calls []int
	processor := NewBatchProcessor(&mockAnswerer{}, 3).WithProgress(func(done, total int) {
		if total != 4 {
			t.Errorf("expected total 4, got %d", total)
		}
		calls = append(calls, done)
	})

	processor.ProcessQuestions(context.Background(), []string{"a", "b", "c", "d"})

	if len(calls) != 4 || calls[3] != 4 {
		t.Errorf("unexpected progress calls: %v", calls)
	}
}

func TestBatchProcessor_ProcessQuestions_Empty(t *testing.T) {
	results := NewBatchProcessor(&mockAnswerer{}, 2).ProcessQuestions(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	answerer := &mockAnswerer{}
	questions := []string{"a", "b"}
	results := NewBatchProcessor(answerer, 2).ProcessQuestions(ctx, questions)
	if len(results) != len(questions) {
		t.Fatalf("expected %d results, got %d", len(questions), len(results))
	}
	for i, r := range results {
		if r.Question != questions[i] {
			t.Errorf("result %d: expected question %q, got %q", i, questions[i], r.Question)
		}
		if !errors.Is(r.GetError(), context.Canceled) {
			t.Errorf("expected cancellation error for %q, got %v", r.Question, r.GetError())
		}
	}
	if len(answerer.asked) != 0 {
		t.Errorf("expected no questions asked, got %v", answerer.asked)
	}
}

// slowAnswerer takes longer than the batch deadline allows
type slowAnswerer struct {
	delay time.Duration
}

func (s *slowAnswerer) Answer(ctx context.Context, question string) *model.Result {
	select {
	case <-ctx.Done():
		return &model.Result{Question: question, Degraded: true, Error: ctx.Err().Error()}
	case <-time.After(s.delay):
		return &model.Result{Question: question, Answer: "answer to " + question}
	}
}

func TestBatchProcessor_DeadlineKeepsEveryQuestion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	questions := make([]string, 20)
	for i := range questions {
		questions[i] = fmt.Sprintf("question %d", i)
	}

	results := NewBatchProcessor(&slowAnswerer{delay: 50 * time.Millisecond}, 1).ProcessQuestions(ctx, questions)
	if len(results) != len(questions) {
		t.Fatalf("expected %d results, got %d", len(questions), len(results))
	}

	failed := 0
	for i, r := range results {
		if r == nil {
			t.Fatalf("result %d is nil", i)
		}
		if r.Question != questions[i] {
			t.Errorf("result %d: expected question %q, got %q", i, questions[i], r.Question)
		}
		if r.GetError() != nil {
			failed++
		}
	}
	if failed < len(questions)-1 {
		t.Errorf("expected nearly all questions to fail after the deadline, got %d failures", failed)
	}
	if !errors.Is(results[len(results)-1].GetError(), context.DeadlineExceeded) {
		t.Errorf("expected deadline error on last question, got %v", results[len(results)-1].GetError())
	}
}

func TestReadQuestions(t *testing.T) {
	input := `# financial aid questions
What grants exist?

Can I get a loan?
   What grants exist?   
# trailing comment
`
	questions, err := ReadQuestions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadQuestions failed: %v", err)
	}

	expected := []string{"What grants exist?", "Can I get a loan?"}
	if len(questions) != len(expected) {
		t.Fatalf("expected %d questions, got %d: %v", len(expected), len(questions), questions)
	}
	for i, q := range expected {
		if questions[i] != q {
			t.Errorf("question %d: expected %q, got %q", i, q, questions[i])
		}
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	if err := os.WriteFile(path, []byte("q1\nq2\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	results, err := NewBatchProcessor(&mockAnswerer{}, 2).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	_, err := NewBatchProcessor(&mockAnswerer{}, 2).ProcessFile(context.Background(), "non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}
