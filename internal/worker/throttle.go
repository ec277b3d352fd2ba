package worker

import (
	"context"
	"fmt"

	"github.com/ppiankov/schemeqa/internal/llm"
	"github.com/ppiankov/schemeqa/internal/model"
)

// ThrottledCompleter makes every Complete call wait for a token from a shared limiter
type ThrottledCompleter struct {
	next    llm.Completer
	limiter *Limiter
	key     string
}

// NewThrottledCompleter wraps next. All completers sharing limiter and key
// share one budget.
func NewThrottledCompleter(next llm.Completer, limiter *Limiter, key string) *ThrottledCompleter {
	return &ThrottledCompleter{next: next, limiter: limiter, key: key}
}

// Name reports the wrapped provider's name
func (t *ThrottledCompleter) Name() string {
	return llm.NameOf(t.next)
}

// Complete waits for rate limit clearance, then delegates
func (t *ThrottledCompleter) Complete(ctx context.Context, messages []model.Message) (*llm.Completion, error) {
	if err := t.limiter.Wait(ctx, t.key); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return t.next.Complete(ctx, messages)
}
