package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppiankov/schemeqa/internal/catalog"
	"github.com/ppiankov/schemeqa/internal/llm"
	"github.com/ppiankov/schemeqa/internal/model"
)

var errTransport = errors.New("dial tcp: connection refused")

// reply is one scripted completion outcome
type reply struct {
	text string
	err  error
}

// scriptedCompleter returns canned replies in order and records every call
type scriptedCompleter struct {
	mu      sync.Mutex
	replies []reply
	calls   [][]model.Message
}

func newScripted(replies ...reply) *scriptedCompleter {
	return &scriptedCompleter{replies: replies}
}

func (s *scriptedCompleter) Complete(ctx context.Context, messages []model.Message) (*llm.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, messages)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.replies) == 0 {
		return nil, errors.New("scriptedCompleter: no reply left")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	return &llm.Completion{Text: r.text, Model: "scripted"}, nil
}

func (s *scriptedCompleter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	records := []model.SchemeRecord{
		{
			Name:      "Tuition Fee Loan",
			KeyColumn: model.DefaultKeyColumn,
			Attributes: []model.Attribute{
				{Key: "amount", Value: "$500"},
				{Key: "eligibility", Value: "Singapore Citizens"},
			},
		},
		{
			Name:      "NP Emergency Grant",
			KeyColumn: model.DefaultKeyColumn,
			Attributes: []model.Attribute{
				{Key: "amount", Value: "$200"},
			},
		},
	}
	index := model.CategoryIndex{
		{Name: "Financial Aid for Tuition Fee", Schemes: []string{"Tuition Fee Loan", "Government Study Loan"}},
		{Name: "Grants", Schemes: []string{"NP Emergency Grant"}},
	}
	cat, err := catalog.New(records, index)
	require.NoError(t, err)
	return cat
}
