package pipeline

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/schemeqa/internal/metrics"
)

// namedCompleter reports a provider name like a real llm.Provider
type namedCompleter struct {
	*scriptedCompleter
	name string
}

func (n namedCompleter) Name() string { return n.name }

func TestProcess_RecordsMetrics(t *testing.T) {
	unresolved := testutil.ToFloat64(metrics.UnresolvedSchemesTotal)
	identifyOK := metrics.CompletionsTotal.WithLabelValues("fake-llm", StageIdentify, metrics.OutcomeOK)
	generateOK := metrics.CompletionsTotal.WithLabelValues("fake-llm", StageGenerate, metrics.OutcomeOK)
	identifyBefore := testutil.ToFloat64(identifyOK)
	generateBefore := testutil.ToFloat64(generateOK)

	completer := namedCompleter{
		scriptedCompleter: newScripted(
			reply{text: `[{"category": "Grants", "financial_scheme": "NP Emergency Grant"}, {"category": "Grants", "financial_scheme": "Unknown Bursary"}]`},
			reply{text: stepAnswer},
		),
		name: "fake-llm",
	}
	p, err := New(completer, testCatalog(t), zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = p.Process(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, unresolved+1, testutil.ToFloat64(metrics.UnresolvedSchemesTotal))
	assert.Equal(t, identifyBefore+1, testutil.ToFloat64(identifyOK))
	assert.Equal(t, generateBefore+1, testutil.ToFloat64(generateOK))
}

func TestIdentify_ParseFailureMetric(t *testing.T) {
	counter := metrics.CompletionsTotal.WithLabelValues("unknown", StageIdentify, metrics.OutcomeParse)
	before := testutil.ToFloat64(counter)

	p, _ := newTestPipeline(t, reply{text: "no json here"})
	_, err := p.Process(context.Background(), "q")
	require.ErrorIs(t, err, ErrClassificationParse)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
