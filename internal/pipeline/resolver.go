package pipeline

import (
	"go.uber.org/zap"

	"github.com/ppiankov/schemeqa/internal/metrics"
	"github.com/ppiankov/schemeqa/internal/model"
)

// Lookup finds a scheme record by name. *catalog.Catalog satisfies it.
type Lookup interface {
	Lookup(name string) (model.SchemeRecord, bool)
}

// Resolver turns matches into catalog records
type Resolver struct {
	catalog Lookup
	logger  *zap.Logger
}

// NewResolver creates a resolver over catalog
func NewResolver(catalog Lookup, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{catalog: catalog, logger: logger}
}

// Resolve returns the record of every match whose scheme is in the catalog,
// in match order. Unknown names are dropped; duplicates are kept.
func (r *Resolver) Resolve(matches []model.Match) []model.SchemeRecord {
	details := make([]model.SchemeRecord, 0, len(matches))
	for _, m := range matches {
		rec, ok := r.catalog.Lookup(m.Scheme)
		if !ok {
			metrics.UnresolvedSchemesTotal.Inc()
			r.logger.Debug("dropping unknown scheme",
				zap.String("scheme", m.Scheme),
				zap.String("category", m.Category),
			)
			continue
		}
		details = append(details, rec)
	}
	return details
}
