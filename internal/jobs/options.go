package jobs

import (
	"jobscout/internal/logging"
	"jobscout/internal/query"
	"jobscout/pkg/models"
)

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithNormalizer replaces the query normalizer
func WithNormalizer(n *query.Normalizer) Option {
	return func(a *Aggregator) {
		if n != nil {
			a.normalize = n.Normalize
		}
	}
}

// WithNumPages sets how many provider pages one fetch spans
func WithNumPages(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.numPages = n
		}
	}
}

// WithFilters sets the starting filter snapshot
func WithFilters(f models.Filters) Option {
	return func(a *Aggregator) {
		a.filters = f.Apply(models.FilterOverrides{})
	}
}
