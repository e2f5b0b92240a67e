package services

import (
	"github.com/riverkeep/river-ops/internal/observability"
)

// Invalidator drops cached aggregates after a write.
type Invalidator interface {
	Invalidate()
}

// Hooks are the optional observers notified by writing services.
type Hooks struct {
	Metrics *observability.FieldMetrics
	Cache   Invalidator
}

func (h Hooks) invalidate() {
	if h.Cache != nil {
		h.Cache.Invalidate()
	}
}
