package core

import (
	"github.com/statsited/statsited/internal/metric"
	"github.com/statsited/statsited/internal/selfstats"
)

// instrumentedStore decorates a metric.Store with the self-instrumentation
// counters in internal/selfstats. It is never consulted by the CORE's own
// control flow — purely ambient observability, per SPEC_FULL.md.
type instrumentedStore struct {
	metric.Store
	stats *selfstats.Stats
}

func (i *instrumentedStore) Update(kind metric.Kind, key []byte, value float64) {
	i.stats.SamplesAccepted.Inc()
	i.Store.Update(kind, key, value)
}

func (i *instrumentedStore) SetUpdate(key, member []byte) {
	i.stats.SamplesAccepted.Inc()
	i.Store.SetUpdate(key, member)
}
