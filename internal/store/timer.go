package store

import (
	"github.com/caio/go-tdigest"
)

// timerAgg is a Timer key's aggregate state: the same running moments as a
// Counter, a t-digest for quantile queries (spec.md §6 timer_query), and an
// optional histogram when a rule matches the key (spec.md §3).
type timerAgg struct {
	stats runningStats
	td    *tdigest.TDigest
	hist  *histogramState
}

func newTimerAgg(compression float64) *timerAgg {
	td, _ := tdigest.New(tdigest.Compression(compression))
	return &timerAgg{td: td}
}

func (t *timerAgg) add(v float64) {
	t.stats.add(v)
	if t.td != nil {
		_ = t.td.Add(v)
	}
	if t.hist != nil {
		t.hist.record(v)
	}
}

func (t *timerAgg) quantile(q float64) float64 {
	if t.td == nil {
		return 0
	}
	return t.td.Quantile(q)
}
