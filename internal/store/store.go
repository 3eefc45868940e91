// Package store implements the MetricStore external collaborator named in
// spec.md §6: per-key counters, gauges, timers (with t-digest quantiles and
// fixed-width histograms), key-values and HyperLogLog-backed sets.
package store

import (
	"sync"

	"github.com/statsited/statsited/internal/metric"
)

// Store is the concrete metric.Store. A single Store instance is mutated
// exclusively by the ingest path until a FlushRotation hands it to a drain,
// at which point it becomes read-only (spec.md §3, §5). Because multiple
// connection goroutines may call Update/SetUpdate concurrently against the
// one live Store, Store synchronizes internally with a mutex rather than
// relying on a single-threaded ingest owner, per the MUST in spec.md §5.
type Store struct {
	mu sync.Mutex

	timerCompression float64
	quantiles        []float64
	histogramRules   []metric.HistogramRule
	setPrecision     uint8

	entries map[string]*entry
}

// Quantiles fixed per spec.md §4.6 step 1.
var Quantiles = []float64{0.5, 0.9, 0.95, 0.99}

// New constructs a fresh Store from the current configuration snapshot
// (spec.md §6 MetricStore.new). timerEps controls the t-digest compression
// factor used for every timer key (a smaller epsilon asks for a larger,
// more accurate digest).
func New(timerEps float64, histogramRules []metric.HistogramRule, setPrecision uint8) *Store {
	compression := 100.0
	if timerEps > 0 {
		compression = 1.0 / timerEps
	}
	return &Store{
		timerCompression: compression,
		quantiles:        Quantiles,
		histogramRules:   histogramRules,
		setPrecision:     setPrecision,
		entries:          make(map[string]*entry),
	}
}

// Update implements metric.Store.
func (s *Store) Update(kind metric.Kind, key []byte, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreate(kind, key)
	switch kind {
	case metric.Counter:
		e.counter.add(value)
	case metric.Timer:
		e.timer.add(value)
	case metric.Gauge:
		e.scalar.set(value)
	case metric.GaugeDelta:
		e.scalar.add(value)
	case metric.KeyValue:
		e.scalar.set(value)
	}
}

// SetUpdate implements metric.Store.
func (s *Store) SetUpdate(key, member []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreate(metric.Set, key)
	e.set.insert(member)
}

// getOrCreate returns the entry for key, creating it with storage for kind
// if this is the first update. A Gauge and a GaugeDelta sample for the same
// key share one scalar entry (spec.md §3's "kind is fixed" invariant
// applies to the storage domain, not the Gauge/GaugeDelta distinction,
// which only changes how a sample combines into it).
func (s *Store) getOrCreate(kind metric.Kind, key []byte) *entry {
	k := string(key)
	e, ok := s.entries[k]
	if ok {
		return e
	}

	e = &entry{kind: kind}
	switch kind {
	case metric.Counter:
		e.counter = &runningStats{}
	case metric.Timer:
		t := newTimerAgg(s.timerCompression)
		if rule, matched := matchHistogramRule(s.histogramRules, k); matched {
			t.hist = newHistogramState(rule)
		}
		e.timer = t
	case metric.Gauge, metric.GaugeDelta, metric.KeyValue:
		e.kind = metric.Gauge
		if kind == metric.KeyValue {
			e.kind = metric.KeyValue
		}
		e.scalar = &scalar{}
	case metric.Set:
		e.set = newSetAgg(s.setPrecision)
	}
	s.entries[k] = e
	return e
}

// Iterate implements metric.Store.
func (s *Store) Iterate(visit metric.Visitor) {
	for name, e := range s.entries {
		if !visit(e.kind, []byte(name), e) {
			return
		}
	}
}

// Destroy implements metric.Store. The Go garbage collector reclaims
// everything once the Store is no longer referenced; Destroy satisfies the
// interface's ownership contract from spec.md §6 by dropping the entry map.
// After Destroy, Iterate visits nothing and Update/SetUpdate panic on the
// nil map.
func (s *Store) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
