package store

import "github.com/statsited/statsited/internal/metric"

// entry is the per-key state held by Store and the concrete metric.Value
// handed to Iterate visitors. Its Kind is fixed at creation (spec.md §3
// invariant); only the fields relevant to that kind are populated.
type entry struct {
	kind metric.Kind

	counter *runningStats // Counter
	timer   *timerAgg     // Timer
	scalar  *scalar       // Gauge, GaugeDelta, KeyValue
	set     *setAgg       // Set
}

func (e *entry) Sum() float64 {
	switch e.kind {
	case metric.Counter:
		return e.counter.sum
	case metric.Timer:
		return e.timer.stats.sum
	default:
		return 0
	}
}

func (e *entry) SumSq() float64 {
	switch e.kind {
	case metric.Counter:
		return e.counter.sumSq
	case metric.Timer:
		return e.timer.stats.sumSq
	default:
		return 0
	}
}

func (e *entry) Mean() float64 {
	switch e.kind {
	case metric.Counter:
		return e.counter.mean()
	case metric.Timer:
		return e.timer.stats.mean()
	default:
		return 0
	}
}

func (e *entry) Min() float64 {
	switch e.kind {
	case metric.Counter:
		return e.counter.min
	case metric.Timer:
		return e.timer.stats.min
	default:
		return 0
	}
}

func (e *entry) Max() float64 {
	switch e.kind {
	case metric.Counter:
		return e.counter.max
	case metric.Timer:
		return e.timer.stats.max
	default:
		return 0
	}
}

func (e *entry) Stddev() float64 {
	switch e.kind {
	case metric.Counter:
		return e.counter.stddev()
	case metric.Timer:
		return e.timer.stats.stddev()
	default:
		return 0
	}
}

func (e *entry) Count() uint64 {
	switch e.kind {
	case metric.Counter:
		return e.counter.count
	case metric.Timer:
		return e.timer.stats.count
	default:
		return 0
	}
}

func (e *entry) Query(q float64) float64 {
	if e.kind != metric.Timer {
		return 0
	}
	return e.timer.quantile(q)
}

func (e *entry) Histogram() (metric.HistogramView, bool) {
	if e.kind != metric.Timer || e.timer.hist == nil {
		return metric.HistogramView{}, false
	}
	return e.timer.hist.view(), true
}

func (e *entry) GaugeValue() float64 {
	switch e.kind {
	case metric.Gauge, metric.GaugeDelta, metric.KeyValue:
		return e.scalar.value
	default:
		return 0
	}
}

func (e *entry) SetSize() uint64 {
	if e.kind != metric.Set {
		return 0
	}
	return e.set.size()
}
