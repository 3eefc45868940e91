package metric

// HistogramRule assigns a fixed-width bin layout to timer keys matching
// Prefix (spec.md §3 "TimerHistogram", glossary "Histogram rule").
type HistogramRule struct {
	Prefix   string
	MinVal   float64
	MaxVal   float64
	BinWidth float64
}

// HistogramView is the read-only shape of a timer's histogram, observed
// only during formatting (spec.md §3).
type HistogramView struct {
	MinVal   float64
	MaxVal   float64
	BinWidth float64
	NumBins  int
	Counts   []uint32
}

// Value is the opaque per-key handle MetricStore.Iterate hands to a
// visitor. Only the accessors relevant to a key's Kind return meaningful
// data; the rest are zero values. This mirrors spec.md §6's
// "counter_sum, timer_query(q), set_size, gauge_value" accessor set,
// collapsed into one interface so Iterate can stay a single generic walk.
type Value interface {
	// Sum, SumSq, Mean, Min, Max, Stddev, Count apply to Counter and
	// Timer values.
	Sum() float64
	SumSq() float64
	Mean() float64
	Min() float64
	Max() float64
	Stddev() float64
	Count() uint64

	// Query returns the timer's estimated q-quantile (Timer only).
	Query(q float64) float64

	// Histogram returns (view, true) if a HistogramRule matched this timer
	// key, else (zero value, false).
	Histogram() (HistogramView, bool)

	// GaugeValue returns the current value (Gauge and KeyValue only).
	GaugeValue() float64

	// SetSize returns the estimated set cardinality (Set only).
	SetSize() uint64
}

// Visitor is invoked once per live key during a drain. Returning false
// stops the iteration early.
type Visitor func(kind Kind, name []byte, v Value) bool

// Store is the MetricStore external collaborator (spec.md §6): the
// aggregation engine the CORE updates but never inspects except through
// Iterate during a drain. Any number of connection goroutines may call
// Update/SetUpdate concurrently against the live generation; an
// implementation must synchronize internally (spec.md §5's MUST).  After a
// Store is handed off to a drain via FlushRotation, no further
// Update/SetUpdate call is made against it (spec.md §3, §5).
type Store interface {
	// Update records one sample. kind must not be Set (use SetUpdate).
	Update(kind Kind, key []byte, value float64)

	// SetUpdate records one set-membership sample.
	SetUpdate(key, member []byte)

	// Iterate walks every live key, invoking visit for each. Safe to call
	// only after the store has stopped receiving Update/SetUpdate calls.
	Iterate(visit Visitor)

	// Destroy releases any resources held by the store. Idempotent.
	Destroy()
}
