package format

import (
	"fmt"
	"io"

	"github.com/statsited/statsited/internal/metric"
)

// Text renders each metric kind as UTF-8 "NAME|VALUE|TIMESTAMP\n" lines
// (spec.md §4.7). It is the Go re-expression of conn_handler.c's
// stream_formatter and its STREAM macro: here, line writes a single record
// line through w, returning an error instead of an implicit macro-injected
// `return 1`.
type Text struct{}

func (Text) Format(w io.Writer, timestamp int64, s metric.Store) error {
	var outerErr error
	s.Iterate(func(kind metric.Kind, name []byte, v metric.Value) bool {
		if err := formatTextOne(w, timestamp, kind, string(name), v); err != nil {
			outerErr = err
			return false
		}
		return true
	})
	return outerErr
}

func formatTextOne(w io.Writer, ts int64, kind metric.Kind, name string, v metric.Value) error {
	switch kind {
	case metric.KeyValue, metric.Gauge:
		return line(w, "%s|%f|%d\n", name, v.GaugeValue(), ts)

	case metric.Counter:
		return line(w, "%s|%f|%d\n", name, v.Sum(), ts)

	case metric.Set:
		return line(w, "%s|%d|%d\n", name, v.SetSize(), ts)

	case metric.Timer:
		if err := formatTimerText(w, ts, name, v); err != nil {
			return err
		}
		if hv, ok := v.Histogram(); ok {
			return formatHistogramText(w, ts, name, hv)
		}
		return nil

	default:
		return nil
	}
}

func formatTimerText(w io.Writer, ts int64, name string, v metric.Value) error {
	prefix := "timers." + name + "."
	fields := []struct {
		suffix string
		value  float64
	}{
		{"sum", v.Sum()},
		{"sum_sq", v.SumSq()},
		{"mean", v.Mean()},
		{"lower", v.Min()},
		{"upper", v.Max()},
	}
	for _, f := range fields {
		if err := line(w, "%s%s|%f|%d\n", prefix, f.suffix, f.value, ts); err != nil {
			return err
		}
	}
	if err := line(w, "%scount|%d|%d\n", prefix, v.Count(), ts); err != nil {
		return err
	}
	tail := []struct {
		suffix string
		value  float64
	}{
		{"stdev", v.Stddev()},
		{"median", v.Query(0.5)},
		{"upper_90", v.Query(0.9)},
		{"upper_95", v.Query(0.95)},
		{"upper_99", v.Query(0.99)},
	}
	for _, f := range tail {
		if err := line(w, "%s%s|%f|%d\n", prefix, f.suffix, f.value, ts); err != nil {
			return err
		}
	}
	return nil
}

// formatHistogramText reproduces conn_handler.c's bin loop exactly,
// including the last-bin indexing spec.md §9 calls out: the loop writes
// numBins-2 middle bins reading counts[i+1], then the ceiling bin reuses
// the post-loop i to read counts[i+1] == counts[numBins-1].
func formatHistogramText(w io.Writer, ts int64, name string, hv metric.HistogramView) error {
	if err := line(w, "%s.histogram.bin_<%0.2f|%d|%d\n", name, hv.MinVal, hv.Counts[0], ts); err != nil {
		return err
	}
	i := 0
	for ; i < hv.NumBins-2; i++ {
		bound := hv.MinVal + hv.BinWidth*float64(i)
		if err := line(w, "%s.histogram.bin_%0.2f|%d|%d\n", name, bound, hv.Counts[i+1], ts); err != nil {
			return err
		}
	}
	return line(w, "%s.histogram.bin_>%0.2f|%d|%d\n", name, hv.MaxVal, hv.Counts[i+1], ts)
}

func line(w io.Writer, format string, a ...interface{}) error {
	_, err := fmt.Fprintf(w, format, a...)
	return err
}
