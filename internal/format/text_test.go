package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statsited/statsited/internal/metric"
	"github.com/statsited/statsited/internal/store"
)

func TestTextFormatCounter(t *testing.T) {
	s := store.New(0.01, nil, 14)
	s.Update(metric.Counter, []byte("foo"), 3)

	var buf bytes.Buffer
	require.NoError(t, Text{}.Format(&buf, 100, s))
	assert.Equal(t, "foo|3.000000|100\n", buf.String())
}

func TestTextFormatSetIsInteger(t *testing.T) {
	s := store.New(0.01, nil, 14)
	s.SetUpdate([]byte("uniques"), []byte("a"))

	var buf bytes.Buffer
	require.NoError(t, Text{}.Format(&buf, 100, s))
	assert.Equal(t, "uniques|1|100\n", buf.String())
}

func TestTextFormatTimerLines(t *testing.T) {
	s := store.New(0.01, nil, 14)
	for _, v := range []float64{1, 2, 3} {
		s.Update(metric.Timer, []byte("req"), v)
	}

	var buf bytes.Buffer
	require.NoError(t, Text{}.Format(&buf, 42, s))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 11)
	for _, suffix := range []string{
		"timers.req.sum|", "timers.req.sum_sq|", "timers.req.mean|",
		"timers.req.lower|", "timers.req.upper|", "timers.req.count|",
		"timers.req.stdev|", "timers.req.median|", "timers.req.upper_90|",
		"timers.req.upper_95|", "timers.req.upper_99|",
	} {
		found := false
		for _, l := range lines {
			if strings.HasPrefix(l, suffix) {
				found = true
				break
			}
		}
		assert.True(t, found, "missing line with prefix %q in:\n%s", suffix, buf.String())
	}
}

func TestTextFormatHistogramLastBinIndexing(t *testing.T) {
	rules := []metric.HistogramRule{{Prefix: "req", MinVal: 0, MaxVal: 10, BinWidth: 5}}
	s := store.New(0.01, rules, 14)
	// One sample in each of the 4 bins: underflow, [0,5), [5,10), overflow.
	for _, v := range []float64{-1, 2, 7, 11} {
		s.Update(metric.Timer, []byte("req"), v)
	}

	var buf bytes.Buffer
	require.NoError(t, Text{}.Format(&buf, 100, s))
	out := buf.String()

	assert.Contains(t, out, "req.histogram.bin_<0.00|1|100\n")
	assert.Contains(t, out, "req.histogram.bin_0.00|1|100\n")
	assert.Contains(t, out, "req.histogram.bin_5.00|1|100\n")
	assert.Contains(t, out, "req.histogram.bin_>10.00|1|100\n")
}
