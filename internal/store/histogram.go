package store

import (
	"math"

	"github.com/statsited/statsited/internal/metric"
)

// histogramState is a fixed-width bin layout for one timer key, matched
// against a configured metric.HistogramRule by key prefix (spec.md §3).
// Bin 0 is underflow, bin numBins-1 is overflow, per spec.md §3.
type histogramState struct {
	rule    metric.HistogramRule
	numBins int
	counts  []uint32
}

func newHistogramState(rule metric.HistogramRule) *histogramState {
	middle := int(math.Round((rule.MaxVal - rule.MinVal) / rule.BinWidth))
	if middle < 0 {
		middle = 0
	}
	numBins := middle + 2
	return &histogramState{
		rule:    rule,
		numBins: numBins,
		counts:  make([]uint32, numBins),
	}
}

func (h *histogramState) record(v float64) {
	switch {
	case v < h.rule.MinVal:
		h.counts[0]++
	case v >= h.rule.MaxVal:
		h.counts[h.numBins-1]++
	default:
		idx := 1 + int((v-h.rule.MinVal)/h.rule.BinWidth)
		if idx > h.numBins-2 {
			idx = h.numBins - 2
		}
		h.counts[idx]++
	}
}

func (h *histogramState) view() metric.HistogramView {
	return metric.HistogramView{
		MinVal:   h.rule.MinVal,
		MaxVal:   h.rule.MaxVal,
		BinWidth: h.rule.BinWidth,
		NumBins:  h.numBins,
		Counts:   h.counts,
	}
}

// matchHistogramRule returns the first configured rule whose Prefix is a
// prefix of key, if any.
func matchHistogramRule(rules []metric.HistogramRule, key string) (metric.HistogramRule, bool) {
	for _, r := range rules {
		if len(r.Prefix) <= len(key) && key[:len(r.Prefix)] == r.Prefix {
			return r, true
		}
	}
	return metric.HistogramRule{}, false
}
