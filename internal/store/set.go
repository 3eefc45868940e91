package store

import "github.com/axiomhq/hyperloglog"

// setAgg is a Set key's aggregate state: a HyperLogLog sketch estimating
// member cardinality (spec.md §3 "Set member", glossary
// "probabilistic-cardinality estimator"), sized by set_precision.
type setAgg struct {
	sketch *hyperloglog.Sketch
}

func newSetAgg(precision uint8) *setAgg {
	sk, err := hyperloglog.NewSketch(precision, false)
	if err != nil {
		sk = hyperloglog.New()
	}
	return &setAgg{sketch: sk}
}

func (s *setAgg) insert(member []byte) {
	s.sketch.Insert(member)
}

func (s *setAgg) size() uint64 {
	return s.sketch.Estimate()
}
