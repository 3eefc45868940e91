package format

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/statsited/statsited/internal/metric"
)

// Binary type codes mirror protocol.binTypeX (spec.md §4.4, reused as the
// record type_code in §4.8).
const (
	binTypeKV      = 0x1
	binTypeCounter = 0x2
	binTypeTimer   = 0x3
	binTypeSet     = 0x4
	binTypeGauge   = 0x5
)

// value_type codes, spec.md §4.8.
const (
	valNoType    = 0x00
	valSum       = 0x01
	valSumSq     = 0x02
	valMean      = 0x03
	valCount     = 0x04
	valStddev    = 0x05
	valMin       = 0x06
	valMax       = 0x07
	valHistFloor = 0x08
	valHistBin   = 0x09
	valHistCeil  = 0x0a
	valPercent   = 0x80
)

// Binary renders each metric kind as packed little-endian records
// (spec.md §4.8), the Go re-expression of conn_handler.c's
// stream_formatter_bin/stream_bin_writer. Per spec.md §9, header fields are
// decoded/encoded byte-by-byte rather than via an unaligned struct cast.
type Binary struct{}

func (Binary) Format(w io.Writer, timestamp int64, s metric.Store) error {
	var outerErr error
	s.Iterate(func(kind metric.Kind, name []byte, v metric.Value) bool {
		if err := formatBinaryOne(w, uint64(timestamp), kind, string(name), v); err != nil {
			outerErr = err
			return false
		}
		return true
	})
	return outerErr
}

func formatBinaryOne(w io.Writer, ts uint64, kind metric.Kind, name string, v metric.Value) error {
	switch kind {
	case metric.KeyValue:
		return record(w, ts, binTypeKV, valNoType, v.GaugeValue(), name)

	case metric.Gauge:
		return record(w, ts, binTypeGauge, valNoType, v.GaugeValue(), name)

	case metric.Counter:
		return writeAggregateRecords(w, ts, binTypeCounter, name, v)

	case metric.Set:
		return record(w, ts, binTypeSet, valSum, float64(v.SetSize()), name)

	case metric.Timer:
		if err := writeAggregateRecords(w, ts, binTypeTimer, name, v); err != nil {
			return err
		}
		for _, p := range [...]byte{50, 90, 95, 99} {
			q := float64(p) / 100
			if err := record(w, ts, binTypeTimer, valPercent|p, v.Query(q), name); err != nil {
				return err
			}
		}
		if hv, ok := v.Histogram(); ok {
			return writeHistogramBinary(w, ts, name, hv)
		}
		return nil

	default:
		return nil
	}
}

func writeAggregateRecords(w io.Writer, ts uint64, typeCode byte, name string, v metric.Value) error {
	fields := []struct {
		valType byte
		value   float64
	}{
		{valSum, v.Sum()},
		{valSumSq, v.SumSq()},
		{valMean, v.Mean()},
		{valCount, float64(v.Count())},
		{valStddev, v.Stddev()},
		{valMin, v.Min()},
		{valMax, v.Max()},
	}
	for _, f := range fields {
		if err := record(w, ts, typeCode, f.valType, f.value, name); err != nil {
			return err
		}
	}
	return nil
}

// writeHistogramBinary reproduces conn_handler.c's bin loop exactly,
// including the last-bin indexing spec.md §9 calls out (see format/text.go
// formatHistogramText for the identical shape).
func writeHistogramBinary(w io.Writer, ts uint64, name string, hv metric.HistogramView) error {
	if err := record(w, ts, binTypeTimer, valHistFloor, hv.MinVal, name); err != nil {
		return err
	}
	if err := writeCount(w, hv.Counts[0]); err != nil {
		return err
	}
	i := 0
	for ; i < hv.NumBins-2; i++ {
		bound := hv.MinVal + hv.BinWidth*float64(i)
		if err := record(w, ts, binTypeTimer, valHistBin, bound, name); err != nil {
			return err
		}
		if err := writeCount(w, hv.Counts[i+1]); err != nil {
			return err
		}
	}
	if err := record(w, ts, binTypeTimer, valHistCeil, hv.MaxVal, name); err != nil {
		return err
	}
	return writeCount(w, hv.Counts[i+1])
}

// record writes one 20-byte prefix (timestamp, type_code, value_type,
// key_len, value) followed by name and its trailing NUL (spec.md §4.8).
func record(w io.Writer, timestamp uint64, typeCode, valueType byte, value float64, name string) error {
	keyLen := uint16(len(name) + 1)
	var hdr [20]byte
	binary.LittleEndian.PutUint64(hdr[0:8], timestamp)
	hdr[8] = typeCode
	hdr[9] = valueType
	binary.LittleEndian.PutUint16(hdr[10:12], keyLen)
	binary.LittleEndian.PutUint64(hdr[12:20], math.Float64bits(value))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}

// writeCount writes one raw little-endian u32, NOT a prefix-framed record
// (spec.md §4.8's histogram bin-count emissions).
func writeCount(w io.Writer, count uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], count)
	_, err := w.Write(b[:])
	return err
}
