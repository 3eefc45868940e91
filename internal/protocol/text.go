package protocol

import (
	"fmt"

	"github.com/statsited/statsited/internal/metric"
)

// ParseError is returned by TextIngest/BinaryIngest for malformed input
// (spec.md §7 class 2): fatal for the connection, but never for a reason
// that could have mutated the store first.
type ParseError struct {
	Reason string
	Line   []byte
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Line)
}

// TextIngest consumes \n-terminated statsd text-protocol lines from buf and
// applies each to store, per spec.md §4.3. It drains every complete line
// currently buffered and returns nil once buf has no more; it returns the
// first ParseError encountered, at which point the caller must close the
// connection (spec.md §7).
//
// inputCounter, if non-empty, is incremented by one for every accepted
// sample before the sample itself is recorded (spec.md §4.3, §7).
func TextIngest(buf *Buffer, store metric.Store, inputCounter []byte) error {
	for {
		line, ok := buf.ExtractUntil('\n')
		if !ok {
			return nil
		}
		if err := ingestTextLine(line, store, inputCounter); err != nil {
			return err
		}
	}
}

func ingestTextLine(line []byte, store metric.Store, inputCounter []byte) error {
	key, rest, ok := SplitAt(line, ':')
	if !ok {
		return &ParseError{Reason: "missing ':' separator", Line: line}
	}
	valStr, typeRest, ok := SplitAt(rest, '|')
	if !ok {
		return &ParseError{Reason: "missing '|' separator", Line: line}
	}
	if len(key) == 0 || len(typeRest) == 0 {
		return &ParseError{Reason: "empty key or type", Line: line}
	}

	var kind metric.Kind
	switch typeRest[0] {
	case 'c':
		kind = metric.Counter
	case 'm':
		kind = metric.Timer
	case 'k':
		kind = metric.KeyValue
	case 'g':
		kind = metric.Gauge
		if len(valStr) > 0 {
			switch valStr[0] {
			case '+':
				valStr = valStr[1:]
				kind = metric.GaugeDelta
			case '-':
				kind = metric.GaugeDelta
			}
		}
	case 's':
		kind = metric.Set
	default:
		return &ParseError{Reason: "unknown metric type", Line: line}
	}

	if kind == metric.Set {
		if len(inputCounter) > 0 {
			store.Update(metric.Counter, inputCounter, 1)
		}
		store.SetUpdate(key, valStr)
		return nil
	}

	val, consumed := ParseDouble(valStr)
	if consumed == 0 {
		return &ParseError{Reason: "unparseable value", Line: line}
	}

	if len(inputCounter) > 0 {
		store.Update(metric.Counter, inputCounter, 1)
	}

	if kind == metric.Counter {
		// typeRest looks like "c" or "c|@0.5"; after the first '|' split,
		// an optional "@RATE" trails the type byte.
		if _, sampleStr, ok := SplitAt(typeRest, '|'); ok && len(sampleStr) > 1 && sampleStr[0] == '@' {
			rate, rc := ParseDouble(sampleStr[1:])
			if rc > 0 && rate > 0 && rate <= 1 {
				val = val * (1.0 / rate)
			}
		}
	}

	store.Update(kind, key, val)
	return nil
}
