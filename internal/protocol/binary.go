package protocol

import (
	"encoding/binary"
	"math"

	"github.com/statsited/statsited/internal/metric"
)

// Binary protocol constants, spec.md §4.4.
const (
	BinaryMagic = 0xAA

	binTypeKV         = 0x1
	binTypeCounter    = 0x2
	binTypeTimer      = 0x3
	binTypeSet        = 0x4
	binTypeGauge      = 0x5
	binTypeGaugeDelta = 0x6

	minFrameHeader = 6  // magic, type, key_len(u16), [set_len(u16) | first two bytes of value]
	maxFrameHeader = 12 // magic, type, key_len(u16), value(f64)
)

// BinaryIngest consumes as many complete frames as are currently buffered
// and applies each to store, per spec.md §4.4. It returns nil ("await more
// data") once a full header or frame has not yet arrived, and the first
// ParseError on any fatal validation failure (bad magic, unknown type code,
// missing NUL terminator).
func BinaryIngest(buf *Buffer, store metric.Store, inputCounter []byte) error {
	for {
		header, ok := buf.PeekN(minFrameHeader)
		if !ok {
			return nil
		}
		if header[0] != BinaryMagic {
			return &ParseError{Reason: "bad magic byte", Line: header}
		}

		typeCode := header[1]
		if typeCode == binTypeSet {
			done, err := ingestBinarySetFrame(buf, header, store, inputCounter)
			if err != nil || !done {
				return err
			}
			continue
		}

		kind, ok := binaryKind(typeCode)
		if !ok {
			return &ParseError{Reason: "unknown binary type code", Line: header}
		}

		keyLen := int(binary.LittleEndian.Uint16(header[2:4]))
		frameLen := maxFrameHeader + keyLen
		frame, ok := buf.PeekN(frameLen)
		if !ok {
			return nil
		}

		key := frame[maxFrameHeader:frameLen]
		if len(key) == 0 || key[len(key)-1] != 0x00 {
			return &ParseError{Reason: "key missing NUL terminator", Line: frame}
		}
		key = key[:len(key)-1]

		value := math.Float64frombits(binary.LittleEndian.Uint64(frame[4:12]))

		if len(inputCounter) > 0 {
			store.Update(metric.Counter, inputCounter, 1)
		}
		store.Update(kind, key, value)

		buf.Consume(frameLen)
	}
}

// ingestBinarySetFrame handles the variable-length Set frame layout
// (spec.md §4.4). done is false if the full frame has not yet arrived (the
// caller should return success and await more bytes); err is non-nil on a
// fatal validation failure.
func ingestBinarySetFrame(buf *Buffer, header []byte, store metric.Store, inputCounter []byte) (done bool, err error) {
	keyLen := int(binary.LittleEndian.Uint16(header[2:4]))
	setLen := int(binary.LittleEndian.Uint16(header[4:6]))
	frameLen := minFrameHeader + keyLen + setLen

	frame, ok := buf.PeekN(frameLen)
	if !ok {
		return false, nil
	}

	key := frame[minFrameHeader : minFrameHeader+keyLen]
	member := frame[minFrameHeader+keyLen : frameLen]
	if len(key) == 0 || key[len(key)-1] != 0x00 {
		return false, &ParseError{Reason: "set key missing NUL terminator", Line: frame}
	}
	if len(member) == 0 || member[len(member)-1] != 0x00 {
		return false, &ParseError{Reason: "set member missing NUL terminator", Line: frame}
	}
	key = key[:len(key)-1]
	member = member[:len(member)-1]

	if len(inputCounter) > 0 {
		store.Update(metric.Counter, inputCounter, 1)
	}
	store.SetUpdate(key, member)

	buf.Consume(frameLen)
	return true, nil
}

func binaryKind(code byte) (metric.Kind, bool) {
	switch code {
	case binTypeKV:
		return metric.KeyValue, true
	case binTypeCounter:
		return metric.Counter, true
	case binTypeTimer:
		return metric.Timer, true
	case binTypeGauge:
		return metric.Gauge, true
	case binTypeGaugeDelta:
		return metric.GaugeDelta, true
	default:
		return 0, false
	}
}
