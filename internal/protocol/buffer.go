package protocol

// Buffer is the ConnectionBuffer external collaborator from spec.md §6,
// made concrete: an incremental byte accumulator fed by the network layer
// (internal/server) and drained by Dispatch/TextIngest/BinaryIngest. It
// owns no socket; Feed is the only way bytes enter it.
//
// Unlike the C original's peek/read pair with caller-managed "must free"
// flags, Buffer keeps ownership of its storage throughout: PeekN returns a
// slice aliasing internal storage (valid until the next Feed or Consume),
// and ExtractUntil copies out what it returns before advancing past it, so
// callers never need to free anything.
type Buffer struct {
	data []byte
	off  int
}

// Feed appends newly received bytes to the buffer.
func (b *Buffer) Feed(p []byte) {
	b.data = append(b.data, p...)
}

// Len reports how many unconsumed bytes are currently buffered.
func (b *Buffer) Len() int {
	return len(b.data) - b.off
}

// PeekByte returns the first unconsumed byte without consuming it.
func (b *Buffer) PeekByte() (byte, bool) {
	if b.Len() < 1 {
		return 0, false
	}
	return b.data[b.off], true
}

// PeekN returns the next n unconsumed bytes without consuming them. The
// returned slice aliases internal storage and must not be retained past the
// next call that mutates the buffer.
func (b *Buffer) PeekN(n int) ([]byte, bool) {
	if b.Len() < n {
		return nil, false
	}
	return b.data[b.off : b.off+n], true
}

// Consume discards n unconsumed bytes from the front of the buffer.
func (b *Buffer) Consume(n int) {
	if n <= 0 {
		return
	}
	b.off += n
	if b.off > len(b.data) {
		b.off = len(b.data)
	}
	b.compact()
}

// ExtractUntil locates the first occurrence of term among the unconsumed
// bytes and returns a copy of the bytes preceding it (excluding term),
// consuming both the line and its terminator. ok is false ("WouldBlock")
// if term has not arrived yet; the buffer is left untouched in that case.
func (b *Buffer) ExtractUntil(term byte) (line []byte, ok bool) {
	live := b.data[b.off:]
	before, _, found := SplitAt(live, term)
	if !found {
		return nil, false
	}
	line = append([]byte(nil), before...)
	b.Consume(len(before) + 1)
	return line, true
}

// compact drops already-consumed bytes once they make up a large share of
// the backing array, bounding memory use across a long-lived connection
// that only ever partially drains its buffer.
func (b *Buffer) compact() {
	if b.off == 0 {
		return
	}
	if b.off < 4096 && b.off*2 < len(b.data) {
		return
	}
	n := copy(b.data, b.data[b.off:])
	b.data = b.data[:n]
	b.off = 0
}
