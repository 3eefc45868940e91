// Package protocol implements the dual-protocol statsd ingest state
// machines: line-oriented text and length-prefixed binary.
package protocol

import "bytes"

// SplitAt locates the first occurrence of term in buf and returns the bytes
// before it and the bytes after it, excluding term itself. ok is false if
// term does not occur in buf, in which case before/after are nil.
func SplitAt(buf []byte, term byte) (before, after []byte, ok bool) {
	idx := bytes.IndexByte(buf, term)
	if idx < 0 {
		return nil, nil, false
	}
	return buf[:idx], buf[idx+1:], true
}
