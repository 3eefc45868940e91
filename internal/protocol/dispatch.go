package protocol

import "github.com/statsited/statsited/internal/metric"

// Protocol identifies which ingest state machine owns a connection for its
// lifetime (spec.md §4.5); the choice is never renegotiated.
type Protocol int

const (
	// ProtocolUnknown means not enough bytes have arrived to sniff the
	// first byte yet.
	ProtocolUnknown Protocol = iota
	ProtocolText
	ProtocolBinary
)

// Conn pairs a Buffer with the sticky protocol decision for one connection
// (spec.md §4.5, §5). The network layer (internal/server) owns one Conn per
// socket and calls Dispatch on every readability edge.
type Conn struct {
	Buffer   Buffer
	Protocol Protocol
}

// Dispatch peeks the first byte on first use to pick the protocol, then
// hands the buffer to the matching ingest state machine. It returns nil on
// success (including "awaiting more data") and a *ParseError on fatal,
// connection-closing input.
func Dispatch(c *Conn, store metric.Store, inputCounter []byte) error {
	if c.Protocol == ProtocolUnknown {
		b, ok := c.Buffer.PeekByte()
		if !ok {
			return nil
		}
		if b == BinaryMagic {
			c.Protocol = ProtocolBinary
		} else {
			c.Protocol = ProtocolText
		}
	}

	if c.Protocol == ProtocolBinary {
		return BinaryIngest(&c.Buffer, store, inputCounter)
	}
	return TextIngest(&c.Buffer, store, inputCounter)
}
