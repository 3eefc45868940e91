// Package format implements the TextFormatter and BinaryFormatter render
// stages (spec.md §4.7, §4.8): turning one flushed generation's keys into
// the wire shape the external streaming command expects.
package format

import (
	"io"

	"github.com/statsited/statsited/internal/metric"
)

// Formatter renders one generation to w. A returned error means the write
// failed partway (spec.md §7 class 3: downstream failure); the caller logs
// it and moves on — the failure never touches the next generation.
type Formatter interface {
	Format(w io.Writer, timestamp int64, s metric.Store) error
}
