// Package sink implements the StreamSink external collaborator (spec.md
// §6): spawning the configured external command and feeding it formatted
// output on stdin. There is no library in the example pack for subprocess
// plumbing (every repo reached for os/exec directly); DESIGN.md records
// this as the one ambient concern left on the standard library.
package sink

import (
	"bufio"
	"os/exec"

	"github.com/statsited/statsited/internal/format"
	"github.com/statsited/statsited/internal/metric"
)

// Stream spawns command via the shell, feeds it fmt's rendering of store
// at timestamp on stdin, and waits for it to exit. A non-zero exit or a
// write failure is returned as an error — spec.md §7 class 3 treats this as
// a downstream failure: the caller logs it and moves on, it never touches
// the next generation.
func Stream(store metric.Store, timestamp int64, fmtr format.Formatter, command string) error {
	cmd := exec.Command("/bin/sh", "-c", command)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	bw := bufio.NewWriter(stdin)
	formatErr := fmtr.Format(bw, timestamp, store)
	flushErr := bw.Flush()
	closeErr := stdin.Close()
	waitErr := cmd.Wait()

	switch {
	case formatErr != nil:
		return formatErr
	case flushErr != nil:
		return flushErr
	case closeErr != nil:
		return closeErr
	default:
		return waitErr
	}
}
