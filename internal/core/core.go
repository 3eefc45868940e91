// Package core wires the CORE components from spec.md together behind the
// four entry points named in §6: Init (via New), HandleClientConnect,
// FlushIntervalTrigger and FinalFlush.
//
// Per spec.md §9's design note, the process-wide GLOBAL_METRICS/
// GLOBAL_CONFIG pointers from conn_handler.c are re-expressed as a Core
// value holding an atomically-swapped handle, rather than true package
// globals — every entry point is a method taking an explicit receiver.
package core

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/statsited/statsited/internal/config"
	"github.com/statsited/statsited/internal/format"
	"github.com/statsited/statsited/internal/metric"
	"github.com/statsited/statsited/internal/protocol"
	"github.com/statsited/statsited/internal/selfstats"
	"github.com/statsited/statsited/internal/sink"
	"github.com/statsited/statsited/internal/store"
)

// Core holds the live generation handle plus everything needed to build the
// next one and drain the previous one (spec.md §3 "Generation").
type Core struct {
	cfg   config.Config
	log   *logrus.Logger
	stats *selfstats.Stats

	live atomic.Pointer[metric.Store] // nil once shutting down (spec.md §4.6)
}

// New is the Init entry point (spec.md §6): builds the initial live
// MetricStore from cfg and records the configuration snapshot.
func New(cfg config.Config, log *logrus.Logger, stats *selfstats.Stats) *Core {
	c := &Core{cfg: cfg, log: log, stats: stats}
	c.setLive(c.newGeneration())
	return c
}

func (c *Core) newGeneration() metric.Store {
	s := store.New(c.cfg.TimerEps, c.cfg.HistogramRules(), c.cfg.SetPrecision)
	return &instrumentedStore{Store: s, stats: c.stats}
}

func (c *Core) setLive(s metric.Store) {
	if s == nil {
		c.live.Store(nil)
		return
	}
	c.live.Store(&s)
}

func (c *Core) loadLive() metric.Store {
	p := c.live.Load()
	if p == nil {
		return nil
	}
	return *p
}

// HandleClientConnect is invoked once per readability edge (spec.md §6): it
// consumes every complete line/frame currently buffered in conn, applying
// each to the live generation. It returns 0 on success (including
// "awaiting more data") and -1 on malformed input, which the caller
// (internal/server) takes as a signal to close the connection.
func (c *Core) HandleClientConnect(conn *protocol.Conn) int {
	live := c.loadLive()
	if live == nil {
		// Shutting down: ignore further samples (spec.md §4.6).
		return 0
	}

	err := protocol.Dispatch(conn, live, c.cfg.InputCounterKey())
	if err == nil {
		return 0
	}

	var perr *protocol.ParseError
	if errors.As(err, &perr) {
		c.log.WithFields(logrus.Fields{
			"reason": perr.Reason,
			"input":  string(perr.Line),
		}).Warn("malformed input, closing connection")
	} else {
		c.log.WithError(err).Warn("ingest error, closing connection")
	}
	if c.stats != nil {
		c.stats.ParseErrors.Inc()
	}
	return -1
}

// FlushIntervalTrigger performs the periodic rotation (spec.md §4.6): swap
// in a fresh generation, hand the old one to a detached drain goroutine.
func (c *Core) FlushIntervalTrigger() {
	next := c.newGeneration()
	old := c.swap(next)
	if c.stats != nil {
		c.stats.Rotations.Inc()
	}
	go c.drain(old)
}

// FinalFlush is the shutdown rotation (spec.md §4.6): swap LIVE to nil so
// the ingest path stops accepting samples, then drain the final generation
// synchronously — the Go equivalent of spawning the drain thread and
// joining it before the process exits.
func (c *Core) FinalFlush() {
	old := c.swap(nil)
	if c.stats != nil {
		c.stats.Rotations.Inc()
	}
	c.drain(old)
}

func (c *Core) swap(next metric.Store) metric.Store {
	old := c.loadLive()
	c.setLive(next)
	return old
}

func (c *Core) drain(old metric.Store) {
	if old == nil {
		return
	}
	defer old.Destroy()

	ts := time.Now().Unix()
	fmtr := c.formatter()
	if err := sink.Stream(old, ts, fmtr, c.cfg.StreamCmd); err != nil {
		c.log.WithError(err).Warn("streaming command exited non-zero or failed")
		if c.stats != nil {
			c.stats.SinkFailures.Inc()
		}
	}
}

func (c *Core) formatter() format.Formatter {
	if c.cfg.BinaryStream {
		return format.Binary{}
	}
	return format.Text{}
}
