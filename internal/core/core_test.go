package core

import (
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statsited/statsited/internal/config"
	"github.com/statsited/statsited/internal/protocol"
	"github.com/statsited/statsited/internal/selfstats"
)

func newTestCore(t *testing.T) *Core {
	t.Helper()
	cfg := config.Default()
	cfg.StreamCmd = "cat >/dev/null"
	log := logrus.New()
	log.SetOutput(io.Discard)
	stats := selfstats.New(prometheus.NewRegistry())
	return New(cfg, log, stats)
}

func connWith(text string) *protocol.Conn {
	c := &protocol.Conn{Protocol: protocol.ProtocolText}
	c.Buffer.Feed([]byte(text))
	return c
}

func TestHandleClientConnectAppliesValidSample(t *testing.T) {
	c := newTestCore(t)
	result := c.HandleClientConnect(connWith("foo:1|c\n"))
	assert.Equal(t, 0, result)
}

func TestHandleClientConnectReturnsNegativeOneOnParseError(t *testing.T) {
	c := newTestCore(t)
	result := c.HandleClientConnect(connWith("garbage\n"))
	assert.Equal(t, -1, result)
}

func TestHandleClientConnectReturnsZeroAfterFinalFlush(t *testing.T) {
	c := newTestCore(t)
	c.FinalFlush()
	result := c.HandleClientConnect(connWith("foo:1|c\n"))
	assert.Equal(t, 0, result, "samples after shutdown are silently dropped, not an error")
}

func TestFlushIntervalTriggerPreservesLiveAcceptance(t *testing.T) {
	c := newTestCore(t)
	before := c.loadLive()
	require.NotNil(t, before)

	c.FlushIntervalTrigger()

	after := c.loadLive()
	require.NotNil(t, after)
	assert.NotSame(t, before, after)

	result := c.HandleClientConnect(connWith("foo:1|c\n"))
	assert.Equal(t, 0, result)
}

func TestFinalFlushClearsLiveGeneration(t *testing.T) {
	c := newTestCore(t)
	c.FinalFlush()
	assert.Nil(t, c.loadLive())
}
