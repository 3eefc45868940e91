package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "statsited.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `flush_interval_seconds = 5`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultListenAddress, cfg.ListenAddress)
	assert.Equal(t, "tcp", cfg.Protocol)
	assert.Equal(t, uint8(defaultSetPrecision), cfg.SetPrecision)
	assert.Equal(t, 5, cfg.FlushInterval)
}

func TestLoadRejectsZeroFlushInterval(t *testing.T) {
	path := writeTempConfig(t, "listen_address = \":1234\"\nflush_interval_seconds = 0\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadClampsOutOfRangeSetPrecision(t *testing.T) {
	path := writeTempConfig(t, "flush_interval_seconds = 5\nset_precision = 30\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint8(defaultSetPrecision), cfg.SetPrecision)
}

func TestLoadDefaultsUnknownProtocolToTCP(t *testing.T) {
	path := writeTempConfig(t, "flush_interval_seconds = 5\nprotocol = \"sctp\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp", cfg.Protocol)
}

func TestHistogramRulesConverts(t *testing.T) {
	path := writeTempConfig(t, `
flush_interval_seconds = 5
[[histograms]]
prefix = "req"
min = 0
max = 10
width = 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	rules := cfg.HistogramRules()
	require.Len(t, rules, 1)
	assert.Equal(t, "req", rules[0].Prefix)
	assert.Equal(t, 5.0, rules[0].BinWidth)
}

func TestInputCounterKeyNilWhenUnset(t *testing.T) {
	cfg := Default()
	assert.Nil(t, cfg.InputCounterKey())

	cfg.InputCounter = "count"
	assert.Equal(t, []byte("count"), cfg.InputCounterKey())
}
