// Package config loads the Configuration external collaborator (spec.md
// §6) from a TOML file, the teacher's (telegraf's) configuration format.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/statsited/statsited/internal/metric"
)

const (
	defaultListenAddress = ":8125"
	defaultFlushInterval = 10
	defaultSetPrecision  = 14
	defaultTimerEps      = 0.01
)

// HistogramRule is the TOML shape of a metric.HistogramRule.
type HistogramRule struct {
	Prefix string  `toml:"prefix"`
	Min    float64 `toml:"min"`
	Max    float64 `toml:"max"`
	Width  float64 `toml:"width"`
}

// Config is the Configuration collaborator from spec.md §6, loaded from a
// TOML file mirroring the teacher's config style. Field names are Go's
// idiomatic re-expression of statsite's original statsite_config struct
// (see SPEC_FULL.md "Supplemented features").
type Config struct {
	ListenAddress string `toml:"listen_address"`
	Protocol      string `toml:"protocol"` // "tcp" or "udp"

	TimerEps      float64         `toml:"timer_eps"`
	Histograms    []HistogramRule `toml:"histograms"`
	SetPrecision  uint8           `toml:"set_precision"`
	BinaryStream  bool            `toml:"binary_stream"`
	StreamCmd     string          `toml:"stream_command"`
	InputCounter  string          `toml:"input_counter"`
	FlushInterval int             `toml:"flush_interval_seconds"`

	LogLevel string `toml:"log_level"`

	// SelfStatsAddress, if non-empty, serves Prometheus-format internal
	// instrumentation (internal/selfstats) on this address.
	SelfStatsAddress string `toml:"self_stats_address"`
}

// Default returns a Config with the teacher's (telegraf statsd input's)
// style of zero-value-safe defaults applied.
func Default() Config {
	return Config{
		ListenAddress: defaultListenAddress,
		Protocol:      "tcp",
		TimerEps:      defaultTimerEps,
		SetPrecision:  defaultSetPrecision,
		FlushInterval: defaultFlushInterval,
		LogLevel:      "info",
	}
}

// Load reads and parses a TOML config file at path, applying defaults for
// anything left unset.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg.normalize()
}

func (c Config) normalize() (Config, error) {
	if c.FlushInterval <= 0 {
		return Config{}, fmt.Errorf("flush_interval_seconds must be > 0, got %d", c.FlushInterval)
	}
	if c.SetPrecision < 4 || c.SetPrecision > 18 {
		c.SetPrecision = defaultSetPrecision
	}
	if c.Protocol != "tcp" && c.Protocol != "udp" {
		c.Protocol = "tcp"
	}
	return c, nil
}

// HistogramRules converts the TOML-shaped rule list into the metric
// package's representation consumed by internal/store.
func (c Config) HistogramRules() []metric.HistogramRule {
	rules := make([]metric.HistogramRule, 0, len(c.Histograms))
	for _, r := range c.Histograms {
		rules = append(rules, metric.HistogramRule{
			Prefix:   r.Prefix,
			MinVal:   r.Min,
			MaxVal:   r.Max,
			BinWidth: r.Width,
		})
	}
	return rules
}

// InputCounterKey returns the configured input-counter key as bytes, or nil
// if none is configured (spec.md §6 "input_counter optional key").
func (c Config) InputCounterKey() []byte {
	if c.InputCounter == "" {
		return nil
	}
	return []byte(c.InputCounter)
}
