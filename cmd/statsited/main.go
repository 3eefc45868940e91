// Command statsited runs the statsd-compatible ingest-and-flush daemon
// described in SPEC_FULL.md: it wires internal/server's listeners to
// internal/core.Core, which owns the live MetricStore generation and the
// periodic flush-interval rotation.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/statsited/statsited/internal/config"
	"github.com/statsited/statsited/internal/core"
	"github.com/statsited/statsited/internal/selfstats"
	"github.com/statsited/statsited/internal/server"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "/etc/statsited/statsited.toml", "path to the TOML config file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		os.Stdout.WriteString("statsited " + version + "\n")
		return
	}

	log := logrus.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if lvl, lvlErr := logrus.ParseLevel(cfg.LogLevel); lvlErr == nil {
		log.SetLevel(lvl)
	}

	reg := prometheus.NewRegistry()
	stats := selfstats.New(reg)

	c := core.New(cfg, log, stats)

	srv := server.New(c, log, cfg.Protocol, cfg.ListenAddress, 0)
	if err := srv.Start(); err != nil {
		log.WithError(err).Fatal("failed to start listener")
	}

	if cfg.SelfStatsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.SelfStatsAddress, mux); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Warn("self-stats HTTP server failed")
			}
		}()
		log.Infof("self-stats listening on %q", cfg.SelfStatsAddress)
	}

	ticker := time.NewTicker(time.Duration(cfg.FlushInterval) * time.Second)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Infof("statsited started, flushing every %ds", cfg.FlushInterval)
	for {
		select {
		case <-ticker.C:
			c.FlushIntervalTrigger()
		case <-sigCh:
			log.Info("shutting down")
			srv.Stop()
			c.FinalFlush()
			return
		}
	}
}
