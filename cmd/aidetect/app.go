package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ai-detector/internal/cfg"
	"ai-detector/internal/detector"
	"ai-detector/internal/features"
	"ai-detector/internal/heuristic"
	"ai-detector/internal/lm"
	"ai-detector/internal/metrics"
	"ai-detector/internal/pos"
	"ai-detector/internal/storage"
)

// app holds the wired components shared by every command.
type app struct {
	settings cfg.Settings
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	svc      *detector.Service
	store    *storage.Store
	server   *http.Server
}

// openApp loads the configuration, applies flag overrides and wires the
// detector. The previously trained model is restored when present.
func openApp(flags *rootFlags) (*app, error) {
	c, err := cfg.Load()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if flags.logLevel != "" {
		c.LogLevel = flags.logLevel
	}
	if flags.modelPath != "" {
		c.ModelPath = flags.modelPath
	}
	if flags.dataPath != "" {
		c.DataPath = flags.dataPath
	}
	if err := setupLogging(c.LogLevel); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	mw := metrics.NewWrapper(m)

	scorer, err := lm.New(lm.Config{
		Kind:     c.Oracle.Kind,
		URL:      c.Oracle.URL,
		APIKey:   c.Oracle.APIKey,
		Model:    c.Oracle.Model,
		Timeout:  c.Oracle.Timeout,
		RPS:      c.Oracle.RPS,
		CacheTTL: c.Oracle.CacheTTL,
	}, mw)
	if err != nil {
		return nil, fmt.Errorf("oracle setup failed: %w", err)
	}

	var tagger features.Tagger
	if c.POSTagger {
		pt, err := pos.NewProseTagger()
		if err != nil {
			return nil, err
		}
		tagger = pt
	}

	heur, err := heuristic.New(c.Heuristic)
	if err != nil {
		return nil, err
	}

	extractor := features.NewExtractor(scorer, tagger, mw, c.Oracle.Timeout)
	svc := detector.New(heur, extractor, mw, c.TopK, c.ModelPath)

	a := &app{
		settings: c,
		registry: reg,
		metrics:  m,
		svc:      svc,
	}

	if a.store = initializeStorage(c); a.store != nil {
		svc.SetRegistry(a.store)
	}

	if err := svc.Restore(); err != nil {
		log.Warn().Err(err).Str("model_path", c.ModelPath).Msg("Failed to restore model, using heuristic scorer")
	}

	return a, nil
}

// Close stops the metrics server and closes the registry database.
func (a *app) Close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown error")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close model registry")
		}
	}
}

// initializeStorage opens the model registry if DATA_PATH is configured.
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath == "" {
		return nil
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("Model registry initialization failed, continuing without versioning")
		return nil
	}
	return store
}

// startMetricsServer exposes /metrics and /health when METRICS_PORT is set.
func (a *app) startMetricsServer() {
	if a.settings.MetricsPort <= 0 {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.server = &http.Server{
		Addr:              ":" + strconv.Itoa(a.settings.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		log.Info().Int("port", a.settings.MetricsPort).Msg("Starting metrics server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return nil
}
