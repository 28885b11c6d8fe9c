package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"concrete-predictor/internal/api"
	"concrete-predictor/internal/cfg"
	"concrete-predictor/internal/history"
	"concrete-predictor/internal/metrics"
	"concrete-predictor/internal/model"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	setupLogging(c)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	// Both model files are required; refuse to start without them.
	handler, err := model.NewWithMetrics(c.ModelPath, c.MetadataPath, m, c.PredictTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("model load failed, refusing to start")
	}

	histLog := initializeHistory(c)
	defer histLog.Close()
	m.HistorySizeSet(histLog.Len())

	startMetricsServer(ctx, c)

	server := api.NewServer(handler, histLog, m, c.ExportDir, c.ListenPort)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("api server failed")
			cancel()
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown api server")
		}
	}()

	waitForShutdown(ctx, cancel, &wg)
}

// setupLogging configures zerolog with a console writer and an optional
// append-mode file sink.
func setupLogging(c cfg.Settings) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Warn().Err(err).Str("log_file", c.LogFile).Msg("failed to open log file, console only")
			log.Logger = log.Output(console)
			return
		}
		log.Logger = log.Output(io.MultiWriter(console, f))
		return
	}

	log.Logger = log.Output(console)
}

// initializeHistory opens the persistent history log, falling back to a
// memory-only session when persistence is unavailable.
func initializeHistory(c cfg.Settings) *history.Log {
	histLog, err := history.New(c.DataPath)
	if err != nil {
		log.Warn().Err(err).Msg("history persistence unavailable, continuing in-memory")
		histLog, _ = history.New("")
	}
	if c.DataPath != "" && err == nil {
		log.Info().Str("data_path", c.DataPath).Int("records", histLog.Len()).Msg("history loaded")
	}
	return histLog
}

// startMetricsServer starts the Prometheus metrics HTTP server.
func startMetricsServer(ctx context.Context, c cfg.Settings) {
	go func() {
		mux := http.NewServeMux()

		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", c.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// waitForShutdown waits for shutdown signals and handles graceful shutdown.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, wg *sync.WaitGroup) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("all goroutines stopped")
	case <-time.After(10 * time.Second):
		log.Warn().Msg("shutdown timeout, forcing exit")
	}
}
