// Command bfj-proxy serves Battlefields API resources through a caching
// client, exposing Prometheus metrics and health endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tastac/bfj-client/pkg/client"
	"github.com/tastac/bfj-client/pkg/logging"
	"github.com/tastac/bfj-client/pkg/metrics"
)

// requestTimeout bounds how long a proxied request waits for its future.
const requestTimeout = 30 * time.Second

type proxyConfig struct {
	Port          string
	TraceExporter string
	Client        client.Config
}

func main() {
	logging.Setup(logging.FromEnv())
	logger := logging.NewLogger("bfj-proxy")

	cfg, err := configFromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	tp, err := newTracerProvider(cfg.TraceExporter, os.Stdout)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up tracing")
	}
	if tp != nil {
		cfg.Client.TracerProvider = tp
	}

	bfj, err := client.New(cfg.Client)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create client")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newMux(bfj, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("base_url", bfj.Config().BaseURL).
			Int("workers", bfj.Config().Workers).
			Dur("cache_ttl", bfj.Config().CacheTTL).
			Msg("Starting proxy server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), bfj.Config().ShutdownTimeout+5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server shutdown incomplete")
	}
	if err := bfj.Close(); err != nil {
		logger.Warn().Err(err).Msg("Client shutdown forced")
	}
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Tracer shutdown failed")
		}
	}
	logger.Info().Msg("Proxy stopped")
}

// configFromEnv reads the proxy configuration. Unset variables keep the
// client defaults.
func configFromEnv() (proxyConfig, error) {
	cfg := proxyConfig{
		Port:          getEnv("PORT", "8080"),
		TraceExporter: getEnv("TRACE_EXPORTER", "none"),
		Client:        client.DefaultConfig(),
	}
	cfg.Client.BaseURL = getEnv("BFJ_BASE_URL", cfg.Client.BaseURL)
	cfg.Client.UserAgent = getEnv("USER_AGENT", cfg.Client.UserAgent)

	var err error
	if cfg.Client.CacheTTL, err = durationEnv("CACHE_TTL", cfg.Client.CacheTTL); err != nil {
		return cfg, err
	}
	if cfg.Client.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.Client.ShutdownTimeout); err != nil {
		return cfg, err
	}
	if cfg.Client.Workers, err = intEnv("WORKERS", cfg.Client.Workers); err != nil {
		return cfg, err
	}
	if cfg.Client.CacheFailures, err = boolEnv("CACHE_FAILURES", cfg.Client.CacheFailures); err != nil {
		return cfg, err
	}

	if err := cfg.Client.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newTracerProvider returns nil for the "none" exporter.
func newTracerProvider(exporter string, w io.Writer) (*sdktrace.TracerProvider, error) {
	switch strings.ToLower(exporter) {
	case "", "none":
		return nil, nil
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp)), nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", exporter)
	}
}

func newMux(bfj *client.Client, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(bfj))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/api/", apiProxyHandler(bfj, logger))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// readyHandler reports 503 once the client has started shutting down.
func readyHandler(bfj *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if state := bfj.State(); state != client.StateRunning {
			http.Error(w, "client "+state.String(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

// apiProxyHandler maps /api/<endpoint>?<query> onto a cached fetch.
func apiProxyHandler(bfj *client.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		endpoint := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/")
		if endpoint == "" {
			http.NotFound(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		body, err := client.GetBytes(bfj, endpoint, r.URL.Query()).GetWithContext(ctx)
		switch {
		case err == nil:
		case errors.Is(err, client.ErrClientClosed):
			http.Error(w, "client is shutting down", http.StatusServiceUnavailable)
			return
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
			http.Error(w, "upstream request timed out", http.StatusGatewayTimeout)
			return
		default:
			logger.Debug().
				Err(err).
				Str("endpoint", endpoint).
				Str("error_class", string(client.Classify(err))).
				Msg("Proxy request failed")
			http.Error(w, fmt.Sprintf("API request failed: %v", err), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", http.DetectContentType(body))
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			if _, err := w.Write(body); err != nil {
				logger.Debug().Err(err).Msg("Failed to write response")
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
