package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthCheck returns an error when the dependency it watches is unavailable.
type healthCheck func(ctx context.Context) error

// monitoringHandler serves /healthz, which runs every check, and /metrics.
func monitoringHandler(log *slog.Logger, reg *prometheus.Registry, checks map[string]healthCheck) http.Handler {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	slices.Sort(names)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		log.DebugContext(ctx, "Performing health checks...")

		var failed []string
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				log.WarnContext(ctx, "Health check failed", "check", name, "error", err)
				failed = append(failed, name)
			}
		}

		status, body := http.StatusOK, "OK"
		if len(failed) > 0 {
			status, body = http.StatusServiceUnavailable, strings.Join(failed, ", ")+" failed"
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux
}

// startMonitoringServer serves handler on port until ctx is canceled.
func startMonitoringServer(ctx context.Context, log *slog.Logger, handler http.Handler, port int) {
	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.ErrorContext(ctx, "Monitoring server shutdown failed", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}
