package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/dialysphere/internal/geocoding"
	"github.com/UnknownOlympus/dialysphere/internal/locator"
	"github.com/UnknownOlympus/dialysphere/internal/places"
	"github.com/UnknownOlympus/dialysphere/internal/selection"
	"github.com/UnknownOlympus/dialysphere/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the map API and the monitoring server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Create a context that will be canceled when an interrupt signal is received.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	geocoder, err := a.geocoder(nil)
	if err != nil {
		return err
	}
	a.log.InfoContext(ctx, "Geocoding provider initialized", "type", a.cfg.ProviderType, "workers", a.cfg.Workers)

	var search server.Searcher
	if a.cfg.APIKey != "" {
		client, err := geocoding.NewGoogleClient(a.cfg.APIKey)
		if err != nil {
			return err
		}
		search = places.NewGoogleSearch(client, places.Config{Language: a.cfg.Language, Country: region}, a.log)
	} else {
		a.log.WarnContext(ctx, "No Google API key configured, place search is disabled")
	}

	pipeline := locator.NewLocator(a.log, a.dataset, geocoder, a.metrics)
	session := selection.NewSession(ctx, a.log, pipeline, a.metrics)
	api := server.NewServer(a.log, search, a.dataset, session)

	a.log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, a.log, monitoringHandler(a.log, a.reg, a.healthChecks()), a.cfg.HealthPort)

	err = api.Run(ctx, a.cfg.Port)

	// Wait for in-flight passes, they stop as soon as ctx is canceled.
	session.Wait()

	if err != nil {
		a.log.ErrorContext(ctx, "API server stopped with error", "error", err)
		return err
	}

	a.log.InfoContext(ctx, "Application stopped gracefully.")

	return nil
}
