package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/dialysphere/internal/config"
	"github.com/UnknownOlympus/dialysphere/internal/facility"
	"github.com/UnknownOlympus/dialysphere/internal/geocoding"
	"github.com/UnknownOlympus/dialysphere/internal/locator"
	"github.com/UnknownOlympus/dialysphere/internal/metrics"
	"github.com/UnknownOlympus/dialysphere/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var errDatasetNotLoaded = errors.New("facility dataset is not loaded")

// region biases geocoding and place search to the dataset's country.
const region = "us"

// app holds what every command needs: configuration, logging, metrics and the dataset.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	dataset *facility.Dataset
	dtb     *pgxpool.Pool // dtb is nil unless the dataset lives in postgres.
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &app{cfg: cfg, log: logger, reg: reg, metrics: metrics.NewMetrics(reg)}

	src := facility.Source{
		Format: facility.Format(cfg.Dataset.Source),
		Path:   cfg.Dataset.Path,
		Sheet:  cfg.Dataset.Sheet,
	}
	if src.Format == facility.FormatPostgres {
		dtb, err := repository.NewDatabase(ctx,
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		a.dtb = dtb
		src.Store = repository.NewRepository(dtb, logger)
	}

	dataset, err := facility.Load(ctx, src, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to load facility dataset: %w", err)
	}
	a.dataset = dataset

	return a, nil
}

// geocoder builds the provider named in the configuration and wraps it in a locator.Geocoder.
func (a *app) geocoder(progress locator.ProgressFunc) (*locator.Geocoder, error) {
	policy, err := locator.ParseFailurePolicy(a.cfg.FailurePolicy)
	if err != nil {
		return nil, err
	}

	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:     geocoding.ProviderType(a.cfg.ProviderType),
		APIKey:   a.cfg.APIKey,
		Language: a.cfg.Language,
		Region:   region,
		Logger:   a.log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding provider: %w", err)
	}

	return locator.NewGeocoder(a.log, provider, a.cfg.ProviderType, a.metrics, locator.Options{
		Workers:        a.cfg.Workers,
		RequestTimeout: a.cfg.RequestTimeout,
		FailurePolicy:  policy,
		Progress:       progress,
	}), nil
}

// healthChecks lists the dependencies /healthz watches.
func (a *app) healthChecks() map[string]healthCheck {
	checks := map[string]healthCheck{
		"dataset": func(context.Context) error {
			if a.dataset == nil {
				return errDatasetNotLoaded
			}
			return nil
		},
	}
	if a.dtb != nil {
		checks["database"] = a.dtb.Ping
	}

	return checks
}

func (a *app) close() {
	if a.dtb != nil {
		a.dtb.Close()
	}
}
