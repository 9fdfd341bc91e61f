package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/UnknownOlympus/dialysphere/internal/geocoding"
	"github.com/UnknownOlympus/dialysphere/internal/metrics"
	"github.com/UnknownOlympus/dialysphere/internal/models"
)

// FailurePolicy decides what a pass does when a provider request fails.
// Requests that succeed with zero candidates are never failures.
type FailurePolicy string

const (
	// FailurePolicySkip logs the failure and continues with the next address.
	FailurePolicySkip FailurePolicy = "skip"
	// FailurePolicyAbort stops the pass at the first failure.
	FailurePolicyAbort FailurePolicy = "abort"
)

var (
	// ErrPassAborted wraps the provider error that stopped a pass under FailurePolicyAbort.
	ErrPassAborted = errors.New("geocoding pass aborted")
	// ErrUnknownPolicy is returned by ParseFailurePolicy for unknown names.
	ErrUnknownPolicy = errors.New("unknown failure policy")
)

// ParseFailurePolicy converts a configuration value into a FailurePolicy.
// An empty value selects FailurePolicySkip.
func ParseFailurePolicy(value string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", FailurePolicySkip:
		return FailurePolicySkip, nil
	case FailurePolicyAbort:
		return FailurePolicyAbort, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, value)
	}
}

// ProgressFunc is called after each address is attempted.
type ProgressFunc func(done, total int)

// Options tune a Geocoder.
type Options struct {
	Workers        int           // Workers > 1 enables the bounded worker pool.
	RequestTimeout time.Duration // RequestTimeout bounds each provider call; zero disables it.
	FailurePolicy  FailurePolicy // FailurePolicy defaults to FailurePolicySkip.
	Progress       ProgressFunc  // Progress is optional.
}

// Geocoder resolves a list of addresses to coordinates, keeping the first
// candidate of each address and dropping addresses without candidates.
type Geocoder struct {
	log          *slog.Logger
	provider     geocoding.Provider
	providerName string
	metrics      *metrics.Metrics
	opts         Options
}

// NewGeocoder creates a Geocoder over provider. providerName labels the metrics.
func NewGeocoder(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	opts Options,
) *Geocoder {
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = FailurePolicySkip
	}

	return &Geocoder{
		log:          log,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		opts:         opts,
	}
}

// Geocode resolves addresses and returns one GeocodedFacility per address that
// produced at least one candidate, in input order. With a single worker the
// requests are strictly sequential; with more, at most Workers requests are in
// flight and the output order is still the input order.
//
// The returned error is non-nil only when ctx is done or when the abort policy
// stopped the pass; the results gathered up to that point are returned with it.
func (g *Geocoder) Geocode(ctx context.Context, addresses []string) ([]models.GeocodedFacility, error) {
	if len(addresses) == 0 {
		return []models.GeocodedFacility{}, nil
	}

	if g.opts.Workers > 1 && len(addresses) > 1 {
		return g.geocodePool(ctx, addresses)
	}

	return g.geocodeSequential(ctx, addresses)
}

func (g *Geocoder) geocodeSequential(ctx context.Context, addresses []string) ([]models.GeocodedFacility, error) {
	results := []models.GeocodedFacility{}

	for i, address := range addresses {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		coords, found, err := g.resolve(ctx, address)
		g.progress(i+1, len(addresses))

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			if g.opts.FailurePolicy == FailurePolicyAbort {
				return results, fmt.Errorf("%w at %q: %w", ErrPassAborted, address, err)
			}
			continue
		}
		if !found {
			continue
		}

		results = append(results, models.GeocodedFacility{Address: address, Coordinates: coords})
	}

	return results, nil
}

// job is an address tagged with its input position.
type job struct {
	index   int
	address string
}

// outcome is the result of a job, stored at the job's index.
type outcome struct {
	coords models.Coordinates
	found  bool
	err    error
	done   bool
}

func (g *Geocoder) geocodePool(ctx context.Context, addresses []string) ([]models.GeocodedFacility, error) {
	workers := min(g.opts.Workers, len(addresses))
	g.log.DebugContext(ctx, "Starting geocoding worker pool", "jobs", len(addresses), "num_workers", workers)

	jobs := make(chan job, len(addresses))
	outcomes := make([]outcome, len(addresses))
	state := &poolState{
		total:        len(addresses),
		firstFailure: -1,
		inFlight:     make(map[int]context.CancelFunc),
	}
	var wgr sync.WaitGroup

	for i := 1; i <= workers; i++ {
		wgr.Add(1)
		go g.worker(ctx, i, &wgr, jobs, outcomes, state)
	}

	for i, address := range addresses {
		jobs <- job{index: i, address: address}
	}
	close(jobs)

	wgr.Wait()

	limit := len(addresses)
	if state.firstFailure >= 0 {
		limit = state.firstFailure
	}

	results := []models.GeocodedFacility{}
	for i := range limit {
		if outcomes[i].done && outcomes[i].found {
			results = append(results, models.GeocodedFacility{Address: addresses[i], Coordinates: outcomes[i].coords})
		}
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	if state.firstFailure >= 0 {
		idx := state.firstFailure
		return results, fmt.Errorf("%w at %q: %w", ErrPassAborted, addresses[idx], outcomes[idx].err)
	}

	return results, nil
}

// poolState is shared by the workers of one pass.
type poolState struct {
	mu           sync.Mutex
	done         int
	total        int
	firstFailure int                        // lowest index that failed under the abort policy, -1 if none
	inFlight     map[int]context.CancelFunc // cancel functions of running jobs by index
}

// start registers a job about to run and returns its context. ok is false when
// the job lies after a recorded failure and must not run.
func (ps *poolState) start(ctx context.Context, index int) (context.Context, context.CancelFunc, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.firstFailure >= 0 && index > ps.firstFailure {
		return nil, nil, false
	}

	jobCtx, cancel := context.WithCancel(ctx)
	ps.inFlight[index] = cancel

	return jobCtx, cancel, true
}

// fail records a failure at index and cancels the running jobs after it.
// Jobs before the failure keep running so their results survive the abort.
// The caller holds mu.
func (ps *poolState) fail(index int) {
	if ps.firstFailure >= 0 && ps.firstFailure <= index {
		return
	}
	ps.firstFailure = index
	for i, cancel := range ps.inFlight {
		if i > index {
			cancel()
		}
	}
}

// worker resolves jobs until the channel is drained. Jobs after an abort and
// jobs dequeued once ctx is done are consumed without calling the provider.
func (g *Geocoder) worker(
	ctx context.Context,
	idx int,
	wg *sync.WaitGroup,
	jobs <-chan job,
	outcomes []outcome,
	state *poolState,
) {
	defer wg.Done()
	for j := range jobs {
		if ctx.Err() != nil {
			continue
		}
		jobCtx, cancel, ok := state.start(ctx, j.index)
		if !ok {
			continue
		}

		g.log.DebugContext(ctx, "Processing address", "worker", idx, "index", j.index)
		coords, found, err := g.resolve(jobCtx, j.address)
		outcomes[j.index] = outcome{coords: coords, found: found, err: err, done: true}

		state.mu.Lock()
		delete(state.inFlight, j.index)
		state.done++
		g.progress(state.done, state.total)
		if err != nil && jobCtx.Err() == nil && g.opts.FailurePolicy == FailurePolicyAbort {
			state.fail(j.index)
		}
		state.mu.Unlock()
		cancel()
	}
}

// resolve performs one provider call and records its metrics. found is false
// when the provider answered with no candidates.
func (g *Geocoder) resolve(ctx context.Context, address string) (models.Coordinates, bool, error) {
	reqCtx := ctx
	if g.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, g.opts.RequestTimeout)
		defer cancel()
	}

	startTime := time.Now()
	candidates, err := g.provider.Geocode(reqCtx, address)
	duration := time.Since(startTime).Seconds()
	g.metrics.RequestSeconds.WithLabelValues(g.providerName).Observe(duration)

	switch {
	case err != nil && ctx.Err() != nil:
		g.metrics.GeocodeRequests.WithLabelValues(metrics.OutcomeCanceled).Inc()
		g.log.DebugContext(ctx, "Geocode request canceled", "address", address, "error", err)
		return models.Coordinates{}, false, err
	case err != nil:
		g.metrics.GeocodeRequests.WithLabelValues(metrics.OutcomeFailure).Inc()
		g.log.WarnContext(ctx, "Failed to geocode address", "address", address, "error", err)
		return models.Coordinates{}, false, err
	case len(candidates) == 0:
		g.metrics.GeocodeRequests.WithLabelValues(metrics.OutcomeEmpty).Inc()
		g.log.DebugContext(ctx, "No candidates for address", "address", address)
		return models.Coordinates{}, false, nil
	default:
		g.metrics.GeocodeRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
		return candidates[0], true, nil
	}
}

func (g *Geocoder) progress(done, total int) {
	if g.opts.Progress != nil {
		g.opts.Progress(done, total)
	}
}
