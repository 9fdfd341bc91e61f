// Package selection drives the locator pipeline from user selections and keeps
// the map view those selections produce.
package selection

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/dialysphere/internal/locator"
	"github.com/UnknownOlympus/dialysphere/internal/metrics"
	"github.com/UnknownOlympus/dialysphere/internal/models"
	"github.com/google/uuid"
)

// State is the position of a Session in its lifecycle.
type State int

const (
	// Idle means nothing was selected yet.
	Idle State = iota
	// LocationSelected means a pass for the current selection is in flight.
	LocationSelected
	// ResultsReady means the pass for the current selection finished.
	ResultsReady
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LocationSelected:
		return "location_selected"
	case ResultsReady:
		return "results_ready"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Pipeline runs one match and geocode pass. *locator.Locator implements it.
type Pipeline interface {
	Locate(ctx context.Context, postalCode string) (locator.Result, error)
}

// Session holds the current selection and the results of its pass.
//
// Every Select bumps the generation and cancels the pass started by the
// previous selection. A pass only publishes its results when its generation is
// still the current one, so a slow pass can never overwrite newer results.
type Session struct {
	log      *slog.Logger
	pipeline Pipeline
	metrics  *metrics.Metrics
	base     context.Context

	mu         sync.Mutex
	state      State
	generation uint64
	selection  *models.Selection
	results    []models.GeocodedFacility
	passErr    error
	camera     Camera
	cancel     context.CancelFunc

	wg sync.WaitGroup
}

// NewSession creates an idle session. Passes run under ctx; canceling it stops
// every in-flight pass.
func NewSession(ctx context.Context, log *slog.Logger, pipeline Pipeline, metrics *metrics.Metrics) *Session {
	return &Session{
		log:      log,
		pipeline: pipeline,
		metrics:  metrics,
		base:     ctx,
		camera:   DefaultCamera(),
	}
}

// Select makes sel the current selection and starts a pass for its postal
// code. Previous results are discarded and the previous pass, if any, is
// canceled. The camera moves to sel. A missing ID is generated. Select returns
// the stored selection and its generation.
func (s *Session) Select(sel models.Selection) (models.Selection, uint64) {
	if sel.ID == "" {
		sel.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	s.generation++
	gen := s.generation
	s.selection = &sel
	s.results = nil
	s.passErr = nil
	s.state = LocationSelected
	s.camera = s.camera.CenterOn(sel.Coordinates())

	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel

	s.metrics.Selections.Inc()
	s.log.InfoContext(ctx, "Location selected",
		"selection", sel.ID,
		"generation", gen,
		"postal_code", sel.PostalCode)

	s.wg.Add(1)
	go s.run(ctx, cancel, gen, sel)

	return sel, gen
}

// run executes one pass and publishes its results if gen is still current.
func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen uint64, sel models.Selection) {
	defer s.wg.Done()
	defer cancel()

	s.metrics.ActivePasses.Inc()
	defer s.metrics.ActivePasses.Dec()

	result, err := s.pipeline.Locate(ctx, sel.PostalCode)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.metrics.StalePasses.Inc()
		s.log.DebugContext(ctx, "Discarding stale pass",
			"selection", sel.ID,
			"generation", gen,
			"current", s.generation)
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.log.InfoContext(ctx, "Pass canceled", "selection", sel.ID, "generation", gen)
		} else {
			s.log.ErrorContext(ctx, "Pass failed", "selection", sel.ID, "generation", gen, "error", err)
		}
	}

	s.results = result.Facilities
	s.passErr = err
	s.state = ResultsReady

	s.log.InfoContext(ctx, "Results ready",
		"selection", sel.ID,
		"generation", gen,
		"facilities", len(result.Facilities))
}

// View returns a snapshot of the map.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		State:      s.state,
		Generation: s.generation,
		Markers:    []Marker{},
		Camera:     s.camera,
	}
	if s.selection == nil {
		return view
	}

	sel := *s.selection
	home := sel.Coordinates()
	view.Selection = &sel
	view.Home = &home
	for _, f := range s.results {
		view.Markers = append(view.Markers, NewMarker(home, f))
	}
	if s.passErr != nil {
		view.Error = s.passErr.Error()
	}

	return view
}

// Wait blocks until every started pass has returned.
func (s *Session) Wait() {
	s.wg.Wait()
}
