// Package locator runs the facility pipeline: postal code match followed by geocoding.
package locator

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/dialysphere/internal/metrics"
	"github.com/UnknownOlympus/dialysphere/internal/models"
)

// Matcher produces the formatted addresses of facilities sharing a postal code.
type Matcher interface {
	Match(postalCode string) []string
}

// AddressGeocoder resolves a list of addresses. Geocoder implements it.
type AddressGeocoder interface {
	Geocode(ctx context.Context, addresses []string) ([]models.GeocodedFacility, error)
}

// Result is the output of one pipeline pass.
type Result struct {
	PostalCode string                    `json:"postal_code"`
	Matched    []string                  `json:"matched"`
	Facilities []models.GeocodedFacility `json:"facilities"`
}

// Locator glues the matcher and the geocoder together.
type Locator struct {
	log      *slog.Logger
	matcher  Matcher
	geocoder AddressGeocoder
	metrics  *metrics.Metrics
}

// NewLocator creates a Locator.
func NewLocator(log *slog.Logger, matcher Matcher, geocoder AddressGeocoder, metrics *metrics.Metrics) *Locator {
	return &Locator{log: log, matcher: matcher, geocoder: geocoder, metrics: metrics}
}

// Locate matches postalCode against the dataset and geocodes every match.
// An empty postal code produces an empty result without calling the geocoder.
// On error the partial result is still returned.
func (l *Locator) Locate(ctx context.Context, postalCode string) (Result, error) {
	matched := l.matcher.Match(postalCode)
	l.metrics.MatchedFacility.Observe(float64(len(matched)))

	l.log.InfoContext(ctx, "Facilities matched", "postal_code", postalCode, "count", len(matched))

	result := Result{PostalCode: postalCode, Matched: matched, Facilities: []models.GeocodedFacility{}}
	if len(matched) == 0 {
		return result, nil
	}

	facilities, err := l.geocoder.Geocode(ctx, matched)
	result.Facilities = facilities
	if err != nil {
		return result, err
	}

	l.log.InfoContext(ctx, "Facilities geocoded",
		"postal_code", postalCode,
		"matched", len(matched),
		"geocoded", len(facilities))

	return result, nil
}
