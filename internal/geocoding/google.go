package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/dialysphere/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client   GoogleAPIClient // client is the Google Maps API client
	language string          // language of formatted results
	region   string          // region bias
	log      *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider around an already configured client.
func NewGoogleProvider(client GoogleAPIClient, language, region string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, language: language, region: region, log: log}
}

// Geocode takes a context and an address string as input, and returns the candidate
// coordinates for the address using the Google Maps Geocoding API, in API order.
// The client reports ZERO_RESULTS as an empty response, which yields an empty slice.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) ([]models.Coordinates, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address, Language: gp.language, Region: gp.region}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	candidates := make([]models.Coordinates, 0, len(geocodeResponse))
	for _, result := range geocodeResponse {
		loc := result.Geometry.Location
		candidates = append(candidates, models.Coordinates{Longitude: loc.Lng, Latitude: loc.Lat})
	}

	return candidates, nil
}
