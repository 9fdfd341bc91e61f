package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/dialysphere/internal/models"
)

// NominatimBaseURL is the public OpenStreetMap search endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// nominatimUserAgent identifies the service, as required by the Nominatim usage policy:
// https://operations.osmfoundation.org/policies/nominatim/
const nominatimUserAgent = "DialySphere/1.0 (https://github.com/UnknownOlympus/dialysphere)"

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
type NominatimProvider struct {
	client       HTTPClient   // HTTP client for making requests
	baseURL      string       // Base URL for the Nominatim API
	log          *slog.Logger // Logger for logging operations
	userAgent    string
	language     string // accept-language parameter
	countryCodes string // countrycodes filter
	limit        int    // maximum candidates per request
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat string `json:"lat"` // Latitude as string
	Lon string `json:"lon"` // Longitude as string
}

// ErrNominatimInvalidCoords is returned when a candidate carries unparsable coordinates.
var ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")

// NewNominatimProvider creates a new Nominatim geocoding provider.
// Uses the public Nominatim API endpoint by default.
func NewNominatimProvider(log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout * time.Second}, log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, log *slog.Logger) *NominatimProvider {
	const defaultLimit = 3
	return &NominatimProvider{
		client:       client,
		baseURL:      NominatimBaseURL,
		log:          log,
		userAgent:    nominatimUserAgent,
		language:     "en",
		countryCodes: "us",
		limit:        defaultLimit,
	}
}

// Geocode converts an address to geographic coordinates using the Nominatim API.
//
// Nominatim often misses addresses that carry a suite or unit line, so when the
// full address has no match the request is repeated without the second
// component ("1 Main St, Suite 4, Springfield, CA 94000" becomes
// "1 Main St, Springfield, CA 94000"). Request errors are returned immediately.
func (np *NominatimProvider) Geocode(ctx context.Context, address string) ([]models.Coordinates, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	np.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	variations := addressFallbacks(address)
	for idx, variation := range variations {
		candidates, err := np.search(ctx, variation)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			if idx > 0 {
				np.log.InfoContext(ctx, "Geocoded using fallback address",
					"original", address,
					"fallback", variation)
			}
			return candidates, nil
		}

		np.log.DebugContext(ctx, "Address variation returned no results", "variation", variation)
	}

	return []models.Coordinates{}, nil
}

// addressFallbacks returns the address followed by its variant without the
// secondary address line, when it has one.
func addressFallbacks(address string) []string {
	const minPartsWithSecondLine = 4

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	variations := []string{address}
	if len(parts) >= minPartsWithSecondLine {
		withoutUnit := append([]string{parts[0]}, parts[2:]...)
		variations = append(variations, strings.Join(withoutUnit, ", "))
	}

	return variations
}

// search performs a single geocoding request without fallback logic.
func (np *NominatimProvider) search(ctx context.Context, address string) ([]models.Coordinates, error) {
	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", strconv.Itoa(np.limit))
	query.Set("accept-language", np.language)
	if np.countryCodes != "" {
		query.Set("countrycodes", np.countryCodes)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResponse
	if err = json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	candidates := make([]models.Coordinates, 0, len(results))
	for _, result := range results {
		lat, errLat := strconv.ParseFloat(result.Lat, 64)
		if errLat != nil {
			return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, result.Lat)
		}
		lon, errLon := strconv.ParseFloat(result.Lon, 64)
		if errLon != nil {
			return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, result.Lon)
		}
		candidates = append(candidates, models.Coordinates{Latitude: lat, Longitude: lon})
	}

	return candidates, nil
}
