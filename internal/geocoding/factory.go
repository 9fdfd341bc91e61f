package geocoding

import (
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
)

// ProviderConfig holds configuration for creating a geocoding provider.
// The API key is handed over here instead of being read from global state.
type ProviderConfig struct {
	Type     ProviderType // Type of provider to create
	APIKey   string       // API key (used by Google provider)
	Language string       // Preferred response language
	Region   string       // Region bias, ccTLD style ("us")
	Logger   *slog.Logger // Logger for the provider
}

// NewProvider creates a geocoding provider based on the provided configuration.
//
// Supported provider types:
// - "google": Google Maps Geocoding API (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		return newNominatimProvider(config), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newGoogleProvider creates a Google Maps geocoding provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	client, err := NewGoogleClient(config.APIKey)
	if err != nil {
		return nil, err
	}

	return NewGoogleProvider(client, config.Language, config.Region, config.Logger), nil
}

// NewGoogleClient builds a Google Maps client for the given key. The same client
// serves geocoding and places requests.
func NewGoogleClient(apiKey string) (*maps.Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return client, nil
}

// newNominatimProvider creates a Nominatim geocoding provider.
func newNominatimProvider(config ProviderConfig) Provider {
	// Nominatim is free and doesn't require an API key
	provider := NewNominatimProvider(config.Logger)
	if config.Language != "" {
		provider.language = config.Language
	}
	if config.Region != "" {
		provider.countryCodes = config.Region
	}

	return provider
}
