// Package places turns free-text searches into a Selection using the Google Places API.
package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/UnknownOlympus/dialysphere/internal/models"
	"googlemaps.github.io/maps"
)

// postalCodeType tags the address component holding the postal code.
const postalCodeType = "postal_code"

// Errors returned by the search.
var (
	ErrEmptyInput   = errors.New("search input is empty")
	ErrEmptyPlaceID = errors.New("place id is empty")
)

// PlacesAPIClient is the part of the Google Maps client used for place search.
type PlacesAPIClient interface {
	PlaceAutocomplete(ctx context.Context, r *maps.PlaceAutocompleteRequest) (maps.AutocompleteResponse, error)
	PlaceDetails(ctx context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error)
}

// Config carries the settings of the search client. The API key itself lives in
// the client passed to NewGoogleSearch.
type Config struct {
	Language string // Language of predictions and details.
	Country  string // Country restriction for predictions, empty for none.
}

// Prediction is a single autocomplete suggestion.
type Prediction struct {
	PlaceID       string `json:"place_id"`
	Description   string `json:"description"`
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

// GoogleSearch implements place autocomplete and resolution with Google Places.
type GoogleSearch struct {
	client PlacesAPIClient
	config Config
	log    *slog.Logger
}

// NewGoogleSearch creates a search over the given client.
func NewGoogleSearch(client PlacesAPIClient, config Config, log *slog.Logger) *GoogleSearch {
	return &GoogleSearch{client: client, config: config, log: log}
}

// Autocomplete returns the predictions for a partial query, in API order.
func (gs *GoogleSearch) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	req := &maps.PlaceAutocompleteRequest{Input: input, Language: gs.config.Language}
	if gs.config.Country != "" {
		req.Components = map[maps.Component][]string{maps.ComponentCountry: {gs.config.Country}}
	}

	resp, err := gs.client.PlaceAutocomplete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to autocomplete %q: %w", input, err)
	}

	predictions := make([]Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		predictions = append(predictions, Prediction{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}

	gs.log.DebugContext(ctx, "Autocomplete finished", "input", input, "predictions", len(predictions))

	return predictions, nil
}

// Resolve fetches the details of a place and converts them into a Selection.
// The postal code is empty when the place has no postal_code component.
func (gs *GoogleSearch) Resolve(ctx context.Context, placeID string) (models.Selection, error) {
	if placeID == "" {
		return models.Selection{}, ErrEmptyPlaceID
	}

	req := &maps.PlaceDetailsRequest{
		PlaceID:  placeID,
		Language: gs.config.Language,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskAddressComponent,
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskGeometry,
		},
	}

	details, err := gs.client.PlaceDetails(ctx, req)
	if err != nil {
		return models.Selection{}, fmt.Errorf("failed to fetch place details for %s: %w", placeID, err)
	}

	selection := models.Selection{
		Latitude:    details.Geometry.Location.Lat,
		Longitude:   details.Geometry.Location.Lng,
		PostalCode:  PostalCode(details.AddressComponents),
		Description: details.FormattedAddress,
	}

	gs.log.DebugContext(ctx, "Place resolved",
		"place_id", placeID,
		"postal_code", selection.PostalCode,
		"lat", selection.Latitude,
		"lng", selection.Longitude)

	return selection, nil
}

// PostalCode returns the short name of the first component typed postal_code,
// or an empty string when there is none.
func PostalCode(components []maps.AddressComponent) string {
	for _, c := range components {
		if slices.Contains(c.Types, postalCodeType) {
			return c.ShortName
		}
	}

	return ""
}
