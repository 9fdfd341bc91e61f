package server_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UnknownOlympus/dialysphere/internal/facility"
	"github.com/UnknownOlympus/dialysphere/internal/models"
	"github.com/UnknownOlympus/dialysphere/internal/places"
	"github.com/UnknownOlympus/dialysphere/internal/selection"
	"github.com/UnknownOlympus/dialysphere/internal/server"
	"github.com/UnknownOlympus/dialysphere/test/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

// fakeSession records selections and serves a fixed view.
type fakeSession struct {
	selected []models.Selection
	view     selection.View
}

func (f *fakeSession) Select(sel models.Selection) (models.Selection, uint64) {
	sel.ID = "sel-1"
	f.selected = append(f.selected, sel)
	return sel, uint64(len(f.selected))
}

func (f *fakeSession) View() selection.View {
	return f.view
}

func setupServerTest(t *testing.T) (*gin.Engine, *mocks.PlacesAPIClient, *fakeSession) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := mocks.NewPlacesAPIClient(t)
	search := places.NewGoogleSearch(client, places.Config{Language: "en"}, slog.Default())
	dataset := facility.NewDataset([]models.Facility{
		{AddressLine1: "1 Main St", City: "Springfield", State: "CA", PostalCode: "94000"},
	})
	session := &fakeSession{view: selection.View{State: selection.Idle, Markers: []selection.Marker{}}}

	srv := server.NewServer(slog.Default(), search, dataset, session)

	return srv.Router(), client, session
}

func perform(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)

	return w
}

func TestAutocompleteAPI(t *testing.T) {
	t.Run("returns predictions", func(t *testing.T) {
		router, client, _ := setupServerTest(t)
		client.On("PlaceAutocomplete", mock.Anything, mock.MatchedBy(func(r *maps.PlaceAutocompleteRequest) bool {
			return r.Input == "springfield"
		})).Return(maps.AutocompleteResponse{
			Predictions: []maps.AutocompletePrediction{{PlaceID: "p1", Description: "Springfield, CA"}},
		}, nil).Once()

		w := perform(router, http.MethodGet, "/api/places/autocomplete?input=springfield", "")

		require.Equal(t, http.StatusOK, w.Code)
		var predictions []places.Prediction
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &predictions))
		require.Len(t, predictions, 1)
		assert.Equal(t, "p1", predictions[0].PlaceID)
	})

	t.Run("missing input", func(t *testing.T) {
		router, _, _ := setupServerTest(t)

		w := perform(router, http.MethodGet, "/api/places/autocomplete", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "input query parameter is required")
	})

	t.Run("upstream failure", func(t *testing.T) {
		router, client, _ := setupServerTest(t)
		client.On("PlaceAutocomplete", mock.Anything, mock.Anything).
			Return(maps.AutocompleteResponse{}, assert.AnError).Once()

		w := perform(router, http.MethodGet, "/api/places/autocomplete?input=x", "")

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("search not configured", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		srv := server.NewServer(slog.Default(), nil, facility.NewDataset(nil), &fakeSession{})

		w := perform(srv.Router(), http.MethodGet, "/api/places/autocomplete?input=x", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestSelectionAPI(t *testing.T) {
	t.Run("by place id", func(t *testing.T) {
		router, client, session := setupServerTest(t)
		client.On("PlaceDetails", mock.Anything, mock.MatchedBy(func(r *maps.PlaceDetailsRequest) bool {
			return r.PlaceID == "p1"
		})).Return(maps.PlaceDetailsResult{
			FormattedAddress: "1 Main St, Springfield, CA 94000",
			AddressComponents: []maps.AddressComponent{
				{ShortName: "94000", Types: []string{"postal_code"}},
			},
			Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 37.1, Lng: -121.9}},
		}, nil).Once()

		w := perform(router, http.MethodPost, "/api/selection", `{"place_id":"p1"}`)

		require.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, session.selected, 1)
		assert.Equal(t, "94000", session.selected[0].PostalCode)
		assert.InDelta(t, 37.1, session.selected[0].Latitude, 0)
		assert.JSONEq(t, `{
			"selection": {
				"id": "sel-1",
				"latitude": 37.1,
				"longitude": -121.9,
				"postal_code": "94000",
				"description": "1 Main St, Springfield, CA 94000"
			},
			"generation": 1
		}`, w.Body.String())
	})

	t.Run("by coordinates", func(t *testing.T) {
		router, _, session := setupServerTest(t)

		w := perform(router, http.MethodPost, "/api/selection",
			`{"latitude":37.5,"longitude":-122,"postal_code":" 94000 "}`)

		require.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, session.selected, 1)
		assert.Equal(t, "94000", session.selected[0].PostalCode)
	})

	t.Run("coordinates without postal code", func(t *testing.T) {
		router, _, session := setupServerTest(t)

		w := perform(router, http.MethodPost, "/api/selection", `{"latitude":0,"longitude":0}`)

		require.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, session.selected, 1)
		assert.Empty(t, session.selected[0].PostalCode)
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"malformed body", `{`},
			{"nothing selected", `{}`},
			{"latitude only", `{"latitude":1}`},
			{"latitude out of range", `{"latitude":91,"longitude":0}`},
			{"longitude out of range", `{"latitude":0,"longitude":-181}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router, _, session := setupServerTest(t)

				w := perform(router, http.MethodPost, "/api/selection", tt.body)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Empty(t, session.selected)
			})
		}
	})

	t.Run("place details failure", func(t *testing.T) {
		router, client, session := setupServerTest(t)
		client.On("PlaceDetails", mock.Anything, mock.Anything).
			Return(maps.PlaceDetailsResult{}, assert.AnError).Once()

		w := perform(router, http.MethodPost, "/api/selection", `{"place_id":"p1"}`)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Empty(t, session.selected)
	})
}

func TestMapAPI(t *testing.T) {
	router, _, _ := setupServerTest(t)

	w := perform(router, http.MethodGet, "/api/map", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"state": "idle",
		"generation": 0,
		"markers": [],
		"camera": {"center": {"latitude": 0, "longitude": 0}, "latitude_delta": 0, "longitude_delta": 0}
	}`, w.Body.String())
}

func TestFacilitiesAPI(t *testing.T) {
	router, _, _ := setupServerTest(t)

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"match", "/api/facilities?postal_code=94000", `{"postal_code":"94000","addresses":["1 Main St, Springfield, CA 94000"]}`},
		{"no match", "/api/facilities?postal_code=00000", `{"postal_code":"00000","addresses":[]}`},
		{"empty", "/api/facilities", `{"postal_code":"","addresses":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(router, http.MethodGet, tt.target, "")

			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}
