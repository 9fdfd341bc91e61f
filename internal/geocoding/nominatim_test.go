package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/dialysphere/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestNominatimProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), geocoding.NominatimBaseURL)
				assert.Equal(t, "1 Main St, Springfield, CA 94000", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "3", req.URL.Query().Get("limit"))
				assert.Equal(t, "us", req.URL.Query().Get("countrycodes"))
				assert.Equal(t, "en", req.URL.Query().Get("accept-language"))
				assert.Contains(t, req.Header.Get("User-Agent"), "DialySphere/1.0")

				return jsonResponse(http.StatusOK,
					`[{"lat":"37.4224764","lon":"-122.0842499"},{"lat":"37.5","lon":"-122.1"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "1 Main St, Springfield, CA 94000")

		require.NoError(t, err)
		require.Len(t, coords, 2)
		assert.InEpsilon(t, 37.4224764, coords[0].Latitude, 0.0001)
		assert.InEpsilon(t, -122.0842499, coords[0].Longitude, 0.0001)
	})

	t.Run("empty response from API", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "invalid address")

		require.NoError(t, err)
		assert.Empty(t, coords)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, coords)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `invalid json`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, coords)
		assert.Contains(t, err.Error(), "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"invalid","lon":"-122.0842499"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"37.4224764","lon":"invalid"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid longitude")
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Nil(t, coords)
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to execute geocoding request")
	})

	t.Run("empty address", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("HTTP client should not be called for an empty address")
				return nil, nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "")

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrEmptyAddress)
	})

	t.Run("context cancellation", func(t *testing.T) {
		newCtx, cancel := context.WithCancel(context.Background())
		cancel()

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, req.Context().Err()
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(newCtx, "some address")

		require.Nil(t, coords)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNominatimProvider_SecondLineFallback(t *testing.T) {
	ctx := t.Context()
	logger := slog.Default()

	t.Run("retries without suite line", func(t *testing.T) {
		var queries []string
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				query := req.URL.Query().Get("q")
				queries = append(queries, query)
				if query == "200 Oak Ave, Walnut Creek, CA 94596" {
					return jsonResponse(http.StatusOK, `[{"lat":"37.9","lon":"-122.06"}]`), nil
				}
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "200 Oak Ave, Suite 4, Walnut Creek, CA 94596")

		require.NoError(t, err)
		require.Len(t, coords, 1)
		assert.Equal(t, []string{
			"200 Oak Ave, Suite 4, Walnut Creek, CA 94596",
			"200 Oak Ave, Walnut Creek, CA 94596",
		}, queries)
	})

	t.Run("address without suite line is tried once", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		coords, err := provider.Geocode(ctx, "1 Main St, Springfield, CA 94000")

		require.NoError(t, err)
		assert.Empty(t, coords)
		assert.Equal(t, 1, requestCount)
	})

	t.Run("request error stops fallbacks", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return jsonResponse(http.StatusInternalServerError, `boom`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, logger)
		_, err := provider.Geocode(ctx, "200 Oak Ave, Suite 4, Walnut Creek, CA 94596")

		require.Error(t, err)
		assert.Equal(t, 1, requestCount)
	})
}

func TestNewNominatimProvider(t *testing.T) {
	provider := geocoding.NewNominatimProvider(slog.Default())

	require.NotNil(t, provider)
}
