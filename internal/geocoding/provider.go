package geocoding

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/dialysphere/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// Geocode returns every candidate the service produced, best first. An empty
// slice with a nil error means the address is unknown to the service; a non-nil
// error means the request itself failed.
type Provider interface {
	Geocode(ctx context.Context, address string) ([]models.Coordinates, error)
}

// ErrEmptyAddress is returned when an empty address is passed to a provider.
var ErrEmptyAddress = errors.New("cannot geocode an empty address")
