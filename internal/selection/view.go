package selection

import (
	"math"

	"github.com/UnknownOlympus/dialysphere/internal/models"
)

const earthRadius = 6371000.0 // meters

// Initial camera of the map, before anything is selected.
const (
	DefaultLatitude  = 37.8348
	DefaultLongitude = -121.9501
	DefaultDelta     = 0.02
)

// Camera is the visible region of the map.
type Camera struct {
	Center         models.Coordinates `json:"center"`
	LatitudeDelta  float64            `json:"latitude_delta"`
	LongitudeDelta float64            `json:"longitude_delta"`
}

// DefaultCamera returns the camera shown on an idle map.
func DefaultCamera() Camera {
	return Camera{
		Center:         models.Coordinates{Latitude: DefaultLatitude, Longitude: DefaultLongitude},
		LatitudeDelta:  DefaultDelta,
		LongitudeDelta: DefaultDelta,
	}
}

// CenterOn returns a copy of c moved to target with the same zoom.
func (c Camera) CenterOn(target models.Coordinates) Camera {
	c.Center = target
	return c
}

// Marker is a facility pin.
type Marker struct {
	Address        string             `json:"address"`
	Coordinates    models.Coordinates `json:"coordinates"`
	DistanceMeters float64            `json:"distance_meters"`
}

// NewMarker builds the marker of f, measured from home.
func NewMarker(home models.Coordinates, f models.GeocodedFacility) Marker {
	return Marker{
		Address:        f.Address,
		Coordinates:    f.Coordinates,
		DistanceMeters: Haversine(home, f.Coordinates),
	}
}

// View is what the map surface renders.
type View struct {
	State      State               `json:"state"`
	Generation uint64              `json:"generation"`
	Selection  *models.Selection   `json:"selection,omitempty"`
	Home       *models.Coordinates `json:"home,omitempty"`
	Markers    []Marker            `json:"markers"`
	Camera     Camera              `json:"camera"`
	Error      string              `json:"error,omitempty"`
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Haversine computes the great-circle distance between a and b in meters.
func Haversine(a, b models.Coordinates) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude) - toRadians(a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}
