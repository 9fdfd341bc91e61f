package models

// Selection is the location a user picked from the search results.
// A new value replaces the previous one; it is never mutated in place.
type Selection struct {
	ID          string  `json:"id"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	PostalCode  string  `json:"postal_code"` // PostalCode may be empty when the place has none.
	Description string  `json:"description,omitempty"`
}

// Coordinates returns the selected point.
func (s Selection) Coordinates() Coordinates {
	return Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
}
