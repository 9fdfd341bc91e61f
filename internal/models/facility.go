package models

// Facility is a single record of the static facility dataset.
// Records are read once at startup and never modified afterwards.
type Facility struct {
	Name         string `json:"name,omitempty"`           // Name is the facility name, when the dataset carries one.
	AddressLine1 string `json:"address_line_1"`           // AddressLine1 is the street line.
	AddressLine2 string `json:"address_line_2,omitempty"` // AddressLine2 is the optional suite/unit line.
	City         string `json:"city"`                     // City is the city or town.
	State        string `json:"state"`                    // State is the state abbreviation.
	PostalCode   string `json:"postal_code"`              // PostalCode is kept as text so leading zeros survive.
}

// GeocodedFacility pairs a matched address with the coordinates it resolved to.
type GeocodedFacility struct {
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
}
