package facility

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/UnknownOlympus/dialysphere/internal/models"
)

// Column names used by the Dialysis Facility Compare export.
const (
	ColumnName         = "Facility Name"
	ColumnAddressLine1 = "Address Line 1"
	ColumnAddressLine2 = "Address Line 2"
	ColumnCity         = "City/Town"
	ColumnState        = "State"
	ColumnPostalCode   = "ZIP Code"
)

// text decodes a JSON string, number or null into its textual form.
// Numbers keep the literal digits as written in the file.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", string(data))
		}
		*t = text(n.String())
	}

	return nil
}

type jsonRecord struct {
	Name         text `json:"Facility Name"`
	AddressLine1 text `json:"Address Line 1"`
	AddressLine2 text `json:"Address Line 2"`
	City         text `json:"City/Town"`
	State        text `json:"State"`
	PostalCode   text `json:"ZIP Code"`
}

// LoadJSON reads a JSON array of facility objects keyed by the dataset column names.
func LoadJSON(r io.Reader) ([]models.Facility, error) {
	var records []jsonRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode facility dataset: %w", err)
	}

	facilities := make([]models.Facility, 0, len(records))
	for _, rec := range records {
		facilities = append(facilities, newFacility(
			string(rec.Name),
			string(rec.AddressLine1),
			string(rec.AddressLine2),
			string(rec.City),
			string(rec.State),
			string(rec.PostalCode),
		))
	}

	return facilities, nil
}

func newFacility(name, line1, line2, city, state, postalCode string) models.Facility {
	return models.Facility{
		Name:         strings.TrimSpace(name),
		AddressLine1: strings.TrimSpace(line1),
		AddressLine2: strings.TrimSpace(line2),
		City:         strings.TrimSpace(city),
		State:        strings.TrimSpace(state),
		PostalCode:   strings.TrimSpace(postalCode),
	}
}
