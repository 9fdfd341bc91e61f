// Package facility holds the static facility dataset and the postal code matcher.
package facility

import (
	"strings"

	"github.com/UnknownOlympus/dialysphere/internal/models"
)

// Match returns the formatted address of every facility whose postal code equals
// postalCode, in dataset order. An empty postal code means "no selection" and
// yields no matches, even for records that have no postal code themselves.
func Match(postalCode string, dataset []models.Facility) []string {
	if postalCode == "" {
		return []string{}
	}

	addresses := []string{}
	for _, f := range dataset {
		if f.PostalCode != postalCode {
			continue
		}
		addresses = append(addresses, FormatAddress(f))
	}

	return addresses
}

// FormatAddress renders a facility as a single line:
// "{line1}, {line2, }{city}, {state} {postal code}".
func FormatAddress(f models.Facility) string {
	var b strings.Builder

	b.WriteString(f.AddressLine1)
	b.WriteString(", ")
	if f.AddressLine2 != "" {
		b.WriteString(f.AddressLine2)
		b.WriteString(", ")
	}
	b.WriteString(f.City)
	b.WriteString(", ")
	b.WriteString(f.State)
	b.WriteString(" ")
	b.WriteString(f.PostalCode)

	return b.String()
}

// Dataset is the immutable list of facilities loaded at startup.
type Dataset struct {
	records []models.Facility
}

// NewDataset wraps records. The slice is copied so later edits by the caller are not observed.
func NewDataset(records []models.Facility) *Dataset {
	cp := make([]models.Facility, len(records))
	copy(cp, records)

	return &Dataset{records: cp}
}

// Match matches postalCode against the dataset. See Match.
func (d *Dataset) Match(postalCode string) []string {
	return Match(postalCode, d.records)
}

// Len reports the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}
