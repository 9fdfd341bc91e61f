package facility_test

import (
	"testing"

	"github.com/UnknownOlympus/dialysphere/internal/facility"
	"github.com/UnknownOlympus/dialysphere/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var sampleDataset = []models.Facility{
	{AddressLine1: "1 Main St", City: "Springfield", State: "CA", PostalCode: "94000"},
	{AddressLine1: "200 Oak Ave", AddressLine2: "Suite 4", City: "Walnut Creek", State: "CA", PostalCode: "94596"},
	{AddressLine1: "12 Elm Rd", City: "Boston", State: "MA", PostalCode: "02118"},
	{AddressLine1: "9 Pine Ct", City: "Walnut Creek", State: "CA", PostalCode: "94596"},
	{AddressLine1: "No Zip Way", City: "Nowhere", State: "CA", PostalCode: ""},
	{AddressLine1: "12 Elm Rd", City: "Boston", State: "MA", PostalCode: "02118"},
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name       string
		postalCode string
		want       []string
	}{
		{
			name:       "single record",
			postalCode: "94000",
			want:       []string{"1 Main St, Springfield, CA 94000"},
		},
		{
			name:       "dataset order kept",
			postalCode: "94596",
			want: []string{
				"200 Oak Ave, Suite 4, Walnut Creek, CA 94596",
				"9 Pine Ct, Walnut Creek, CA 94596",
			},
		},
		{
			name:       "leading zeros and duplicates kept",
			postalCode: "02118",
			want: []string{
				"12 Elm Rd, Boston, MA 02118",
				"12 Elm Rd, Boston, MA 02118",
			},
		},
		{
			name:       "numeric equality is not enough",
			postalCode: "2118",
			want:       []string{},
		},
		{
			name:       "unknown postal code",
			postalCode: "10001",
			want:       []string{},
		},
		{
			name:       "empty postal code is no selection",
			postalCode: "",
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := facility.Match(tt.postalCode, sampleDataset)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Match(%q) mismatch (-want +got):\n%s", tt.postalCode, diff)
			}
		})
	}
}

func TestMatch_EmptyDataset(t *testing.T) {
	assert.Empty(t, facility.Match("94000", nil))
}

func TestFormatAddress(t *testing.T) {
	t.Run("without second line", func(t *testing.T) {
		f := models.Facility{AddressLine1: "1 Main St", City: "Springfield", State: "CA", PostalCode: "94000"}
		assert.Equal(t, "1 Main St, Springfield, CA 94000", facility.FormatAddress(f))
	})

	t.Run("with second line", func(t *testing.T) {
		f := models.Facility{
			AddressLine1: "1 Main St",
			AddressLine2: "Bldg B",
			City:         "Springfield",
			State:        "CA",
			PostalCode:   "94000",
		}
		assert.Equal(t, "1 Main St, Bldg B, Springfield, CA 94000", facility.FormatAddress(f))
	})
}

func TestDataset(t *testing.T) {
	records := []models.Facility{
		{AddressLine1: "1 Main St", City: "Springfield", State: "CA", PostalCode: "94000"},
	}
	dataset := facility.NewDataset(records)

	records[0].PostalCode = "11111"

	assert.Equal(t, 1, dataset.Len())
	assert.Equal(t, []string{"1 Main St, Springfield, CA 94000"}, dataset.Match("94000"))
	assert.Empty(t, dataset.Match("11111"))
}
