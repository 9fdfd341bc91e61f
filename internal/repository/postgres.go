package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/dialysphere/internal/models"
)

// FetchFacilities retrieves every facility of the dataset table in insertion order.
// Missing optional columns are returned as empty strings.
//
// Parameters:
// - ctx: The context for the operation, allowing for cancellation and timeout.
//
// Returns:
// - A slice of models.Facility ordered by id.
// - An error if the query fails or if there is an issue scanning the results.
func (r *Repository) FetchFacilities(ctx context.Context) ([]models.Facility, error) {
	var facilities []models.Facility
	query := `
		SELECT
			COALESCE(name, ''),
			address_line_1,
			COALESCE(address_line_2, ''),
			city,
			state,
			zip_code
		FROM public.facilities
		ORDER BY id ASC;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query facilities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.Facility
		if errScan := rows.Scan(
			&f.Name, &f.AddressLine1, &f.AddressLine2, &f.City, &f.State, &f.PostalCode,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan facility: %w", errScan)
		}
		facilities = append(facilities, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Facilities fetched from database", "count", len(facilities))

	return facilities, nil
}
