package facility

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/UnknownOlympus/dialysphere/internal/models"
	"github.com/xuri/excelize/v2"
)

// Errors returned by the tabular loaders.
var (
	ErrEmptyTable    = errors.New("facility table has no header row")
	ErrMissingColumn = errors.New("facility table is missing a required column")
)

var requiredColumns = []string{ColumnAddressLine1, ColumnCity, ColumnState, ColumnPostalCode}

// LoadCSV reads a CSV export whose first row names the dataset columns.
// Column order is irrelevant; unknown columns are ignored.
func LoadCSV(r io.Reader) ([]models.Facility, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv dataset: %w", err)
	}

	return fromRows(rows)
}

// LoadXLSX reads the given sheet of a workbook; an empty sheet name selects the first sheet.
func LoadXLSX(r io.Reader, sheet string) ([]models.Facility, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx dataset: %w", err)
	}
	defer book.Close()

	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyTable
		}
		sheet = sheets[0]
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return fromRows(rows)
}

// fromRows maps a header row plus data rows onto facilities.
// Rows with an empty first address line are skipped.
func fromRows(rows [][]string) ([]models.Facility, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	facilities := make([]models.Facility, 0, len(rows)-1)
	for _, row := range rows[1:] {
		f := newFacility(
			cell(row, ColumnName),
			cell(row, ColumnAddressLine1),
			cell(row, ColumnAddressLine2),
			cell(row, ColumnCity),
			cell(row, ColumnState),
			cell(row, ColumnPostalCode),
		)
		if f.AddressLine1 == "" {
			continue
		}
		facilities = append(facilities, f)
	}

	return facilities, nil
}
