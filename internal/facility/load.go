package facility

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/dialysphere/internal/models"
)

// Format names a dataset source kind.
type Format string

const (
	// FormatJSON is the DFC_Facility.json export.
	FormatJSON Format = "json"
	// FormatCSV is a CSV export with a header row.
	FormatCSV Format = "csv"
	// FormatXLSX is an Excel workbook with a header row.
	FormatXLSX Format = "xlsx"
	// FormatPostgres reads the facilities table of a PostgreSQL database.
	FormatPostgres Format = "postgres"
)

// ErrUnsupportedFormat is returned for an unknown dataset format.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// ErrNoStore is returned when the postgres format is requested without a store.
var ErrNoStore = errors.New("postgres dataset source requires a store")

// Store yields facility records from a database.
type Store interface {
	FetchFacilities(ctx context.Context) ([]models.Facility, error)
}

// Source describes where a dataset is loaded from.
type Source struct {
	Format Format // Format selects the loader.
	Path   string // Path of the file, for file formats.
	Sheet  string // Sheet of the workbook, for xlsx.
	Store  Store  // Store backs the postgres format.
}

// Load reads the dataset once and returns it as an immutable Dataset.
func Load(ctx context.Context, src Source, log *slog.Logger) (*Dataset, error) {
	var (
		records []models.Facility
		err     error
	)

	switch src.Format {
	case FormatJSON:
		records, err = loadFile(src.Path, LoadJSON)
	case FormatCSV:
		records, err = loadFile(src.Path, LoadCSV)
	case FormatXLSX:
		records, err = loadFile(src.Path, func(r io.Reader) ([]models.Facility, error) {
			return LoadXLSX(r, src.Sheet)
		})
	case FormatPostgres:
		if src.Store == nil {
			return nil, ErrNoStore
		}
		records, err = src.Store.FetchFacilities(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, src.Format)
	}
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "Facility dataset loaded", "format", src.Format, "path", src.Path, "records", len(records))

	return NewDataset(records), nil
}

func loadFile(path string, decode func(io.Reader) ([]models.Facility, error)) ([]models.Facility, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	return decode(file)
}
