package repository

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Database is the subset of pgxpool.Pool used by the repository.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads the facility dataset from PostgreSQL.
type Repository struct {
	db  Database
	log *slog.Logger
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
