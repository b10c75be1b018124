package db

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/pixelgenesis/credential-node/internal/log"
)

const duplicateViolationErrorCode = "23505"

// Storage defines the postgres storage
type Storage struct {
	Pgx *pgxpool.Pool
}

// NewStorage creates and returns a new Pgx storage connection
func NewStorage(ctx context.Context, connectionString string) (*Storage, error) {
	pgxConn, err := pgxpool.Connect(ctx, connectionString)
	if err != nil {
		return nil, err
	}
	return &Storage{
		Pgx: pgxConn,
	}, nil
}

// Ping checks the database is reachable. Used by the health checker.
func (s *Storage) Ping(ctx context.Context) error {
	return s.Pgx.Ping(ctx)
}

// Close all connections to database
func (s *Storage) Close() error {
	log.Info(context.Background(), "pgx is closing connection")
	s.Pgx.Close()
	return nil
}

// IsDuplicateError reports whether err is a postgres unique constraint violation.
// constraint is filled with the violated constraint name when available.
func IsDuplicateError(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == duplicateViolationErrorCode {
		return pgErr.ConstraintName, true
	}
	return "", false
}
