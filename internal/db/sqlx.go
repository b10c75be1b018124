package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for database/sql
)

// Sqlx is a db conn used by the reporting queries
type Sqlx struct {
	DB *sqlx.DB
}

// NewSqlx opens database connection and returns it
func NewSqlx(ctx context.Context, datasource string) (*Sqlx, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", datasource)
	if err != nil {
		return nil, err
	}

	return &Sqlx{
		DB: db,
	}, nil
}

// Close closes the underlying connection pool
func (s *Sqlx) Close() error {
	return s.DB.Close()
}
