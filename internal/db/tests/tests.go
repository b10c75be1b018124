package tests

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pixelgenesis/credential-node/internal/db"
	"github.com/pixelgenesis/credential-node/internal/db/schema"
)

const (
	defaultTimeOut = 40

	// PostgresTestDatabaseVar is the env var holding the server used by database tests
	PostgresTestDatabaseVar = "POSTGRES_TEST_DATABASE"
)

// LookupPostgresURL returns the test database server url or an empty string when
// database tests are disabled.
func LookupPostgresURL() string {
	con, ok := os.LookupEnv(PostgresTestDatabaseVar)
	if !ok {
		return ""
	}
	return con
}

// NewTestStorage creates a fresh migrated database on the server pointed by serverURL and
// returns a storage connected to it. The returned url can be used to open extra connections.
func NewTestStorage(serverURL string) (*db.Storage, string, func(), error) {
	noopTeardown := func() {}
	if serverURL == "" {
		return nil, "", noopTeardown, errors.New("testdb: no connection string")
	}

	tempDBName := "credential_node_test_" + time.Now().UTC().Format("20060102150405999999999")
	tempURL, err := url.Parse(serverURL + "/" + tempDBName + "?sslmode=disable")
	if err != nil {
		return nil, "", noopTeardown, fmt.Errorf("connection string is invalid: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeOut*time.Second)
	defer cancel()

	storage, err := db.NewStorage(ctx, serverURL)
	if err != nil {
		return nil, "", noopTeardown, fmt.Errorf("can't connect to database: %v", err)
	}

	_, err = storage.Pgx.Exec(ctx, fmt.Sprintf(`create database "%s";`, tempDBName))
	_ = storage.Close()
	if err != nil {
		return nil, "", noopTeardown, fmt.Errorf("failed to create database (%s): %v", tempDBName, err)
	}

	if err := schema.Migrate(tempURL.String()); err != nil {
		return nil, "", noopTeardown, fmt.Errorf("can't migrate database %v", err)
	}

	storage, err = db.NewStorage(ctx, tempURL.String())
	if err != nil {
		return nil, "", noopTeardown, fmt.Errorf("can't connect to database: %v", err)
	}

	teardown := func() {
		_ = storage.Close()
	}
	return storage, tempURL.String(), teardown, nil
}
