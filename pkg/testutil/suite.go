package testutil

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/boothbase/boothbase-backend/pkg/account"
)

// IntegrationSuite bundles a shared Postgres container, a connection,
// and the CRM schema for repository and handler integration tests.
//
// Usage:
//
//	var suite *testutil.IntegrationSuite
//
//	func TestMain(m *testing.M) {
//	    ctx := context.Background()
//	    var err error
//	    suite, err = testutil.NewIntegrationSuite(ctx)
//	    if err != nil {
//	        log.Fatalf("failed to create integration suite: %v", err)
//	    }
//	    defer suite.Cleanup(ctx)
//	    os.Exit(m.Run())
//	}
type IntegrationSuite struct {
	Container *PostgresContainer
	DB        *sqlx.DB
}

// NewIntegrationSuite starts a Postgres container and applies the CRM schema
func NewIntegrationSuite(ctx context.Context) (*IntegrationSuite, error) {
	container, err := NewPostgresContainer(ctx, DefaultPostgresConfig())
	if err != nil {
		return nil, err
	}

	db, err := container.Connect(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, err
	}

	if err := container.CreateCRMSchema(ctx, db); err != nil {
		db.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &IntegrationSuite{
		Container: container,
		DB:        db,
	}, nil
}

// Cleanup closes the connection and terminates the container
func (s *IntegrationSuite) Cleanup(ctx context.Context) {
	if s.DB != nil {
		s.DB.Close()
	}
	if s.Container != nil {
		s.Container.Terminate(ctx)
	}
}

// NewAccountContext returns a context scoped to a fresh account, so each
// test runs in its own isolated slice of the shared database
func (s *IntegrationSuite) NewAccountContext() context.Context {
	return account.WithAccountID(context.Background(), uuid.New().String())
}

// AccountContext returns a context scoped to the given account
func (s *IntegrationSuite) AccountContext(accountID string) context.Context {
	return account.WithAccountID(context.Background(), accountID)
}
