// Package testutil provides testing utilities for the BoothBase backend.
// It includes a PostgreSQL testcontainer, sqlmock helpers, HTTP helpers,
// and common test fixtures.
package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance
type PostgresContainer struct {
	*postgres.PostgresContainer
	DSN string
}

// PostgresContainerConfig configures the test PostgreSQL container
type PostgresContainerConfig struct {
	Database string
	Username string
	Password string
	Image    string // Optional: defaults to postgres:15-alpine
}

// DefaultPostgresConfig returns sensible defaults for test containers
func DefaultPostgresConfig() PostgresContainerConfig {
	return PostgresContainerConfig{
		Database: "boothbase_test",
		Username: "test",
		Password: "test",
		Image:    "postgres:15-alpine",
	}
}

// NewPostgresContainer creates a new PostgreSQL test container.
//
// Usage:
//
//	func TestMain(m *testing.M) {
//	    ctx := context.Background()
//	    container, err := testutil.NewPostgresContainer(ctx, testutil.DefaultPostgresConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer container.Terminate(ctx)
//
//	    code := m.Run()
//	    os.Exit(code)
//	}
func NewPostgresContainer(ctx context.Context, cfg PostgresContainerConfig) (*PostgresContainer, error) {
	if cfg.Image == "" {
		cfg.Image = "postgres:15-alpine"
	}
	if cfg.Database == "" {
		cfg.Database = "boothbase_test"
	}
	if cfg.Username == "" {
		cfg.Username = "test"
	}
	if cfg.Password == "" {
		cfg.Password = "test"
	}

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage(cfg.Image),
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PostgresContainer{
		PostgresContainer: container,
		DSN:               dsn,
	}, nil
}

// Connect returns a sqlx.DB connection to the container
func (c *PostgresContainer) Connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", c.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}
	return db, nil
}

// Terminate stops and removes the container
func (c *PostgresContainer) Terminate(ctx context.Context) error {
	return c.PostgresContainer.Terminate(ctx)
}

// CreateCRMSchema creates the dealer roster tables used by the CRM service.
// The pg_trgm extension backs the fuzzy candidate search.
func (c *PostgresContainer) CreateCRMSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
		CREATE EXTENSION IF NOT EXISTS pg_trgm;

		CREATE TABLE IF NOT EXISTS dealers (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			account_id UUID NOT NULL,
			company_name VARCHAR(255) NOT NULL,
			contact_name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			phone VARCHAR(50),
			city VARCHAR(100),
			state VARCHAR(100),
			created_by UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS dealers_search_trgm
			ON dealers USING gin ((company_name || ' ' || contact_name) gin_trgm_ops);

		CREATE UNIQUE INDEX IF NOT EXISTS dealers_account_email
			ON dealers (account_id, email)
			WHERE deleted_at IS NULL AND email IS NOT NULL;

		CREATE TABLE IF NOT EXISTS dealer_notes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			dealer_id UUID NOT NULL REFERENCES dealers(id),
			account_id UUID NOT NULL,
			kind VARCHAR(10) NOT NULL DEFAULT 'note',
			body TEXT NOT NULL,
			done BOOLEAN NOT NULL DEFAULT FALSE,
			created_by UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT note_kind_valid CHECK (kind IN ('note', 'todo'))
		);

		CREATE TABLE IF NOT EXISTS dealer_images (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			dealer_id UUID NOT NULL REFERENCES dealers(id),
			account_id UUID NOT NULL,
			kind VARCHAR(10) NOT NULL DEFAULT 'badge',
			mime_type VARCHAR(100) NOT NULL,
			size_bytes INTEGER NOT NULL,
			data BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT image_kind_valid CHECK (kind IN ('badge', 'logo', 'photo'))
		);

		CREATE TABLE IF NOT EXISTS user_cache (
			user_id UUID PRIMARY KEY,
			account_id UUID NOT NULL,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			role VARCHAR(100),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`

	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create CRM schema: %w", err)
	}

	return nil
}
