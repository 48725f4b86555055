package repository

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/corebank/ledger/internal/config"
	"github.com/corebank/ledger/internal/db"
	"github.com/corebank/ledger/internal/domain"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	logger := cfg.Logger.NewLogger()

	database, err := db.Connect(context.Background(), &cfg.Database, logger)
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	runMigrations(t, database)
	truncateTables(t, database)

	return database
}

func runMigrations(t *testing.T, database *db.DB) {
	t.Helper()

	migrationPath := filepath.Join("..", "..", "internal", "db", "migrations", "000001_init.up.sql")
	sqlBytes, err := os.ReadFile(migrationPath) // #nosec G304
	if err != nil {
		t.Fatalf("failed to read migration file: %v", err)
	}

	if _, err := database.ExecContext(context.Background(), string(sqlBytes)); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
}

func cleanupTestDB(t *testing.T, database *db.DB) {
	t.Helper()
	if err := database.Close(); err != nil {
		log.Printf("failed to close test database: %v", err)
	}
}

func truncateTables(t *testing.T, database *db.DB) {
	t.Helper()

	tables := []string{"transaction_limits", "scheduled_payments", "transactions", "accounts"}
	for _, table := range tables {
		_, err := database.ExecContext(context.Background(), "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}

func createTestAccount(t *testing.T, database *db.DB) *domain.Account {
	t.Helper()

	account, err := domain.NewAccount(uuid.New(), domain.AccountTypeSavings, "USD", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, NewAccountRepository(database).Create(context.Background(), account))

	return account
}
