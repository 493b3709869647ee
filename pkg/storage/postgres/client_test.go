package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"ledgerviz/pkg/storage/postgres"
)

// testClient connects to the database named by LEDGERVIZ_TEST_POSTGRES_DSN
// and skips the test when it is unset.
func testClient(t *testing.T) *postgres.PostgresClient {
	t.Helper()
	dsn := os.Getenv("LEDGERVIZ_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEDGERVIZ_TEST_POSTGRES_DSN not set")
	}

	client, err := postgres.NewClient(dsn)
	if err != nil {
		t.Fatalf("failed to create Postgres client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.AutoMigratePriceRecord(); err != nil {
		t.Fatalf("auto migration failed: %v", err)
	}
	return client
}

// go test -v --run ^TestPostgresInvalidDSN$
func TestPostgresInvalidDSN(t *testing.T) {
	invalidDSN := "host=invalid.invalid port=5432 user=fail password=fail dbname=fail sslmode=disable connect_timeout=2"

	_, err := postgres.NewClient(invalidDSN)
	if err == nil {
		t.Fatal("expected error for invalid DSN, got nil")
	}
}

// go test -v --run ^TestPostgresClientHealthy$
func TestPostgresClientHealthy(t *testing.T) {
	client := testClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if !client.IsHealthy(ctx) {
		t.Fatal("expected healthy DB connection")
	}
}
