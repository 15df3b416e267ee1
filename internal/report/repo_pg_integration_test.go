//go:build integration_pg
// +build integration_pg

package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"verigate/internal/gateway"
	"verigate/internal/platform/store"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func TestPGRepoUpsertAndGet_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: dsn}})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer func() { _ = s.Close(context.Background()) }()

	if _, err := s.PG.Exec(ctx, SchemaSQL); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	repo := NewPGRepo(s.PG)

	first := &DeliveryReport{
		RequestID:   "req-int-1",
		PhoneNumber: "+15551234567",
		Payload:     "order-42",
		DeliveryStatus: &gateway.DeliveryStatus{
			Status:    gateway.DeliverySent,
			UpdatedAt: 1756199990,
		},
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	got, err := repo.Get(ctx, "req-int-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.DeliveryStatus != "sent" || got.PhoneNumber != "+15551234567" {
		t.Fatalf("unexpected row: %+v", got)
	}

	// a later report for the same request overwrites in place
	second := &DeliveryReport{
		RequestID:   "req-int-1",
		PhoneNumber: "+15551234567",
		Payload:     "order-42",
		VerificationStatus: &gateway.VerificationStatus{
			Status:      gateway.CodeValid,
			UpdatedAt:   1756200050,
			CodeEntered: "123456",
		},
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err = repo.Get(ctx, "req-int-1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.VerificationStatus != "code_valid" || got.CodeEntered != "123456" {
		t.Fatalf("unexpected row after update: %+v", got)
	}

	var count int
	if err := s.PG.QueryRow(ctx, "SELECT count(*) FROM delivery_reports").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want a single row per request id", count)
	}

	missing, err := repo.Get(ctx, "req-unknown")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing = %+v, want nil", missing)
	}
}
