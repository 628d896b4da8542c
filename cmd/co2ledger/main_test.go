package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/neomorfeo/co2ledger/internal/adapter/fsm"
	handler "github.com/neomorfeo/co2ledger/internal/adapter/http"
	riveradapter "github.com/neomorfeo/co2ledger/internal/adapter/river"
	"github.com/neomorfeo/co2ledger/internal/adapter/sqlstore"
	"github.com/neomorfeo/co2ledger/internal/app"
)

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	newLogger("json", &buf).Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json logger wrote %q", buf.String())
	}

	buf.Reset()
	newLogger("text", &buf).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("text logger wrote %q", buf.String())
	}
}

// TestSmoke wires the full stack like run() and verifies it responds.
func TestSmoke(t *testing.T) {
	dbPath := t.TempDir() + "/test.db"

	repo, err := sqlstore.New(dbPath)
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := app.NewLedgerService(repo, riveradapter.NewLogPublisher(logger), fsm.New(), app.WithLogger(logger))

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig(serviceName, apiVersion))
	handler.Register(api, svc)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	// Verify the server responds to list cylinders.
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/v1/cylinders", nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/v1/cylinders failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var cylinders []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&cylinders); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(cylinders) != 0 {
		t.Errorf("got %d cylinders, want 0 (empty database)", len(cylinders))
	}
}

// waitForServer polls url until it answers or five seconds pass.
func waitForServer(t *testing.T, url string) {
	t.Helper()

	for i := 0; i < 50; i++ {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("server did not start within 5 seconds")
}

// TestRun exercises the real run() function end-to-end: OTel, River, HTTP
// server, the configured tank and graceful shutdown. Telemetry export is
// disabled to avoid external dependencies.
func TestRun(t *testing.T) {
	t.Setenv("DATABASE_PATH", t.TempDir()+"/test-run.db")
	t.Setenv("PORT", "19876")
	t.Setenv("TANK_CAPACITY_KG", "1000")
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("OTEL_ENVIRONMENT", "test")

	errCh := make(chan error, 1)
	go func() { errCh <- run() }()

	serverURL := "http://localhost:19876"
	waitForServer(t, serverURL+"/api/v1/dashboard")

	// The tank is created empty with the configured capacity.
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, serverURL+"/api/v1/tank", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/v1/tank failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var tank handler.TankResponse
	if err := json.NewDecoder(resp.Body).Decode(&tank); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tank.CapacityKg != 1000 || tank.CurrentLevelKg != 0 {
		t.Errorf("tank = %+v, want empty 1000 kg tank", tank)
	}

	// Send SIGINT to trigger graceful shutdown.
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("finding process: %v", err)
	}
	if err := proc.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("sending SIGINT: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run() returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not exit within 10 seconds")
	}
}

// TestRun_InvalidDB verifies run() returns an error for an invalid database path.
func TestRun_InvalidDB(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/nonexistent/path/db.sqlite")
	t.Setenv("PORT", "19877")
	t.Setenv("OTEL_EXPORTER", "none")

	if err := run(); err == nil {
		t.Fatal("expected error for invalid database path, got nil")
	}
}

// TestRun_InvalidConfig verifies run() rejects an unknown storage driver.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("OTEL_EXPORTER", "none")

	if err := run(); err == nil {
		t.Fatal("expected error for unknown driver, got nil")
	}
}
