package services

import (
	"context"
	"math"
	"testing"

	"MotoZonePos/app/backend"
	"MotoZonePos/app/config"
	"MotoZonePos/app/database"
)

// testEnv bundles the service graph wired against a temporary local store
// and a backend client pointing at nothing reachable.
type testEnv struct {
	cfg    *config.AppConfig
	store  *database.Store
	client *backend.Client
	logger *LoggerService
	status *StatusService
	data   *DataService
}

// newTestEnv builds the graph. The backend client targets a closed port, so
// any remote call fails immediately.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.LocalDB.DataPath = t.TempDir()
	cfg.Server.JWTSecret = "test-secret"
	cfg.Backend.BaseURL = "http://127.0.0.1:1/api"

	store, err := database.Initialize(cfg)
	if err != nil {
		t.Fatalf("initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := NewLoggerService(t.TempDir())
	t.Cleanup(logger.Close)

	client := backend.NewClient(cfg.Backend.BaseURL)
	status := NewStatusService(client, store, logger, cfg)
	data := NewDataService(client, store, status, logger)

	return &testEnv{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: logger,
		status: status,
		data:   data,
	}
}

// goOffline runs one probe against the unreachable backend, which flips the
// state to unavailable and seeds the local store.
func (e *testEnv) goOffline(t *testing.T) {
	t.Helper()
	if got := e.status.CheckStatus(context.Background()); got != AvailabilityUnavailable {
		t.Fatalf("expected unavailable after failed probe, got %s", got)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
