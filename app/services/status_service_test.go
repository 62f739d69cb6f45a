package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"MotoZonePos/app/backend"
	"MotoZonePos/app/config"
	"MotoZonePos/app/database"
)

func newStatusFixture(t *testing.T, handler http.Handler) (*StatusService, *database.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.LocalDB.DataPath = t.TempDir()
	cfg.Backend.BaseURL = server.URL

	store, err := database.Initialize(cfg)
	if err != nil {
		t.Fatalf("initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := NewLoggerService(t.TempDir())
	t.Cleanup(logger.Close)

	client := backend.NewClient(server.URL)
	return NewStatusService(client, store, logger, cfg), store
}

func healthyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"status":"ok"}}`))
	})
}

func TestStatusStartsUnknown(t *testing.T) {
	status, _ := newStatusFixture(t, healthyHandler())

	if got := status.Status(); got != AvailabilityUnknown {
		t.Errorf("initial status = %s, want unknown", got)
	}
	// Unknown must not route local
	if status.IsOffline() {
		t.Error("unknown state reported as offline")
	}
	if !status.LastChecked().IsZero() {
		t.Error("last checked set before any probe")
	}
}

func TestCheckStatusHealthyBackend(t *testing.T) {
	status, _ := newStatusFixture(t, healthyHandler())

	if got := status.CheckStatus(context.Background()); got != AvailabilityAvailable {
		t.Errorf("status = %s, want available", got)
	}
	if status.IsOffline() {
		t.Error("available state reported as offline")
	}
	if status.LastChecked().IsZero() {
		t.Error("last checked not recorded")
	}
}

func TestCheckStatusFailingBackendSeedsStore(t *testing.T) {
	status, store := newStatusFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	if got := status.CheckStatus(context.Background()); got != AvailabilityUnavailable {
		t.Fatalf("status = %s, want unavailable", got)
	}
	if !status.IsOffline() {
		t.Error("unavailable state not reported as offline")
	}

	// The transition to unavailable prepares the local store
	products, err := store.Products()
	if err != nil {
		t.Fatalf("store products: %v", err)
	}
	if len(products) == 0 {
		t.Error("local store not seeded on fallback")
	}
}

func TestCheckStatusNotifiesSubscribersOnTransition(t *testing.T) {
	requestCount := 0
	status, _ := newStatusFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount > 1 {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"success":true}`))
	}))

	var transitions []Availability
	status.Subscribe(func(a Availability) { transitions = append(transitions, a) })

	ctx := context.Background()
	status.CheckStatus(ctx) // unknown -> available
	status.CheckStatus(ctx) // available -> unavailable
	status.CheckStatus(ctx) // unavailable -> unavailable, no notification

	want := []Availability{AvailabilityAvailable, AvailabilityUnavailable}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestCheckStatusRecoversToAvailable(t *testing.T) {
	healthy := false
	status, _ := newStatusFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"success":true}`))
	}))

	ctx := context.Background()
	if got := status.CheckStatus(ctx); got != AvailabilityUnavailable {
		t.Fatalf("status = %s, want unavailable", got)
	}

	healthy = true
	if got := status.CheckStatus(ctx); got != AvailabilityAvailable {
		t.Errorf("status after recovery = %s, want available", got)
	}
}
