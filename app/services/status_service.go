package services

import (
	"context"
	"sync"
	"time"

	"MotoZonePos/app/backend"
	"MotoZonePos/app/config"
	"MotoZonePos/app/database"
)

// Availability is the connectivity state of the remote backend
type Availability string

const (
	// AvailabilityUnknown means no probe has completed yet. Operations
	// behave as if online until a probe says otherwise.
	AvailabilityUnknown Availability = "unknown"
	// AvailabilityAvailable means the last health probe succeeded
	AvailabilityAvailable Availability = "available"
	// AvailabilityUnavailable means the last health probe failed and the
	// application is running against the local store
	AvailabilityUnavailable Availability = "unavailable"
)

// StatusService probes the remote backend's health endpoint and tracks its
// availability. While the backend is unavailable it re-probes on a fixed
// interval so the application returns to online mode on its own; while the
// backend is available no background probing happens.
type StatusService struct {
	client          *backend.Client
	store           *database.Store
	logger          *LoggerService
	healthTimeout   time.Duration
	recheckInterval time.Duration

	mu          sync.RWMutex
	status      Availability
	lastChecked time.Time
	subscribers []func(Availability)
}

// NewStatusService creates the connectivity prober. The initial state is
// unknown until the first CheckStatus completes.
func NewStatusService(client *backend.Client, store *database.Store, logger *LoggerService, cfg *config.AppConfig) *StatusService {
	healthTimeout := time.Duration(cfg.Backend.HealthTimeout) * time.Second
	if healthTimeout <= 0 {
		healthTimeout = 5 * time.Second
	}
	recheckInterval := time.Duration(cfg.Backend.RecheckInterval) * time.Second
	if recheckInterval <= 0 {
		recheckInterval = 30 * time.Second
	}

	return &StatusService{
		client:          client,
		store:           store,
		logger:          logger,
		healthTimeout:   healthTimeout,
		recheckInterval: recheckInterval,
		status:          AvailabilityUnknown,
	}
}

// Status returns the current availability
func (s *StatusService) Status() Availability {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// LastChecked returns when the last probe completed (zero before the first)
func (s *StatusService) LastChecked() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastChecked
}

// IsOffline reports whether operations must route to the local store.
// Only an explicit unavailable verdict routes local; unknown still tries
// the backend so a slow first probe never strands a reachable server.
func (s *StatusService) IsOffline() bool {
	return s.Status() == AvailabilityUnavailable
}

// Subscribe registers a callback invoked on every availability transition.
// Callbacks run on the probing goroutine and must not block.
func (s *StatusService) Subscribe(fn func(Availability)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// CheckStatus runs one bounded health probe and returns the resulting
// availability. It never returns an error: a failed or timed-out probe is
// the unavailable verdict, not a fault.
func (s *StatusService) CheckStatus(ctx context.Context) Availability {
	probeCtx, cancel := context.WithTimeout(ctx, s.healthTimeout)
	defer cancel()

	verdict := AvailabilityAvailable
	if err := s.client.Health(probeCtx); err != nil {
		verdict = AvailabilityUnavailable
	}

	s.mu.Lock()
	previous := s.status
	s.status = verdict
	s.lastChecked = time.Now()
	subscribers := make([]func(Availability), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	if previous != verdict {
		s.onTransition(previous, verdict, subscribers)
	}
	return verdict
}

// onTransition logs the change, prepares the local store when falling back
// to offline mode, and fans the new state out to subscribers.
func (s *StatusService) onTransition(from, to Availability, subscribers []func(Availability)) {
	s.logger.LogInfo("Backend availability changed", string(from)+" -> "+string(to))

	if to == AvailabilityUnavailable && s.store != nil {
		if err := s.store.EnsureSeeded(); err != nil {
			s.logger.LogError("Failed to seed local store for offline mode", err)
		}
	}

	for _, fn := range subscribers {
		fn(to)
	}
}

// StartMonitoring runs the background re-check loop until ctx is cancelled.
// The ticker fires continuously but probes are only issued while the backend
// is unavailable; recovery back to available stops further probing.
func (s *StatusService) StartMonitoring(ctx context.Context) {
	go func() {
		defer s.logger.RecoverPanic()

		ticker := time.NewTicker(s.recheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.Status() == AvailabilityUnavailable {
					s.CheckStatus(ctx)
				}
			}
		}
	}()
}
