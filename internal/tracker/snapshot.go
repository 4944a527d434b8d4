package tracker

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skywardva/fleetboard/pkg/logger"
)

// SnapshotStore holds the most recent fleet snapshot per session identity.
// Keying by session keeps concurrent viewers from clobbering each other's
// pagination state. Entries expire after the configured TTL.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*FlightSnapshot
	ttl       time.Duration
	logger    *logger.Logger
}

// NewSnapshotStore creates a snapshot store whose entries stay valid for ttl
func NewSnapshotStore(ttl time.Duration, log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]*FlightSnapshot),
		ttl:       ttl,
		logger:    log.Named("snapshot-store"),
	}
}

// Refresh fetches telemetry and the reference catalog concurrently, applies
// the configured fleet filter, deduplicates flights by id (first occurrence
// wins), builds the reference index, and stores the result for sessionKey,
// replacing any prior snapshot for that session.
func (s *SnapshotStore) Refresh(
	ctx context.Context,
	sessionKey string,
	telemetry TelemetryFetcher,
	reference ReferenceFetcher,
	criteria FilterCriteria,
	sourceLabel string,
) (*FlightSnapshot, error) {
	start := time.Now()

	var flights []FlightEntry
	var catalog []AircraftDefinition

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if flights, err = telemetry.ActiveFlights(gctx); err != nil {
			return &UpstreamError{Source: "telemetry", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if catalog, err = reference.AircraftCatalog(gctx); err != nil {
			return &UpstreamError{Source: "reference", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matched := filterFlights(flights, criteria)
	deduped := dedupeFlights(matched)

	snapshot := &FlightSnapshot{
		Flights:     deduped,
		Reference:   BuildReferenceIndex(catalog),
		FetchedAt:   time.Now(),
		Filter:      criteria,
		SourceLabel: sourceLabel,
	}

	s.mu.Lock()
	s.snapshots[sessionKey] = snapshot
	s.mu.Unlock()

	s.logger.Info("Fleet snapshot refreshed",
		logger.String("session", sessionKey),
		logger.Int("active_flights", len(flights)),
		logger.Int("matched", len(matched)),
		logger.Int("deduped", len(deduped)),
		logger.Duration("duration", time.Since(start)))

	return snapshot, nil
}

// Current returns the stored snapshot for sessionKey without fetching.
// Returns nil if the session has no snapshot yet or its snapshot expired.
func (s *SnapshotStore) Current(sessionKey string) *FlightSnapshot {
	s.mu.RLock()
	snapshot, ok := s.snapshots[sessionKey]
	s.mu.RUnlock()

	if !ok {
		return nil
	}
	if time.Since(snapshot.FetchedAt) >= s.ttl {
		return nil
	}
	return snapshot
}

// Sessions returns the number of sessions currently holding a snapshot
func (s *SnapshotStore) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// filterFlights keeps the flights matching the configured criteria.
// Exactly one strategy is active at a time; incomplete criteria match nothing.
func filterFlights(flights []FlightEntry, criteria FilterCriteria) []FlightEntry {
	if !criteria.Complete() {
		return nil
	}

	matched := make([]FlightEntry, 0, len(flights))
	for _, flight := range flights {
		switch criteria.Type {
		case FilterSuffix:
			if strings.HasSuffix(flight.Callsign, criteria.Value) {
				matched = append(matched, flight)
			}
		case FilterVirtualOrg:
			if flight.VirtualOrganization == criteria.Value {
				matched = append(matched, flight)
			}
		}
	}
	return matched
}

// dedupeFlights drops repeated flight ids; the first occurrence wins
func dedupeFlights(flights []FlightEntry) []FlightEntry {
	seen := make(map[string]struct{}, len(flights))
	deduped := make([]FlightEntry, 0, len(flights))
	for _, flight := range flights {
		if _, ok := seen[flight.FlightID]; ok {
			continue
		}
		seen[flight.FlightID] = struct{}{}
		deduped = append(deduped, flight)
	}
	return deduped
}
