package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/skywardva/fleetboard/pkg/logger"
)

// Typed failures surfaced to the front-end caller
var (
	// ErrNoSnapshot is returned when a page is requested before any
	// successful refresh for the session
	ErrNoSnapshot = errors.New("no fleet snapshot for this session")

	// ErrInvalidPage is returned when the requested page number is
	// outside [1, totalPages]
	ErrInvalidPage = errors.New("page number out of range")
)

// UpstreamError indicates the telemetry or reference fetch failed outright.
// Nothing useful can be rendered without the flight list, so the whole
// render aborts. Individual plan-fetch failures never produce this - they
// degrade single rows instead.
type UpstreamError struct {
	Source string // "telemetry" or "reference"
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s fetch failed: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// EventPublisher receives fleet events as render cycles progress.
// Implementations must not block.
type EventPublisher interface {
	Publish(eventType string, payload map[string]any)
}

// Event types published during render cycles
const (
	EventFleetRefreshed = "fleet_refreshed"
	EventPlanResolved   = "plan_resolved"
	EventPageRendered   = "page_rendered"
)

// Service orchestrates fetch-and-render cycles for the fleet board
type Service struct {
	store     *SnapshotStore
	plans     *PlanCache
	telemetry TelemetryFetcher
	reference ReferenceFetcher
	planner   RoutePlanFetcher
	criteria  FilterCriteria
	pageSize  int
	operator  string
	events    EventPublisher
	logger    *logger.Logger
}

// NewService creates a fleet board service. events may be nil.
func NewService(
	store *SnapshotStore,
	plans *PlanCache,
	telemetry TelemetryFetcher,
	reference ReferenceFetcher,
	planner RoutePlanFetcher,
	criteria FilterCriteria,
	pageSize int,
	operator string,
	events EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		store:     store,
		plans:     plans,
		telemetry: telemetry,
		reference: reference,
		planner:   planner,
		criteria:  criteria,
		pageSize:  pageSize,
		operator:  operator,
		events:    events,
		logger:    log.Named("fleet-service"),
	}
}

// RenderFirstPage performs a full refresh for the session and renders page 1.
// All route plans needed by the page are resolved before this returns - a
// rendered page never omits progress data for flights whose plan fetch is
// still in flight.
func (s *Service) RenderFirstPage(ctx context.Context, sessionKey string) (*PageResult, error) {
	snapshot, err := s.store.Refresh(ctx, sessionKey, s.telemetry, s.reference, s.criteria, s.operator)
	if err != nil {
		s.logger.Error("Fleet refresh failed",
			logger.String("session", sessionKey),
			logger.Error(err))
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			return nil, upstream
		}
		return nil, &UpstreamError{Source: "telemetry", Err: err}
	}

	s.publish(EventFleetRefreshed, map[string]any{
		"session":      sessionKey,
		"flight_count": len(snapshot.Flights),
		"fetched_at":   snapshot.FetchedAt,
	})

	return s.renderPage(ctx, sessionKey, snapshot, 1)
}

// RenderPage renders the requested page against the session's existing
// snapshot without re-fetching telemetry. Fails with ErrNoSnapshot if the
// session has no usable snapshot, or ErrInvalidPage if pageNumber is outside
// [1, totalPages].
func (s *Service) RenderPage(ctx context.Context, sessionKey string, pageNumber int) (*PageResult, error) {
	snapshot := s.store.Current(sessionKey)
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}

	if pageNumber < 1 || pageNumber > totalPages(len(snapshot.Flights), s.pageSize) {
		return nil, ErrInvalidPage
	}

	return s.renderPage(ctx, sessionKey, snapshot, pageNumber)
}

// renderPage renders one page of the snapshot, resolving any missing route
// plans for just that page's flights first
func (s *Service) renderPage(ctx context.Context, sessionKey string, snapshot *FlightSnapshot, pageNumber int) (*PageResult, error) {
	pages := totalPages(len(snapshot.Flights), s.pageSize)

	if len(snapshot.Flights) == 0 {
		return &PageResult{
			Rows:       []FlightRow{emptyFleetRow(snapshot.Filter)},
			PageNumber: 1,
			TotalPages: pages,
			Footer:     s.footer(snapshot, 1, pages),
		}, nil
	}

	startIdx := (pageNumber - 1) * s.pageSize
	endIdx := startIdx + s.pageSize
	if endIdx > len(snapshot.Flights) {
		endIdx = len(snapshot.Flights)
	}
	pageFlights := snapshot.Flights[startIdx:endIdx]

	ids := make([]string, 0, len(pageFlights))
	for _, flight := range pageFlights {
		ids = append(ids, flight.FlightID)
	}

	planByID := s.plans.FetchMissing(ctx, ids, s.planner, func(flightID string, plan *RoutePlan) {
		s.publish(EventPlanResolved, map[string]any{
			"session":   sessionKey,
			"flight_id": flightID,
			"has_plan":  plan != nil,
		})
	})

	rows := make([]FlightRow, 0, len(pageFlights))
	for i, flight := range pageFlights {
		rows = append(rows, s.renderRow(startIdx+i+1, flight, snapshot.Reference, planByID[flight.FlightID]))
	}

	result := &PageResult{
		Rows:       rows,
		PageNumber: pageNumber,
		TotalPages: pages,
		Footer:     s.footer(snapshot, pageNumber, pages),
	}

	s.publish(EventPageRendered, map[string]any{
		"session":     sessionKey,
		"page":        pageNumber,
		"total_pages": pages,
		"rows":        len(rows),
	})

	return result, nil
}

// renderRow builds one fleet board row. A missing or unusable plan degrades
// the row to a zero-progress display instead of failing the page.
func (s *Service) renderRow(ordinal int, flight FlightEntry, reference *ReferenceIndex, plan *RoutePlan) FlightRow {
	pilot := flight.Username
	if pilot == "" {
		pilot = "Unknown pilot"
	}

	progress := EstimateProgress(flight.Latitude, flight.Longitude, plan, flight.Speed)

	return FlightRow{
		Ordinal:     ordinal,
		Callsign:    flight.Callsign,
		Pilot:       pilot,
		Aircraft:    reference.DisplayName(flight.AircraftID, flight.LiveryID),
		Route:       RouteString(plan),
		AltitudeFt:  int(math.Round(flight.Altitude)),
		SpeedKts:    int(math.Round(flight.Speed)),
		ProgressBar: progress.Bar,
		ProgressPct: progress.Percent,
		ETA:         progress.ETA,
	}
}

// emptyFleetRow is the single explanatory entry shown when no flights match
// the configured filter
func emptyFleetRow(criteria FilterCriteria) FlightRow {
	note := "No flights are currently being tracked - no fleet filter is configured."
	if criteria.Complete() {
		note = fmt.Sprintf("No flights match the configured %s filter (%q).", criteria.Type, criteria.Value)
	}
	return FlightRow{Note: note}
}

func (s *Service) footer(snapshot *FlightSnapshot, pageNumber, pages int) string {
	return fmt.Sprintf("%s · %d flight(s) · page %d/%d · updated %s",
		snapshot.SourceLabel,
		len(snapshot.Flights),
		pageNumber,
		pages,
		snapshot.FetchedAt.UTC().Format(time.RFC3339))
}

func (s *Service) publish(eventType string, payload map[string]any) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventType, payload)
}

// totalPages returns ceil(flightCount/pageSize), with a minimum of 1 so an
// empty fleet still renders its explanatory page
func totalPages(flightCount, pageSize int) int {
	if flightCount == 0 {
		return 1
	}
	return (flightCount + pageSize - 1) / pageSize
}
