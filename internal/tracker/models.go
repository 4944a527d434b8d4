package tracker

import (
	"context"
	"time"
)

// FlightEntry represents one aircraft currently airborne under the tracked identity
type FlightEntry struct {
	FlightID            string  `json:"flightId"`
	Callsign            string  `json:"callsign"`
	Username            string  `json:"username,omitempty"` // Pilot display name (empty for anonymous pilots)
	AircraftID          string  `json:"aircraftId"`
	LiveryID            string  `json:"liveryId"`
	Latitude            float64 `json:"latitude"`  // Decimal degrees
	Longitude           float64 `json:"longitude"` // Decimal degrees
	Altitude            float64 `json:"altitude"`  // Feet
	Speed               float64 `json:"speed"`     // Ground speed in knots
	VirtualOrganization string  `json:"virtualOrganization,omitempty"`
}

// WaypointLocation is a waypoint's position in decimal degrees
type WaypointLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Waypoint is a single fix in a filed flight plan. The final waypoint of a
// plan may carry child waypoints for runway-specific endpoints.
type Waypoint struct {
	Name     string           `json:"name"`
	Location WaypointLocation `json:"location"`
	Children []Waypoint       `json:"children,omitempty"`
}

// RoutePlan is the filed flight plan for one flight
type RoutePlan struct {
	Waypoints []Waypoint `json:"flightPlanItems"`
}

// Usable reports whether the plan has enough waypoints to estimate progress.
// Plans with fewer than two waypoints carry no usable route geometry.
func (p *RoutePlan) Usable() bool {
	return p != nil && len(p.Waypoints) >= 2
}

// AircraftInfo is one aircraft model from the reference catalog
type AircraftInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LiveryInfo is one livery from the reference catalog, tied to an aircraft model
type LiveryInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AircraftID string `json:"aircraftId"`
}

// AircraftDefinition is one aircraft model with its liveries, as delivered
// by the reference catalog endpoint
type AircraftDefinition struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Liveries []LiveryInfo `json:"liveries"`
}

// FilterType selects the fleet matching strategy
type FilterType string

// Fleet matching strategies
const (
	FilterNone       FilterType = ""
	FilterSuffix     FilterType = "suffix"      // Callsign ends with the configured value
	FilterVirtualOrg FilterType = "virtual_org" // Virtual organization equals the configured value
)

// FilterCriteria is the operator's configured fleet matching rule
type FilterCriteria struct {
	Type  FilterType `json:"type"`
	Value string     `json:"value"`
}

// Complete reports whether the criteria select a usable matching strategy
func (c FilterCriteria) Complete() bool {
	return (c.Type == FilterSuffix || c.Type == FilterVirtualOrg) && c.Value != ""
}

// FlightSnapshot is the point-in-time result of one telemetry+reference fetch cycle
type FlightSnapshot struct {
	Flights     []FlightEntry   `json:"flights"`
	Reference   *ReferenceIndex `json:"-"`
	FetchedAt   time.Time       `json:"fetched_at"`
	Filter      FilterCriteria  `json:"filter"`
	SourceLabel string          `json:"source_label"` // Operator display name, used in page footers
}

// FlightRow is one rendered line of the fleet board
type FlightRow struct {
	Ordinal     int     `json:"ordinal"` // 1-based position within the whole snapshot
	Callsign    string  `json:"callsign"`
	Pilot       string  `json:"pilot"`
	Aircraft    string  `json:"aircraft"` // Resolved aircraft + livery display name
	Route       string  `json:"route"`
	AltitudeFt  int     `json:"altitude_ft"`
	SpeedKts    int     `json:"speed_kts"`
	ProgressBar string  `json:"progress_bar"`
	ProgressPct float64 `json:"progress_pct"`
	ETA         string  `json:"eta"`
	Note        string  `json:"note,omitempty"` // Explanatory text when the fleet is empty
}

// PageResult is one rendered page of the fleet board
type PageResult struct {
	Rows       []FlightRow `json:"rows"`
	PageNumber int         `json:"page_number"`
	TotalPages int         `json:"total_pages"`
	Footer     string      `json:"footer"`
}

// TelemetryFetcher returns all currently active flights for the tracked
// network session
type TelemetryFetcher interface {
	ActiveFlights(ctx context.Context) ([]FlightEntry, error)
}

// ReferenceFetcher returns the aircraft/livery catalog
type ReferenceFetcher interface {
	AircraftCatalog(ctx context.Context) ([]AircraftDefinition, error)
}

// RoutePlanFetcher returns the filed plan for one flight, or nil if none is filed
type RoutePlanFetcher interface {
	FlightPlan(ctx context.Context, flightID string) (*RoutePlan, error)
}
