package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skywardva/fleetboard/pkg/logger"
)

// Client fetches live flight data from the simulation network's Live API.
// It implements TelemetryFetcher, ReferenceFetcher, and RoutePlanFetcher.
type Client struct {
	baseURL    string
	apiKey     string
	sessionID  string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new Live API client
func NewClient(baseURL, apiKey, sessionID string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		sessionID: sessionID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.Named("live-api"),
	}
}

// envelope is the Live API response wrapper. A non-zero ErrorCode marks an
// application-level failure even on HTTP 200.
type envelope struct {
	ErrorCode int             `json:"errorCode"`
	Result    json.RawMessage `json:"result"`
}

// liveryRecord is one entry of the flat livery catalog endpoint
type liveryRecord struct {
	ID           string `json:"id"`
	AircraftID   string `json:"aircraftID"`
	AircraftName string `json:"aircraftName"`
	LiveryName   string `json:"liveryName"`
}

// ActiveFlights returns all flights currently active in the tracked session
func (c *Client) ActiveFlights(ctx context.Context) ([]FlightEntry, error) {
	url := fmt.Sprintf("%s/sessions/%s/flights", c.baseURL, c.sessionID)

	var flights []FlightEntry
	if err := c.get(ctx, url, &flights); err != nil {
		return nil, fmt.Errorf("failed to fetch active flights: %w", err)
	}

	c.logger.Debug("Fetched active flights",
		logger.String("session", c.sessionID),
		logger.Int("count", len(flights)))

	return flights, nil
}

// AircraftCatalog returns the aircraft/livery catalog, grouped by aircraft
// model. The upstream endpoint delivers a flat livery list; grouping happens
// here so the reference index sees one definition per aircraft.
func (c *Client) AircraftCatalog(ctx context.Context) ([]AircraftDefinition, error) {
	url := fmt.Sprintf("%s/aircraft/liveries", c.baseURL)

	var records []liveryRecord
	if err := c.get(ctx, url, &records); err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft catalog: %w", err)
	}

	byAircraft := make(map[string]*AircraftDefinition)
	order := make([]string, 0)
	for _, record := range records {
		def, ok := byAircraft[record.AircraftID]
		if !ok {
			def = &AircraftDefinition{ID: record.AircraftID, Name: record.AircraftName}
			byAircraft[record.AircraftID] = def
			order = append(order, record.AircraftID)
		}
		def.Liveries = append(def.Liveries, LiveryInfo{
			ID:         record.ID,
			Name:       record.LiveryName,
			AircraftID: record.AircraftID,
		})
	}

	catalog := make([]AircraftDefinition, 0, len(order))
	for _, id := range order {
		catalog = append(catalog, *byAircraft[id])
	}

	c.logger.Debug("Fetched aircraft catalog",
		logger.Int("aircraft", len(catalog)),
		logger.Int("liveries", len(records)))

	return catalog, nil
}

// FlightPlan returns the filed plan for one flight. A missing plan (the
// pilot filed none) is reported as (nil, nil), not as an error.
func (c *Client) FlightPlan(ctx context.Context, flightID string) (*RoutePlan, error) {
	url := fmt.Sprintf("%s/sessions/%s/flights/%s/flightplan", c.baseURL, c.sessionID, flightID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// The plan endpoint answers 404 when no plan is filed
	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("No flight plan filed", logger.String("flight_id", flightID))
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if env.ErrorCode != 0 {
		return nil, fmt.Errorf("live api error code: %d", env.ErrorCode)
	}

	var plan RoutePlan
	if err := json.Unmarshal(env.Result, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse flight plan: %w", err)
	}

	c.logger.Debug("Fetched flight plan",
		logger.String("flight_id", flightID),
		logger.Int("waypoints", len(plan.Waypoints)))

	return &plan, nil
}

// get performs a GET request and unmarshals the envelope result into target
func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	if env.ErrorCode != 0 {
		return fmt.Errorf("live api error code: %d", env.ErrorCode)
	}

	if err := json.Unmarshal(env.Result, target); err != nil {
		return fmt.Errorf("failed to parse result payload: %w", err)
	}
	return nil
}

// decorate applies the headers every Live API request carries
func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}
