package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skywardva/fleetboard/internal/tracker"
	"github.com/skywardva/fleetboard/internal/websocket"
	"github.com/skywardva/fleetboard/pkg/logger"
)

// SessionHeader carries the caller's session identity. Callers that omit it
// are keyed by their remote address instead.
const SessionHeader = "X-Session-ID"

// Handler contains the API handlers
type Handler struct {
	fleetService *tracker.Service
	wsServer     *websocket.Server
	logger       *logger.Logger
	startedAt    time.Time
}

// NewHandler creates a new API handler
func NewHandler(fleetService *tracker.Service, wsServer *websocket.Server, log *logger.Logger) *Handler {
	return &Handler{
		fleetService: fleetService,
		wsServer:     wsServer,
		logger:       log.Named("api-handler"),
		startedAt:    time.Now(),
	}
}

// GetFleet refreshes the fleet snapshot for the caller's session and
// returns the first page
func (h *Handler) GetFleet(w http.ResponseWriter, r *http.Request) {
	session := sessionKey(r)

	page, err := h.fleetService.RenderFirstPage(r.Context(), session)
	if err != nil {
		h.respondError(w, session, err)
		return
	}

	WriteJSON(w, http.StatusOK, page)
}

// GetFleetPage renders the requested page against the session's existing
// snapshot without re-fetching telemetry
func (h *Handler) GetFleetPage(w http.ResponseWriter, r *http.Request) {
	session := sessionKey(r)

	pageNumber, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "page must be a number",
		})
		return
	}

	page, err := h.fleetService.RenderPage(r.Context(), session, pageNumber)
	if err != nil {
		h.respondError(w, session, err)
		return
	}

	WriteJSON(w, http.StatusOK, page)
}

// GetStatus returns server uptime and connection counts
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"ws_clients":     h.wsServer.ClientCount(),
	})
}

// respondError maps the tracker's typed failures onto HTTP responses.
// Upstream failures deliberately return a generic message; internal error
// detail stays in the logs.
func (h *Handler) respondError(w http.ResponseWriter, session string, err error) {
	var upstream *tracker.UpstreamError

	switch {
	case errors.Is(err, tracker.ErrNoSnapshot):
		WriteJSON(w, http.StatusConflict, map[string]string{
			"error": "no fleet data yet, request /api/v1/fleet first",
		})
	case errors.Is(err, tracker.ErrInvalidPage):
		WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "page number out of range",
		})
	case errors.As(err, &upstream):
		h.logger.Error("Upstream fetch failed",
			logger.String("session", session),
			logger.String("source", upstream.Source),
			logger.Error(upstream.Err))
		WriteJSON(w, http.StatusBadGateway, map[string]string{
			"error": "flight data is temporarily unavailable, try again shortly",
		})
	default:
		h.logger.Error("Unexpected render failure",
			logger.String("session", session),
			logger.Error(err))
		WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}
}

// sessionKey derives the snapshot-store key for a request
func sessionKey(r *http.Request) string {
	if session := r.Header.Get(SessionHeader); session != "" {
		return session
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
