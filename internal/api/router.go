package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skywardva/fleetboard/internal/tracker"
	"github.com/skywardva/fleetboard/internal/websocket"
	"github.com/skywardva/fleetboard/pkg/logger"
)

// Router assembles the HTTP routes for the fleet board API
type Router struct {
	handler  *Handler
	wsServer *websocket.Server
	logger   *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(fleetService *tracker.Service, wsServer *websocket.Server, log *logger.Logger) *Router {
	return &Router{
		handler:  NewHandler(fleetService, wsServer, log),
		wsServer: wsServer,
		logger:   log.Named("api-router"),
	}
}

// Routes returns the assembled route tree
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(rt.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/fleet", rt.handler.GetFleet)
		r.Get("/fleet/pages/{page}", rt.handler.GetFleetPage)
		r.Get("/status", rt.handler.GetStatus)
		r.Get("/ws", rt.wsServer.HandleConnection)
	})

	return r
}

// requestLogger logs each request with its duration
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		rt.logger.Debug("Request handled",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Duration("duration", time.Since(start)))
	})
}
