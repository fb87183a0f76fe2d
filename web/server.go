// Package web is the ingress boundary of the hub: the socket accept
// endpoint and the token-authenticated HTTP publish endpoints. It consumes
// the registry, the dispatcher, and the token service; everything else
// (routing, middleware, serialization) stays inside this package.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"roomhub/auth"
	"roomhub/contract"
	"roomhub/domain"
	"roomhub/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Introspector is the read-only registry view used by the stats endpoint.
type Introspector interface {
	Count() int
	Rooms() map[domain.RoomID]int
}

type Server struct {
	log        *slog.Logger
	registry   contract.IRegistry
	dispatcher contract.IDispatcher
	tokens     *auth.TokenService
	stats      Introspector

	connectionBufferSize int
	writeTimeout         time.Duration
	pongWait             time.Duration
}

func NewServer(log *slog.Logger, registry contract.IRegistry, dispatcher contract.IDispatcher,
	tokens *auth.TokenService, stats Introspector,
	connectionBufferSize int, writeTimeout, pongWait time.Duration) *Server {
	return &Server{
		log:                  log,
		registry:             registry,
		dispatcher:           dispatcher,
		tokens:               tokens,
		stats:                stats,
		connectionBufferSize: connectionBufferSize,
		writeTimeout:         writeTimeout,
		pongWait:             pongWait,
	}
}

// Router builds the HTTP surface. One publish route per payload variant;
// all of them sit behind the connection-credential middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/stats", s.handleStats)
	r.Get("/socket", s.handleSocket)

	r.Group(func(r chi.Router) {
		r.Use(s.requireConnection)
		r.Post("/broadcast", s.handleBroadcast)
		r.Post("/bullet-comment", s.handleBulletComment)
		r.Post("/pin", s.handlePin)
		r.Post("/timer", s.handleTimer)
		r.Post("/canvas", s.handleCanvas)
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello world!"))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"connections": s.stats.Count(),
		"rooms":       s.stats.Rooms(),
	})
}

// writeError maps the error taxonomy to a rejected request. Credential and
// sender errors are expected outcomes, never logged as system faults.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.MapToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
