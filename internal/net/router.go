package net

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"blast-arena/server/internal/directory"
	"blast-arena/server/internal/net/proto"
	"blast-arena/server/internal/net/ws"
	"blast-arena/server/logging"
)

// Server bundles the HTTP surface: health and diagnostics probes, the rooms
// list, and the websocket entry point.
type Server struct {
	dir       *directory.Directory
	gateway   *ws.Gateway
	logRouter *logging.Router
	startedAt time.Time
}

// NewServer wires the HTTP handlers around the directory and gateway.
func NewServer(dir *directory.Directory, gateway *ws.Gateway, logRouter *logging.Router) *Server {
	return &Server{dir: dir, gateway: gateway, logRouter: logRouter, startedAt: time.Now()}
}

// Routes builds the gorilla router with CORS applied to every endpoint.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/diagnostics", s.handleDiagnostics).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.handleRooms).Methods(http.MethodGet)
	r.Handle("/ws", s.gateway)
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")

		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "protocol": proto.Version})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"uptimeMs": time.Since(s.startedAt).Milliseconds(),
		"rooms":    s.dir.Count(),
	}
	if s.logRouter != nil {
		stats := s.logRouter.Stats()
		body["logEvents"] = stats.EventsTotal
		body["logDropped"] = stats.DroppedTotal
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.dir.List()})
}
