// Package server provides the HTTP and WebSocket surface of vrcpose.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ayusman/vrcpose/internal/app"
	"github.com/ayusman/vrcpose/internal/server/api"
	"github.com/ayusman/vrcpose/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	Store     *store.Store
}

// Server represents the HTTP server for the vrcpose application.
type Server struct {
	config  Config
	mux     *http.ServeMux
	start   time.Time
	monitor *MonitorHub
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		s.mux.HandleFunc("/api/tracking", s.handleTracking)

		// Frames pushed by a browser or external detector
		s.mux.Handle("/api/landmarks", NewIngestHandler(s.config.App))

		s.monitor = NewMonitorHub()
		s.config.App.OnFrame(s.monitor.Publish)
		s.mux.Handle("/api/parameters", s.monitor)
	}

	if s.config.Store != nil {
		var t api.Tuner
		if s.config.App != nil {
			t = s.config.App.Tracker()
		}
		profileHandler := api.NewProfileHandler(s.config.Store, t)
		s.mux.Handle("/api/profiles", profileHandler)
		s.mux.Handle("/api/profiles/", profileHandler)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Monitor returns the parameter broadcast hub, or nil when no app is configured.
func (s *Server) Monitor() *MonitorHub {
	return s.monitor
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.App != nil {
		response["pipeline"] = s.config.App.Stats()
	}

	writeJSON(w, http.StatusOK, response)
}

type trackingRequest struct {
	Enabled *bool `json:"enabled"`
}

type trackingResponse struct {
	Enabled bool `json:"enabled"`
}

// handleTracking reports (GET) or changes (POST, PUT) whether tracking is enabled.
func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost, http.MethodPut:
		var req trackingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
			return
		}
		if req.Enabled == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "enabled is required"})
			return
		}

		s.config.App.SetEnabled(*req.Enabled)
		if s.config.Store != nil {
			err := s.config.Store.Settings().Set(store.SettingTrackingEnabled, strconv.FormatBool(*req.Enabled))
			if err != nil {
				log.Printf("Failed to persist tracking state: %v", err)
			}
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, trackingResponse{Enabled: s.config.App.IsEnabled()})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// HTTPServer returns an http.Server for addr that serves s, for callers that
// need graceful shutdown.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
