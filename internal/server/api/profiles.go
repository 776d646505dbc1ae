// Package api provides HTTP API handlers for vrcpose.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/vrcpose/internal/param"
	"github.com/ayusman/vrcpose/internal/region"
	"github.com/ayusman/vrcpose/internal/store"
	"github.com/ayusman/vrcpose/internal/throttle"
)

// Tuner receives the settings of an applied profile.
type Tuner interface {
	Retune(threshold float64, tuning region.Tuning)
	SetDiagnostics(interval time.Duration, changeThreshold float64)
}

// Apply pushes the tuning and diagnostic settings of p to t.
func Apply(t Tuner, p *store.Profile) {
	t.Retune(p.DetectionThreshold, p.Tuning())
	t.SetDiagnostics(p.LogInterval, p.ValueChangeThreshold)
}

// ProfileHandler handles HTTP requests for tuning profiles.
type ProfileHandler struct {
	store *store.Store
	tuner Tuner
}

// NewProfileHandler creates a new ProfileHandler. Without a tuner, profiles can
// be edited but not applied.
func NewProfileHandler(s *store.Store, t Tuner) *ProfileHandler {
	return &ProfileHandler{store: s, tuner: t}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/profiles, /api/profiles/{id}, /api/profiles/{id}/apply
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/apply"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.apply(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type profileRequest struct {
	Name                 string                     `json:"name"`
	DetectionThreshold   *float64                   `json:"detection_threshold"`
	MovementScale        *float64                   `json:"movement_scale"`
	SmoothFactor         *float64                   `json:"smooth_factor"`
	ValueChangeThreshold *float64                   `json:"value_change_threshold"`
	LogIntervalMs        *int64                     `json:"log_interval_ms"`
	Channels             map[string]region.Override `json:"channels"`
}

type profileResponse struct {
	ID                   string                         `json:"id"`
	Name                 string                         `json:"name"`
	DetectionThreshold   float64                        `json:"detection_threshold"`
	MovementScale        float64                        `json:"movement_scale"`
	SmoothFactor         float64                        `json:"smooth_factor"`
	ValueChangeThreshold float64                        `json:"value_change_threshold"`
	LogIntervalMs        int64                          `json:"log_interval_ms"`
	Channels             map[param.Name]region.Override `json:"channels,omitempty"`
	Active               bool                           `json:"active"`
	CreatedAt            string                         `json:"created_at"`
	UpdatedAt            string                         `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(p *store.Profile, activeID string) profileResponse {
	return profileResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		DetectionThreshold:   p.DetectionThreshold,
		MovementScale:        p.MovementScale,
		SmoothFactor:         p.SmoothFactor,
		ValueChangeThreshold: p.ValueChangeThreshold,
		LogIntervalMs:        p.LogInterval.Milliseconds(),
		Channels:             p.Channels,
		Active:               p.ID == activeID,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            p.UpdatedAt.Format(time.RFC3339),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// merge copies the fields set in req onto p and validates the result.
func (req *profileRequest) merge(p *store.Profile) error {
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.DetectionThreshold != nil {
		p.DetectionThreshold = *req.DetectionThreshold
	}
	if req.MovementScale != nil {
		p.MovementScale = *req.MovementScale
	}
	if req.SmoothFactor != nil {
		p.SmoothFactor = *req.SmoothFactor
	}
	if req.ValueChangeThreshold != nil {
		p.ValueChangeThreshold = *req.ValueChangeThreshold
	}
	if req.LogIntervalMs != nil {
		p.LogInterval = time.Duration(*req.LogIntervalMs) * time.Millisecond
	}
	if req.Channels != nil {
		channels := make(map[param.Name]region.Override, len(req.Channels))
		for key, o := range req.Channels {
			name, err := param.Parse(key)
			if err != nil {
				return err
			}
			if !param.MustLookup(name).Smoothed() {
				return fmt.Errorf("channel %s is not filtered", name)
			}
			if o.Smooth != nil && (*o.Smooth < 0 || *o.Smooth >= 1) {
				return fmt.Errorf("channel %s: smooth must be in [0, 1)", name)
			}
			channels[name] = o
		}
		p.Channels = channels
	}

	switch {
	case p.Name == "":
		return errors.New("name is required")
	case p.DetectionThreshold < 0:
		return errors.New("detection_threshold must not be negative")
	case p.SmoothFactor < 0 || p.SmoothFactor >= 1:
		return errors.New("smooth_factor must be in [0, 1)")
	case p.ValueChangeThreshold < 0:
		return errors.New("value_change_threshold must not be negative")
	case p.LogInterval < 0:
		return errors.New("log_interval_ms must not be negative")
	}
	return nil
}

func (h *ProfileHandler) activeID() string {
	id, err := h.store.Settings().Get(store.SettingActiveProfile)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to read active profile: %v", err)
	}
	return id
}

// list handles GET /api/profiles and returns all profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	active := h.activeID()
	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}
	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toResponse(p, active))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/profiles/{id}.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile, h.activeID()))
}

// create handles POST /api/profiles. Unset fields take the pipeline defaults.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	profile := &store.Profile{
		ID:                   uuid.New().String(),
		MovementScale:        region.DefaultMovementScale,
		SmoothFactor:         region.DefaultSmoothFactor,
		ValueChangeThreshold: throttle.DefaultValueThreshold,
		LogInterval:          throttle.DefaultInterval,
	}
	if err := req.merge(profile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Profiles().Create(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(profile, ""))
}

// update handles PUT /api/profiles/{id}. An update to the active profile takes
// effect immediately.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := req.merge(profile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Profiles().Update(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	active := h.activeID()
	if h.tuner != nil && active == profile.ID {
		Apply(h.tuner, profile)
	}

	writeJSON(w, http.StatusOK, toResponse(profile, active))
}

// delete handles DELETE /api/profiles/{id}. The running tuning is left as is.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Profiles().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	if h.activeID() == id {
		if err := h.store.Settings().Delete(store.SettingActiveProfile); err != nil {
			log.Printf("Failed to clear active profile: %v", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// apply handles POST /api/profiles/{id}/apply.
func (h *ProfileHandler) apply(w http.ResponseWriter, r *http.Request, id string) {
	if h.tuner == nil {
		writeError(w, http.StatusServiceUnavailable, "Tracking pipeline not running")
		return
	}

	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	Apply(h.tuner, profile)
	log.Printf("Applied profile %q", profile.Name)

	if err := h.store.Settings().Set(store.SettingActiveProfile, profile.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record active profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile, profile.ID))
}
