package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/vrcpose/internal/param"
	"github.com/ayusman/vrcpose/internal/region"
	"github.com/ayusman/vrcpose/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// fakeTuner records the settings pushed by the handler.
type fakeTuner struct {
	retuned   int
	threshold float64
	tuning    region.Tuning
	interval  time.Duration
	change    float64
}

func (f *fakeTuner) Retune(threshold float64, tuning region.Tuning) {
	f.retuned++
	f.threshold = threshold
	f.tuning = tuning
}

func (f *fakeTuner) SetDiagnostics(interval time.Duration, changeThreshold float64) {
	f.interval = interval
	f.change = changeThreshold
}

func seedProfile(t *testing.T, s *store.Store, id, name string) *store.Profile {
	t.Helper()

	scale := 4.0
	p := &store.Profile{
		ID:                   id,
		Name:                 name,
		DetectionThreshold:   0.4,
		MovementScale:        3,
		SmoothFactor:         0.7,
		ValueChangeThreshold: 0.02,
		LogInterval:          250 * time.Millisecond,
		Channels:             map[param.Name]region.Override{param.LeftArmX: {Scale: &scale}},
	}
	if err := s.Profiles().Create(p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return p
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProfileHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s, nil)
	seedProfile(t, s, "p1", "dance")

	rec := do(t, handler, http.MethodGet, "/api/profiles", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listProfilesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(response.Profiles))
	}
	got := response.Profiles[0]
	if got.ID != "p1" || got.Name != "dance" {
		t.Errorf("unexpected profile %+v", got)
	}
	if got.LogIntervalMs != 250 {
		t.Errorf("expected log_interval_ms 250, got %d", got.LogIntervalMs)
	}
	if got.Active {
		t.Error("profile should not be active before apply")
	}
}

func TestProfileHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s, nil)

	rec := do(t, handler, http.MethodPost, "/api/profiles",
		`{"name": "walk", "smooth_factor": 0.8, "channels": {"leftleglift": {"scale": 3}}}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var response profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.ID == "" {
		t.Error("expected non-empty ID in response")
	}
	if response.SmoothFactor != 0.8 {
		t.Errorf("expected smooth_factor 0.8, got %f", response.SmoothFactor)
	}
	// Unset fields take defaults
	if response.MovementScale != region.DefaultMovementScale {
		t.Errorf("expected default movement_scale, got %f", response.MovementScale)
	}
	if response.LogIntervalMs != 500 {
		t.Errorf("expected default log_interval_ms 500, got %d", response.LogIntervalMs)
	}

	created, err := s.Profiles().GetByID(response.ID)
	if err != nil {
		t.Fatalf("failed to get created profile: %v", err)
	}
	o, ok := created.Channels[param.LeftLegLift]
	if !ok || o.Scale == nil || *o.Scale != 3 {
		t.Errorf("expected LeftLegLift scale override 3, got %+v", created.Channels)
	}
}

func TestProfileHandler_Create_Invalid(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s, nil)

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", "invalid json"},
		{"missing name", `{"smooth_factor": 0.2}`},
		{"smooth factor of one", `{"name": "x", "smooth_factor": 1}`},
		{"negative threshold", `{"name": "x", "detection_threshold": -0.1}`},
		{"unknown channel", `{"name": "x", "channels": {"TailWag": {"scale": 1}}}`},
		{"unfiltered channel", `{"name": "x", "channels": {"BodyDetected": {"scale": 1}}}`},
		{"channel smooth out of range", `{"name": "x", "channels": {"LeftArmX": {"smooth": 1.5}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPost, "/api/profiles", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestProfileHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s, nil)
	seedProfile(t, s, "p1", "dance")

	t.Run("existing profile", func(t *testing.T) {
		rec := do(t, handler, http.MethodGet, "/api/profiles/p1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response profileResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.DetectionThreshold != 0.4 {
			t.Errorf("expected detection_threshold 0.4, got %f", response.DetectionThreshold)
		}
	})

	t.Run("missing profile", func(t *testing.T) {
		rec := do(t, handler, http.MethodGet, "/api/profiles/nope", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestProfileHandler_Update(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s, nil)
	seedProfile(t, s, "p1", "dance")

	rec := do(t, handler, http.MethodPut, "/api/profiles/p1", `{"movement_scale": 1.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	updated, err := s.Profiles().GetByID("p1")
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if updated.MovementScale != 1.5 {
		t.Errorf("expected movement_scale 1.5, got %f", updated.MovementScale)
	}
	// Untouched fields survive a partial update
	if updated.Name != "dance" || updated.SmoothFactor != 0.7 {
		t.Errorf("partial update changed other fields: %+v", updated)
	}

	rec = do(t, handler, http.MethodPut, "/api/profiles/nope", `{"movement_scale": 1.5}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProfileHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	tuner := &fakeTuner{}
	handler := NewProfileHandler(s, tuner)
	seedProfile(t, s, "p1", "dance")

	if rec := do(t, handler, http.MethodPost, "/api/profiles/p1/apply", ""); rec.Code != http.StatusOK {
		t.Fatalf("apply: expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec := do(t, handler, http.MethodDelete, "/api/profiles/p1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	if _, err := s.Settings().Get(store.SettingActiveProfile); err != store.ErrNotFound {
		t.Errorf("expected active profile to be cleared, got err %v", err)
	}

	rec = do(t, handler, http.MethodDelete, "/api/profiles/p1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestProfileHandler_Apply(t *testing.T) {
	s := newTestStore(t)
	tuner := &fakeTuner{}
	handler := NewProfileHandler(s, tuner)
	seedProfile(t, s, "p1", "dance")

	rec := do(t, handler, http.MethodPost, "/api/profiles/p1/apply", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	if tuner.threshold != 0.4 {
		t.Errorf("expected threshold 0.4, got %f", tuner.threshold)
	}
	if tuner.tuning.Scale != 3 || tuner.tuning.Smooth != 0.7 {
		t.Errorf("unexpected tuning %+v", tuner.tuning)
	}
	if tuner.interval != 250*time.Millisecond || tuner.change != 0.02 {
		t.Errorf("unexpected diagnostics interval=%v change=%f", tuner.interval, tuner.change)
	}

	active, err := s.Settings().Get(store.SettingActiveProfile)
	if err != nil || active != "p1" {
		t.Errorf("expected active profile p1, got %q (err %v)", active, err)
	}

	// Editing the active profile retunes immediately
	do(t, handler, http.MethodPut, "/api/profiles/p1", `{"detection_threshold": 0.6}`)
	if tuner.retuned != 2 || tuner.threshold != 0.6 {
		t.Errorf("expected retune to 0.6 after update, got %d calls, threshold %f", tuner.retuned, tuner.threshold)
	}

	t.Run("only allows POST", func(t *testing.T) {
		rec := do(t, handler, http.MethodGet, "/api/profiles/p1/apply", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})

	t.Run("missing profile", func(t *testing.T) {
		rec := do(t, handler, http.MethodPost, "/api/profiles/nope/apply", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestProfileHandler_Apply_NoTuner(t *testing.T) {
	s := newTestStore(t)
	handler := NewProfileHandler(s, nil)
	seedProfile(t, s, "p1", "dance")

	rec := do(t, handler, http.MethodPost, "/api/profiles/p1/apply", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}
