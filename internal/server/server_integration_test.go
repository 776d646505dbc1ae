package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/vrcpose/internal/landmark"
	"github.com/ayusman/vrcpose/internal/param"
	"github.com/ayusman/vrcpose/internal/region"
)

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func TestAPI_ProfileWorkflow(t *testing.T) {
	a, _ := newTestApp(t)
	st := newTestStore(t)

	srv := New(Config{App: a, Store: st})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Create a profile
	createBody := `{"name": "dance", "detection_threshold": 0.5, "movement_scale": 1.5}`
	resp, err := client.Post(ts.URL+"/api/profiles", "application/json", bytes.NewBufferString(createBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, "dance", created.Name)

	// 2. Apply it to the running tracker
	resp, err = client.Post(ts.URL+"/api/profiles/"+created.ID+"/apply", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	threshold, tuning := a.Tracker().Tuning()
	assert.Equal(t, 0.5, threshold)
	assert.Equal(t, 1.5, tuning.Scale)

	// 3. List shows it as active
	resp, err = client.Get(ts.URL + "/api/profiles")
	require.NoError(t, err)
	var listed struct {
		Profiles []struct {
			ID     string `json:"id"`
			Active bool   `json:"active"`
		} `json:"profiles"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	resp.Body.Close()
	require.Len(t, listed.Profiles, 1)
	assert.True(t, listed.Profiles[0].Active)

	// 4. Delete it
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/profiles/"+created.ID, nil)
	resp, err = client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// 5. Verify deleted
	resp, err = client.Get(ts.URL + "/api/profiles/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_LandmarkIngest(t *testing.T) {
	a, rec := newTestApp(t)

	ts := httptest.NewServer(New(Config{App: a}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/api/landmarks"), nil)
	require.NoError(t, err)
	defer conn.Close()

	body := landmark.StandingBody()
	frame, err := json.Marshal(landmark.Frame{Timestamp: 42, Body: &body})
	require.NoError(t, err)

	// Malformed messages are skipped without closing the stream
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))

	require.Eventually(t, a.Tick, 2*time.Second, 10*time.Millisecond)

	msgs := rec.Messages()
	require.Len(t, msgs, 12)
	assert.Equal(t, param.BodyRotation.Address(), msgs[0].Address)
}

func TestAPI_ParameterMonitor(t *testing.T) {
	a, _ := newTestApp(t)

	srv := New(Config{App: a})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/api/parameters"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return srv.Monitor().Clients() == 1 },
		2*time.Second, 10*time.Millisecond)

	a.Submit(&landmark.Frame{Timestamp: 1})
	require.True(t, a.Tick())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Values []region.Value `json:"values"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))

	// No body: only the five detection flags, all zero
	require.Len(t, msg.Values, 5)
	for _, v := range msg.Values {
		assert.Zero(t, v.Value, v.Name)
	}
	assert.Equal(t, param.BodyDetected, msg.Values[0].Name)
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
