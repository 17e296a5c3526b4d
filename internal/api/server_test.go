package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openborders/nationsim/internal/sim"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m := sim.NewManager(nil, 0, 10) // no scheduler: tests tick manually
	t.Cleanup(m.Close)
	return &Server{Manager: m}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, h http.Handler, difficulty string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", map[string]any{
		"difficulty": difficulty,
		"seed":       42,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", map[string]any{
		"difficulty": "easy",
		"seed":       7,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp struct {
		SessionID string          `json:"session_id"`
		Seed      int64           `json:"seed"`
		State     sim.NationState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Seed)
	assert.Equal(t, sim.DifficultyEasy, resp.State.Difficulty)
	assert.Equal(t, sim.EpochYear, resp.State.Year)
	assert.True(t, resp.State.Started)
}

func TestCreateSessionEmptyBodyDefaultsToMedium(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		State sim.NationState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, sim.DifficultyMedium, resp.State.Difficulty)
}

func TestCreateSessionRejectsUnknownDifficulty(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodPost, "/api/v1/sessions", map[string]any{
		"difficulty": "nightmare",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSessionCap(t *testing.T) {
	m := sim.NewManager(nil, 0, 1)
	t.Cleanup(m.Close)
	s := &Server{Manager: m}
	h := s.Router()

	createSession(t, h, "medium")
	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetState(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	id := createSession(t, h, "medium")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		SessionID string          `json:"session_id"`
		State     sim.NationState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.SessionID)
	assert.Equal(t, sim.StartingPopulation, resp.State.Population)
}

func TestSessionNotFoundAndBadID(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	rec := doJSON(t, h, http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/sessions/00000000-0000-0000-0000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTogglePolicy(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	id := createSession(t, h, "medium")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/policies/open-borders/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		State sim.NationState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.State.ActivePolicies[sim.PolicyOpenBorders])
	assert.Equal(t, sim.BaseStartingBudget-2000, resp.State.Budget)
}

func TestToggleUnknownPolicyIs404(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	id := createSession(t, h, "medium")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/policies/bogus/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleWhilePausedIsConflict(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	id := createSession(t, h, "medium")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/pause", map[string]any{"paused": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/policies/open-borders/toggle", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error string          `json:"error"`
		State sim.NationState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.False(t, resp.State.ActivePolicies[sim.PolicyOpenBorders])
	assert.Equal(t, sim.BaseStartingBudget, resp.State.Budget)
}

func TestToggleInsufficientBudgetIsConflict(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	id := createSession(t, h, "hard") // budget 7000

	// strict-control (1200) + skilled-worker (3500) + refugee (1500) leaves
	// 800, not enough for open-borders.
	for _, p := range []string{"strict-control", "skilled-worker", "refugee"} {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/policies/"+p+"/toggle", nil)
		require.Equal(t, http.StatusOK, rec.Code, p)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/policies/open-borders/toggle", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRestart(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	id := createSession(t, h, "medium")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/policies/refugee/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/restart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		State sim.NationState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.State.ActivePolicies)
	assert.Equal(t, sim.BaseStartingBudget, resp.State.Budget)
}

func TestEventsEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	id := createSession(t, h, "medium")

	doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/policies/investor/toggle", nil)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+id+"/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var events []sim.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.NotEmpty(t, events)
	assert.Equal(t, sim.EventNotification, events[0].Kind)
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	id := createSession(t, h, "medium")

	rec := doJSON(t, h, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Policies     []sim.Policy                   `json:"policies"`
		Difficulties map[sim.Difficulty]sim.Profile `json:"difficulties"`
		Achievements []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"achievements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Policies, 6)
	assert.Len(t, resp.Difficulties, 3)
	assert.Len(t, resp.Achievements, 8)
}

func TestHistoryWithoutArchive(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodGet, "/api/v1/history", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSpeedRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	id := createSession(t, h, "medium")

	// No admin key configured: endpoint disabled outright.
	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/speed", map[string]any{"speed": 2})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.AdminKey = "sekrit"
	h = s.Router()

	rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+id+"/speed", map[string]any{"speed": 2})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/speed",
		bytes.NewBufferString(`{"speed": 2}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Right token, but a manually ticked session has no scheduler.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/speed",
		bytes.NewBufferString(`{"speed": 2}`))
	req.Header.Set("Authorization", "Bearer sekrit")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
