package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lanterngame/internal/api"
	"github.com/mcoot/lanterngame/internal/api/apierr"
	"github.com/mcoot/lanterngame/internal/api/middleware"
	"github.com/mcoot/lanterngame/internal/api/response"
	"github.com/mcoot/lanterngame/internal/config"
	"github.com/mcoot/lanterngame/internal/factory"
	"github.com/mcoot/lanterngame/internal/logger"
)

const adminToken = "admin-secret"

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Storage: config.Storage{Type: config.StorageMemory},
		Game:    config.DefaultGame(),
		Auth:    config.Auth{AdminToken: adminToken},
	}

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(t.Context(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger.Nop(),
		AdminToken:         adminToken,
		AuthService:        app.AuthService,
		WalletService:      app.WalletService,
		StationService:     app.StationService,
		TeamService:        app.TeamService,
		ScoringService:     app.ScoringService,
		RoundService:       app.RoundService,
		CredentialService:  app.CredentialService,
		HackingEngine:      app.HackingEngine,
		CalibrationTracker: app.CalibrationTracker,
		Hub:                app.Hub,
	})

	return &testServer{handler: router}
}

func (ts *testServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return ts.do(method, path, body, headers)
}

func (ts *testServer) admin(method, path string, body any) *httptest.ResponseRecorder {
	return ts.do(method, path, body, map[string]string{middleware.AdminTokenHeader: adminToken})
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[apierr.ErrorResponse](t, rr).Error.Code
}

// setupField gives the server one station, one team, one game user and a
// running round, and returns the token of a guest on that team.
func (ts *testServer) setupField(t *testing.T) string {
	t.Helper()

	rr := ts.admin(http.MethodPost, "/api/v1/stations", map[string]any{"station_id": 1, "station_name": "alpha"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = ts.admin(http.MethodPost, "/api/v1/teams", map[string]any{"team_id": 1, "team_name": "Red", "short_name": "R"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = ts.admin(http.MethodPost, "/api/v1/game-users", map[string]any{
		"game_users": []map[string]any{{"user_name": "root", "passwords": []string{"hunter2"}}},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = ts.admin(http.MethodPost, "/api/v1/round/start", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": "p1"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	token := decodeBody[response.AuthResponse](t, rr).SessionToken

	rr = ts.request(http.MethodPost, "/api/v1/players/me/team", map[string]int{"team_id": 1}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	return token
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestTraceHeaderEchoed(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/v1/health", nil, map[string]string{"X-Trace-ID": "abc123"})
	assert.Equal(t, "abc123", rr.Header().Get("X-Trace-ID"))

	rr = ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.NotEmpty(t, rr.Header().Get("X-Trace-ID"))
}

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"display_name": "Alice"}
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", body, "")

	assert.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeBody[response.AuthResponse](t, rr)
	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.True(t, resp.Player.IsGuest)
	assert.Nil(t, resp.Player.TeamID)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.False(t, decodeBody[response.AuthResponse](t, rr).Player.IsGuest)

	rr = ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUsernameExists, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	token := decodeBody[response.AuthResponse](t, rr).SessionToken

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Alice", decodeBody[response.Player](t, rr).DisplayName)

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"username": "alice", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rr))
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/hacks", map[string]int{"station_id": 1}, "bogus")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{"station_id": 1, "station_name": "alpha"}
	rr := ts.request(http.MethodPost, "/api/v1/stations", body, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeForbidden, errorCode(t, rr))

	rr = ts.do(http.MethodPost, "/api/v1/stations", body, map[string]string{middleware.AdminTokenHeader: "nope"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.admin(http.MethodPost, "/api/v1/stations", body)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestStationCRUD(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.admin(http.MethodPost, "/api/v1/stations", map[string]any{"station_id": 1, "station_name": "alpha", "signal_value": 4})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/api/v1/stations/1", rr.Header().Get("Location"))
	created := decodeBody[response.Station](t, rr)
	assert.True(t, created.IsActive)
	assert.Equal(t, 10, created.CalibrationReward)

	rr = ts.admin(http.MethodPost, "/api/v1/stations", map[string]any{"station_id": 1, "station_name": "again"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeConflict, errorCode(t, rr))

	rr = ts.admin(http.MethodPost, "/api/v1/stations", map[string]any{"station_id": 0, "station_name": "zero"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/stations/1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alpha", decodeBody[response.Station](t, rr).StationName)

	rr = ts.request(http.MethodGet, "/api/v1/stations/99", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "station 99")

	rr = ts.admin(http.MethodPatch, "/api/v1/stations/1", map[string]any{"reset_owner": true, "is_under_attack": true})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.admin(http.MethodPatch, "/api/v1/stations/1", map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeBody[response.Station](t, rr).IsActive)

	rr = ts.request(http.MethodGet, "/api/v1/stations?active=true", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[[]response.Station](t, rr))

	rr = ts.admin(http.MethodPost, "/api/v1/stations/signals", map[string]int{"value": 2})
	require.Equal(t, http.StatusOK, rr.Code)
	for _, st := range decodeBody[[]response.Station](t, rr) {
		assert.Equal(t, 2, st.SignalValue)
	}

	rr = ts.admin(http.MethodDelete, "/api/v1/stations/1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestHackBeforeRoundStart(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": "p1"}, "")
	token := decodeBody[response.AuthResponse](t, rr).SessionToken

	rr = ts.request(http.MethodPost, "/api/v1/hacks", map[string]int{"station_id": 1}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeRoundNotActive, errorCode(t, rr))
}

func TestHackFailureOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.setupField(t)

	rr := ts.request(http.MethodPost, "/api/v1/hacks", map[string]int{"station_id": 1}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "is_correct")
	session := decodeBody[response.HackSession](t, rr)
	assert.Equal(t, 3, session.TriesLeft)
	require.Len(t, session.Entries, 1)

	var guess response.GuessResponse
	for i := 0; i < 3; i++ {
		rr = ts.request(http.MethodPost, "/api/v1/hacks/current/guess", map[string]string{"user_name": "root", "password": "wrong"}, token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		guess = decodeBody[response.GuessResponse](t, rr)
		assert.False(t, guess.Correct)
	}
	assert.Equal(t, 0, guess.Session.TriesLeft)
	assert.True(t, guess.Session.Done)
	assert.False(t, guess.Session.WasSuccessful)

	rr = ts.request(http.MethodPost, "/api/v1/hacks/current/guess", map[string]string{"user_name": "root", "password": "hunter2"}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeSessionResolved, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/v1/stations/1", nil, "")
	station := decodeBody[response.Station](t, rr)
	assert.Nil(t, station.Owner)
	assert.False(t, station.IsUnderAttack)
}

func TestHackSuccessOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.setupField(t)

	rr := ts.request(http.MethodPost, "/api/v1/hacks", map[string]int{"station_id": 1}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/v1/stations/1", nil, "")
	assert.True(t, decodeBody[response.Station](t, rr).IsUnderAttack)

	body := map[string]any{
		"user_name":   "root",
		"password":    "hunter2",
		"coordinates": map[string]float64{"latitude": 51.5, "longitude": -0.1},
	}
	rr = ts.request(http.MethodPost, "/api/v1/hacks/current/guess", body, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	guess := decodeBody[response.GuessResponse](t, rr)
	assert.True(t, guess.Correct)
	assert.True(t, guess.Session.WasSuccessful)
	require.NotNil(t, guess.Capture)
	require.NotNil(t, guess.Capture.Station.Owner)
	assert.Equal(t, 1, *guess.Capture.Station.Owner)

	rr = ts.request(http.MethodGet, "/api/v1/standings", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	standings := decodeBody[[]response.Standing](t, rr)
	require.Len(t, standings, 1)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 1, standings[0].StationCount)
	assert.Equal(t, 1, standings[0].Team.Points)
}

func TestCalibrationOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.setupField(t)

	rr := ts.request(http.MethodGet, "/api/v1/calibrations/active", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decodeBody[response.ActiveCalibration](t, rr).Active)

	rr = ts.request(http.MethodPost, "/api/v1/calibrations", map[string]int{"station_id": 1}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	mission := decodeBody[response.CalibrationMission](t, rr)
	require.Len(t, mission.Code, 6)

	rr = ts.request(http.MethodPost, "/api/v1/calibrations", map[string]int{"station_id": 1}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/calibrations/active/complete", map[string]string{"code": "not-it"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeCodeMismatch, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/calibrations/active/complete", map[string]string{"code": mission.Code}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	completion := decodeBody[response.Completion](t, rr)
	assert.True(t, completion.Mission.Completed)
	assert.Equal(t, 10, completion.Reward)

	rr = ts.request(http.MethodGet, "/api/v1/players/me/wallet", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 10, decodeBody[response.Wallet](t, rr).Balance)

	rr = ts.request(http.MethodGet, "/api/v1/calibrations/history", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]response.CalibrationMission](t, rr), 1)

	rr = ts.admin(http.MethodGet, "/api/v1/admin/calibrations?include_inactive=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]response.CalibrationMission](t, rr), 1)
}
