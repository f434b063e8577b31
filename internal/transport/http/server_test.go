package statushttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stoppilot/internal/risk"
	"stoppilot/internal/signal"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *signal.Cache, *risk.Tracker) {
	t.Helper()
	cache := signal.NewCache()
	tracker := risk.NewTracker(risk.StaticProfiles{Default: risk.DefaultProfile()})
	srv, err := NewServer(ServerConfig{Signals: cache, Tracker: tracker})
	require.NoError(t, err)
	return srv, cache, tracker
}

func doGet(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	body := map[string]json.RawMessage{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec, _ := doGet(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSignalsEndpoint(t *testing.T) {
	srv, cache, _ := newTestServer(t)
	cache.Put(signal.Signal{
		Symbol: "EURUSD", Score: 45, Confidence: 45,
		Action: signal.ActionBuy, Quality: signal.QualityFair,
		GeneratedAt: time.Now(),
	})

	rec, body := doGet(t, srv, "/api/signals")
	require.Equal(t, http.StatusOK, rec.Code)
	var sigs []signal.Signal
	require.NoError(t, json.Unmarshal(body["signals"], &sigs))
	require.Len(t, sigs, 1)
	require.Equal(t, "EURUSD", sigs[0].Symbol)

	rec, _ = doGet(t, srv, "/api/signals?symbol=eurusd.m")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doGet(t, srv, "/api/signals?symbol=GBPUSD")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRiskStatesEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec, body := doGet(t, srv, "/api/risk/states")
	require.Equal(t, http.StatusOK, rec.Code)
	var states []risk.StateView
	require.NoError(t, json.Unmarshal(body["states"], &states))
	require.Empty(t, states)
}

func TestJournalEndpointsWithoutStore(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec, _ := doGet(t, srv, "/api/signals/history?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doGet(t, srv, "/api/risk/actions?ticket=1")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewServerRequiresDeps(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	require.Error(t, err)
}
