package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/portfoliosim-backend/internal/domain"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/simulation"
)

type fixture struct {
	manager   *simulation.Manager
	scheduler *simulation.ManualScheduler
	server    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sched := simulation.NewManualScheduler()
	manager := simulation.NewManager(simulation.ManagerConfig{Scheduler: sched, Seed: 3})
	srv := httptest.NewServer(New(Config{Sessions: manager, Log: zerolog.Nop()}).Handler())

	t.Cleanup(func() {
		srv.Close()
		manager.Shutdown()
	})
	return &fixture{manager: manager, scheduler: sched, server: srv}
}

func (f *fixture) start(t *testing.T) *simulation.Session {
	t.Helper()
	session, err := f.manager.StartSession(context.Background(), &domain.AllocationRequest{
		Assets:          []domain.AssetRequest{{Symbol: "2330.TW"}, {Symbol: "MSFT", Market: "US"}},
		TotalInvestment: 10000,
		RiskPreference:  50,
	})
	require.NoError(t, err)
	return session
}

func (f *fixture) getJSON(t *testing.T, path string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	var body map[string]interface{}
	code := f.getJSON(t, "/health", &body)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, 1.0, body["sessions"])
}

func TestListSessions(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)

	var body struct {
		Sessions []simulation.SessionInfo `json:"sessions"`
	}
	code := f.getJSON(t, "/api/sessions", &body)

	assert.Equal(t, http.StatusOK, code)
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, session.ID(), body.Sessions[0].ID)
	assert.Equal(t, domain.StatusRunning, body.Sessions[0].Status)
}

func TestGetSession(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)
	f.scheduler.Fire()

	tests := []struct {
		name     string
		id       string
		wantCode int
	}{
		{name: "live session", id: session.ID().String(), wantCode: http.StatusOK},
		{name: "malformed id", id: "abc", wantCode: http.StatusBadRequest},
		{name: "unknown session", id: uuid.NewString(), wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var snap domain.SessionSnapshot
			code := f.getJSON(t, "/api/sessions/"+tt.id, &snap)

			assert.Equal(t, tt.wantCode, code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, 1, snap.ElapsedTicks)
				assert.Len(t, snap.Assets, 2)
				assert.Equal(t, domain.MarketTW, snap.Assets[0].Market)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.server.URL+"/api/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", "GET")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStream(t *testing.T) {
	f := newFixture(t)
	session := f.start(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/sessions/" + session.ID().String() + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first domain.SessionSnapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, session.ID().String(), first.SessionID)
	assert.Equal(t, 0, first.ElapsedTicks)

	f.scheduler.Fire()

	var ticked domain.SessionSnapshot
	require.NoError(t, conn.ReadJSON(&ticked))
	assert.Equal(t, 1, ticked.ElapsedTicks)
	assert.Len(t, ticked.Portfolio.History, 2)

	require.NoError(t, f.manager.Reset(context.Background(), session.ID()))

	var last domain.SessionSnapshot
	for {
		var snap domain.SessionSnapshot
		if err = conn.ReadJSON(&snap); err != nil {
			break
		}
		last = snap
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Equal(t, domain.StatusTerminated, last.Status)
}

func TestStreamUnknownSession(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/sessions/" + uuid.NewString() + "/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
