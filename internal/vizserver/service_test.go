package vizserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startService(t *testing.T) (*VizService, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := config.DefaultConfig()
	cfg.Run.FPS = 200
	svc := NewVizService("", cfg, "classic", nil)
	go func() { _ = svc.Run(ctx) }()

	srv := httptest.NewServer(svc.Handler())
	t.Cleanup(srv.Close)
	return svc, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestWebsocketStream(t *testing.T) {
	_, srv := startService(t)
	conn := dial(t, srv)

	var init InitMessage
	require.NoError(t, conn.ReadJSON(&init))
	assert.Equal(t, "init", init.Type)
	assert.Equal(t, "classic", init.Data.Preset)
	assert.Equal(t, 800.0, init.Data.Width)

	var frame FrameMessage
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "framebatch", frame.Type)
	// sun, five bunnies, avatar, stick
	assert.Len(t, frame.Data.Nodes, 8)
	assert.Empty(t, frame.Data.Colliders)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "debug"}))
	for {
		var f FrameMessage
		require.NoError(t, conn.ReadJSON(&f))
		if len(f.Data.Colliders) > 0 {
			assert.Len(t, f.Data.Colliders, 6)
			break
		}
	}
}

func TestWebsocketSteps(t *testing.T) {
	_, srv := startService(t)
	conn := dial(t, srv)

	var init InitMessage
	require.NoError(t, conn.ReadJSON(&init))

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "steps", Steps: 4}))
	for {
		var f FrameMessage
		require.NoError(t, conn.ReadJSON(&f))
		if f.Data.StepsPerFrame == 4 {
			break
		}
	}
}

func TestHTTPRoutes(t *testing.T) {
	_, srv := startService(t)

	resp, err := http.Get(srv.URL + "/scene")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info SceneInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, config.DefaultSunStrength, info.Gravity.Strength)

	require.Eventually(t, func() bool {
		r, err := http.Get(srv.URL + "/frame")
		if err != nil {
			return false
		}
		defer r.Body.Close()
		return r.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	resp2, err := http.Post(srv.URL+"/scene", "application/json", nil)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}
