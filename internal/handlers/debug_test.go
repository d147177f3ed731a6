package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tripcast/api/internal/eventbus"
	"github.com/tripcast/api/internal/metrics"
	"github.com/tripcast/api/internal/models"
)

func newDebugServer(t *testing.T) (*httptest.Server, *eventbus.Hub) {
	t.Helper()

	hub := eventbus.NewHub(zap.NewNop())
	t.Cleanup(hub.Close)

	r := gin.New()
	r.GET("/api/v1/debug/ws", NewDebugHandler(hub, metrics.New(prometheus.NewRegistry()), zap.NewNop()).Stream)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialDebug(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/debug/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDebugStreamDeliversNotifications(t *testing.T) {
	srv, hub := newDebugServer(t)
	conn := dialDebug(t, srv)

	require.Eventually(t, func() bool { return hub.Len() == 1 },
		time.Second, 10*time.Millisecond, "connection should register as an observer")

	sent := models.NewNotification(models.SeverityInfo, "AI started reasoning process...")
	hub.Broadcast(sent)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var got models.ProgressNotification
	require.NoError(t, conn.ReadJSON(&got))

	assert.Equal(t, sent.Message, got.Message)
	assert.Equal(t, models.SeverityInfo, got.Severity)
	assert.WithinDuration(t, sent.Timestamp, got.Timestamp, time.Second)
}

func TestDebugStreamUnsubscribesOnDisconnect(t *testing.T) {
	srv, hub := newDebugServer(t)
	conn := dialDebug(t, srv)

	require.Eventually(t, func() bool { return hub.Len() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 0 },
		time.Second, 10*time.Millisecond, "closing the socket should drop the observer")
}

func TestDebugStreamSupportsMultipleViewers(t *testing.T) {
	srv, hub := newDebugServer(t)
	first := dialDebug(t, srv)
	second := dialDebug(t, srv)

	require.Eventually(t, func() bool { return hub.Len() == 2 },
		time.Second, 10*time.Millisecond)

	hub.Broadcast(models.NewNotification(models.SeveritySuccess, "AI completed reasoning..."))

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var got models.ProgressNotification
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, "AI completed reasoning...", got.Message)
	}
}
