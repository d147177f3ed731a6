package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tripcast/api/internal/eventbus"
	"github.com/tripcast/api/internal/metrics"
)

// observerBuffer is how many notifications a viewer may fall behind
// before broadcasts start skipping it.
const observerBuffer = 16

// DebugHandler exposes the progress notification stream over WebSocket
// for the debug viewer.
type DebugHandler struct {
	hub      *eventbus.Hub
	metrics  *metrics.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewDebugHandler creates a new debug handler
func NewDebugHandler(hub *eventbus.Hub, m *metrics.Metrics, logger *zap.Logger) *DebugHandler {
	return &DebugHandler{
		hub:     hub,
		metrics: m,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The viewer is a local debugging tool, any origin may attach.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream handles GET /api/v1/debug/ws. Each connection becomes one
// observer of the notification hub for as long as it stays open.
func (h *DebugHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("debug upgrade failed", zap.Error(err))
		return
	}

	observer := eventbus.NewObserver(observerBuffer)
	h.hub.Subscribe(observer)
	h.metrics.DebugObservers.Inc()
	h.logger.Info("debug observer connected", zap.String("remote", conn.RemoteAddr().String()))

	defer func() {
		h.hub.Unsubscribe(observer)
		h.metrics.DebugObservers.Dec()
		conn.Close()
		h.logger.Info("debug observer disconnected", zap.String("remote", conn.RemoteAddr().String()))
	}()

	// The viewer never sends anything meaningful, but reading is what
	// surfaces the close frame when it disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case note, ok := <-observer.Notifications():
			if !ok {
				return
			}
			if err := conn.WriteJSON(note); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
