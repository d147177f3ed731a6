package eventbus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectNotifications carries every broadcast notification when the NATS
// mirror is enabled.
const SubjectNotifications = "tripcast.notifications"

// Mirror republishes hub broadcasts to a NATS subject so external tooling
// can tail server activity without holding a WebSocket open. It is optional:
// the hub works identically with no mirror attached.
type Mirror struct {
	nc     *nats.Conn
	logger *zap.Logger
}

// ConnectMirror dials NATS. Call it only when a NATS URL is configured.
func ConnectMirror(url string, logger *zap.Logger) (*Mirror, error) {
	nc, err := nats.Connect(url,
		nats.Name("tripcast-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, err
	}
	return &Mirror{nc: nc, logger: logger}, nil
}

// Run attaches the mirror to the hub as a plain observer and pumps every
// notification to NATS. Publish failures are logged and dropped, matching
// the best-effort contract observers get. The returned stop function
// detaches the mirror and waits for the pump to finish.
func (m *Mirror) Run(hub *Hub) (stop func()) {
	obs := NewObserver(64)
	hub.Subscribe(obs)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := range obs.Notifications() {
			data, err := json.Marshal(n)
			if err != nil {
				continue
			}
			if err := m.nc.Publish(SubjectNotifications, data); err != nil {
				m.logger.Warn("mirror publish failed", zap.Error(err))
			}
		}
	}()

	return func() {
		hub.Unsubscribe(obs)
		<-done
	}
}

// Connected reports whether the NATS connection is currently up. Safe to
// call on a nil mirror.
func (m *Mirror) Connected() bool {
	return m != nil && m.nc.IsConnected()
}

// Close drains the connection.
func (m *Mirror) Close() {
	if m == nil {
		return
	}
	if err := m.nc.Drain(); err != nil {
		m.nc.Close()
	}
}
