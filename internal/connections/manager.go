package connections

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// TimeoutConfig holds the keepalive settings for WebSocket connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts pings at nine tenths of the pong wait
var DefaultTimeouts = TimeoutsFor(30 * time.Second)

// TimeoutsFor derives a ping period and write wait from pongWait
func TimeoutsFor(pongWait time.Duration) TimeoutConfig {
	return TimeoutConfig{
		PongWait:   pongWait,
		PingPeriod: (pongWait * 9) / 10,
		WriteWait:  10 * time.Second,
	}
}

// Manager tracks open chat sockets so they can be kept alive and closed
// together when the server shuts down.
type Manager struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	timeouts TimeoutConfig
	closed   bool
}

func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		conns:    make(map[*websocket.Conn]struct{}),
		timeouts: timeouts,
	}
}

// Track registers conn. It reports false once CloseAll has run, in which case
// the caller should drop the connection.
func (m *Manager) Track(conn *websocket.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	m.conns[conn] = struct{}{}
	return true
}

func (m *Manager) Untrack(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, conn)
}

// Count returns the number of tracked connections
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

func (m *Manager) Timeouts() TimeoutConfig {
	return m.timeouts
}

// KeepAlive arms the read deadline and pings conn until done is closed or a
// ping fails. Pongs are only seen while a read is pending, so conn must be
// read continuously; data reads extend the deadline through ExtendRead.
func (m *Manager) KeepAlive(conn *websocket.Conn, done <-chan struct{}) {
	_ = m.ExtendRead(conn)
	conn.SetPongHandler(func(string) error {
		return m.ExtendRead(conn)
	})

	go func() {
		ticker := time.NewTicker(m.timeouts.PingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				deadline := time.Now().Add(m.timeouts.WriteWait)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()
}

func (m *Manager) ExtendRead(conn *websocket.Conn) error {
	return conn.SetReadDeadline(time.Now().Add(m.timeouts.PongWait))
}

// CloseAll sends a going-away close frame to every tracked connection and
// refuses new ones.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	m.closed = true
	conns := make([]*websocket.Conn, 0, len(m.conns))
	for conn := range m.conns {
		conns = append(conns, conn)
	}
	m.conns = make(map[*websocket.Conn]struct{})
	m.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(m.timeouts.WriteWait))
		_ = conn.Close()
	}
}
