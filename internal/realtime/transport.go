package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is the raw bidirectional connection the Manager drives. Exactly
// one implementation talks to the real backend; tests inject fakes.
type Transport interface {
	// Dial establishes a fresh connection. Inbound messages flow to onMessage
	// until the connection dies, at which point onClose fires exactly once
	// with the terminal error. Dial may be called again after a close.
	Dial(ctx context.Context, onMessage func([]byte), onClose func(error)) error

	// Send writes one text frame. Fails when not connected.
	Send(data []byte) error

	// Close tears the connection down. Safe to call when not connected.
	Close() error
}

var ErrNotConnected = errors.New("transport is not connected")

// WSTransport is the gorilla/websocket implementation of Transport.
type WSTransport struct {
	url              string
	handshakeTimeout time.Duration

	mu   sync.Mutex // guards conn and serializes writes
	conn *websocket.Conn
}

// NewWSTransport creates a transport for the given ws:// or wss:// URL.
func NewWSTransport(url string, handshakeTimeout time.Duration) *WSTransport {
	if handshakeTimeout <= 0 {
		handshakeTimeout = 20 * time.Second
	}
	return &WSTransport{url: url, handshakeTimeout: handshakeTimeout}
}

// Dial connects and starts the read loop.
func (t *WSTransport) Dial(ctx context.Context, onMessage func([]byte), onClose func(error)) error {
	dialer := websocket.Dialer{HandshakeTimeout: t.handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.conn != nil {
		_ = t.conn.Close()
	}
	t.conn = conn
	t.mu.Unlock()

	go t.readLoop(conn, onMessage, onClose)
	return nil
}

// readLoop pumps inbound frames until the connection errors out.
func (t *WSTransport) readLoop(conn *websocket.Conn, onMessage func([]byte), onClose func(error)) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			if t.conn == conn {
				t.conn = nil
			}
			t.mu.Unlock()
			_ = conn.Close()
			onClose(err)
			return
		}
		onMessage(data)
	}
}

// Send writes one text frame. gorilla connections do not allow concurrent
// writers, so writes are serialized under the transport mutex.
func (t *WSTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ErrNotConnected
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Close tears down the current connection, if any. The read loop notices the
// closed connection and fires its onClose callback.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
