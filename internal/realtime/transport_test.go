package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer upgrades every request and echoes text frames back.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSTransportSendReceive(t *testing.T) {
	srv := echoServer(t)
	tr := NewWSTransport(wsURL(srv), 2*time.Second)

	received := make(chan []byte, 4)
	closed := make(chan error, 1)
	require.NoError(t, tr.Dial(context.Background(),
		func(data []byte) { received <- data },
		func(err error) { closed <- err },
	))

	require.NoError(t, tr.Send([]byte(`{"event":"authenticate"}`)))

	select {
	case data := <-received:
		assert.JSONEq(t, `{"event":"authenticate"}`, string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("echo never arrived")
	}

	require.NoError(t, tr.Close())
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close callback never fired")
	}
}

func TestWSTransportSendWhenNotConnected(t *testing.T) {
	tr := NewWSTransport("ws://localhost:0", time.Second)
	assert.ErrorIs(t, tr.Send([]byte("x")), ErrNotConnected)
	assert.NoError(t, tr.Close())
}

func TestWSTransportDialFailure(t *testing.T) {
	srv := echoServer(t)
	url := wsURL(srv)
	srv.Close()

	tr := NewWSTransport(url, 500*time.Millisecond)
	err := tr.Dial(context.Background(), func([]byte) {}, func(error) {})
	assert.Error(t, err)
}

func TestWSTransportServerInitiatedClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var serverConns sync.Mutex
	var conns []*websocket.Conn
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns.Lock()
		conns = append(conns, conn)
		serverConns.Unlock()
	}))
	t.Cleanup(srv.Close)

	tr := NewWSTransport(wsURL(srv), 2*time.Second)
	closed := make(chan error, 1)
	require.NoError(t, tr.Dial(context.Background(), func([]byte) {}, func(err error) { closed <- err }))

	require.Eventually(t, func() bool {
		serverConns.Lock()
		defer serverConns.Unlock()
		return len(conns) == 1
	}, time.Second, 5*time.Millisecond)

	serverConns.Lock()
	_ = conns[0].Close()
	serverConns.Unlock()

	select {
	case err := <-closed:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server-side close never reached the callback")
	}

	// the transport forgot the dead connection
	assert.ErrorIs(t, tr.Send([]byte("x")), ErrNotConnected)
}
