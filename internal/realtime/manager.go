package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"gharsewa/internal/general/contracts"
	"gharsewa/internal/general/logger"
	"gharsewa/internal/general/metrics"
)

// Options tunes the reconnect policy.
type Options struct {
	BackoffBase   time.Duration // first reconnect delay
	BackoffCap    time.Duration // upper bound on a single delay
	MaxReconnects int           // attempts before the session is declared lost
}

// Session is a snapshot of the connection state for UI and diagnostics.
type Session struct {
	SessionID         string
	UserID            string
	Role              contracts.Role
	Connected         bool
	Authenticated     bool
	ReconnectAttempts int
	CurrentBackoff    time.Duration
}

// Manager owns the single realtime connection of a running client: its
// lifecycle, the authenticate handshake, and exponential-backoff recovery
// from unexpected disconnects. Components never talk to the transport
// directly; they emit through the manager and subscribe through the router.
//
// The correctness property everything else leans on: after every
// (re)connect, the authenticate frame goes out before any other traffic, so
// no subscription is trusted until the handshake has been replayed.
type Manager struct {
	transport Transport
	router    *Router
	log       *logger.Logger
	met       *metrics.Metrics
	opts      Options

	mu             sync.Mutex
	sessionID      string
	identity       string
	role           contracts.Role
	connected      bool
	authenticated  bool
	attempts       int
	currentBackoff time.Duration
	dialing        bool
	closing        bool
	started        bool
	dialGen        uint64 // increments per dial; stale close callbacks are ignored
	connGen        uint64 // generation of the live connection
	earlyClose     bool   // connection died while its dial was still in flight
	reconnectTimer *time.Timer
	pending        map[string][]byte // most recent queued frame per channel
	pendingOrder   []string
	lostFn         func()
}

// NewManager wires a manager around an injected transport. The application's
// composition root constructs exactly one per role and passes it by
// reference; there is no package-level instance.
func NewManager(transport Transport, router *Router, log *logger.Logger, met *metrics.Metrics, opts Options) *Manager {
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.BackoffCap < opts.BackoffBase {
		opts.BackoffCap = 30 * time.Second
	}
	if opts.MaxReconnects < 1 {
		opts.MaxReconnects = 5
	}
	return &Manager{
		transport: transport,
		router:    router,
		log:       log,
		met:       met,
		opts:      opts,
		sessionID: uuid.NewString(),
		pending:   make(map[string][]byte),
	}
}

// Router returns the event registry shared by all consumers of this session.
func (m *Manager) Router() *Router { return m.router }

// OnConnectionLost registers the terminal callback fired once when the
// reconnect budget is exhausted. The session then stays disconnected until
// Connect or NotifyNetworkChange is called again.
func (m *Manager) OnConnectionLost(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lostFn = fn
}

// Connect caches the identity for handshake replay and brings the transport
// up. Idempotent: when already connected it only re-sends the authenticate
// frame.
func (m *Manager) Connect(userID string, role contracts.Role) {
	m.mu.Lock()
	m.identity = userID
	m.role = role
	m.started = true
	m.closing = false
	m.attempts = 0
	alreadyConnected := m.connected
	m.mu.Unlock()

	if alreadyConnected {
		m.sendAuthenticate()
		return
	}
	m.dial()
}

// Disconnect tears the session down and forgets the cached identity.
// Idempotent; safe to call when not connected.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.closing = true
	m.identity = ""
	m.role = ""
	m.connected = false
	m.authenticated = false
	m.pending = make(map[string][]byte)
	m.pendingOrder = nil
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.mu.Unlock()

	if m.met != nil {
		m.met.Connected.Set(0)
	}
	_ = m.transport.Close()
	m.log.Info(context.Background(), "socket_disconnected", "Realtime session closed by caller", nil)
}

// Emit sends a frame now when connected. When disconnected it queues at most
// one frame per channel (most recent wins) to fire right after the next
// successful handshake, and opportunistically kicks a connect attempt.
func (m *Manager) Emit(channel string, payload any) {
	frame, err := contracts.EncodeFrame(channel, payload)
	if err != nil {
		m.log.Error(context.Background(), "emit_encode_failed", "Failed to encode outbound frame", err,
			map[string]any{"channel": channel})
		return
	}

	m.mu.Lock()
	if m.connected {
		m.mu.Unlock()
		if err := m.transport.Send(frame); err != nil {
			m.log.Error(context.Background(), "emit_send_failed", "Failed to send frame", err,
				map[string]any{"channel": channel})
		}
		return
	}

	if _, queued := m.pending[channel]; !queued {
		m.pendingOrder = append(m.pendingOrder, channel)
	}
	m.pending[channel] = frame
	shouldDial := m.started && !m.closing && !m.dialing
	m.mu.Unlock()

	if shouldDial {
		go m.dial()
	}
}

// NotifyNetworkChange is called when the device regains connectivity. It
// bypasses any pending backoff timer, re-arms the attempt budget, and dials
// immediately. A no-op before the first Connect.
func (m *Manager) NotifyNetworkChange() {
	m.mu.Lock()
	if !m.started || m.closing || m.connected {
		m.mu.Unlock()
		return
	}
	m.attempts = 0
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.mu.Unlock()

	m.log.Info(context.Background(), "network_restored", "Connectivity regained, reconnecting now", nil)
	m.dial()
}

// Connected reports whether the transport is up.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Authenticated reports whether the server acknowledged the handshake on the
// current connection.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// Snapshot returns the current session state as a value copy.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Session{
		SessionID:         m.sessionID,
		UserID:            m.identity,
		Role:              m.role,
		Connected:         m.connected,
		Authenticated:     m.authenticated,
		ReconnectAttempts: m.attempts,
		CurrentBackoff:    m.currentBackoff,
	}
}

// --- internals ---

// dial performs one transport-level connect attempt. Failures are not
// returned to anyone; they feed the backoff schedule.
func (m *Manager) dial() {
	m.mu.Lock()
	if m.dialing || m.connected || m.closing {
		m.mu.Unlock()
		return
	}
	m.dialing = true
	m.dialGen++
	gen := m.dialGen
	// Close callbacks for this attempt are live from here on: the transport
	// may start its read loop, and fail, before Dial even returns.
	m.connGen = gen
	m.earlyClose = false
	m.mu.Unlock()

	err := m.transport.Dial(context.Background(), m.handleMessage, func(cause error) {
		m.handleClose(gen, cause)
	})

	m.mu.Lock()
	m.dialing = false
	if err != nil {
		m.mu.Unlock()
		m.log.Error(context.Background(), "socket_dial_failed", "Transport connect failed", err, nil)
		m.scheduleReconnect()
		return
	}
	if m.earlyClose {
		// The connection died between Dial handing off its read loop and this
		// goroutine observing the result. Never mark it up; recover as a drop.
		m.earlyClose = false
		m.mu.Unlock()
		m.log.Error(context.Background(), "socket_dropped", "Realtime transport dropped during connect", ErrNotConnected, nil)
		m.scheduleReconnect()
		return
	}

	// Handshake strictly before anything else may write. connected stays
	// false until the authenticate frame is on the wire, so a concurrent
	// Emit queues behind the handshake instead of racing it.
	if m.identity != "" {
		m.sendAuthenticateLocked()
	}
	m.connected = true
	m.attempts = 0
	m.currentBackoff = 0
	frames := m.drainPendingLocked()
	m.mu.Unlock()

	if m.met != nil {
		m.met.Connected.Set(1)
	}
	m.log.Info(context.Background(), "socket_connected", "Realtime transport connected", nil)

	for _, frame := range frames {
		if err := m.transport.Send(frame); err != nil {
			m.log.Error(context.Background(), "queued_send_failed", "Failed to flush queued frame", err, nil)
		}
	}
}

// drainPendingLocked returns the queued frames in registration order and
// clears the queue. Caller holds mu.
func (m *Manager) drainPendingLocked() [][]byte {
	if len(m.pendingOrder) == 0 {
		return nil
	}
	frames := make([][]byte, 0, len(m.pendingOrder))
	for _, channel := range m.pendingOrder {
		frames = append(frames, m.pending[channel])
	}
	m.pending = make(map[string][]byte)
	m.pendingOrder = nil
	return frames
}

// handleClose reacts to the transport dropping. Stale callbacks from a
// superseded connection are ignored.
func (m *Manager) handleClose(gen uint64, cause error) {
	m.mu.Lock()
	if gen != m.connGen {
		m.mu.Unlock()
		return
	}
	if m.dialing && !m.connected {
		// The dial for this generation has not finished; flag the drop and
		// let dial() route it into the reconnect schedule.
		m.earlyClose = true
		m.mu.Unlock()
		return
	}
	wasClosing := m.closing
	m.connected = false
	m.authenticated = false
	m.mu.Unlock()

	if m.met != nil {
		m.met.Connected.Set(0)
	}
	if wasClosing {
		return
	}

	m.log.Error(context.Background(), "socket_dropped", "Realtime transport dropped", cause, nil)
	m.scheduleReconnect()
}

// scheduleReconnect arms the next backoff-delayed dial, or declares the
// session lost once the attempt budget is spent.
func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	if m.closing || m.connected {
		m.mu.Unlock()
		return
	}
	m.attempts++
	if m.attempts > m.opts.MaxReconnects {
		lostFn := m.lostFn
		m.mu.Unlock()
		m.log.Error(context.Background(), "connection_lost",
			"Reconnect attempts exhausted, giving up until manual retry", ErrNotConnected,
			map[string]any{"attempts": m.opts.MaxReconnects})
		if lostFn != nil {
			lostFn()
		}
		return
	}

	delay := m.opts.BackoffBase << (m.attempts - 1)
	if delay > m.opts.BackoffCap || delay <= 0 {
		delay = m.opts.BackoffCap
	}
	m.currentBackoff = delay
	attempt := m.attempts
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
	}
	m.reconnectTimer = time.AfterFunc(delay, m.dial)
	m.mu.Unlock()

	if m.met != nil {
		m.met.ReconnectAttempts.Inc()
	}
	m.log.Info(context.Background(), "reconnect_scheduled", "Reconnect attempt scheduled",
		map[string]any{"attempt": attempt, "delay_ms": delay.Milliseconds()})
}

// sendAuthenticate replays the handshake with the cached identity.
func (m *Manager) sendAuthenticate() {
	m.mu.Lock()
	m.sendAuthenticateLocked()
	m.mu.Unlock()
}

// sendAuthenticateLocked writes the handshake frame. Caller holds mu; the
// write happens under the lock so no other frame can reach the wire first.
func (m *Manager) sendAuthenticateLocked() {
	payload := contracts.AuthenticatePayload{UserID: m.identity, UserType: m.role}
	if err := payload.Validate(); err != nil {
		return
	}
	frame, err := contracts.EncodeFrame(contracts.ChannelAuthenticate, payload)
	if err != nil {
		return
	}
	if err := m.transport.Send(frame); err != nil {
		m.log.Error(context.Background(), "authenticate_send_failed", "Failed to send authenticate frame", err, nil)
		return
	}
	m.log.Info(context.Background(), "authenticate_sent", "Authenticate frame sent",
		map[string]any{"user_id": payload.UserID, "user_type": payload.UserType.String()})
}

// handleMessage decodes, validates, and routes one inbound frame. Malformed
// frames are counted and dropped; they never reach a handler.
func (m *Manager) handleMessage(raw []byte) {
	frame, err := contracts.DecodeFrame(raw)
	if err != nil {
		if m.met != nil {
			m.met.EventsDropped.Inc()
		}
		m.log.Debug(context.Background(), "frame_rejected", "Dropped undecodable frame", nil)
		return
	}

	if frame.Event == contracts.ChannelAuthenticated {
		m.mu.Lock()
		m.authenticated = true
		m.mu.Unlock()
		m.log.Info(context.Background(), "authenticated", "Server acknowledged the handshake", nil)
	}

	if err := validateInbound(frame.Event, frame.Data); err != nil {
		if m.met != nil {
			m.met.EventsDropped.Inc()
		}
		m.log.Debug(context.Background(), "event_rejected", "Dropped event with invalid payload",
			map[string]any{"channel": frame.Event})
		return
	}

	m.router.Dispatch(frame.Event, frame.Data)
}
