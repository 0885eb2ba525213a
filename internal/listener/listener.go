package listener

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gharsewa/internal/general/contracts"
	"gharsewa/internal/general/logger"
	"gharsewa/internal/realtime"
)

// RequestCallback receives every booking request addressed to this worker.
// Category and verification filtering stay with the caller; the listener
// only enforces the workerId addressing rule.
type RequestCallback func(contracts.BookingPayload)

// WithdrawnCallback fires when a previously offered booking is cancelled
// before the worker responded.
type WithdrawnCallback func(bookingID string)

const defaultSelfCheck = 30 * time.Second

// Listener guarantees a worker client, once listening, will surface every
// booking:request addressed to it, across reconnects. Resubscription is free
// (the router registry survives reconnects); what must be re-verified is the
// connection itself, so a periodic self-check forces a reconnect whenever
// the manager reports down while the listener believes it should be live.
type Listener struct {
	manager   *realtime.Manager
	log       *logger.Logger
	selfCheck time.Duration

	mu          sync.Mutex
	workerID    string
	active      bool
	subs        []realtime.Subscription
	stop        chan struct{}
	onRequest   RequestCallback
	onWithdrawn WithdrawnCallback
}

// New creates an idle listener on the shared session manager.
func New(manager *realtime.Manager, log *logger.Logger, selfCheck time.Duration) *Listener {
	if selfCheck <= 0 {
		selfCheck = defaultSelfCheck
	}
	return &Listener{manager: manager, log: log, selfCheck: selfCheck}
}

// OnWithdrawn registers the withdrawal subscriber. Must be set before Start.
func (l *Listener) OnWithdrawn(fn WithdrawnCallback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onWithdrawn = fn
}

// StartListening connects as the worker, registers the request handlers, and
// arms the connection self-check. Calling it while active replaces the
// callback and worker identity.
func (l *Listener) StartListening(workerID string, cb RequestCallback) {
	l.mu.Lock()
	l.workerID = workerID
	l.onRequest = cb
	if l.active {
		l.mu.Unlock()
		l.manager.Connect(workerID, contracts.RoleWorker)
		return
	}
	l.active = true
	l.stop = make(chan struct{})
	stop := l.stop
	l.mu.Unlock()

	router := l.manager.Router()
	requestSub := router.On(contracts.ChannelBookingRequest, l.handleRequest)
	cancelSub := router.On(contracts.ChannelBookingCancelled, l.handleCancelled)

	l.mu.Lock()
	l.subs = append(l.subs, requestSub, cancelSub)
	l.mu.Unlock()

	l.manager.Connect(workerID, contracts.RoleWorker)
	go l.selfCheckLoop(stop)

	l.log.Info(context.Background(), "listener_started", "Listening for booking requests",
		map[string]any{"worker_id": workerID})
}

// StopListening removes every handler this listener registered and
// disconnects. Safe to call at any time, including when never started.
func (l *Listener) StopListening() {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}
	l.active = false
	subs := l.subs
	l.subs = nil
	close(l.stop)
	l.stop = nil
	l.mu.Unlock()

	router := l.manager.Router()
	for _, sub := range subs {
		router.Off(sub)
	}
	l.manager.Disconnect()

	l.log.Info(context.Background(), "listener_stopped", "Stopped listening for booking requests", nil)
}

// Active reports whether the listener believes it should be receiving
// requests.
func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// handleRequest applies the addressing filter and surfaces the request.
// Requests explicitly addressed to another worker are dismissed; open
// (unassigned) requests always reach the callback.
func (l *Listener) handleRequest(data json.RawMessage) {
	payload, err := contracts.DecodeBooking(data)
	if err != nil {
		return
	}

	l.mu.Lock()
	workerID := l.workerID
	cb := l.onRequest
	active := l.active
	l.mu.Unlock()
	if !active || cb == nil {
		return
	}

	if payload.WorkerID.ID != "" && payload.WorkerID.ID != workerID {
		l.log.Debug(context.Background(), "request_dismissed", "Booking request addressed to another worker",
			map[string]any{"booking_id": payload.Key(), "addressed_to": payload.WorkerID.ID})
		return
	}

	cb(payload)
}

// handleCancelled surfaces withdrawals of pending offers.
func (l *Listener) handleCancelled(data json.RawMessage) {
	payload, err := contracts.DecodeBooking(data)
	if err != nil {
		return
	}

	l.mu.Lock()
	fn := l.onWithdrawn
	active := l.active
	l.mu.Unlock()
	if active && fn != nil {
		fn(payload.Key())
	}
}

// selfCheckLoop periodically verifies the session is actually up and forces
// a reconnect when it is not. Connect is idempotent, so a healthy session
// only gets its handshake replayed.
func (l *Listener) selfCheckLoop(stop chan struct{}) {
	ticker := time.NewTicker(l.selfCheck)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			workerID := l.workerID
			active := l.active
			l.mu.Unlock()
			if !active {
				return
			}
			if !l.manager.Connected() {
				l.log.Info(context.Background(), "self_check_reconnect", "Listener found session down, reconnecting", nil)
				l.manager.Connect(workerID, contracts.RoleWorker)
			}
		}
	}
}
