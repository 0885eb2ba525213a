package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"gharsewa/internal/general/logger"
	"gharsewa/internal/general/metrics"
)

// Handler consumes a raw event payload. Handlers must tolerate re-delivery;
// the backend may push the same event more than once around reconnects.
type Handler func(data json.RawMessage)

// Subscription identifies one registered handler so it can be removed again.
// Go functions are not comparable, so removal goes through this token rather
// than the callback value itself.
type Subscription struct {
	channel string
	id      uint64
}

type registration struct {
	id uint64
	fn Handler
}

// Router is the typed publish/subscribe registry between the socket and the
// engine's consumers. Delivery order within a channel equals registration
// order; a panicking handler never blocks the handlers behind it.
type Router struct {
	log *logger.Logger
	met *metrics.Metrics

	mu       sync.Mutex
	nextID   uint64
	handlers map[string][]registration
}

// NewRouter creates an empty registry.
func NewRouter(log *logger.Logger, met *metrics.Metrics) *Router {
	return &Router{
		log:      log,
		met:      met,
		handlers: make(map[string][]registration),
	}
}

// On appends a handler to the channel's delivery list. Duplicate handlers
// are allowed; each registration is delivered independently.
func (r *Router) On(channel string, fn Handler) Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.handlers[channel] = append(r.handlers[channel], registration{id: r.nextID, fn: fn})
	return Subscription{channel: channel, id: r.nextID}
}

// Off removes a single registration. Unknown tokens are a no-op.
func (r *Router) Off(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	regs := r.handlers[sub.channel]
	for i, reg := range regs {
		if reg.id == sub.id {
			r.handlers[sub.channel] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(r.handlers[sub.channel]) == 0 {
		delete(r.handlers, sub.channel)
	}
}

// OffChannel removes every handler registered for the channel.
func (r *Router) OffChannel(channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, channel)
}

// Dispatch delivers a payload to every handler of the channel, in
// registration order, synchronously with respect to the inbound message.
func (r *Router) Dispatch(channel string, data json.RawMessage) {
	r.mu.Lock()
	regs := make([]registration, len(r.handlers[channel]))
	copy(regs, r.handlers[channel])
	r.mu.Unlock()

	if len(regs) == 0 {
		return
	}
	if r.met != nil {
		r.met.EventsDelivered.WithLabelValues(channel).Inc()
	}

	for _, reg := range regs {
		r.deliver(channel, reg, data)
	}
}

// deliver invokes one handler behind a recover guard so a panicking handler
// cannot break delivery to the handlers after it.
func (r *Router) deliver(channel string, reg registration, data json.RawMessage) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error(context.Background(), "handler_panic",
				"Event handler panicked", fmt.Errorf("%v", p),
				map[string]any{"channel": channel})
		}
	}()
	reg.fn(data)
}
