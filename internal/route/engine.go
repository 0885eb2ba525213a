package route

import (
	"context"
	"sync"
	"time"

	"gharsewa/internal/general/contracts"
	"gharsewa/internal/general/logger"
	"gharsewa/internal/general/metrics"
	"gharsewa/internal/geo"
)

// RouteCallback receives every computed route. A computation is never
// silently dropped: on provider failure the callback still fires with the
// straight-line fallback.
type RouteCallback func(Route)

const (
	minUpdateInterval = 3 * time.Second
	maxUpdateInterval = 5 * time.Second
)

// Engine converts a stream of raw position updates into a rate-limited
// stream of route results. One route computation runs at a time; a tick that
// lands while the previous computation is still in flight is dropped, not
// queued.
type Engine struct {
	directions DirectionsClient
	profile    string
	log        *logger.Logger
	met        *metrics.Metrics

	mu          sync.Mutex
	active      bool
	interval    time.Duration
	origin      *contracts.GeoPoint
	dest        *contracts.GeoPoint
	lastCompute time.Time
	inFlight    bool
	gen         uint64 // bumped on stop; in-flight results from an older gen are discarded
	stopTicker  chan struct{}
	callbacks   []RouteCallback
}

// NewEngine creates an idle engine. profile falls back to driving-traffic
// when unknown.
func NewEngine(directions DirectionsClient, profile string, log *logger.Logger, met *metrics.Metrics) *Engine {
	if !ValidProfile(profile) {
		profile = ProfileDrivingTraffic
	}
	return &Engine{directions: directions, profile: profile, log: log, met: met}
}

// StartMapUpdates moves the engine to Active: it retains the samples, arms
// the repeating timer, and computes an initial route right away. The
// interval is clamped into the 3s..5s contract window. Calling Start while
// active restarts with the new parameters.
func (e *Engine) StartMapUpdates(origin, dest contracts.GeoPoint, interval time.Duration, cb RouteCallback) {
	if interval < minUpdateInterval {
		interval = minUpdateInterval
	}
	if interval > maxUpdateInterval {
		interval = maxUpdateInterval
	}

	e.StopMapUpdates()

	e.mu.Lock()
	e.active = true
	e.interval = interval
	e.origin = &origin
	e.dest = &dest
	e.lastCompute = time.Time{}
	if cb != nil {
		e.callbacks = append(e.callbacks, cb)
	}
	stop := make(chan struct{})
	e.stopTicker = stop
	e.mu.Unlock()

	e.log.Info(context.Background(), "map_updates_started", "Route engine active",
		map[string]any{"interval_ms": interval.Milliseconds()})

	go e.run(stop, interval)
	go e.step(true)
}

// StopMapUpdates moves the engine back to Idle and clears the callback list,
// so a provider call still in flight resolves into nothing. Safe to call at
// any time, including when already idle.
func (e *Engine) StopMapUpdates() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	e.gen++
	if e.stopTicker != nil {
		close(e.stopTicker)
		e.stopTicker = nil
	}
	e.callbacks = nil
	e.mu.Unlock()

	e.log.Info(context.Background(), "map_updates_stopped", "Route engine idle", nil)
}

// OnRouteUpdate registers an additional route subscriber while active.
func (e *Engine) OnRouteUpdate(cb RouteCallback) {
	if cb == nil {
		return
	}
	e.mu.Lock()
	e.callbacks = append(e.callbacks, cb)
	e.mu.Unlock()
}

// UpdateOrigin stores the freshest origin sample immediately, then
// recomputes only if a full interval has elapsed since the last computation.
func (e *Engine) UpdateOrigin(sample contracts.GeoPoint) {
	e.mu.Lock()
	e.origin = &sample
	e.mu.Unlock()
	e.step(false)
}

// UpdateDestination stores the freshest destination sample immediately, then
// recomputes only if a full interval has elapsed since the last computation.
func (e *Engine) UpdateDestination(sample contracts.GeoPoint) {
	e.mu.Lock()
	e.dest = &sample
	e.mu.Unlock()
	e.step(false)
}

// ForceRouteUpdate replaces both samples, resets the elapsed-time gate, and
// recomputes unconditionally. Used for explicit "refresh now" actions.
func (e *Engine) ForceRouteUpdate(origin, dest contracts.GeoPoint) {
	e.mu.Lock()
	e.origin = &origin
	e.dest = &dest
	e.lastCompute = time.Time{}
	e.mu.Unlock()
	e.step(true)
}

// Origin returns the latest retained origin sample.
func (e *Engine) Origin() (contracts.GeoPoint, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.origin == nil {
		return contracts.GeoPoint{}, false
	}
	return *e.origin, true
}

// run is the repeating timer; each tick performs one update step. The
// ticker itself is the rate bound, so ticks bypass the elapsed-time gate.
func (e *Engine) run(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.step(true)
		}
	}
}

// step performs one mutually-exclusive route computation. bypassGate skips
// the elapsed-time throttle (ticks and forced refreshes); sample updates
// keep it.
func (e *Engine) step(bypassGate bool) {
	e.mu.Lock()
	if !e.active || e.origin == nil || e.dest == nil {
		e.mu.Unlock()
		return
	}
	if e.inFlight {
		// previous computation still running; drop, don't queue
		e.mu.Unlock()
		return
	}
	if !bypassGate && time.Since(e.lastCompute) < e.interval {
		e.mu.Unlock()
		return
	}
	origin, dest := *e.origin, *e.dest
	gen := e.gen
	e.inFlight = true
	e.lastCompute = time.Now()
	e.mu.Unlock()

	result := e.compute(origin, dest)

	e.mu.Lock()
	e.inFlight = false
	if gen != e.gen {
		// stopped (or restarted) while the provider call was in flight
		e.mu.Unlock()
		return
	}
	callbacks := make([]RouteCallback, len(e.callbacks))
	copy(callbacks, e.callbacks)
	e.mu.Unlock()

	for _, cb := range callbacks {
		cb(result)
	}
}

// compute asks the provider for a route and degrades to a straight line on
// any failure. The straight line keeps the UI moving: two points, Haversine
// distance, zero duration.
func (e *Engine) compute(origin, dest contracts.GeoPoint) Route {
	if e.met != nil {
		e.met.RouteComputations.Inc()
	}

	result, err := e.directions.GetDirections(context.Background(), origin, dest, e.profile)
	if err == nil && len(result.Coordinates) > 0 {
		return result
	}

	if e.met != nil {
		e.met.RouteFallbacks.Inc()
	}
	e.log.Debug(context.Background(), "route_fallback", "Directions provider failed, using straight line",
		map[string]any{"reason": errString(err)})

	return Route{
		Coordinates:     []contracts.GeoPoint{origin, dest},
		DistanceMeters:  geo.HaversineMeters(origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude),
		DurationSeconds: 0,
	}
}

func errString(err error) string {
	if err == nil {
		return "empty geometry"
	}
	return err.Error()
}
