package booking

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"gharsewa/internal/general/config"
	"gharsewa/internal/general/contracts"
	"gharsewa/internal/general/logger"
	"gharsewa/internal/general/metrics"
	"gharsewa/internal/geo"
	"gharsewa/internal/realtime"
)

// Backend is the slice of the REST API the reconciler needs for its
// authoritative refetches.
type Backend interface {
	GetBooking(ctx context.Context, bookingID string) (contracts.BookingPayload, error)
	GetWorker(ctx context.Context, workerID string) (contracts.WorkerBrief, error)
}

// Options tunes the reconciliation timers.
type Options struct {
	RefetchDebounce time.Duration    // delay before the post-event authoritative refetch
	PollInterval    time.Duration    // unconditional backstop poll
	EtaSource       config.EtaSource // heuristic vs provider duration
}

// ChangeCallback receives a value copy of the view after every mutation.
type ChangeCallback func(View)

// CompletionCallback fires exactly once when work:completed selects a
// confirmation flow.
type CompletionCallback func(CompletionFlow, View)

// Reconciler keeps one booking's View consistent despite events arriving out
// of order, duplicated, or not at all. Every event applies a targeted
// optimistic mutation and schedules a debounced full refetch; a fixed-period
// poll refetches regardless, covering events missed entirely (backgrounded
// app, dropped socket). The refetch is the correctness guarantee and must
// not be optimized away.
type Reconciler struct {
	bookingID string
	backend   Backend
	router    *realtime.Router
	log       *logger.Logger
	met       *metrics.Metrics
	opts      Options

	mu               sync.Mutex
	view             View
	fetchedWorker    *contracts.WorkerBrief
	providerDuration float64 // seconds, from the last route/navigation push
	subs             []realtime.Subscription
	debounce         *time.Timer
	pollStop         chan struct{}
	workTickStop     chan struct{}
	started          bool
	closed           bool
	completionFired  bool
	onChange         ChangeCallback
	onCompletion     CompletionCallback
}

// NewReconciler creates a reconciler for one booking. Nothing runs until
// Start.
func NewReconciler(bookingID string, backend Backend, router *realtime.Router, log *logger.Logger, met *metrics.Metrics, opts Options) *Reconciler {
	if opts.RefetchDebounce <= 0 {
		opts.RefetchDebounce = 500 * time.Millisecond
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	return &Reconciler{
		bookingID: bookingID,
		backend:   backend,
		router:    router,
		log:       log,
		met:       met,
		opts:      opts,
		view: View{
			BookingID:  bookingID,
			Status:     "pending",
			NavStatus:  NavPending,
			WorkStatus: WorkNotStarted,
		},
	}
}

// OnChange registers the view subscriber. Must be set before Start.
func (r *Reconciler) OnChange(fn ChangeCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// OnCompletion registers the completion-flow subscriber. Must be set before
// Start.
func (r *Reconciler) OnCompletion(fn CompletionCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCompletion = fn
}

// Start subscribes to the booking's event channels, kicks an immediate
// authoritative fetch, and arms the backstop poll.
func (r *Reconciler) Start() {
	r.mu.Lock()
	if r.started || r.closed {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.pollStop = make(chan struct{})
	stop := r.pollStop
	r.mu.Unlock()

	r.subscribe(contracts.ChannelBookingAccepted, r.handleBookingEvent("accepted", NavAccepted))
	r.subscribe(contracts.ChannelBookingRejected, r.handleBookingEvent("cancelled", ""))
	r.subscribe(contracts.ChannelBookingStarted, r.handleBookingEvent("in_progress", ""))
	r.subscribe(contracts.ChannelBookingCompleted, r.handleBookingEvent("completed", ""))
	r.subscribe(contracts.ChannelBookingCancelled, r.handleBookingEvent("cancelled", ""))
	r.subscribe(contracts.ChannelBookingUpdated, r.handleBookingEvent("", ""))
	r.subscribe(contracts.ChannelTrackingStarted, r.handleNavEvent(NavTracking))
	r.subscribe(contracts.ChannelNavigationStarted, r.handleNavEvent(NavNavigating))
	r.subscribe(contracts.ChannelNavigationArrived, r.handleNavEvent(NavArrived))
	r.subscribe(contracts.ChannelNavigationEnded, r.handleNavEvent(NavEnded))
	r.subscribe(contracts.ChannelWorkerLocation, r.handleWorkerLocation)
	r.subscribe(contracts.ChannelWorkStarted, r.handleWorkStarted)
	r.subscribe(contracts.ChannelWorkCompleted, r.handleWorkCompleted)

	go r.refetch()
	go r.pollLoop(stop)
}

// Close tears down subscriptions and every timer. Safe to call at any time
// and more than once; an in-flight refetch resolves into nothing.
func (r *Reconciler) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	subs := r.subs
	r.subs = nil
	if r.debounce != nil {
		r.debounce.Stop()
		r.debounce = nil
	}
	if r.pollStop != nil {
		close(r.pollStop)
		r.pollStop = nil
	}
	if r.workTickStop != nil {
		close(r.workTickStop)
		r.workTickStop = nil
	}
	r.mu.Unlock()

	for _, sub := range subs {
		r.router.Off(sub)
	}
}

// View returns a value copy of the current projection.
func (r *Reconciler) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.clone()
}

// ApplyRoute feeds the latest route-engine result into the view. Distance is
// metres, duration seconds; a zero duration marks a straight-line fallback.
func (r *Reconciler) ApplyRoute(distanceMeters, durationSeconds float64) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.view.DistanceKm = distanceMeters / 1000
	r.providerDuration = durationSeconds
	r.recomputeEtaLocked()
	r.mu.Unlock()
	r.notify()
}

// --- event handlers ---

func (r *Reconciler) subscribe(channel string, handler realtime.Handler) {
	sub := r.router.On(channel, handler)
	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()
}

// handleBookingEvent builds the handler for one booking:* channel. status is
// the optimistic lifecycle value the channel implies ("" keeps the payload's
// own), nav the stage the channel advances to ("" leaves navStatus alone).
func (r *Reconciler) handleBookingEvent(status string, nav NavStatus) realtime.Handler {
	return func(data json.RawMessage) {
		payload, err := contracts.DecodeBooking(data)
		if err != nil || !r.matches(payload.Key()) {
			return
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return
		}
		if status != "" {
			r.view.Status = status
		}
		r.applyBookingLocked(payload)
		if nav != "" {
			r.view.NavStatus = r.view.NavStatus.Advance(nav)
		}
		switch r.view.Status {
		case "completed":
			r.view.WorkStatus = r.view.WorkStatus.Advance(WorkCompleted)
			r.stopWorkTickerLocked()
		case "cancelled":
			r.stopWorkTickerLocked()
		}
		r.mu.Unlock()

		r.notify()
		r.scheduleRefetch()
	}
}

// handleNavEvent builds the handler for tracking/navigation channels.
func (r *Reconciler) handleNavEvent(stage NavStatus) realtime.Handler {
	return func(data json.RawMessage) {
		payload, err := contracts.DecodeTrackingEvent(data)
		if err != nil || !r.matches(payload.BookingID) {
			return
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return
		}
		r.view.NavStatus = r.view.NavStatus.Advance(stage)
		if payload.DistanceMeters > 0 {
			r.view.DistanceKm = payload.DistanceMeters / 1000
		}
		if payload.DurationSeconds > 0 {
			r.providerDuration = payload.DurationSeconds
		}
		r.recomputeEtaLocked()
		r.mu.Unlock()

		r.notify()
		r.scheduleRefetch()
	}
}

// handleWorkerLocation stores the freshest worker position and refreshes the
// derived distance/ETA against the booking destination.
func (r *Reconciler) handleWorkerLocation(data json.RawMessage) {
	payload, err := contracts.DecodeWorkerLocation(data)
	if err != nil || !r.matches(payload.BookingID) {
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	point := payload.Point()
	r.view.WorkerLocation = &point
	if r.view.Destination != nil {
		r.view.DistanceKm = geo.HaversineKm(
			point.Latitude, point.Longitude,
			r.view.Destination.Latitude, r.view.Destination.Longitude,
		)
		r.recomputeEtaLocked()
	}
	r.mu.Unlock()

	r.notify()
}

// handleWorkStarted advances workStatus, captures the start time, and arms
// the 1-second elapsed-duration ticker.
func (r *Reconciler) handleWorkStarted(data json.RawMessage) {
	payload, err := contracts.DecodeWorkEvent(data)
	if err != nil || !r.matches(payload.BookingID) {
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.view.WorkStatus = r.view.WorkStatus.Advance(WorkInProgress)
	r.view.Status = "in_progress"
	if started := payload.StartedAt(); !started.IsZero() {
		r.view.WorkStartTime = started
	} else if r.view.WorkStartTime.IsZero() {
		r.view.WorkStartTime = time.Now().UTC()
	}
	if payload.WorkerName != "" && (r.view.WorkerName == "" || r.view.WorkerName == nameAwaitingAssignment || r.view.WorkerName == nameGenericWorker) {
		r.view.WorkerName = payload.WorkerName
	}
	r.startWorkTickerLocked()
	r.mu.Unlock()

	r.notify()
	r.scheduleRefetch()
}

// handleWorkCompleted finishes the work machine and selects exactly one
// completion flow from the payment method. Duplicated completion events are
// absorbed; the flow callback fires once.
func (r *Reconciler) handleWorkCompleted(data json.RawMessage) {
	payload, err := contracts.DecodeWorkEvent(data)
	if err != nil || !r.matches(payload.BookingID) {
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.view.WorkStatus = r.view.WorkStatus.Advance(WorkCompleted)
	r.view.Status = "completed"
	r.view.NavStatus = r.view.NavStatus.Advance(NavEnded)
	if method := ParsePaymentMethod(payload.PaymentMethod); method != PaymentUnspecified {
		r.view.PaymentMethod = method
	}
	if payload.Price > 0 {
		r.view.Price = payload.Price
	}
	r.stopWorkTickerLocked()

	var completion CompletionCallback
	var flow CompletionFlow
	if !r.completionFired {
		r.completionFired = true
		flow = CompletionFlowFor(r.view.PaymentMethod)
		completion = r.onCompletion
	}
	snapshot := r.view.clone()
	r.mu.Unlock()

	r.notify()
	if completion != nil {
		r.log.Info(context.Background(), "completion_flow_selected", "Work completed, confirmation flow chosen",
			map[string]any{"booking_id": r.bookingID, "flow": string(flow)})
		completion(flow, snapshot)
	}
	r.scheduleRefetch()
}

// --- reconciliation ---

// matches guards every handler against events for other bookings.
func (r *Reconciler) matches(bookingID string) bool {
	return strings.TrimSpace(bookingID) == r.bookingID
}

// applyBookingLocked folds a booking payload's fields into the view. Caller
// holds mu.
func (r *Reconciler) applyBookingLocked(payload contracts.BookingPayload) {
	if payload.Status != "" {
		r.view.Status = strings.ToLower(strings.TrimSpace(payload.Status))
	}
	if payload.ServiceName != "" {
		r.view.ServiceName = payload.ServiceName
	}
	if payload.Price > 0 {
		r.view.Price = payload.Price
	}
	if payload.Location != nil {
		dest := *payload.Location
		r.view.Destination = &dest
	}
	if method := ParsePaymentMethod(payload.PaymentMethod); method != PaymentUnspecified {
		r.view.PaymentMethod = method
	}
	r.view.WorkerName = ResolveWorkerName(payload, r.fetchedWorker)
	r.view.WorkerPhone = ResolveWorkerPhone(payload, r.fetchedWorker)
	r.view.WorkerPhoto = ResolveWorkerPhoto(payload, r.fetchedWorker)
}

// seedFromStatusLocked advances the local machines to the minimum stage the
// authoritative status implies. Advance-only: a refetch can confirm
// progress, never undo it.
func (r *Reconciler) seedFromStatusLocked() {
	switch r.view.Status {
	case "accepted":
		r.view.NavStatus = r.view.NavStatus.Advance(NavAccepted)
	case "in_progress":
		r.view.NavStatus = r.view.NavStatus.Advance(NavTracking)
		r.view.WorkStatus = r.view.WorkStatus.Advance(WorkInProgress)
	case "completed":
		r.view.NavStatus = r.view.NavStatus.Advance(NavEnded)
		r.view.WorkStatus = r.view.WorkStatus.Advance(WorkCompleted)
		r.stopWorkTickerLocked()
	case "cancelled":
		r.stopWorkTickerLocked()
	}
}

// scheduleRefetch (re)arms the debounced authoritative refetch. Bursts of
// events coalesce into one fetch.
func (r *Reconciler) scheduleRefetch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if r.debounce != nil {
		r.debounce.Stop()
	}
	r.debounce = time.AfterFunc(r.opts.RefetchDebounce, r.refetch)
}

// refetch pulls authoritative state and folds it into the view. On failure
// the previous view is retained: stale-but-present beats empty.
func (r *Reconciler) refetch() {
	if r.met != nil {
		r.met.Refetches.Inc()
	}

	ctx := r.log.WithBookingID(context.Background(), r.bookingID)
	payload, err := r.backend.GetBooking(ctx, r.bookingID)
	if err != nil {
		r.log.Error(ctx, "refetch_failed", "Authoritative booking fetch failed, keeping previous state", err, nil)
		return
	}

	var fetchWorkerID string
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.applyBookingLocked(payload)
	r.seedFromStatusLocked()
	if r.view.WorkStatus == WorkInProgress && !r.view.WorkStartTime.IsZero() {
		r.startWorkTickerLocked()
	}
	// worker still unresolved but referenced by ID: fetch the record once
	if r.fetchedWorker == nil && payload.Worker == nil && payload.WorkerID.Brief == nil && payload.WorkerID.ID != "" {
		fetchWorkerID = payload.WorkerID.ID
	}
	r.mu.Unlock()
	r.notify()

	if fetchWorkerID == "" {
		return
	}
	worker, err := r.backend.GetWorker(ctx, fetchWorkerID)
	if err != nil {
		r.log.Error(ctx, "worker_fetch_failed", "Worker record fetch failed", err,
			map[string]any{"worker_id": fetchWorkerID})
		return
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.fetchedWorker = &worker
	r.applyBookingLocked(payload)
	r.mu.Unlock()
	r.notify()
}

// pollLoop is the unconditional safety net against events missed entirely.
func (r *Reconciler) pollLoop(stop chan struct{}) {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.refetch()
		}
	}
}

// --- derived state ---

// recomputeEtaLocked refreshes EtaMinutes from the configured source. The
// heuristic is a fixed 2 minutes per kilometre; the provider source uses the
// last pushed trip duration and falls back to the heuristic when none
// arrived yet. Caller holds mu.
func (r *Reconciler) recomputeEtaLocked() {
	if r.opts.EtaSource == config.EtaSourceProvider && r.providerDuration > 0 {
		r.view.EtaMinutes = int(math.Ceil(r.providerDuration / 60))
		return
	}
	r.view.EtaMinutes = geo.EtaMinutesFromKm(r.view.DistanceKm)
}

// startWorkTickerLocked arms the 1-second elapsed-duration ticker. No-op
// when already running or no start time is known. Caller holds mu.
func (r *Reconciler) startWorkTickerLocked() {
	if r.workTickStop != nil || r.view.WorkStartTime.IsZero() {
		return
	}
	stop := make(chan struct{})
	r.workTickStop = stop
	go r.workTickLoop(stop)
}

// stopWorkTickerLocked tears the duration ticker down the moment workStatus
// leaves in_progress. Caller holds mu.
func (r *Reconciler) stopWorkTickerLocked() {
	if r.workTickStop != nil {
		close(r.workTickStop)
		r.workTickStop = nil
	}
}

// workTickLoop updates the displayed elapsed duration once per second.
func (r *Reconciler) workTickLoop(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.closed || r.view.WorkStatus != WorkInProgress || r.view.WorkStartTime.IsZero() {
				r.mu.Unlock()
				continue
			}
			r.view.WorkDurationSeconds = int(time.Since(r.view.WorkStartTime).Seconds())
			r.mu.Unlock()
			r.notify()
		}
	}
}

// notify hands a value copy to the change subscriber, outside the lock.
func (r *Reconciler) notify() {
	r.mu.Lock()
	fn := r.onChange
	snapshot := r.view.clone()
	r.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}
