package workerapp

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gharsewa/internal/auth"
	"gharsewa/internal/general/config"
	"gharsewa/internal/general/contracts"
	"gharsewa/internal/general/logger"
	"gharsewa/internal/general/metrics"
	"gharsewa/internal/listener"
	"gharsewa/internal/realtime"
	"gharsewa/internal/rest"
)

// Starting point for the simulated walk (central Kathmandu).
const (
	simStartLat = 27.7172
	simStartLng = 85.3240
)

// Run connects as a worker, listens for booking requests, and optionally
// streams a simulated position until interrupted.
func Run(ctx context.Context, simulate, autoAccept bool) error {
	log := logger.New("worker-client")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	identity, err := auth.ParseIdentity(cfg.API.Token)
	if err != nil {
		return fmt.Errorf("api.token: %w", err)
	}
	if identity.Role != contracts.RoleWorker {
		return fmt.Errorf("api.token belongs to role %q, want worker", identity.Role)
	}

	met := metrics.New(prometheus.NewRegistry())
	router := realtime.NewRouter(log, met)
	transport := realtime.NewWSTransport(cfg.Socket.URL, cfg.Socket.HandshakeTimeout)
	manager := realtime.NewManager(transport, router, log, met, realtime.Options{
		BackoffBase:   cfg.Socket.BackoffBase,
		BackoffCap:    cfg.Socket.BackoffCap,
		MaxReconnects: cfg.Socket.MaxReconnects,
	})
	manager.OnConnectionLost(func() {
		log.Error(ctx, "connection_lost_alert", "Realtime connection lost, tap retry to reconnect", nil, nil)
	})

	restClient := rest.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout, log)

	jobs := listener.New(manager, log, 30*time.Second)
	jobs.OnWithdrawn(func(bookingID string) {
		log.Info(ctx, "request_withdrawn", "Booking request withdrawn before response",
			map[string]any{"booking_id": bookingID})
	})
	jobs.StartListening(identity.UserID, func(request contracts.BookingPayload) {
		log.Info(ctx, "booking_request", "Booking request received", map[string]any{
			"booking_id": request.Key(),
			"service":    request.ServiceName,
			"category":   request.ServiceCategory,
			"price":      request.Price,
		})
		if autoAccept {
			manager.Emit(contracts.ChannelBookingAccept, contracts.BookingActionPayload{
				BookingID: request.Key(),
				WorkerID:  identity.UserID,
			})
		}
	})

	// Announce availability on both status channels; mirror over REST so a
	// backend that missed the frame still flips the flag.
	statusPayload := contracts.WorkerStatusPayload{Status: contracts.WorkerStatusAvailable}
	manager.Emit(contracts.ChannelWorkerStatusChange, statusPayload)
	manager.Emit(contracts.ChannelWorkerStatusUpdate, statusPayload)
	if err := restClient.UpdateWorkerStatus(ctx, contracts.WorkerStatusAvailable); err != nil {
		log.Error(ctx, "status_mirror_failed", "REST status update failed", err, nil)
	}

	if simulate {
		go simulateWalk(ctx, manager, restClient, log)
	}

	<-ctx.Done()

	offline := contracts.WorkerStatusPayload{Status: contracts.WorkerStatusOffline}
	manager.Emit(contracts.ChannelWorkerStatusChange, offline)
	manager.Emit(contracts.ChannelWorkerStatusUpdate, offline)
	jobs.StopListening()
	return nil
}

// simulateWalk emits a drifting position every 5 seconds, the same cadence a
// real device provider would be throttled to.
func simulateWalk(ctx context.Context, manager *realtime.Manager, restClient *rest.Client, log *logger.Logger) {
	lat, lng := simStartLat, simStartLng
	accuracy := 8.0

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lat += (rand.Float64() - 0.5) * 0.001
			lng += (rand.Float64() - 0.5) * 0.001

			payload := contracts.LocationUpdatePayload{Latitude: lat, Longitude: lng, Accuracy: &accuracy}
			manager.Emit(contracts.ChannelLocationUpdate, payload)
			if err := restClient.UpdateWorkerLocation(ctx, payload); err != nil {
				log.Debug(ctx, "location_mirror_failed", "REST location update failed",
					map[string]any{"err": err.Error()})
			}
		}
	}
}
