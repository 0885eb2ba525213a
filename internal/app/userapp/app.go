package userapp

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"gharsewa/internal/auth"
	"gharsewa/internal/booking"
	"gharsewa/internal/general/config"
	"gharsewa/internal/general/logger"
	"gharsewa/internal/general/metrics"
	"gharsewa/internal/notify"
	"gharsewa/internal/realtime"
	"gharsewa/internal/rest"
	"gharsewa/internal/route"
)

// Run opens a live-tracking session for one booking and prints reconciled
// state transitions until interrupted.
func Run(ctx context.Context, bookingID string) error {
	log := logger.New("user-client")
	ctx = log.WithBookingID(ctx, bookingID)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	identity, err := auth.ParseIdentity(cfg.API.Token)
	if err != nil {
		return fmt.Errorf("api.token: %w", err)
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
	directions := route.NewHTTPDirections(cfg.Directions.BaseURL, cfg.Directions.AccessToken)
	engine := route.NewEngine(directions, cfg.Directions.Profile, log, met)

	reconciler := booking.NewReconciler(bookingID, restClient, router, log, met, booking.Options{
		RefetchDebounce: cfg.Tracking.RefetchDebounce,
		PollInterval:    cfg.Tracking.PollInterval,
		EtaSource:       cfg.Directions.EtaSource,
	})

	// Feed the route engine from reconciled positions; feed reconciled
	// distance/ETA back from computed routes.
	var engineOnce sync.Once
	reconciler.OnChange(func(view booking.View) {
		if view.WorkerLocation != nil && view.Destination != nil {
			engineOnce.Do(func() {
				engine.StartMapUpdates(*view.WorkerLocation, *view.Destination,
					cfg.Tracking.MapUpdateInterval, func(r route.Route) {
						reconciler.ApplyRoute(r.DistanceMeters, r.DurationSeconds)
					})
			})
			engine.UpdateOrigin(*view.WorkerLocation)
		}
		log.Info(ctx, "booking_view", "Booking state updated", map[string]any{
			"status":      view.Status,
			"nav_status":  view.NavStatus.String(),
			"work_status": view.WorkStatus.String(),
			"worker":      view.WorkerName,
			"distance_km": view.DistanceKm,
			"eta_min":     view.EtaMinutes,
		})
	})
	reconciler.OnCompletion(func(flow booking.CompletionFlow, view booking.View) {
		log.Info(ctx, "completion_flow", "Handing off to confirmation flow", map[string]any{
			"flow":           string(flow),
			"payment_method": string(view.PaymentMethod),
			"price":          view.Price,
		})
	})

	var mirror *redis.Client
	if cfg.Redis.Addr != "" {
		mirror = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer mirror.Close()
	}
	store := notify.NewStore(router, log, mirror, identity.UserID)
	store.Restore()
	store.Attach()
	if list, err := restClient.ListNotifications(ctx); err == nil {
		store.Seed(list)
	}

	manager.Connect(identity.UserID, identity.Role)
	reconciler.Start()

	<-ctx.Done()

	engine.StopMapUpdates()
	reconciler.Close()
	store.Detach()
	manager.Disconnect()
	return nil
}
