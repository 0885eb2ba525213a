package contracts

import (
	"encoding/json"
	"strings"
	"time"
)

// WorkerLocationPayload is the live position push on worker:location.
type WorkerLocationPayload struct {
	WorkerID  string     `json:"workerId"`
	BookingID string     `json:"bookingId"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Point returns the position as a GeoPoint.
func (p WorkerLocationPayload) Point() GeoPoint {
	return GeoPoint{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Validate rejects positions without a booking or outside WGS-84 ranges.
func (p WorkerLocationPayload) Validate() error {
	if strings.TrimSpace(p.BookingID) == "" {
		return ErrMissingField
	}
	if !p.Point().Valid() {
		return ErrBadPayload
	}
	return nil
}

// DecodeWorkerLocation parses and validates a worker:location payload.
func DecodeWorkerLocation(raw json.RawMessage) (WorkerLocationPayload, error) {
	var payload WorkerLocationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return WorkerLocationPayload{}, ErrBadPayload
	}
	if err := payload.Validate(); err != nil {
		return WorkerLocationPayload{}, err
	}
	return payload, nil
}

// TrackingEventPayload travels on location:tracking:started and the
// navigation:* channels. navigation:started may additionally carry route
// geometry and trip metrics.
type TrackingEventPayload struct {
	BookingID       string          `json:"bookingId"`
	WorkerID        string          `json:"workerId,omitempty"`
	Timestamp       *time.Time      `json:"timestamp,omitempty"`
	Route           json.RawMessage `json:"route,omitempty"`
	DistanceMeters  float64         `json:"distance,omitempty"`
	DurationSeconds float64         `json:"duration,omitempty"`
}

// Validate rejects tracking events without a booking identifier.
func (p TrackingEventPayload) Validate() error {
	if strings.TrimSpace(p.BookingID) == "" {
		return ErrMissingField
	}
	return nil
}

// DecodeTrackingEvent parses and validates a tracking/navigation payload.
func DecodeTrackingEvent(raw json.RawMessage) (TrackingEventPayload, error) {
	var payload TrackingEventPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return TrackingEventPayload{}, ErrBadPayload
	}
	if err := payload.Validate(); err != nil {
		return TrackingEventPayload{}, err
	}
	return payload, nil
}

// LocationUpdatePayload is the outbound position report a worker client
// emits on location_update.
type LocationUpdatePayload struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// Validate checks ranges before the frame is emitted.
func (p LocationUpdatePayload) Validate() error {
	point := GeoPoint{Latitude: p.Latitude, Longitude: p.Longitude}
	if !point.Valid() {
		return ErrBadPayload
	}
	return nil
}

// WorkerStatusPayload is the outbound availability report, emitted on both
// worker:status_change and worker:status_update for backend compatibility.
type WorkerStatusPayload struct {
	Status WorkerStatus `json:"status"`
}

// Validate checks the status value before the frame is emitted.
func (p WorkerStatusPayload) Validate() error {
	if !p.Status.Valid() {
		return ErrInvalidWorkerStatus
	}
	return nil
}
