package contracts

import (
	"encoding/json"
	"strings"
	"time"
)

// WorkerRef models the backend's loose "workerId" field, which is either a
// plain ID string or an expanded worker object depending on the endpoint.
type WorkerRef struct {
	ID    string
	Brief *WorkerBrief
}

// IsZero reports whether the reference carries neither an ID nor an object.
func (ref WorkerRef) IsZero() bool {
	return ref.ID == "" && ref.Brief == nil
}

// UnmarshalJSON accepts both the string and the expanded-object form.
func (ref *WorkerRef) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		*ref = WorkerRef{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		return json.Unmarshal(data, &ref.ID)
	}
	var brief WorkerBrief
	if err := json.Unmarshal(data, &brief); err != nil {
		return err
	}
	ref.Brief = &brief
	ref.ID = brief.ID
	return nil
}

// MarshalJSON writes the string form when only an ID is known, the expanded
// object otherwise.
func (ref WorkerRef) MarshalJSON() ([]byte, error) {
	if ref.Brief != nil {
		return json.Marshal(ref.Brief)
	}
	return json.Marshal(ref.ID)
}

// BookingPayload is the booking object the backend pushes on the
// booking:* channels. Events that only carry a reference use BookingID.
type BookingPayload struct {
	ID              string       `json:"_id,omitempty"`
	BookingID       string       `json:"bookingId,omitempty"`
	Status          string       `json:"status,omitempty"`
	ServiceName     string       `json:"serviceName,omitempty"`
	ServiceCategory string       `json:"serviceCategory,omitempty"`
	Price           float64      `json:"price,omitempty"`
	Location        *GeoPoint    `json:"location,omitempty"`
	Worker          *WorkerBrief `json:"worker,omitempty"`
	WorkerID        WorkerRef    `json:"workerId,omitempty"`
	UserID          string       `json:"userId,omitempty"`
	PaymentMethod   string       `json:"paymentMethod,omitempty"`
	CreatedAt       *time.Time   `json:"createdAt,omitempty"`
}

// Key returns the booking identifier regardless of which field the event
// chose to carry it in.
func (b BookingPayload) Key() string {
	if b.ID != "" {
		return b.ID
	}
	return b.BookingID
}

// Validate rejects payloads with no booking identifier at all.
func (b BookingPayload) Validate() error {
	if strings.TrimSpace(b.Key()) == "" {
		return ErrMissingField
	}
	return nil
}

// DecodeBooking parses and validates a booking:* event payload.
func DecodeBooking(raw json.RawMessage) (BookingPayload, error) {
	var payload BookingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return BookingPayload{}, ErrBadPayload
	}
	if err := payload.Validate(); err != nil {
		return BookingPayload{}, err
	}
	return payload, nil
}

// WorkEventPayload travels on work:started and work:completed.
type WorkEventPayload struct {
	BookingID     string     `json:"bookingId"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	WorkerName    string     `json:"workerName,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Price         float64    `json:"price,omitempty"`
}

// StartedAt picks the explicit start time when present, the event timestamp
// otherwise. Returns the zero time when the event carried neither.
func (p WorkEventPayload) StartedAt() time.Time {
	if p.StartTime != nil {
		return *p.StartTime
	}
	if p.Timestamp != nil {
		return *p.Timestamp
	}
	return time.Time{}
}

// Validate rejects work events without a booking identifier.
func (p WorkEventPayload) Validate() error {
	if strings.TrimSpace(p.BookingID) == "" {
		return ErrMissingField
	}
	return nil
}

// DecodeWorkEvent parses and validates a work:* event payload.
func DecodeWorkEvent(raw json.RawMessage) (WorkEventPayload, error) {
	var payload WorkEventPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return WorkEventPayload{}, ErrBadPayload
	}
	if err := payload.Validate(); err != nil {
		return WorkEventPayload{}, err
	}
	return payload, nil
}

// BookingActionPayload is the outbound accept/reject/start/complete frame.
type BookingActionPayload struct {
	BookingID string `json:"bookingId"`
	WorkerID  string `json:"workerId"`
	Reason    string `json:"reason,omitempty"`
	Envelope
}

// Validate checks the outbound action before it is emitted.
func (p BookingActionPayload) Validate() error {
	if strings.TrimSpace(p.BookingID) == "" || strings.TrimSpace(p.WorkerID) == "" {
		return ErrMissingField
	}
	return nil
}
