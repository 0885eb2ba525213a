package contracts

import "time"

// Envelope adds cross-cutting headers all outbound frames may carry.
type Envelope struct {
	CorrelationID string    `json:"correlationId,omitempty"` // correlation for tracing a frame through the backend
	SentAt        time.Time `json:"sentAt,omitempty"`        // ISO-8601 send time (UTC)
}

// GeoPoint is a plain latitude/longitude pair as it travels on the wire.
// Field names mirror the backend contract, not Go conventions.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Valid reports whether the point is inside WGS-84 ranges.
func (p GeoPoint) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// WorkerBrief is the embedded worker summary some booking payloads carry.
// Any of the name fields may be absent; resolution precedence lives in the
// booking package.
type WorkerBrief struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Photo     string `json:"profileImage,omitempty"`
}
