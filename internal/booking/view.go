package booking

import (
	"time"

	"gharsewa/internal/general/contracts"
)

// View is the client-side projection of one booking, shaped for a tracking
// screen. Status mirrors the server lifecycle; NavStatus and WorkStatus are
// local derived machines seeded and advanced by events, with the periodic
// refetch as the source of truth on ambiguity.
//
// A View is always handed out by value. WorkerLocation is a plain copy and
// never references the engine that produced it.
type View struct {
	BookingID           string
	Status              string // pending|accepted|in_progress|completed|cancelled
	NavStatus           NavStatus
	WorkStatus          WorkStatus
	WorkStartTime       time.Time // zero until work:started
	WorkDurationSeconds int
	EtaMinutes          int
	DistanceKm          float64
	WorkerLocation      *contracts.GeoPoint
	Destination         *contracts.GeoPoint

	ServiceName   string
	Price         float64
	WorkerName    string
	WorkerPhone   string
	WorkerPhoto   string
	PaymentMethod PaymentMethod
}

// clone returns a deep value copy safe to hand to callbacks.
func (v View) clone() View {
	out := v
	if v.WorkerLocation != nil {
		loc := *v.WorkerLocation
		out.WorkerLocation = &loc
	}
	if v.Destination != nil {
		dest := *v.Destination
		out.Destination = &dest
	}
	return out
}
