package booking

import (
	"strings"

	"gharsewa/internal/general/contracts"
)

// Fallback display names. "Awaiting assignment" is shown only while the
// booking has no worker yet; once one was ever attached the neutral "Worker"
// is used instead.
const (
	nameAwaitingAssignment = "Awaiting assignment"
	nameGenericWorker      = "Worker"
)

// ResolveWorkerName applies the worker-info precedence used everywhere a
// worker is displayed:
//
//	booking.worker.name
//	-> booking.worker.firstName + lastName
//	-> booking.workerId expanded object (same name precedence)
//	-> separately fetched worker record
//	-> "Awaiting assignment" (pending/unassigned) or "Worker"
//
// Phone and photo resolution walk the identical chain so the three fields
// can never disagree about which source they came from.
func ResolveWorkerName(payload contracts.BookingPayload, fetched *contracts.WorkerBrief) string {
	if name := briefName(payload.Worker); name != "" {
		return name
	}
	if name := briefName(payload.WorkerID.Brief); name != "" {
		return name
	}
	if name := briefName(fetched); name != "" {
		return name
	}
	if unassigned(payload) {
		return nameAwaitingAssignment
	}
	return nameGenericWorker
}

// ResolveWorkerPhone returns the first phone along the precedence chain.
func ResolveWorkerPhone(payload contracts.BookingPayload, fetched *contracts.WorkerBrief) string {
	for _, brief := range []*contracts.WorkerBrief{payload.Worker, payload.WorkerID.Brief, fetched} {
		if brief != nil && strings.TrimSpace(brief.Phone) != "" {
			return strings.TrimSpace(brief.Phone)
		}
	}
	return ""
}

// ResolveWorkerPhoto returns the first photo along the precedence chain.
func ResolveWorkerPhoto(payload contracts.BookingPayload, fetched *contracts.WorkerBrief) string {
	for _, brief := range []*contracts.WorkerBrief{payload.Worker, payload.WorkerID.Brief, fetched} {
		if brief != nil && strings.TrimSpace(brief.Photo) != "" {
			return strings.TrimSpace(brief.Photo)
		}
	}
	return ""
}

// briefName extracts a display name from one worker summary.
func briefName(brief *contracts.WorkerBrief) string {
	if brief == nil {
		return ""
	}
	if name := strings.TrimSpace(brief.Name); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(brief.FirstName) + " " + strings.TrimSpace(brief.LastName))
}

// unassigned reports whether the booking still has no worker attached.
func unassigned(payload contracts.BookingPayload) bool {
	if payload.Worker != nil || !payload.WorkerID.IsZero() {
		return false
	}
	status := strings.ToLower(strings.TrimSpace(payload.Status))
	return status == "" || status == "pending"
}
