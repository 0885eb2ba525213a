package booking

import (
	"errors"
	"strings"
)

// NavStatus is the client-local navigation state machine layered over the
// server-authoritative booking status. It only ever moves forward: events
// replayed out of order can never regress the UI to an earlier stage.
type NavStatus string

const (
	NavPending    NavStatus = "pending"
	NavAccepted   NavStatus = "accepted"
	NavTracking   NavStatus = "tracking"
	NavNavigating NavStatus = "navigating"
	NavArrived    NavStatus = "arrived"
	NavEnded      NavStatus = "ended"
)

var navRank = map[NavStatus]int{
	NavPending:    0,
	NavAccepted:   1,
	NavTracking:   2,
	NavNavigating: 3,
	NavArrived:    4,
	NavEnded:      5,
}

var ErrInvalidNavStatus = errors.New("invalid nav status")

// ParseNavStatus normalizes and validates a nav status string.
func ParseNavStatus(s string) (NavStatus, error) {
	status := NavStatus(strings.ToLower(strings.TrimSpace(s)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidNavStatus
}

// Valid reports whether the status is a known stage.
func (status NavStatus) Valid() bool {
	_, ok := navRank[status]
	return ok
}

// Rank returns the stage's position in the forward progression.
func (status NavStatus) Rank() int {
	return navRank[status]
}

// Advance returns the later of the two stages. Transitions that would move
// backward are ignored rather than applied.
func (status NavStatus) Advance(to NavStatus) NavStatus {
	if !to.Valid() {
		return status
	}
	if to.Rank() > status.Rank() {
		return to
	}
	return status
}

// String returns the string representation of the NavStatus.
func (status NavStatus) String() string {
	return string(status)
}

// WorkStatus is the client-local work progress machine.
type WorkStatus string

const (
	WorkNotStarted WorkStatus = "not_started"
	WorkInProgress WorkStatus = "in_progress"
	WorkCompleted  WorkStatus = "completed"
)

var workRank = map[WorkStatus]int{
	WorkNotStarted: 0,
	WorkInProgress: 1,
	WorkCompleted:  2,
}

var ErrInvalidWorkStatus = errors.New("invalid work status")

// ParseWorkStatus normalizes and validates a work status string.
func ParseWorkStatus(s string) (WorkStatus, error) {
	status := WorkStatus(strings.ToLower(strings.TrimSpace(s)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidWorkStatus
}

// Valid reports whether the status is a known stage.
func (status WorkStatus) Valid() bool {
	_, ok := workRank[status]
	return ok
}

// Rank returns the stage's position in the forward progression.
func (status WorkStatus) Rank() int {
	return workRank[status]
}

// Advance returns the later of the two stages; backward moves are ignored.
func (status WorkStatus) Advance(to WorkStatus) WorkStatus {
	if !to.Valid() {
		return status
	}
	if to.Rank() > status.Rank() {
		return to
	}
	return status
}

// String returns the string representation of the WorkStatus.
func (status WorkStatus) String() string {
	return string(status)
}

// PaymentMethod is how the customer settles a completed booking. The empty
// value means the booking never specified one.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentOnline      PaymentMethod = "online"
	PaymentUnspecified PaymentMethod = ""
)

// ParsePaymentMethod normalizes a payment method string; anything unknown
// collapses to unspecified.
func ParsePaymentMethod(s string) PaymentMethod {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentCash:
		return PaymentCash
	case PaymentOnline:
		return PaymentOnline
	default:
		return PaymentUnspecified
	}
}

// CompletionFlow is the confirmation path the UI must take after
// work:completed, selected purely from booking data.
type CompletionFlow string

const (
	// Cash settles on the spot: confirm "payment done", then review.
	FlowCashConfirmation CompletionFlow = "cash_confirmation"
	// Online goes through payment-option selection, then review.
	FlowPaymentOptions CompletionFlow = "payment_options"
	// No method recorded: straight to review.
	FlowDirectToReview CompletionFlow = "direct_to_review"
)

// CompletionFlowFor maps a payment method to exactly one confirmation flow.
func CompletionFlowFor(method PaymentMethod) CompletionFlow {
	switch method {
	case PaymentCash:
		return FlowCashConfirmation
	case PaymentOnline:
		return FlowPaymentOptions
	default:
		return FlowDirectToReview
	}
}
