package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavStatusNeverRegresses(t *testing.T) {
	stages := []NavStatus{NavTracking, NavNavigating, NavArrived}

	// Every arrival order of the same three events must land on the same
	// final stage.
	perms := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, perm := range perms {
		status := NavAccepted
		for _, i := range perm {
			status = status.Advance(stages[i])
		}
		assert.Equal(t, NavArrived, status, "order %v", perm)
	}
}

func TestNavStatusAdvanceIgnoresInvalidAndBackward(t *testing.T) {
	status := NavNavigating
	assert.Equal(t, NavNavigating, status.Advance(NavAccepted))
	assert.Equal(t, NavNavigating, status.Advance("teleporting"))
	assert.Equal(t, NavEnded, status.Advance(NavEnded))
}

func TestParseNavStatus(t *testing.T) {
	status, err := ParseNavStatus("  Tracking ")
	require.NoError(t, err)
	assert.Equal(t, NavTracking, status)

	_, err = ParseNavStatus("warp")
	assert.ErrorIs(t, err, ErrInvalidNavStatus)
}

func TestWorkStatusNeverRegresses(t *testing.T) {
	status := WorkNotStarted
	status = status.Advance(WorkCompleted) // completion event raced ahead
	status = status.Advance(WorkInProgress)
	assert.Equal(t, WorkCompleted, status)
}

func TestParseWorkStatus(t *testing.T) {
	status, err := ParseWorkStatus("IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, WorkInProgress, status)

	_, err = ParseWorkStatus("")
	assert.ErrorIs(t, err, ErrInvalidWorkStatus)
}

func TestParsePaymentMethod(t *testing.T) {
	assert.Equal(t, PaymentCash, ParsePaymentMethod(" Cash "))
	assert.Equal(t, PaymentOnline, ParsePaymentMethod("ONLINE"))
	assert.Equal(t, PaymentUnspecified, ParsePaymentMethod("cheque"))
	assert.Equal(t, PaymentUnspecified, ParsePaymentMethod(""))
}

func TestCompletionFlowSelection(t *testing.T) {
	assert.Equal(t, FlowCashConfirmation, CompletionFlowFor(PaymentCash))
	assert.Equal(t, FlowPaymentOptions, CompletionFlowFor(PaymentOnline))
	assert.Equal(t, FlowDirectToReview, CompletionFlowFor(PaymentUnspecified))
}
