package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextCarriers(t *testing.T) {
	log := New("realtime")
	ctx := context.Background()

	ctx = log.WithRequestID(ctx, "req-1")
	ctx = log.WithBookingID(ctx, "b1")

	assert.Equal(t, "req-1", requestID(ctx))
	assert.Equal(t, "b1", bookingID(ctx))
}

func TestBlankIDsAreNotAttached(t *testing.T) {
	log := New("realtime")
	ctx := context.Background()

	same := log.WithRequestID(ctx, "   ")
	assert.Equal(t, ctx, same)
	assert.Empty(t, requestID(same))
	assert.Empty(t, bookingID(nil))
}

func TestNewFallsBackOnBlankComponent(t *testing.T) {
	log := New("  ")
	assert.Equal(t, "unknown-component", log.component)
}

func TestSafeAction(t *testing.T) {
	assert.Equal(t, "socket_connected", safeAction(" socket_connected "))
	assert.Equal(t, "unspecified", safeAction(""))
}
