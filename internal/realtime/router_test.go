package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"gharsewa/internal/general/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRouter() *Router {
	return NewRouter(logger.New("test"), nil)
}

func TestRouterDeliversInRegistrationOrder(t *testing.T) {
	r := newTestRouter()

	var got []string
	r.On("booking:accepted", func(json.RawMessage) { got = append(got, "first") })
	r.On("booking:accepted", func(json.RawMessage) { got = append(got, "second") })
	r.On("booking:accepted", func(json.RawMessage) { got = append(got, "third") })

	r.Dispatch("booking:accepted", json.RawMessage(`{}`))
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestRouterOffRemovesSingleRegistration(t *testing.T) {
	r := newTestRouter()

	var got []string
	keep := func(json.RawMessage) { got = append(got, "keep") }
	sub := r.On("tracking:event", func(json.RawMessage) { got = append(got, "drop") })
	r.On("tracking:event", keep)

	r.Off(sub)
	r.Dispatch("tracking:event", nil)
	assert.Equal(t, []string{"keep"}, got)

	// removing the same token again is a no-op
	r.Off(sub)
	r.Dispatch("tracking:event", nil)
	assert.Equal(t, []string{"keep", "keep"}, got)
}

func TestRouterOffChannel(t *testing.T) {
	r := newTestRouter()

	calls := 0
	r.On("notification:new", func(json.RawMessage) { calls++ })
	r.On("notification:new", func(json.RawMessage) { calls++ })

	r.OffChannel("notification:new")
	r.Dispatch("notification:new", nil)
	assert.Zero(t, calls)
}

func TestRouterDuplicateHandlerDeliveredPerRegistration(t *testing.T) {
	r := newTestRouter()

	calls := 0
	fn := func(json.RawMessage) { calls++ }
	r.On("worker:location", fn)
	r.On("worker:location", fn)

	r.Dispatch("worker:location", nil)
	assert.Equal(t, 2, calls)
}

func TestRouterPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	r := newTestRouter()

	var got []string
	r.On("booking:completed", func(json.RawMessage) { panic("boom") })
	r.On("booking:completed", func(json.RawMessage) { got = append(got, "survivor") })

	assert.NotPanics(t, func() {
		r.Dispatch("booking:completed", json.RawMessage(`{}`))
	})
	assert.Equal(t, []string{"survivor"}, got)
}

func TestRouterDispatchWithoutHandlersIsNoop(t *testing.T) {
	r := newTestRouter()
	assert.NotPanics(t, func() {
		r.Dispatch("nobody:listens", json.RawMessage(`{"x":1}`))
	})
}
