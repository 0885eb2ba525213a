package contracts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	frame, err := DecodeFrame([]byte(`{"event":"booking:accepted","data":{"_id":"b1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "booking:accepted", frame.Event)
	assert.JSONEq(t, `{"_id":"b1"}`, string(frame.Data))

	_, err = DecodeFrame([]byte(`{"data":{"_id":"b1"}}`))
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = DecodeFrame([]byte(`{"event":"  "}`))
	assert.ErrorIs(t, err, ErrEmptyFrame)

	_, err = DecodeFrame([]byte(`garbage`))
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestEncodeFrameRoundTrip(t *testing.T) {
	raw, err := EncodeFrame(ChannelAuthenticate, AuthenticatePayload{UserID: "u1", UserType: RoleUser})
	require.NoError(t, err)

	frame, err := DecodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, ChannelAuthenticate, frame.Event)

	var payload AuthenticatePayload
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	assert.Equal(t, "u1", payload.UserID)
	assert.Equal(t, RoleUser, payload.UserType)
}

func TestWorkerRefAcceptsStringAndObjectForms(t *testing.T) {
	var fromString WorkerRef
	require.NoError(t, json.Unmarshal([]byte(`"w9"`), &fromString))
	assert.Equal(t, "w9", fromString.ID)
	assert.Nil(t, fromString.Brief)

	var fromObject WorkerRef
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"w9","firstName":"Ram","phone":"9841"}`), &fromObject))
	assert.Equal(t, "w9", fromObject.ID)
	require.NotNil(t, fromObject.Brief)
	assert.Equal(t, "Ram", fromObject.Brief.FirstName)

	var fromNull WorkerRef
	require.NoError(t, json.Unmarshal([]byte(`null`), &fromNull))
	assert.True(t, fromNull.IsZero())

	var fromEmpty WorkerRef
	require.NoError(t, json.Unmarshal([]byte(`""`), &fromEmpty))
	assert.True(t, fromEmpty.IsZero())
}

func TestWorkerRefMarshalKeepsShape(t *testing.T) {
	idOnly, err := json.Marshal(WorkerRef{ID: "w9"})
	require.NoError(t, err)
	assert.Equal(t, `"w9"`, string(idOnly))

	expanded, err := json.Marshal(WorkerRef{Brief: &WorkerBrief{ID: "w9", FirstName: "Ram"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"w9","firstName":"Ram"}`, string(expanded))
}

func TestBookingPayloadKey(t *testing.T) {
	assert.Equal(t, "b1", BookingPayload{ID: "b1", BookingID: "ref"}.Key())
	assert.Equal(t, "ref", BookingPayload{BookingID: "ref"}.Key())
	assert.ErrorIs(t, BookingPayload{}.Validate(), ErrMissingField)
}

func TestDecodeBookingRejectsUnidentified(t *testing.T) {
	_, err := DecodeBooking(json.RawMessage(`{"status":"accepted"}`))
	assert.ErrorIs(t, err, ErrMissingField)

	payload, err := DecodeBooking(json.RawMessage(`{"bookingId":"b1","workerId":{"firstName":"Ram"}}`))
	require.NoError(t, err)
	require.NotNil(t, payload.WorkerID.Brief)
	assert.Equal(t, "Ram", payload.WorkerID.Brief.FirstName)
}

func TestWorkEventStartedAtPrecedence(t *testing.T) {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	stamp := time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC)

	assert.Equal(t, start, WorkEventPayload{StartTime: &start, Timestamp: &stamp}.StartedAt())
	assert.Equal(t, stamp, WorkEventPayload{Timestamp: &stamp}.StartedAt())
	assert.True(t, WorkEventPayload{}.StartedAt().IsZero())
}

func TestDecodeNotificationAcceptsObjectAndBareID(t *testing.T) {
	full, err := DecodeNotification(json.RawMessage(`{"_id":"n1","title":"Booking accepted","read":false}`))
	require.NoError(t, err)
	assert.Equal(t, "n1", full.ID)
	assert.Equal(t, "Booking accepted", full.Title)

	bare, err := DecodeNotification(json.RawMessage(`"n2"`))
	require.NoError(t, err)
	assert.Equal(t, "n2", bare.ID)

	_, err = DecodeNotification(json.RawMessage(`{"title":"no id"}`))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDecodeWorkerLocationValidatesRanges(t *testing.T) {
	_, err := DecodeWorkerLocation(json.RawMessage(`{"bookingId":"b1","latitude":95,"longitude":85.3}`))
	assert.ErrorIs(t, err, ErrBadPayload)

	_, err = DecodeWorkerLocation(json.RawMessage(`{"latitude":27.7,"longitude":85.3}`))
	assert.ErrorIs(t, err, ErrMissingField)

	payload, err := DecodeWorkerLocation(json.RawMessage(`{"bookingId":"b1","latitude":27.7,"longitude":85.3}`))
	require.NoError(t, err)
	assert.Equal(t, GeoPoint{Latitude: 27.7, Longitude: 85.3}, payload.Point())
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Worker ")
	require.NoError(t, err)
	assert.Equal(t, RoleWorker, role)

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestParseWorkerStatus(t *testing.T) {
	status, err := ParseWorkerStatus("AVAILABLE")
	require.NoError(t, err)
	assert.Equal(t, WorkerStatusAvailable, status)

	_, err = ParseWorkerStatus("away")
	assert.ErrorIs(t, err, ErrInvalidWorkerStatus)
}

func TestGeoPointValid(t *testing.T) {
	assert.True(t, GeoPoint{Latitude: 27.7, Longitude: 85.3}.Valid())
	assert.False(t, GeoPoint{Latitude: -90.5, Longitude: 0}.Valid())
	assert.False(t, GeoPoint{Latitude: 0, Longitude: 180.5}.Valid())
}
