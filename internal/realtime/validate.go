package realtime

import (
	"encoding/json"

	"gharsewa/internal/general/contracts"
)

// validateInbound shape-checks the payload of every known channel before it
// may reach a handler. Unknown channels pass through untouched so a newer
// backend can ship events an older client simply ignores.
func validateInbound(event string, data json.RawMessage) error {
	switch event {
	case contracts.ChannelBookingRequest,
		contracts.ChannelBookingAccepted,
		contracts.ChannelBookingRejected,
		contracts.ChannelBookingStarted,
		contracts.ChannelBookingCompleted,
		contracts.ChannelBookingCancelled,
		contracts.ChannelBookingUpdated:
		_, err := contracts.DecodeBooking(data)
		return err

	case contracts.ChannelWorkerLocation:
		_, err := contracts.DecodeWorkerLocation(data)
		return err

	case contracts.ChannelTrackingStarted,
		contracts.ChannelNavigationStarted,
		contracts.ChannelNavigationArrived,
		contracts.ChannelNavigationEnded:
		_, err := contracts.DecodeTrackingEvent(data)
		return err

	case contracts.ChannelWorkStarted, contracts.ChannelWorkCompleted:
		_, err := contracts.DecodeWorkEvent(data)
		return err

	case contracts.ChannelNotificationNew,
		contracts.ChannelNotificationRead,
		contracts.ChannelNotificationDeleted:
		_, err := contracts.DecodeNotification(data)
		return err

	default:
		return nil
	}
}
