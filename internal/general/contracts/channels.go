package contracts

// Inbound channels (server -> client).
const (
	ChannelAuthenticated       = "authenticated"
	ChannelBookingRequest      = "booking:request"
	ChannelBookingAccepted     = "booking:accepted"
	ChannelBookingRejected     = "booking:rejected"
	ChannelBookingStarted      = "booking:started"
	ChannelBookingCompleted    = "booking:completed"
	ChannelBookingCancelled    = "booking:cancelled"
	ChannelBookingUpdated      = "booking:updated"
	ChannelWorkerLocation      = "worker:location"
	ChannelTrackingStarted     = "location:tracking:started"
	ChannelNavigationStarted   = "navigation:started"
	ChannelNavigationArrived   = "navigation:arrived"
	ChannelNavigationEnded     = "navigation:ended"
	ChannelWorkStarted         = "work:started"
	ChannelWorkCompleted       = "work:completed"
	ChannelNotificationNew     = "notification:new"
	ChannelNotificationRead    = "notification:read"
	ChannelNotificationDeleted = "notification:deleted"
)

// Outbound channels (client -> server).
const (
	ChannelAuthenticate       = "authenticate"
	ChannelBookingAccept      = "booking:accept"
	ChannelBookingReject      = "booking:reject"
	ChannelBookingStart       = "booking:start"
	ChannelBookingComplete    = "booking:complete"
	ChannelLocationUpdate     = "location_update"
	ChannelWorkerStatusChange = "worker:status_change"
	ChannelWorkerStatusUpdate = "worker:status_update"
)
