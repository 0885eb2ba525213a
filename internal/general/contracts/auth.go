package contracts

import "strings"

// AuthenticatePayload is the first frame a client sends after every
// (re)connect: {"userId": ..., "userType": "user"|"worker"}.
type AuthenticatePayload struct {
	UserID   string `json:"userId"`
	UserType Role   `json:"userType"`
}

// Validate checks the handshake payload before it is emitted.
func (p AuthenticatePayload) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrMissingField
	}
	if !p.UserType.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// AuthenticatedPayload is the server acknowledgement of an authenticate frame.
type AuthenticatedPayload struct {
	SocketID string   `json:"socketId"`
	Rooms    []string `json:"rooms,omitempty"`
	UserType Role     `json:"userType"`
}
