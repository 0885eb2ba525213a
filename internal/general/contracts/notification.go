package contracts

import (
	"encoding/json"
	"strings"
	"time"
)

// NotificationPayload travels on notification:new. notification:read and
// notification:deleted carry either the same object or a bare {"_id": ...}.
type NotificationPayload struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title,omitempty"`
	Message   string     `json:"message,omitempty"`
	Type      string     `json:"type,omitempty"`
	Read      bool       `json:"read,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Validate rejects notifications without an identifier.
func (p NotificationPayload) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrMissingField
	}
	return nil
}

// DecodeNotification parses a notification payload, accepting both the full
// object and a bare string ID (the deleted channel sends the latter).
func DecodeNotification(raw json.RawMessage) (NotificationPayload, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return NotificationPayload{}, ErrBadPayload
		}
		payload := NotificationPayload{ID: id}
		if err := payload.Validate(); err != nil {
			return NotificationPayload{}, err
		}
		return payload, nil
	}

	var payload NotificationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return NotificationPayload{}, ErrBadPayload
	}
	if err := payload.Validate(); err != nil {
		return NotificationPayload{}, err
	}
	return payload, nil
}
