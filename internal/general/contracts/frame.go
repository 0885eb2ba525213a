package contracts

import (
	"encoding/json"
	"errors"
	"strings"
)

// Frame is the envelope every socket message travels in:
// {"event": "<channel>", "data": <payload>}.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

var (
	ErrEmptyFrame   = errors.New("frame has no event name")
	ErrBadFrame     = errors.New("frame is not valid JSON")
	ErrBadPayload   = errors.New("payload failed validation")
	ErrMissingField = errors.New("payload is missing a required field")
)

// DecodeFrame parses a raw socket message into a Frame.
func DecodeFrame(raw []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Frame{}, ErrBadFrame
	}
	if strings.TrimSpace(frame.Event) == "" {
		return Frame{}, ErrEmptyFrame
	}
	return frame, nil
}

// EncodeFrame serializes an outbound frame. The payload is marshalled here so
// senders hand over plain structs.
func EncodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: data})
}
