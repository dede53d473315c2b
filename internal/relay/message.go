package relay

import (
	"encoding/json"
	"errors"

	"github.com/bytedance/sonic"
)

// Event names on the wire.
const (
	EventJoinSession  = "join-session"
	EventLeaveSession = "leave-session"
	EventCodeUpdate   = "code-update"
	EventUserJoined   = "user-joined"
	EventUserLeft     = "user-left"
	EventConnected    = "connected"
)

var errMalformedFrame = errors.New("malformed frame")

// Frame is the envelope of every message in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type CodeUpdate struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
}

// Peer describes a connection to the other members of a room. UserID and
// Name are only set for connections that presented a valid token.
type Peer struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId,omitempty"`
	Name         string `json:"name,omitempty"`
}

type Presence struct {
	SessionID string `json:"sessionId"`
	User      Peer   `json:"user"`
}

type Connected struct {
	ConnectionID string `json:"connectionId"`
}

// EncodeFrame builds a wire frame for event with payload as data.
func EncodeFrame(event string, payload any) ([]byte, error) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(Frame{Event: event, Data: data})
}

func DecodeFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := sonic.Unmarshal(raw, &f); err != nil {
		return nil, errMalformedFrame
	}
	if f.Event == "" {
		return nil, errMalformedFrame
	}
	return &f, nil
}

// SessionIDFrom reads the room name of a join or leave frame. Clients send a
// bare string; an object carrying sessionId is accepted too. The id is opaque
// and used exactly as sent, so it matches the sessionId of a code-update.
func SessionIDFrom(data []byte) (string, bool) {
	var id string
	if err := sonic.Unmarshal(data, &id); err != nil {
		var obj struct {
			SessionID string `json:"sessionId"`
		}
		if err := sonic.Unmarshal(data, &obj); err != nil {
			return "", false
		}
		id = obj.SessionID
	}
	return id, id != ""
}

func DecodeCodeUpdate(data []byte) (*CodeUpdate, error) {
	var cu CodeUpdate
	if err := sonic.Unmarshal(data, &cu); err != nil {
		return nil, errMalformedFrame
	}
	if cu.SessionID == "" {
		return nil, errMalformedFrame
	}
	return &cu, nil
}

// DecodeInto unmarshals a frame payload into v.
func DecodeInto(data []byte, v any) error {
	if err := sonic.Unmarshal(data, v); err != nil {
		return errMalformedFrame
	}
	return nil
}
