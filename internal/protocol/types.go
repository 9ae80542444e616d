// Package protocol defines the pointer messages sent to the desktop server.
// Messages are fire-and-forget: there is no acknowledgement, sequence
// number or response.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies the kind of message on the wire.
type MessageType string

const (
	MsgMove  MessageType = "move"
	MsgClick MessageType = "click"
)

// Button is a pointer button.
type Button int

const (
	Left Button = iota
	Right
)

var buttonNames = map[Button]string{
	Left:  "left",
	Right: "right",
}

var buttonFromName = map[string]Button{
	"left":  Left,
	"right": Right,
}

func (b Button) String() string {
	if s, ok := buttonNames[b]; ok {
		return s
	}
	return "unknown"
}

func (b Button) MarshalJSON() ([]byte, error) {
	s, ok := buttonNames[b]
	if !ok {
		return nil, fmt.Errorf("unknown button %d", int(b))
	}
	return json.Marshal(s)
}

func (b *Button) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := buttonFromName[s]
	if !ok {
		return fmt.Errorf("unknown button %q", s)
	}
	*b = v
	return nil
}

// ParseButton maps "left"/"right" to a Button.
func ParseButton(s string) (Button, error) {
	v, ok := buttonFromName[s]
	if !ok {
		return 0, fmt.Errorf("unknown button %q", s)
	}
	return v, nil
}

// Message is implemented by every message the client can send.
type Message interface {
	Type() MessageType
}

// Move is a relative pointer movement.
type Move struct {
	DX float64
	DY float64
}

func (Move) Type() MessageType { return MsgMove }

// Click is a single button click.
type Click struct {
	Button Button
}

func (Click) Type() MessageType { return MsgClick }

type moveWire struct {
	Type MessageType `json:"type"`
	DX   float64     `json:"dx"`
	DY   float64     `json:"dy"`
}

type clickWire struct {
	Type   MessageType `json:"type"`
	Button Button      `json:"button"`
}

var errNilMessage = errors.New("encode: nil message")

// Encode renders a message as a single JSON object.
func Encode(m Message) ([]byte, error) {
	switch m := m.(type) {
	case Move:
		return json.Marshal(moveWire{Type: MsgMove, DX: m.DX, DY: m.DY})
	case *Move:
		if m == nil {
			return nil, errNilMessage
		}
		return Encode(*m)
	case Click:
		return json.Marshal(clickWire{Type: MsgClick, Button: m.Button})
	case *Click:
		if m == nil {
			return nil, errNilMessage
		}
		return Encode(*m)
	case nil:
		return nil, errNilMessage
	default:
		return nil, fmt.Errorf("encode: unsupported message %T", m)
	}
}

// Decode parses a wire message. The client never receives these; Decode
// exists for tools and tests that sit on the server side of the socket.
func Decode(data []byte) (Message, error) {
	var env struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case MsgMove:
		var w moveWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return Move{DX: w.DX, DY: w.DY}, nil
	case MsgClick:
		var w clickWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return Click{Button: w.Button}, nil
	default:
		return nil, fmt.Errorf("decode: unknown message type %q", env.Type)
	}
}
