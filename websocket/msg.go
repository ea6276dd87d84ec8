package websocket

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/pixelplumber/plumber/level"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/net/websocket"
)

const (
	ErrTypeInvalidMsg = "websocket_invalid_msg"
)

// MsgType identifies a spectator message.
type MsgType string

const (
	MsgTypePing             MsgType = "ping"
	MsgTypePong             MsgType = "pong"
	MsgTypeSyncClock        MsgType = "sync_clock"
	MsgTypeSnapshot         MsgType = "snapshot"
	MsgTypeSimulate         MsgType = "simulate"
	MsgTypeSimulateResponse MsgType = "simulate_response"
	MsgTypeError            MsgType = "error"
)

// Msg is a message exchanged with a spectator. It travels as a msgpack
// encoded binary frame.
type Msg struct {
	Type      MsgType `msgpack:"type"`
	RequestID uint32  `msgpack:"request_id,omitempty"`

	// Unix time in nanoseconds at which the message was created.
	Time int64 `msgpack:"time,omitempty"`

	Snapshot   *level.Snapshot `msgpack:"snapshot,omitempty"`
	Simulating *bool           `msgpack:"simulating,omitempty"`
	Error      string          `msgpack:"error,omitempty"`
}

func (m Msg) TypeString() string {
	if m.Type == "" {
		return "unknown"
	}
	return string(m.Type)
}

func newMsg(t MsgType, requestID uint32) Msg {
	return Msg{
		Type:      t,
		RequestID: requestID,
		Time:      time.Now().UnixNano(),
	}
}

// Encode returns the msgpack encoding of msg.
func Encode(msg Msg) ([]byte, error) {
	b, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, errors.New("encoding message failed").
			WithType(ErrTypeInvalidMsg).
			WithTag("msg_type", msg.TypeString()).
			Wrap(err)
	}
	return b, nil
}

// Decode decodes a msgpack encoded message.
func Decode(b []byte) (Msg, error) {
	var msg Msg
	if err := msgpack.Unmarshal(b, &msg); err != nil {
		return Msg{}, errors.New("decoding message failed").
			WithType(ErrTypeInvalidMsg).
			WithTag("size", len(b)).
			Wrap(err)
	}
	if msg.Type == "" {
		return Msg{}, errors.New("message has no type").
			WithType(ErrTypeInvalidMsg).
			WithTag("size", len(b))
	}
	return msg, nil
}

// Send writes msg on conn as a binary frame and returns the number of
// bytes sent.
func Send(conn *websocket.Conn, msg Msg) (int, error) {
	b, err := Encode(msg)
	if err != nil {
		return 0, err
	}
	if err := websocket.Message.Send(conn, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Receive reads the next message from conn and returns it with its size.
func Receive(conn *websocket.Conn) (Msg, int, error) {
	var b []byte
	if err := websocket.Message.Receive(conn, &b); err != nil {
		return Msg{}, 0, err
	}

	msg, err := Decode(b)
	return msg, len(b), err
}

// Sender sends a message and returns the number of bytes sent.
type Sender func(Msg) (int, error)

// Receiver receives a message and returns it with its size.
type Receiver func() (Msg, int, error)

// ResponseSender queues messages for a client.
type ResponseSender interface {
	Send(Msg)
}
