package websocket

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pixelplumber/plumber/level"
	"golang.org/x/net/websocket"
)

// HeaderClientID is the header a client can use to give its id.
const HeaderClientID = "X-Plumber-Client-Id"

// SpectatorHandler streams the frames of a level loop to a client.
type SpectatorHandler struct {
	// The loop whose frames are streamed.
	Loop *level.Loop

	// The interval between each sync clock message sent to the client.
	ClientSyncClockInterval time.Duration

	// The time a client can stay silent before being disconnected.
	ClientIdleTimeout time.Duration

	// Only every FrameInterval-th snapshot is sent. Every snapshot is sent
	// when zero.
	FrameInterval int

	// Whether the client is allowed to turn the simulation on and off.
	Operator bool

	conn     *websocket.Conn
	clientID string
	frames   int
}

func (h *SpectatorHandler) HandleConnect(conn *websocket.Conn) {
	h.clientID = conn.Request().Header.Get(HeaderClientID)
	if h.clientID == "" {
		h.clientID = uuid.NewString()
	}
	h.conn = conn
}

func (h *SpectatorHandler) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	respond.Send(newMsg(MsgTypePong, msg.RequestID))
	return nil
}

func (h *SpectatorHandler) HandleSimulate(ctx context.Context, respond ResponseSender, msg Msg) error {
	switch {
	case !h.Operator:
		res := newMsg(MsgTypeError, msg.RequestID)
		res.Error = "only operators can change the simulation"
		respond.Send(res)

	case msg.Simulating == nil:
		res := newMsg(MsgTypeError, msg.RequestID)
		res.Error = "simulating is missing"
		respond.Send(res)

	default:
		h.Loop.SetSimulating(*msg.Simulating)

		simulating := h.Loop.Simulating()
		res := newMsg(MsgTypeSimulateResponse, msg.RequestID)
		res.Simulating = &simulating
		respond.Send(res)
	}
	return nil
}

func (h *SpectatorHandler) HandleSnapshot(ctx context.Context, respond ResponseSender, snap level.Snapshot) error {
	h.frames++
	if h.FrameInterval > 1 && (h.frames-1)%h.FrameInterval != 0 {
		return nil
	}

	msg := newMsg(MsgTypeSnapshot, 0)
	msg.Snapshot = &snap
	respond.Send(msg)
	return nil
}

func (h *SpectatorHandler) HandleDisconnect(_ error) {
}

func (h *SpectatorHandler) SubscribeFrames(f func(level.Snapshot)) (cancel func()) {
	return h.Loop.HandleFrame(f)
}

func (h *SpectatorHandler) SendSyncClock(ctx context.Context, respond ResponseSender) error {
	respond.Send(newMsg(MsgTypeSyncClock, 0))
	return nil
}

func (h *SpectatorHandler) Receiver() Receiver {
	return func() (Msg, int, error) {
		return Receive(h.conn)
	}
}

func (h *SpectatorHandler) Sender() Sender {
	return func(msg Msg) (int, error) {
		return Send(h.conn, msg)
	}
}

func (h *SpectatorHandler) Close() {
}

func (h *SpectatorHandler) SyncClockInterval() time.Duration {
	return h.ClientSyncClockInterval
}

func (h *SpectatorHandler) IdleTimeout() time.Duration {
	return h.ClientIdleTimeout
}

func (h *SpectatorHandler) GetClientID() string {
	return h.clientID
}
