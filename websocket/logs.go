package websocket

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"golang.org/x/net/websocket"
)

const clientIDTag = "client_id"

// HandlerWithLogs decorates h with logs. A traffic summary is logged every
// summaryInterval and when the handler is closed. Periodic summaries are
// disabled when summaryInterval is zero.
func HandlerWithLogs(h Handler, summaryInterval time.Duration) Handler {
	ctx, cancel := context.WithCancel(context.Background())

	handler := &handlerWithLogs{
		Handler:         h,
		summaryInterval: summaryInterval,
		stopSummaries:   cancel,
		in:              newTraffic(),
		out:             newTraffic(),
	}

	if summaryInterval > 0 {
		go handler.summarize(ctx)
	}
	return handler
}

// traffic counts the messages and bytes exchanged in one direction.
type traffic struct {
	msgs  map[MsgType]int
	bytes int
}

func newTraffic() traffic {
	return traffic{msgs: make(map[MsgType]int)}
}

func (t *traffic) add(msg Msg, n int) {
	t.msgs[msg.Type]++
	t.bytes += n
}

func (t *traffic) empty() bool {
	return len(t.msgs) == 0
}

type handlerWithLogs struct {
	Handler

	remoteAddr  string
	connectedAt time.Time

	summaryInterval time.Duration
	stopSummaries   func()
	trafficMutex    sync.Mutex
	in              traffic
	out             traffic
}

func (h *handlerWithLogs) HandleConnect(conn *websocket.Conn) {
	h.Handler.HandleConnect(conn)

	req := conn.Request()
	h.remoteAddr = req.RemoteAddr
	h.connectedAt = time.Now()

	logs.WithTag(clientIDTag, h.GetClientID()).
		WithTag("remote_addr", h.remoteAddr).
		WithTag("user_agent", req.UserAgent()).
		Info("spectator connected")
}

func (h *handlerWithLogs) HandleSimulate(ctx context.Context, respond ResponseSender, msg Msg) error {
	err := h.Handler.HandleSimulate(ctx, respond, msg)
	if err == nil && msg.Simulating != nil {
		logs.WithTag(clientIDTag, h.GetClientID()).
			WithTag("request_id", msg.RequestID).
			WithTag("simulating", *msg.Simulating).
			Info("spectator asked to change the simulation")
	}
	return err
}

func (h *handlerWithLogs) HandleDisconnect(err error) {
	h.Handler.HandleDisconnect(err)

	entry := logs.WithTag(clientIDTag, h.GetClientID()).
		WithTag("remote_addr", h.remoteAddr).
		WithTag("connected_for", time.Since(h.connectedAt).String())
	if err != nil {
		entry = entry.WithTag("reason", err.Error())
	}
	entry.Info("spectator disconnected")
}

func (h *handlerWithLogs) Receiver() Receiver {
	receive := h.Handler.Receiver()

	return func() (Msg, int, error) {
		msg, n, err := receive()
		switch {
		case err == nil:
			h.record(&h.in, msg, n)
			logs.WithTag(clientIDTag, h.GetClientID()).
				WithTag("msg_type", msg.TypeString()).
				WithTag("size", n).
				Debug("message received")

		case !closed(err):
			logs.WithTag(clientIDTag, h.GetClientID()).Error(errors.New("receiving message failed").Wrap(err))
		}
		return msg, n, err
	}
}

func (h *handlerWithLogs) Sender() Sender {
	send := h.Handler.Sender()

	return func(msg Msg) (int, error) {
		n, err := send(msg)
		switch {
		case err == nil:
			h.record(&h.out, msg, n)

		case !closed(err):
			logs.WithTag(clientIDTag, h.GetClientID()).
				WithTag("msg_type", msg.TypeString()).
				Error(errors.New("sending message failed").Wrap(err))
		}
		return n, err
	}
}

func (h *handlerWithLogs) Close() {
	h.Handler.Close()
	h.stopSummaries()
	h.logSummary()
}

func (h *handlerWithLogs) record(t *traffic, msg Msg, n int) {
	h.trafficMutex.Lock()
	defer h.trafficMutex.Unlock()

	t.add(msg, n)
}

func (h *handlerWithLogs) summarize(ctx context.Context) {
	ticker := time.NewTicker(h.summaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			h.logSummary()
		}
	}
}

func (h *handlerWithLogs) logSummary() {
	h.trafficMutex.Lock()
	defer h.trafficMutex.Unlock()

	if h.in.empty() && h.out.empty() {
		return
	}

	entry := logs.WithTag(clientIDTag, h.GetClientID()).
		WithTag("interval", h.summaryInterval.String()).
		WithTag("bytes_in", h.in.bytes).
		WithTag("bytes_out", h.out.bytes)

	for t, count := range h.in.msgs {
		entry = entry.WithTag("in_"+string(t), count)
	}
	for t, count := range h.out.msgs {
		entry = entry.WithTag("out_"+string(t), count)
	}
	entry.Info("spectator traffic summary")

	h.in = newTraffic()
	h.out = newTraffic()
}

// closed reports whether err only tells that the connection is gone.
func closed(err error) bool {
	return err == io.EOF || stderrors.Is(err, net.ErrClosed)
}
