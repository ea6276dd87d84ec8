package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/pixelplumber/plumber/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/websocket"
)

const (
	endpointLabel  = "public_endpoint"
	msgTypeLabel   = "msg_type"
	errTypeLabel   = "error_type"
	directionLabel = "direction"

	directionIn  = "in"
	directionOut = "out"
)

var (
	spectatorsConnected = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "spectators_connected",
		Help: "The number of connected spectators.",
	}, []string{endpointLabel})

	spectatorSessionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spectator_session_duration_seconds",
		Help:    "How long spectators stay connected.",
		Buckets: []float64{1, 10, 60, 300, 900, 3600, 4 * 3600},
	}, []string{endpointLabel})

	spectatorMsgs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spectator_msgs_total",
		Help: "The number of spectator messages, by direction.",
	}, []string{endpointLabel, directionLabel, msgTypeLabel})

	spectatorBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spectator_bytes_total",
		Help: "The number of spectator message bytes, by direction.",
	}, []string{endpointLabel, directionLabel, msgTypeLabel})

	spectatorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spectator_errors_total",
		Help: "The errors that occured while exchanging spectator messages.",
	}, []string{endpointLabel, directionLabel, errTypeLabel})

	spectatorHandleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "spectator_handle_duration_seconds",
		Help: "The time to handle a spectator message or frame.",
	}, []string{endpointLabel, msgTypeLabel})
)

// HandlerWithMetrics decorates h with prometheus metrics labelled with
// the public endpoint of the server.
func HandlerWithMetrics(h Handler, publicEndpoint string) Handler {
	labels := prometheus.Labels{endpointLabel: publicEndpoint}

	return &handlerWithMetrics{
		Handler:        h,
		connected:      spectatorsConnected.With(labels),
		duration:       spectatorSessionDuration.With(labels),
		msgs:           spectatorMsgs.MustCurryWith(labels),
		bytes:          spectatorBytes.MustCurryWith(labels),
		errs:           spectatorErrors.MustCurryWith(labels),
		handleDuration: spectatorHandleDuration.MustCurryWith(labels),
	}
}

type handlerWithMetrics struct {
	Handler

	connected      prometheus.Gauge
	duration       prometheus.Observer
	msgs           *prometheus.CounterVec
	bytes          *prometheus.CounterVec
	errs           *prometheus.CounterVec
	handleDuration prometheus.ObserverVec

	connectedAt time.Time
}

func (h *handlerWithMetrics) HandleConnect(conn *websocket.Conn) {
	h.connectedAt = time.Now()
	h.connected.Inc()
	h.Handler.HandleConnect(conn)
}

func (h *handlerWithMetrics) HandleDisconnect(err error) {
	h.connected.Dec()
	h.duration.Observe(time.Since(h.connectedAt).Seconds())
	h.Handler.HandleDisconnect(err)
}

func (h *handlerWithMetrics) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	defer h.observe(MsgTypePing, time.Now())
	return h.Handler.HandlePing(ctx, respond, msg)
}

func (h *handlerWithMetrics) HandleSimulate(ctx context.Context, respond ResponseSender, msg Msg) error {
	defer h.observe(MsgTypeSimulate, time.Now())
	return h.Handler.HandleSimulate(ctx, respond, msg)
}

func (h *handlerWithMetrics) HandleSnapshot(ctx context.Context, respond ResponseSender, snap level.Snapshot) error {
	defer h.observe(MsgTypeSnapshot, time.Now())
	return h.Handler.HandleSnapshot(ctx, respond, snap)
}

func (h *handlerWithMetrics) SendSyncClock(ctx context.Context, respond ResponseSender) error {
	defer h.observe(MsgTypeSyncClock, time.Now())
	return h.Handler.SendSyncClock(ctx, respond)
}

func (h *handlerWithMetrics) Receiver() Receiver {
	receive := h.Handler.Receiver()

	return func() (Msg, int, error) {
		msg, n, err := receive()
		h.count(directionIn, msg, n, err)
		return msg, n, err
	}
}

func (h *handlerWithMetrics) Sender() Sender {
	send := h.Handler.Sender()

	return func(msg Msg) (int, error) {
		n, err := send(msg)
		h.count(directionOut, msg, n, err)
		return n, err
	}
}

func (h *handlerWithMetrics) count(direction string, msg Msg, n int, err error) {
	if err != nil {
		h.errs.With(prometheus.Labels{
			directionLabel: direction,
			errTypeLabel:   errors.Type(err),
		}).Inc()
	}
	if n == 0 {
		return
	}

	labels := prometheus.Labels{
		directionLabel: direction,
		msgTypeLabel:   msg.TypeString(),
	}
	h.msgs.With(labels).Inc()
	h.bytes.With(labels).Add(float64(n))
}

func (h *handlerWithMetrics) observe(t MsgType, start time.Time) {
	h.handleDuration.
		With(prometheus.Labels{msgTypeLabel: string(t)}).
		Observe(time.Since(start).Seconds())
}
