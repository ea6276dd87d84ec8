package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/pixelplumber/plumber/level"
	"golang.org/x/net/websocket"
)

const (
	sendChanSize    = 64
	receiveChanSize = 16

	DefaultSyncClockInterval = time.Second * 5
	DefaultIdleTimeout       = time.Minute * 5
)

// Handler represents a spectator handler.
type Handler interface {
	// Handles a client connection.
	HandleConnect(conn *websocket.Conn)

	// Handles a ping request.
	HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles a request to turn the simulation on or off.
	HandleSimulate(ctx context.Context, respond ResponseSender, msg Msg) error

	// Handles the snapshot of a frame.
	HandleSnapshot(ctx context.Context, respond ResponseSender, snap level.Snapshot) error

	// Handles a client's disconnection.
	HandleDisconnect(error)

	// Registers a function called after each frame. The returned function
	// unregisters it.
	SubscribeFrames(func(level.Snapshot)) (cancel func())

	// Sends a sync clock message to the client.
	SendSyncClock(ctx context.Context, respond ResponseSender) error

	// Creates a message receiver used to receive incoming messages.
	Receiver() Receiver

	// Creates a message sender used to send outgoing messages.
	Sender() Sender

	// Closes the handler and releases its allocated resources.
	Close()

	// The interval between each sync clock message sent to the connected
	// client.
	SyncClockInterval() time.Duration

	// The time a client is idle before being disconnected.
	IdleTimeout() time.Duration

	GetClientID() string
}

// Handle handles the given connection until it is closed or ctx is done.
func Handle(ctx context.Context, conn *websocket.Conn, h Handler) {
	c := &connection{
		conn:    conn,
		handler: h,
		out:     make(chan Msg, sendChanSize),
		in:      make(chan Msg, receiveChanSize),
		frames:  make(chan level.Snapshot, 1),
		errs:    make(chan error, 8),
	}
	c.run(ctx)
}

// connection pumps the messages of a single spectator. Reads and writes
// happen on their own goroutines. Everything else runs on the goroutine
// calling run.
type connection struct {
	conn    *websocket.Conn
	handler Handler

	out    chan Msg
	in     chan Msg
	frames chan level.Snapshot
	errs   chan error
}

func (c *connection) run(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.handler.HandleConnect(c.conn)

	for _, pump := range []func(context.Context){
		c.write(c.handler.Sender()),
		c.read(c.handler.Receiver()),
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pump(ctx)
		}()
	}

	unsubscribe := c.handler.SubscribeFrames(c.pushFrame)
	defer unsubscribe()

	idleTimeout := orDefault(c.handler.IdleTimeout(), DefaultIdleTimeout)
	idle := time.NewTimer(idleTimeout)
	defer idle.Stop()

	syncClock := time.NewTicker(orDefault(c.handler.SyncClockInterval(), DefaultSyncClockInterval))
	defer syncClock.Stop()

	respond := responseSender(c.enqueue)

	for {
		var err error

		select {
		case <-ctx.Done():
			c.close(ctx.Err())
			return

		case err = <-c.errs:
			c.close(err)
			return

		case <-idle.C:
			err = errors.New("idle connection").WithTag("duration", idleTimeout)

		case <-syncClock.C:
			if err = c.handler.SendSyncClock(ctx, respond); err != nil {
				err = errors.New("sending sync clock failed").Wrap(err)
			}

		case snap := <-c.frames:
			if err = c.handler.HandleSnapshot(ctx, respond, snap); err != nil {
				err = errors.New("handling snapshot failed").Wrap(err)
			}

		case msg := <-c.in:
			idle.Reset(idleTimeout)
			if err = c.dispatch(ctx, respond, msg); err != nil {
				err = errors.New("handling message failed").Wrap(err)
			}
		}

		if err != nil {
			c.fail(err)
		}
	}
}

func (c *connection) dispatch(ctx context.Context, respond ResponseSender, msg Msg) error {
	switch msg.Type {
	case MsgTypePing:
		return c.handler.HandlePing(ctx, respond, msg)

	case MsgTypeSimulate:
		return c.handler.HandleSimulate(ctx, respond, msg)
	}
	return nil
}

// pushFrame keeps only the most recent snapshot for a client that is slower
// than the frame rate.
func (c *connection) pushFrame(snap level.Snapshot) {
	for range 2 {
		select {
		case c.frames <- snap:
			return
		default:
		}

		select {
		case <-c.frames:
		default:
		}
	}
}

func (c *connection) enqueue(msg Msg) {
	select {
	case c.out <- msg:
	default:
		c.fail(errors.New("send queue is full").
			WithTag("msg_type", msg.TypeString()).
			WithTag("queue_size", sendChanSize))
	}
}

func (c *connection) write(send Sender) func(context.Context) {
	return func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return

			case msg := <-c.out:
				if _, err := send(msg); err != nil {
					c.fail(errors.New("sending message failed").Wrap(err))
					return
				}
			}
		}
	}
}

func (c *connection) read(receive Receiver) func(context.Context) {
	return func(ctx context.Context) {
		for {
			msg, _, err := receive()
			if err != nil {
				c.fail(errors.New("receiving message failed").Wrap(err))
				return
			}

			select {
			case <-ctx.Done():
				return
			case c.in <- msg:
			}
		}
	}
}

// fail asks run to disconnect the client. Only the first few errors are
// kept.
func (c *connection) fail(err error) {
	select {
	case c.errs <- err:
	default:
	}
}

func (c *connection) close(err error) {
	c.conn.Close()
	c.handler.HandleDisconnect(err)
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

type responseSender func(Msg)

func (r responseSender) Send(msg Msg) {
	r(msg)
}
