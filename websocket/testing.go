package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// NewTestingEnv starts a server handling each connection with a handler
// from newHandler. Each call to connect dials a new client. Logs go to the
// test output until close is called.
func NewTestingEnv(t *testing.T, newHandler func() Handler) (connect func() *websocket.Conn, close func()) {
	env := &testingEnv{t: t, logging: true}
	env.redirectLogs()

	ctx, cancel := context.WithCancel(context.Background())
	env.server = httptest.NewServer(websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			h := newHandler()
			defer h.Close()
			Handle(ctx, conn, h)
		},
	})

	return env.dial, func() {
		env.close()
		cancel()
		env.server.Close()
	}
}

type testingEnv struct {
	t      *testing.T
	server *httptest.Server

	mutex   sync.Mutex
	logging bool
	conns   []*websocket.Conn
}

func (e *testingEnv) redirectLogs() {
	logs.Encoder = func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	}
	errors.Encoder = json.Marshal

	logs.SetLogger(func(entry logs.Entry) {
		e.mutex.Lock()
		defer e.mutex.Unlock()

		if e.logging {
			e.t.Log(entry)
		}
	})
}

func (e *testingEnv) dial() *websocket.Conn {
	url := "ws://" + strings.TrimPrefix(e.server.URL, "http://")

	config, err := websocket.NewConfig(url, "http://localhost")
	if err != nil {
		e.t.Fatalf("creating websocket config failed: %s", err)
	}
	config.Header.Set("User-Agent", "plumber-test")
	config.Header.Set(HeaderClientID, uuid.NewString())

	conn, err := websocket.DialConfig(config)
	if err != nil {
		e.t.Fatalf("dialing %s failed: %s", url, err)
	}

	e.mutex.Lock()
	e.conns = append(e.conns, conn)
	e.mutex.Unlock()
	return conn
}

func (e *testingEnv) close() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.logging = false
	for _, c := range e.conns {
		c.Close()
	}
}

// ReceiveType reads messages from conn until one of type t arrives or the
// timeout expires.
func ReceiveType(conn *websocket.Conn, t MsgType, timeout time.Duration) (Msg, error) {
	conn.SetReadDeadline(time.Now().Add(timeout))
	defer conn.SetReadDeadline(time.Time{})

	for {
		msg, _, err := Receive(conn)
		if err != nil {
			return Msg{}, errors.New("waiting for message failed").
				WithTag("msg_type", t).
				Wrap(err)
		}
		if msg.Type == t {
			return msg, nil
		}
	}
}
