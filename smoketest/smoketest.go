// Package smoketest checks that a spectator endpoint answers pings and
// streams advancing frames.
package smoketest

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	pwebsocket "github.com/pixelplumber/plumber/websocket"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

const (
	ErrTypeSmokeTestFailed = "smoke_test_failed"

	DefaultTimeout = time.Second * 10

	pingRequestID = 1
)

// Request describes the endpoint to test.
type Request struct {
	Endpoint string        `json:"endpoint"`
	Token    string        `json:"token,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

// Result is the outcome of a smoke test.
type Result struct {
	Endpoint    string        `json:"endpoint"`
	Success     bool          `json:"success"`
	StartedAt   time.Time     `json:"started_at"`
	Connect     time.Duration `json:"connect"`
	PingLatency time.Duration `json:"ping_latency"`
	LevelID     string        `json:"level_id,omitempty"`
	FirstFrame  uint64        `json:"first_frame"`
	LastFrame   uint64        `json:"last_frame"`
	Error       string        `json:"error,omitempty"`
}

type Options struct {
	// The origin announced to the tested endpoint.
	Origin    string
	UserAgent string
}

// Run connects to the spectator endpoint of req, checks that a ping is
// answered with a pong, and waits for two snapshots with advancing
// frames.
func Run(ctx context.Context, opts Options, req Request) (Result, error) {
	res := Result{
		Endpoint:  req.Endpoint,
		StartedAt: time.Now().UTC(),
	}

	err := run(ctx, opts, req, &res)
	if err != nil {
		res.Error = err.Error()
		return res, errors.New("smoke test failed").
			WithType(ErrTypeSmokeTestFailed).
			WithTag("endpoint", req.Endpoint).
			Wrap(err)
	}

	res.Success = true
	return res, nil
}

func run(ctx context.Context, opts Options, req Request, res *Result) error {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	config, err := websocket.NewConfig(websocketURL(req.Endpoint), opts.Origin)
	if err != nil {
		return errors.New("invalid endpoint").Wrap(err)
	}
	if opts.UserAgent != "" {
		config.Header.Set("User-Agent", opts.UserAgent)
	}
	if req.Token != "" {
		config.Header.Set("Authorization", "Bearer "+req.Token)
	}

	start := time.Now()
	conn, err := config.DialContext(ctx)
	if err != nil {
		return errors.New("connecting failed").Wrap(err)
	}
	defer conn.Close()
	res.Connect = time.Since(start)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	pingSentAt := time.Now()
	if _, err := pwebsocket.Send(conn, pwebsocket.Msg{
		Type:      pwebsocket.MsgTypePing,
		RequestID: pingRequestID,
		Time:      pingSentAt.UnixNano(),
	}); err != nil {
		return errors.New("sending ping failed").Wrap(err)
	}

	var (
		ponged    bool
		snapshots int
	)

	for !ponged || snapshots < 2 {
		msg, _, err := pwebsocket.Receive(conn)
		if ctx.Err() != nil {
			return errors.New("timed out").
				WithTag("ponged", ponged).
				WithTag("snapshots", snapshots).
				Wrap(ctx.Err())
		}
		if err == io.EOF {
			return errors.New("connection closed by the endpoint")
		}
		if err != nil {
			return errors.New("receiving message failed").Wrap(err)
		}

		switch msg.Type {
		case pwebsocket.MsgTypePong:
			if msg.RequestID == pingRequestID && !ponged {
				ponged = true
				res.PingLatency = time.Since(pingSentAt)
			}

		case pwebsocket.MsgTypeSnapshot:
			if msg.Snapshot == nil {
				return errors.New("snapshot message without snapshot")
			}

			frame := msg.Snapshot.Stats.Frame
			if snapshots == 0 {
				res.LevelID = msg.Snapshot.LevelID
				res.FirstFrame = frame
			} else if frame <= res.LastFrame {
				return errors.New("frames are not advancing").
					WithTag("previous_frame", res.LastFrame).
					WithTag("frame", frame)
			}
			res.LastFrame = frame
			snapshots++

		case pwebsocket.MsgTypeError:
			return errors.New("endpoint reported an error").
				WithTag("error", msg.Error)
		}
	}

	return nil
}

func websocketURL(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	default:
		return endpoint
	}
}

// HandleSmokeTest runs the smoke test described by the request body and
// responds with its result.
func HandleSmokeTest(ctx context.Context, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Endpoint == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		res, err := Run(ctx, opts, req)
		if err != nil {
			logs.Warn(err)
		} else {
			logs.WithTag("endpoint", req.Endpoint).
				WithTag("ping_latency", res.PingLatency.String()).
				WithTag("first_frame", res.FirstFrame).
				WithTag("last_frame", res.LastFrame).
				Info("smoke test succeeded")
		}

		b, err := json.Marshal(res)
		if err != nil {
			logs.Warn(err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}
