package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/events"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/pixelplumber/plumber/featureflag"
	plumberhttp "github.com/pixelplumber/plumber/http"
	"github.com/pixelplumber/plumber/level"
	"github.com/pixelplumber/plumber/levelfile"
	"github.com/pixelplumber/plumber/quadtree"
	"github.com/pixelplumber/plumber/render"
	"github.com/pixelplumber/plumber/smoketest"
	"github.com/pixelplumber/plumber/store"
	"github.com/pixelplumber/plumber/terminal"
	pwebsocket "github.com/pixelplumber/plumber/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

var (
	// The plumber version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "plumber_info",
		Help:        "Plumber information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// Keeps the config struct keys readable by the cli package when the binary
// is obfuscated.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr                   string        `cli:""        env:"PLUMBER_ADDR"                     help:"Listening address for spectators."`
	AdminAddr              string        `cli:""        env:"PLUMBER_ADMIN_ADDR"               help:"Admin listening address."`
	PublicEndpoint         string        `cli:""        env:"PLUMBER_PUBLIC_ENDPOINT"          help:"The public endpoint where this server is reachable."`
	LogLevel               string        `cli:""        env:"PLUMBER_LOG_LEVEL"                help:"Log level (debug|info|warning|error)."`
	LogIndent              bool          `cli:""        env:"PLUMBER_LOG_INDENT"               help:"Indent logs."`
	LevelFile              string        `cli:""        env:"PLUMBER_LEVEL_FILE"               help:"The level file to play."`
	LevelID                string        `cli:""        env:"PLUMBER_LEVEL_ID"                 help:"The id of a level of the library to play."`
	StoreLevel             bool          `cli:""        env:"PLUMBER_STORE_LEVEL"              help:"Add the played level file to the library."`
	DBPath                 string        `cli:""        env:"PLUMBER_DB_PATH"                  help:"The SQLite file of the level library. The library is disabled when empty."`
	Simulate               bool          `cli:""        env:"PLUMBER_SIMULATE"                 help:"Simulate the actors from the first frame."`
	Terminal               bool          `cli:""        env:"PLUMBER_TERMINAL"                 help:"Play the level in the terminal."`
	JWTSecret              string        `cli:""        env:"PLUMBER_JWT_SECRET"               help:"The secret signing spectator tokens. Spectators are not authenticated when empty."`
	IssueOperatorToken     bool          `cli:""        env:"-"                                help:"Print an operator token and exit."`
	FrameDuration          time.Duration `cli:",hidden" env:"PLUMBER_FRAME_DURATION"           help:"The duration of a frame."`
	MaxNodes               int           `cli:",hidden" env:"PLUMBER_MAX_NODES"                help:"The number of nodes allocated up front by the entity quadtree."`
	SyncClockInterval      time.Duration `cli:",hidden" env:"PLUMBER_SYNC_CLOCK_INTERVAL"      help:"Spectator sync clock (heartbeat) message interval."`
	ClientIdleTimeout      time.Duration `cli:",hidden" env:"PLUMBER_CLIENT_IDLE_TIMEOUT"      help:"Time until an idle spectator will be disconnected."`
	SpectatorFrameInterval int           `cli:",hidden" env:"PLUMBER_SPECTATOR_FRAME_INTERVAL" help:"Send every n-th frame to spectators."`
	LogSummaryInterval     time.Duration `cli:",hidden" env:"PLUMBER_LOG_SUMMARY_INTERVAL"     help:"The duration between each log summary by connection and of the frames."`
	Events                 eventsConfig  `cli:",hidden" env:"-"                                help:"Event pusher configuration."`
	FeatureFlags           []string      `cli:",hidden" env:"PLUMBER_FEATURE_FLAGS"            help:"Comma separated feature flags"`
	Version                bool          `cli:""        env:"-"                                help:"Show version."`
	Help                   bool          `cli:""        env:"-"                                help:"Show help."`
}

type eventsConfig struct {
	Endpoint      string        `cli:",hidden" env:"PLUMBER_EVENTS_ENDPOINT"       help:"Endpoint to where events are pushed."`
	FlushInterval time.Duration `cli:",hidden" env:"PLUMBER_EVENTS_FLUSH_INTERVAL" help:"The duration between each event flush."`
	BatchSize     int           `cli:",hidden" env:"PLUMBER_EVENTS_BATCH_SIZE"     help:"The maximum number of events sent at once."`
	QueueSize     int           `cli:",hidden" env:"PLUMBER_EVENTS_QUEUE_SIZE"     help:"The size of the queue where events are stored."`
}

func main() {
	conf := config{
		Addr:                   ":4000",
		AdminAddr:              ":18190",
		PublicEndpoint:         "http://localhost:4000",
		LogLevel:               logs.InfoLevel.String(),
		FrameDuration:          level.DefaultFrameDuration,
		MaxNodes:               quadtree.DefaultMaxNodes,
		SyncClockInterval:      pwebsocket.DefaultSyncClockInterval,
		ClientIdleTimeout:      pwebsocket.DefaultIdleTimeout,
		SpectatorFrameInterval: 1,
		LogSummaryInterval:     time.Minute,
		Events: eventsConfig{
			FlushInterval: events.DefaultFlushInterval,
			BatchSize:     events.DefaultBatchSize,
			QueueSize:     events.DefaultQueueSize,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Runs a level and streams its frames to spectators.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	secret := []byte(conf.JWTSecret)
	if conf.IssueOperatorToken {
		token, err := plumberhttp.IssueViewerToken(secret, plumberhttp.Viewer{
			ID:       "operator",
			Operator: true,
		}, plumberhttp.DefaultTokenTTL)
		if err != nil {
			logs.Fatal(err)
		}
		fmt.Println(token)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if conf.Events.Endpoint != "" {
		eventsPusher := events.Pusher{
			Endpoint:      conf.Events.Endpoint,
			FlushInterval: conf.Events.FlushInterval,
			BatchSize:     conf.Events.BatchSize,
			QueueSize:     conf.Events.QueueSize,
			Transport:     metrics.HTTPTransport(http.DefaultTransport),
		}
		go eventsPusher.Start()
		defer eventsPusher.Close()

		eventsLogger := events.Logger{
			Pusher:           &eventsPusher,
			SDKType:          "plumber",
			SDKVersionFamily: version,
		}
		logs.SetLogger(eventsLogger.Log)
	} else if conf.Terminal {
		// The screen belongs to the terminal.
		logs.SetLogger(func(logs.Entry) {})
	}

	var db *store.DB
	if conf.DBPath != "" {
		var err error
		if db, err = store.Open(conf.DBPath); err != nil {
			logs.Fatal(err)
		}
		defer db.Close()
	}

	flags := featureflag.New(conf.FeatureFlags)
	l := level.New(level.Config{
		EntityTree: quadtree.Config{MaxNodes: conf.MaxNodes},
		Flags:      flags,
	})
	if err := loadLevel(ctx, conf, db, l); err != nil {
		logs.Fatal(err)
	}

	var renderer render.Renderer = &render.Recorder{}
	if conf.Terminal {
		term, err := terminal.Open()
		if err != nil {
			logs.Fatal(err)
		}
		defer term.Close()

		renderer = term.Renderer
		l.SetInputSource(term.Keyboard)
		go term.Run(ctx, cancel)
	}

	loop := level.NewLoop(l, renderer, conf.FrameDuration, conf.Simulate)
	loop.SummaryInterval = conf.LogSummaryInterval
	defer loop.Close()
	go loop.Run(ctx)

	readinessCheck := func() bool {
		_, ok := loop.Latest()
		return ok
	}

	var service http.ServeMux
	service.Handle("/health", plumberhttp.HandleWithCORS(http.HandlerFunc(plumberhttp.HandleHealthCheck)))
	service.Handle("/version", plumberhttp.HandleWithCORS(plumberhttp.HandleVersion(version)))
	service.Handle("/ready", plumberhttp.HandleWithCORS(plumberhttp.HandleReadyCheck(readinessCheck)))
	service.Handle(plumberhttp.SnapshotPath, plumberhttp.HandleWithCORS(plumberhttp.HandleSnapshot(loop)))

	var handshake func(*websocket.Config, *http.Request) error
	if len(secret) != 0 {
		handshake = plumberhttp.VerifyViewerHandshake(secret)
		service.Handle(plumberhttp.TokensPath, plumberhttp.HandleWithCORS(
			plumberhttp.VerifyViewerHandler(secret, true, plumberhttp.HandleIssueToken(secret, plumberhttp.DefaultTokenTTL))))
		service.HandleFunc("/smoke-test", plumberhttp.VerifyViewerHandler(secret, true, smoketest.HandleSmokeTest(ctx, smoketest.Options{
			Origin:    conf.PublicEndpoint,
			UserAgent: fmt.Sprintf("Plumber %s", version),
		})))
	} else {
		logs.WithTag("addr", conf.Addr).Info("spectator authentication is disabled")
	}

	if db != nil {
		service.Handle(plumberhttp.LevelsPath, plumberhttp.HandleWithCORS(handleLevels(secret, db)))
	}

	service.Handle("/", plumberhttp.HandleWithCORS(websocket.Server{
		Handshake: handshake,
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			var operator bool
			if len(secret) != 0 {
				v, _ := plumberhttp.ViewerFromRequest(secret, conn.Request())
				operator = v.Operator
			}

			var h pwebsocket.Handler = &pwebsocket.SpectatorHandler{
				Loop:                    loop,
				ClientSyncClockInterval: conf.SyncClockInterval,
				ClientIdleTimeout:       conf.ClientIdleTimeout,
				FrameInterval:           conf.SpectatorFrameInterval,
				Operator:                operator,
			}
			h = pwebsocket.HandlerWithLogs(h, conf.LogSummaryInterval)
			h = pwebsocket.HandlerWithMetrics(h, conf.PublicEndpoint)
			defer h.Close()

			pwebsocket.Handle(ctx, conn, h)
		},
	}))

	service.Handle("/ping", websocket.Server{
		Handler: func(ws *websocket.Conn) {
			defer ws.Close()
			io.Copy(ws, ws)
		},
	})

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", plumberhttp.HandleHealthCheck)
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	admin.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	admin.Handle("/debug/pprof/block", pprof.Handler("block"))
	admin.HandleFunc("/ready", plumberhttp.HandleReadyCheck(readinessCheck))

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("endpoint", conf.PublicEndpoint).
		WithTag("level_id", l.ID).
		WithTag("feature_flags", flags.List()).
		Info("starting plumber server")

	plumberhttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service,
			plumberhttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)
}

// loadLevel fills l with the configured level: a level of the library, a
// level file, or the demo level.
func loadLevel(ctx context.Context, conf config, db *store.DB, l *level.Level) error {
	if conf.LevelID != "" {
		f, info, err := db.Load(ctx, conf.LevelID)
		if err != nil {
			return err
		}
		if err := f.Apply(l); err != nil {
			return err
		}

		l.ID = info.ID
		logs.WithTag("level_id", info.ID).
			WithTag("name", info.Name).
			WithTag("digest", info.Digest).
			Info("level loaded from library")
		return nil
	}

	if conf.LevelFile == "" {
		l.ID = "demo"
		return levelfile.Demo().Apply(l)
	}

	if err := levelfile.Load(conf.LevelFile, l); err != nil {
		return err
	}
	l.ID = strings.TrimSuffix(filepath.Base(conf.LevelFile), filepath.Ext(conf.LevelFile))

	if conf.StoreLevel {
		info, err := db.Save(ctx, l.ID, levelfile.FromLevel(l))
		if err != nil {
			return err
		}
		l.ID = info.ID
	}
	return nil
}

// handleLevels serves the level library. Deleting a level requires an
// operator token.
func handleLevels(secret []byte, db *store.DB) http.HandlerFunc {
	levels := plumberhttp.HandleLevels(db)
	deleteLevel := plumberhttp.VerifyViewerHandler(secret, true, levels)
	if len(secret) == 0 {
		deleteLevel = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "deleting levels requires operator authentication", http.StatusForbidden)
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleteLevel(w, r)
			return
		}
		levels(w, r)
	}
}

func validateConfig(conf config) error {
	if conf.LevelID != "" && conf.LevelFile != "" {
		return errors.New("have to specify either a level id or a level file, not both")
	}

	if conf.LevelID != "" && conf.DBPath == "" {
		return errors.New("playing a level of the library requires a database path")
	}

	if conf.StoreLevel && (conf.DBPath == "" || conf.LevelFile == "") {
		return errors.New("storing a level requires a level file and a database path")
	}

	if conf.IssueOperatorToken && conf.JWTSecret == "" {
		return errors.New("issuing an operator token requires a jwt secret")
	}

	if conf.MaxNodes <= 0 {
		return errors.New("the number of quadtree nodes must be positive").
			WithTag("max_nodes", conf.MaxNodes)
	}

	return nil
}
