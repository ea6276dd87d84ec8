package level

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/render"
)

// DefaultFrameDuration is the duration of a frame at 60 frames per second.
const DefaultFrameDuration = time.Second / 60

// Loop runs the frames of a level at a fixed rate and dispatches a snapshot
// of each frame to the registered handlers.
type Loop struct {
	Level         *Level
	Renderer      render.Renderer
	FrameDuration time.Duration

	// The interval between two frame summaries in the logs. Summaries are
	// disabled when zero.
	SummaryInterval time.Duration

	simulating atomic.Bool

	frameMutex      sync.Mutex
	latest          Snapshot
	hasLatest       bool
	handlerMutex    sync.RWMutex
	frameHandlerIDs models.IDGenerator
	frameHandlers   map[uint32]func(Snapshot)

	startOnce sync.Once
	closeOnce sync.Once
	closed    chan struct{}
}

// NewLoop creates a loop that runs frames of l and draws them with r.
func NewLoop(l *Level, r render.Renderer, frameDuration time.Duration, simulating bool) *Loop {
	if r == nil {
		r = &render.Recorder{}
	}
	if frameDuration <= 0 {
		frameDuration = DefaultFrameDuration
	}

	loop := &Loop{
		Level:         l,
		Renderer:      r,
		FrameDuration: frameDuration,
		frameHandlers: make(map[uint32]func(Snapshot)),
		closed:        make(chan struct{}),
	}
	loop.simulating.Store(simulating)
	return loop
}

// SetSimulating turns actor simulation on or off from the next frame.
func (l *Loop) SetSimulating(v bool) {
	l.simulating.Store(v)
}

func (l *Loop) Simulating() bool {
	return l.simulating.Load()
}

// HandleFrame registers h to be called with the snapshot of each frame.
func (l *Loop) HandleFrame(h func(Snapshot)) (cancel func()) {
	l.handlerMutex.Lock()
	defer l.handlerMutex.Unlock()

	id := l.frameHandlerIDs.Next()
	l.frameHandlers[id] = h

	return func() {
		l.handlerMutex.Lock()
		defer l.handlerMutex.Unlock()

		if _, ok := l.frameHandlers[id]; !ok {
			return
		}
		delete(l.frameHandlers, id)
		l.frameHandlerIDs.Release(id)
	}
}

// Step runs a single frame and dispatches its snapshot.
func (l *Loop) Step() Snapshot {
	l.frameMutex.Lock()
	stats := l.Level.Frame(l.Renderer, l.simulating.Load())
	l.Renderer.Render(l.Level.Camera())
	snap := l.Level.Snapshot(stats)
	if rec, ok := l.Renderer.(*render.Recorder); ok {
		snap.Sprites = rec.Rendered()
	}
	l.latest = snap
	l.hasLatest = true
	l.frameMutex.Unlock()

	l.handlerMutex.RLock()
	for _, h := range l.frameHandlers {
		h(snap)
	}
	l.handlerMutex.RUnlock()

	return snap
}

// Latest returns the snapshot of the last frame. The boolean is false when
// no frame has run yet.
func (l *Loop) Latest() (Snapshot, bool) {
	l.frameMutex.Lock()
	defer l.frameMutex.Unlock()

	return l.latest, l.hasLatest
}

// Run runs frames until ctx is done or the loop is closed. A loop runs
// only once.
func (l *Loop) Run(ctx context.Context) {
	l.startOnce.Do(func() {
		ticker := time.NewTicker(l.FrameDuration)
		defer ticker.Stop()

		var summary <-chan time.Time
		if l.SummaryInterval > 0 {
			t := time.NewTicker(l.SummaryInterval)
			defer t.Stop()
			summary = t.C
		}

		logs.WithTag("level_id", l.Level.ID).
			WithTag("frame_duration", l.FrameDuration).
			WithTag("simulating", l.simulating.Load()).
			Info("level loop started")
		defer logs.WithTag("level_id", l.Level.ID).Info("level loop stopped")

		for {
			select {
			case <-ctx.Done():
				return

			case <-l.closed:
				return

			case <-ticker.C:
				l.Step()

			case <-summary:
				if snap, ok := l.Latest(); ok {
					logs.WithTag("level_id", snap.LevelID).
						WithTag("frame", snap.Stats.Frame).
						WithTag("alive", snap.Stats.Alive).
						WithTag("indexed", snap.Stats.Indexed).
						WithTag("insert_errors", snap.Stats.InsertErrors).
						WithTag("duration", snap.Stats.Duration).
						Debug("frame summary")
				}
			}
		}
	})
}

// Close stops a running loop.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.closed)
	})
}
