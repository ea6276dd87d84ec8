package level

import (
	"context"
	"testing"
	"time"

	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/render"
	"github.com/stretchr/testify/require"
)

func TestLoopStep(t *testing.T) {
	l := newLevel()
	g := models.NewGoomba(geom.Vec2{5, 5})
	l.AddEntity(g)

	loop := NewLoop(l, nil, 0, false)
	require.Equal(t, DefaultFrameDuration, loop.FrameDuration)
	require.False(t, loop.Simulating())

	_, ok := loop.Latest()
	require.False(t, ok)

	var received []Snapshot
	cancel := loop.HandleFrame(func(s Snapshot) {
		received = append(received, s)
	})

	snap := loop.Step()
	require.Len(t, received, 1)
	require.Equal(t, snap, received[0])
	require.Equal(t, []render.Sprite{
		{Position: geom.Vec2{5, 5}, ID: models.SpriteGoombaLeft},
	}, snap.Sprites)
	require.Equal(t, geom.Vec2{5, 5}, g.Position)

	latest, ok := loop.Latest()
	require.True(t, ok)
	require.Equal(t, snap, latest)

	loop.SetSimulating(true)
	cancel()
	cancel()

	snap = loop.Step()
	require.Len(t, received, 1)
	require.Equal(t, uint64(1), snap.Stats.Frame)
	require.InDelta(t, 5-models.GoombaSpeed, g.Position.X(), 1e-6)
}

func TestLoopRun(t *testing.T) {
	t.Run("run stops when the context is done", func(t *testing.T) {
		loop := NewLoop(newLevel(), nil, time.Millisecond, true)
		loop.SummaryInterval = time.Millisecond

		frames := make(chan Snapshot, 1)
		loop.HandleFrame(func(s Snapshot) {
			select {
			case frames <- s:
			default:
			}
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			loop.Run(ctx)
			close(done)
		}()

		select {
		case <-frames:
		case <-time.After(time.Second):
			require.Fail(t, "no frame dispatched")
		}

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			require.Fail(t, "loop did not stop")
		}
	})

	t.Run("run stops when the loop is closed", func(t *testing.T) {
		loop := NewLoop(newLevel(), &render.Recorder{}, time.Millisecond, true)

		done := make(chan struct{})
		go func() {
			loop.Run(context.Background())
			close(done)
		}()

		loop.Close()
		loop.Close()

		select {
		case <-done:
		case <-time.After(time.Second):
			require.Fail(t, "loop did not stop")
		}
	})
}
