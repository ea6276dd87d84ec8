package models

import (
	"testing"

	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/render"
	"github.com/stretchr/testify/require"
)

func TestGoombaUpdate(t *testing.T) {
	var r render.Recorder
	g := NewGoomba(geom.Vec2{10, 1})

	g.Draw(&r)
	require.Equal(t, SpriteGoombaLeft, r.Buffered()[0].ID)

	for i := 0; i <= goombaAnimationCycle; i++ {
		g.Update()
	}
	require.InDelta(t, 10-float32(goombaAnimationCycle+1)*GoombaSpeed, g.Position.X(), 1e-4)

	r.Clear()
	g.Draw(&r)
	require.Equal(t, SpriteGoombaRight, r.Buffered()[0].ID)
}

func TestGoombaReverse(t *testing.T) {
	g := NewGoomba(geom.Vec2{})
	g.Velocity = geom.Vec2{1, 2}

	g.Reverse()
	require.Equal(t, geom.Vec2{-1, 2}, g.Velocity)
}

func TestGoombaDamage(t *testing.T) {
	g := NewGoomba(geom.Vec2{})
	g.Damage()
	require.True(t, g.Alive)

	g.Kill()
	require.False(t, g.Alive)

	var r render.Recorder
	g.Draw(&r)
	require.Empty(t, r.Buffered())
}
