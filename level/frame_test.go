package level

import (
	"testing"

	"github.com/pixelplumber/plumber/featureflag"
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/quadtree"
	"github.com/pixelplumber/plumber/render"
	"github.com/stretchr/testify/require"
)

type inputs []models.Input

func (in inputs) Input(player int) models.Input {
	if player < len(in) {
		return in[player]
	}
	return models.Input{}
}

func newLevel(flags ...featureflag.Flag) *Level {
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, string(f))
	}
	return New(Config{
		Width:  20,
		Height: 13,
		Flags:  featureflag.New(names),
	})
}

func TestLevelFrame(t *testing.T) {
	t.Run("empty level", func(t *testing.T) {
		l := newLevel()
		r := &render.Recorder{}

		stats := l.Frame(r, true)
		require.Zero(t, stats.Frame)
		require.Zero(t, stats.Alive)
		require.Zero(t, stats.Indexed)
		require.Zero(t, stats.InsertErrors)
		require.Empty(t, r.Buffered())
		require.Equal(t, uint64(1), l.FrameCount())

		stats = l.Frame(r, true)
		require.Equal(t, uint64(1), stats.Frame)
	})

	t.Run("tiles and alive actors are drawn", func(t *testing.T) {
		l := newLevel()
		require.NoError(t, l.AddTile(models.Tile{Solid: true, Sprite: models.SpriteGround}, 0, 0))

		dead := models.NewGoomba(geom.Vec2{5, 5})
		dead.Kill()
		l.AddEntity(dead)
		l.AddEntity(models.NewGoomba(geom.Vec2{8, 5}))
		l.AddPlayer(models.NewPlayer(geom.Vec2{2, 5}))

		r := &render.Recorder{}
		stats := l.Frame(r, false)
		require.Equal(t, 1, stats.Alive)
		require.Equal(t, 1, stats.Indexed)
		require.Equal(t, []render.Sprite{
			{Position: geom.Vec2{0, 0}, ID: models.SpriteGround},
			{Position: geom.Vec2{2, 5}, ID: models.SpritePlayerSmall},
			{Position: geom.Vec2{8, 5}, ID: models.SpriteGoombaLeft},
		}, r.Buffered())
	})

	t.Run("actors do not move when not simulating", func(t *testing.T) {
		l := newLevel()
		g := models.NewGoomba(geom.Vec2{5, 5})
		l.AddEntity(g)

		l.Frame(&render.Recorder{}, false)
		require.Equal(t, geom.Vec2{5, 5}, g.Position)

		l.Frame(&render.Recorder{}, true)
		require.InDelta(t, 5-models.GoombaSpeed, g.Position.X(), 1e-6)
	})

	t.Run("players always move", func(t *testing.T) {
		l := newLevel()
		p := models.NewPlayer(geom.Vec2{5, 5})
		l.AddPlayer(p)
		l.SetInputSource(inputs{{Right: true}})

		l.Frame(&render.Recorder{}, false)
		require.InDelta(t, 5+models.PlayerStep, p.Position.X(), 1e-6)
		require.Same(t, p.Camera(), l.Camera())
	})

	t.Run("only the first actor neighbourhood is resolved", func(t *testing.T) {
		l := newLevel()
		first := models.NewGoomba(geom.Vec2{1, 5})
		a := models.NewGoomba(geom.Vec2{10, 5})
		b := models.NewGoomba(geom.Vec2{10.5, 5})
		l.AddEntity(first)
		l.AddEntity(a)
		l.AddEntity(b)

		stats := l.Frame(&render.Recorder{}, false)
		require.Zero(t, stats.ActorCollisions)
		require.Equal(t, float32(-models.GoombaSpeed), a.Velocity.X())
		require.Equal(t, float32(-models.GoombaSpeed), b.Velocity.X())
	})

	t.Run("first actor bounces off its neighbour", func(t *testing.T) {
		l := newLevel()
		a := models.NewGoomba(geom.Vec2{10, 5})
		b := models.NewGoomba(geom.Vec2{10.5, 5})
		l.AddEntity(a)
		l.AddEntity(b)

		stats := l.Frame(&render.Recorder{}, false)
		require.Equal(t, 1, stats.ActorCollisions)
		require.Equal(t, float32(models.GoombaSpeed), a.Velocity.X())
		require.Equal(t, float32(models.GoombaSpeed), b.Velocity.X())
	})

	t.Run("all pairs are resolved once with the flag", func(t *testing.T) {
		l := newLevel(featureflag.FlagResolveAllActorPairs)
		first := models.NewGoomba(geom.Vec2{1, 5})
		a := models.NewGoomba(geom.Vec2{10, 5})
		b := models.NewGoomba(geom.Vec2{10.5, 5})
		l.AddEntity(first)
		l.AddEntity(a)
		l.AddEntity(b)

		stats := l.Frame(&render.Recorder{}, false)
		require.Equal(t, 1, stats.ActorCollisions)
		require.Equal(t, float32(-models.GoombaSpeed), first.Velocity.X())
		require.Equal(t, float32(models.GoombaSpeed), a.Velocity.X())
		require.Equal(t, float32(models.GoombaSpeed), b.Velocity.X())
	})

	t.Run("stomped goomba dies", func(t *testing.T) {
		l := newLevel()
		g := models.NewGoomba(geom.Vec2{5, 5})
		p := models.NewPlayer(geom.Vec2{5, 5.7})
		l.AddEntity(g)
		l.AddPlayer(p)

		stats := l.Frame(&render.Recorder{}, false)
		require.Equal(t, 1, stats.ControllableCollisions)
		require.Zero(t, stats.Alive)
		require.False(t, g.Alive)
		require.True(t, p.Alive)
	})

	t.Run("small player touched from the side dies", func(t *testing.T) {
		l := newLevel()
		l.AddEntity(models.NewGoomba(geom.Vec2{5, 5}))
		p := models.NewPlayer(geom.Vec2{5.5, 5})
		l.AddPlayer(p)

		stats := l.Frame(&render.Recorder{}, false)
		require.Equal(t, 1, stats.ControllableCollisions)
		require.Equal(t, 1, stats.Alive)
		require.False(t, p.Alive)
	})

	t.Run("actors beyond the arena are reported", func(t *testing.T) {
		l := New(Config{
			Width:      20,
			Height:     13,
			EntityTree: quadtree.Config{MaxNodes: 1},
		})
		for i := 0; i < quadtree.Capacity+1; i++ {
			l.AddEntity(models.NewGoomba(geom.Vec2{float32(i*2 + 1), 5}))
		}

		stats := l.Frame(&render.Recorder{}, false)
		require.Equal(t, 1, stats.InsertErrors)
		require.Equal(t, quadtree.Capacity, stats.Indexed)
		require.Equal(t, quadtree.Capacity+1, stats.Alive)
	})

	t.Run("arena grows with the flag", func(t *testing.T) {
		l := New(Config{
			Width:      20,
			Height:     13,
			EntityTree: quadtree.Config{MaxNodes: 1},
			Flags:      featureflag.New([]string{string(featureflag.FlagGrowQuadtreeArena)}),
		})
		for i := 0; i < quadtree.Capacity+1; i++ {
			l.AddEntity(models.NewGoomba(geom.Vec2{float32(i*2 + 1), 5}))
		}

		stats := l.Frame(&render.Recorder{}, false)
		require.Zero(t, stats.InsertErrors)
		require.Equal(t, quadtree.Capacity+1, stats.Indexed)
		require.Equal(t, 5, l.EntityTreeInfo().Nodes)
	})
}

func TestLevelFrameTerrain(t *testing.T) {
	ground := func(l *Level) {
		for x := 0; x < l.Width(); x++ {
			require.NoError(t, l.AddTile(models.Tile{Solid: true, Sprite: models.SpriteGround}, x, 0))
		}
	}

	t.Run("falling koopa lands on the ground", func(t *testing.T) {
		l := newLevel()
		ground(l)

		k := models.NewKoopa(geom.Vec2{3, 1.05}, true, false)
		k.Velocity[0] = 0
		l.AddEntity(k)

		stats := l.Frame(&render.Recorder{}, true)
		require.Equal(t, 1, stats.TerrainCollisions)
		require.InDelta(t, 1, k.Position.Y(), 1e-4)
		require.Zero(t, k.Velocity.Y())
		require.True(t, k.TouchingGround())

		l.Frame(&render.Recorder{}, true)
		require.InDelta(t, 1, k.Position.Y(), 1e-4)
		require.True(t, k.TouchingGround())
	})

	t.Run("terrain collisions can be disabled", func(t *testing.T) {
		l := newLevel(featureflag.FlagDisableTerrainCollisions)
		ground(l)

		k := models.NewKoopa(geom.Vec2{3, 1.05}, true, false)
		k.Velocity[0] = 0
		l.AddEntity(k)

		stats := l.Frame(&render.Recorder{}, true)
		require.Zero(t, stats.TerrainCollisions)
		require.InDelta(t, 1.05-models.Gravity, k.Position.Y(), 1e-4)
		require.False(t, k.TouchingGround())
	})

	t.Run("player collects a coin once", func(t *testing.T) {
		l := newLevel()
		coin := models.NewCollider(models.ColliderCoin, geom.Vec2{5, 1})
		l.AddCollider(coin)
		p := models.NewPlayer(geom.Vec2{5, 1})
		l.AddPlayer(p)

		stats := l.Frame(&render.Recorder{}, true)
		require.Equal(t, 1, stats.TerrainCollisions)
		require.Equal(t, 1, p.Coins)
		require.True(t, coin.Consumed)

		stats = l.Frame(&render.Recorder{}, true)
		require.Zero(t, stats.TerrainCollisions)
		require.Equal(t, 1, p.Coins)
	})
}

func TestLevelFramePlayerJump(t *testing.T) {
	l := newLevel()
	for x := 0; x < l.Width(); x++ {
		require.NoError(t, l.AddTile(models.Tile{Solid: true, Sprite: models.SpriteGround}, x, 0))
	}

	p := models.NewPlayer(geom.Vec2{5, 1})
	l.AddPlayer(p)

	l.Frame(&render.Recorder{}, true)
	require.True(t, p.CanJump)

	l.SetInputSource(inputs{{Jump: true}})
	l.Frame(&render.Recorder{}, true)
	require.InDelta(t, 1+models.PlayerJumpSpeed, p.Position.Y(), 1e-4)
	require.False(t, p.CanJump)

	l.SetInputSource(nil)
	p.Position = geom.Vec2{5, 6}
	p.Velocity = geom.Vec2{}
	l.Frame(&render.Recorder{}, true)
	require.False(t, p.CanJump)
}

func TestLevelFrameTerrainCoversGrid(t *testing.T) {
	l := New(Config{})
	require.Equal(t, DefaultWidth, l.Width())
	for x := 0; x < l.Width(); x++ {
		require.NoError(t, l.AddTile(models.Tile{Solid: true, Sprite: models.SpriteGround}, x, 0))
	}

	near := models.NewKoopa(geom.Vec2{50, 1.05}, true, false)
	far := models.NewKoopa(geom.Vec2{150, 1.05}, true, false)
	farCorner := models.NewKoopa(geom.Vec2{float32(DefaultWidth) - 1.5, 1.05}, false, false)
	for _, a := range []models.Actor{near, far, farCorner} {
		a.GetBody().Velocity[0] = 0
		l.AddEntity(a)
	}

	for range 30 {
		l.Frame(&render.Recorder{}, true)
	}

	for _, a := range []models.Actor{near, far, farCorner} {
		b := a.GetBody()
		require.InDelta(t, 1, b.Position.Y(), 1e-4)
		require.True(t, b.CanJump)
	}
	require.Equal(t, gridBounds(DefaultWidth, DefaultHeight), l.colliderTree.Bounds())
	require.Equal(t, DefaultWidth, l.colliderTree.Len())

	l.Resize(300, 5)
	require.Equal(t, gridBounds(300, 5), l.colliderTree.Bounds())
}

func TestLevelFrameDebug(t *testing.T) {
	t.Run("nothing is drawn without flags", func(t *testing.T) {
		lines := &render.LineRecorder{}
		l := New(Config{Width: 20, Height: 13, Lines: lines})
		l.AddEntity(models.NewGoomba(geom.Vec2{5, 5}))

		l.Frame(&render.Recorder{}, false)
		require.Empty(t, lines.Lines)
	})

	t.Run("quadtree outline", func(t *testing.T) {
		lines := &render.LineRecorder{}
		l := New(Config{
			Width:  20,
			Height: 13,
			Lines:  lines,
			Flags:  featureflag.New([]string{string(featureflag.FlagDrawQuadtree)}),
		})
		l.AddEntity(models.NewGoomba(geom.Vec2{5, 5}))

		l.Frame(&render.Recorder{}, false)
		require.Len(t, lines.Lines, 4)
	})

	t.Run("collider boxes", func(t *testing.T) {
		lines := &render.LineRecorder{}
		l := New(Config{
			Width:  20,
			Height: 13,
			Lines:  lines,
			Flags:  featureflag.New([]string{string(featureflag.FlagDrawColliders)}),
		})
		require.NoError(t, l.AddTile(models.Tile{Solid: true}, 0, 0))
		l.AddEntity(models.NewGoomba(geom.Vec2{5, 5}))

		l.Frame(&render.Recorder{}, false)
		require.Len(t, lines.Lines, 8)
	})
}

func TestLevelSnapshot(t *testing.T) {
	l := newLevel()
	l.ID = "1-1"
	g := models.NewGoomba(geom.Vec2{5, 5})
	l.AddEntity(g)
	p := models.NewPlayer(geom.Vec2{2, 5})
	p.Coins = 3
	l.AddPlayer(p)

	stats := l.Frame(&render.Recorder{}, false)
	snap := l.Snapshot(stats)
	require.Equal(t, "1-1", snap.LevelID)
	require.Equal(t, stats, snap.Stats)
	require.Equal(t, []ActorState{{
		ID:       g.ID,
		Kind:     "goomba",
		Position: geom.Vec2{5, 5},
		Velocity: geom.Vec2{-models.GoombaSpeed, 0},
		Alive:    true,
	}}, snap.Actors)
	require.Len(t, snap.Players, 1)
	require.Equal(t, "player", snap.Players[0].Kind)
	require.Equal(t, "small", snap.Players[0].PowerUp)
	require.Equal(t, 3, snap.Players[0].Coins)
}
