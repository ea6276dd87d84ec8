package level

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/models"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	l := New(Config{})
	require.Equal(t, DefaultWidth, l.Width())
	require.Equal(t, DefaultHeight, l.Height())
	require.Equal(t, DefaultBounds, l.Bounds())
	require.Len(t, l.Tiles(), DefaultWidth*DefaultHeight)
	require.NotNil(t, l.Flags())
	require.Nil(t, l.Camera())
	require.Equal(t, "entities", l.EntityTreeInfo().Name)
}

func TestLevelAddTile(t *testing.T) {
	t.Run("tile is stored", func(t *testing.T) {
		l := New(Config{Width: 4, Height: 3})

		tile := models.Tile{Solid: true, Sprite: models.SpriteGround}
		require.NoError(t, l.AddTile(tile, 3, 2))

		res, ok := l.Tile(3, 2)
		require.True(t, ok)
		require.Equal(t, tile, res)
		require.Equal(t, tile, l.Tiles()[3+2*4])
	})

	t.Run("tile outside of the level returns an error", func(t *testing.T) {
		l := New(Config{Width: 4, Height: 3})

		for _, pos := range [][2]int{{-1, 0}, {4, 0}, {0, -1}, {0, 3}} {
			err := l.AddTile(models.Tile{Solid: true}, pos[0], pos[1])
			require.Error(t, err)
			require.True(t, errors.IsType(err, ErrTypeTileOutOfRange))
		}

		_, ok := l.Tile(4, 0)
		require.False(t, ok)
	})
}

func TestLevelEntities(t *testing.T) {
	t.Run("entities get sequential ids", func(t *testing.T) {
		l := New(Config{})
		a := models.NewGoomba(geom.Vec2{1, 1})
		b := models.NewGoomba(geom.Vec2{2, 1})
		l.AddEntity(a)
		l.AddEntity(b)

		require.Equal(t, 2, l.EntityCount())
		require.Equal(t, uint32(1), a.ID)
		require.Equal(t, uint32(2), b.ID)
		require.Same(t, b, l.Entity(1))
	})

	t.Run("remove dead releases ids", func(t *testing.T) {
		l := New(Config{})
		a := models.NewGoomba(geom.Vec2{1, 1})
		b := models.NewGoomba(geom.Vec2{2, 1})
		l.AddEntity(a)
		l.AddEntity(b)

		a.Kill()
		require.Equal(t, 1, l.RemoveDead())
		require.Equal(t, []models.Actor{b}, l.Entities())

		c := models.NewGoomba(geom.Vec2{3, 1})
		l.AddEntity(c)
		require.Equal(t, uint32(1), c.ID)
	})

	t.Run("reset keeps players", func(t *testing.T) {
		l := New(Config{Width: 10, Height: 5})
		l.AddEntity(models.NewGoomba(geom.Vec2{1, 1}))
		l.AddPlayer(models.NewPlayer(geom.Vec2{2, 1}))
		l.AddCollider(models.NewCollider(models.ColliderCoin, geom.Vec2{3, 3}))
		require.NoError(t, l.AddTile(models.Tile{Solid: true}, 0, 0))

		l.Reset()
		require.Zero(t, l.EntityCount())
		require.Equal(t, 1, l.PlayerCount())
		require.Empty(t, l.Colliders())
		require.Zero(t, l.FrameCount())
	})
}

func TestLevelColliders(t *testing.T) {
	l := New(Config{Width: 4, Height: 2})
	require.NoError(t, l.AddTile(models.Tile{Solid: true, Sprite: models.SpriteGround}, 0, 0))
	require.NoError(t, l.AddTile(models.Tile{Solid: true, Sprite: models.SpriteGround}, 1, 0))
	require.NoError(t, l.AddTile(models.Tile{Sprite: models.SpriteCoin}, 2, 1))

	coin := models.NewCollider(models.ColliderCoin, geom.Vec2{2, 1})
	l.AddCollider(coin)

	colliders := l.Colliders()
	require.Len(t, colliders, 3)
	require.Equal(t, geom.Vec2{0, 0}, colliders[0].Position)
	require.Equal(t, geom.Vec2{1, 0}, colliders[1].Position)
	require.Equal(t, models.ColliderStrength3, colliders[1].Type)
	require.Same(t, coin, colliders[2])
}
