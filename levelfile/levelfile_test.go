package levelfile

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/level"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/render"
	"github.com/stretchr/testify/require"
)

func testFile() *File {
	f := &File{
		Width:  3,
		Height: 2,
		Tiles:  make([]models.Tile, 6),
		Entities: []Entity{
			{Kind: models.KindPlayer, Position: geom.Vec2{1, 1}},
			{Kind: models.KindGoomba, Position: geom.Vec2{2, 1}},
			{Kind: models.KindGreenParakoopa, Flags: FlagGreen | FlagWinged, Position: geom.Vec2{2.5, 1}},
		},
	}
	f.Tiles[0] = models.Tile{Solid: true, Sprite: models.SpriteGround}
	f.Tiles[1] = models.Tile{Solid: true, Sprite: models.SpriteGround}
	f.Tiles[5] = models.Tile{Sprite: models.SpriteCoin}
	return f
}

func TestTileCode(t *testing.T) {
	require.Equal(t, uint32(0x80000001), TileCode(models.Tile{Solid: true, Sprite: 1}))
	require.Equal(t, uint32(5), TileCode(models.Tile{Sprite: 5}))
	require.Equal(t, models.Tile{Solid: true, Sprite: 0xffff}, TileFromCode(0x8fffffff))
}

func TestEncodeDecode(t *testing.T) {
	t.Run("layout", func(t *testing.T) {
		b, err := Marshal(testFile())
		require.NoError(t, err)
		require.Len(t, b, 8+8+6*4+4+3*16)
		require.Equal(t, []byte("LVL\x00"), b[:4])
		require.Equal(t, uint32(Version), binary.LittleEndian.Uint32(b[4:]))
		require.Equal(t, uint32(3), binary.LittleEndian.Uint32(b[8:]))
		require.Equal(t, uint32(2), binary.LittleEndian.Uint32(b[12:]))
		require.Equal(t, uint32(0x80000001), binary.LittleEndian.Uint32(b[16:]))
		require.Equal(t, uint32(3), binary.LittleEndian.Uint32(b[40:]))
	})

	t.Run("decoded file matches the encoded one", func(t *testing.T) {
		b, err := Marshal(testFile())
		require.NoError(t, err)

		f, err := Unmarshal(b)
		require.NoError(t, err)
		require.Equal(t, testFile(), f)
	})

	t.Run("tile count mismatch is rejected", func(t *testing.T) {
		f := testFile()
		f.Tiles = f.Tiles[:2]

		_, err := Marshal(f)
		require.Error(t, err)
	})
}

func TestDecodeErrors(t *testing.T) {
	valid, err := Marshal(testFile())
	require.NoError(t, err)

	t.Run("invalid identity", func(t *testing.T) {
		b := append([]byte(nil), valid...)
		copy(b, "PNG\x00")

		_, err := Unmarshal(b)
		require.True(t, errors.IsType(err, ErrTypeInvalidIdentity))
	})

	t.Run("unsupported version", func(t *testing.T) {
		b := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(b[4:], 2)

		_, err := Unmarshal(b)
		require.True(t, errors.IsType(err, ErrTypeUnsupportedVersion))
	})

	t.Run("truncated file", func(t *testing.T) {
		for _, n := range []int{0, 3, 8, 12, 20, 40, 43, len(valid) - 1} {
			_, err := Unmarshal(valid[:n])
			require.True(t, errors.IsType(err, ErrTypeTruncated), "length %v: %v", n, err)
		}
	})

	t.Run("too many tiles", func(t *testing.T) {
		b := append([]byte(nil), valid[:16]...)
		binary.LittleEndian.PutUint32(b[8:], 1<<16)
		binary.LittleEndian.PutUint32(b[12:], 1<<16)

		_, err := Decode(bytes.NewReader(b))
		require.True(t, errors.IsType(err, ErrTypeTooLarge))
	})

	t.Run("single zero dimension", func(t *testing.T) {
		for _, dims := range [][2]uint32{{0, 0xffffffff}, {0xffffffff, 0}, {0, 1}} {
			b := append([]byte(nil), valid[:16]...)
			binary.LittleEndian.PutUint32(b[8:], dims[0])
			binary.LittleEndian.PutUint32(b[12:], dims[1])
			b = binary.LittleEndian.AppendUint32(b, 0)

			_, err := Decode(bytes.NewReader(b))
			require.True(t, errors.IsType(err, ErrTypeInvalidDimensions), "dimensions %v: %v", dims, err)
		}
	})

	t.Run("empty grid", func(t *testing.T) {
		b := append([]byte(nil), valid[:16]...)
		binary.LittleEndian.PutUint32(b[8:], 0)
		binary.LittleEndian.PutUint32(b[12:], 0)
		b = binary.LittleEndian.AppendUint32(b, 0)

		f, err := Decode(bytes.NewReader(b))
		require.NoError(t, err)
		require.Zero(t, f.Width)
		require.Zero(t, f.Height)
	})

	t.Run("too many entities", func(t *testing.T) {
		b := append([]byte(nil), valid[:44]...)
		binary.LittleEndian.PutUint32(b[40:], MaxEntities+1)

		_, err := Unmarshal(b)
		require.True(t, errors.IsType(err, ErrTypeTooLarge))
	})
}

func TestEncodeInvalidDimensions(t *testing.T) {
	var b bytes.Buffer
	err := Encode(&b, &File{Width: 0, Height: 12})
	require.True(t, errors.IsType(err, ErrTypeInvalidDimensions))
}

func TestApply(t *testing.T) {
	l := level.New(level.Config{})
	l.AddEntity(models.NewGoomba(geom.Vec2{50, 5}))

	f := testFile()
	f.Entities = append(f.Entities, Entity{Kind: models.KindBowser, Position: geom.Vec2{1, 1}})
	require.NoError(t, f.Apply(l))

	require.Equal(t, 3, l.Width())
	require.Equal(t, 2, l.Height())
	require.Equal(t, 1, l.PlayerCount())
	require.Equal(t, geom.Vec2{1, 1}, l.Player(0).GetBody().Position)

	require.Equal(t, 2, l.EntityCount())
	require.Equal(t, models.KindGoomba, l.Entity(0).Kind())
	require.Equal(t, models.KindGreenParakoopa, l.Entity(1).Kind())
	require.Len(t, l.Colliders(), 2)

	tile, ok := l.Tile(2, 1)
	require.True(t, ok)
	require.Equal(t, models.SpriteCoin, tile.Sprite)
}

func TestSpawn(t *testing.T) {
	t.Run("koopa flags", func(t *testing.T) {
		a, ok := Spawn(Entity{Kind: models.KindKoopa, Flags: FlagGreen})
		require.True(t, ok)
		require.Equal(t, models.KindGreenKoopa, a.Kind())

		a, ok = Spawn(Entity{Kind: models.KindRedParakoopa})
		require.True(t, ok)
		require.Equal(t, models.KindRedParakoopa, a.Kind())
	})

	t.Run("unsupported kind", func(t *testing.T) {
		_, ok := Spawn(Entity{Kind: models.KindLakitu})
		require.False(t, ok)
	})
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1-1.lvl")

	src := level.New(level.Config{Width: 10, Height: 4})
	require.NoError(t, src.AddTile(models.Tile{Solid: true, Sprite: models.SpriteBrick}, 4, 0))
	src.AddPlayer(models.NewPlayer(geom.Vec2{1, 1}))
	src.AddEntity(models.NewKoopa(geom.Vec2{6, 1}, false, true))
	dead := models.NewGoomba(geom.Vec2{7, 1})
	dead.Kill()
	src.AddEntity(dead)
	require.NoError(t, Save(path, src))

	dst := level.New(level.Config{})
	require.NoError(t, Load(path, dst))
	require.Equal(t, src.Tiles(), dst.Tiles())
	require.Equal(t, 1, dst.PlayerCount())
	require.Equal(t, 1, dst.EntityCount())
	require.Equal(t, models.KindRedParakoopa, dst.Entity(0).Kind())

	err := Load(filepath.Join(t.TempDir(), "missing.lvl"), dst)
	require.Error(t, err)
}

func TestDemo(t *testing.T) {
	f := Demo()
	require.Len(t, f.Tiles, f.Width*f.Height)

	b, err := Marshal(f)
	require.NoError(t, err)
	decoded, err := Unmarshal(b)
	require.NoError(t, err)
	require.Equal(t, f, decoded)

	l := level.New(level.Config{})
	require.NoError(t, f.Apply(l))
	require.Equal(t, 1, l.PlayerCount())
	require.Equal(t, len(f.Entities)-1, l.EntityCount())
	require.NotEmpty(t, l.Colliders())

	r := &render.Recorder{}
	for i := 0; i < 60; i++ {
		l.Frame(r, true)
	}
	require.Equal(t, uint64(60), l.FrameCount())
	require.NotEmpty(t, r.Buffered())
}
