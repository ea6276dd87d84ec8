// Package levelfile reads and writes binary level files.
//
// A level file is little endian and made of a file header (identity and
// version), a tile header (width and height) followed by one uint32 code
// per tile in row-major order, and an entity header (count) followed by
// one fixed size record per entity.
package levelfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/render"
)

const (
	// Version is the only file version this package reads and writes.
	Version = 1

	// Upper bounds that protect decoding from hostile headers.
	MaxTiles    = 1 << 22
	MaxEntities = 1 << 16

	ErrTypeInvalidIdentity    = "levelfile_invalid_identity"
	ErrTypeUnsupportedVersion = "levelfile_unsupported_version"
	ErrTypeTruncated          = "levelfile_truncated"
	ErrTypeTooLarge           = "levelfile_too_large"
	ErrTypeInvalidDimensions  = "levelfile_invalid_dimensions"
)

// Identity is the tag every level file starts with.
var Identity = [4]byte{'L', 'V', 'L', 0}

const (
	tileSolid      = 1 << 31
	tileSpriteMask = 0xffff
)

// Entity record flags.
const (
	FlagGreen uint32 = 1 << iota
	FlagWinged
)

type fileHeader struct {
	Identity [4]byte
	Version  uint32
}

type tileHeader struct {
	Width  uint32
	Height uint32
}

type entityHeader struct {
	Count uint32
}

type entityRecord struct {
	Kind  uint32
	Flags uint32
	X     float32
	Y     float32
}

// Entity describes an actor to spawn when a level is loaded.
type Entity struct {
	Kind     models.Kind
	Flags    uint32
	Position geom.Vec2
}

// File is the decoded content of a level file.
type File struct {
	Width    int
	Height   int
	Tiles    []models.Tile
	Entities []Entity
}

// TileCode packs a tile into its on-disk code.
func TileCode(t models.Tile) uint32 {
	code := uint32(t.Sprite) & tileSpriteMask
	if t.Solid {
		code |= tileSolid
	}
	return code
}

// TileFromCode unpacks an on-disk tile code.
func TileFromCode(code uint32) models.Tile {
	return models.Tile{
		Solid:  code&tileSolid != 0,
		Sprite: render.SpriteID(code & tileSpriteMask),
	}
}

// Encode writes f to w.
func Encode(w io.Writer, f *File) error {
	if len(f.Tiles) != f.Width*f.Height {
		return errors.New("tile count does not match the level dimensions").
			WithTag("width", f.Width).
			WithTag("height", f.Height).
			WithTag("tiles", len(f.Tiles))
	}
	if f.Width < 0 || f.Height < 0 {
		return errors.New("level dimensions are negative").
			WithType(ErrTypeInvalidDimensions).
			WithTag("width", f.Width).
			WithTag("height", f.Height)
	}
	if err := checkDimensions(uint64(f.Width), uint64(f.Height)); err != nil {
		return err
	}
	if len(f.Entities) > MaxEntities {
		return errors.New("level is too large").
			WithType(ErrTypeTooLarge).
			WithTag("tiles", len(f.Tiles)).
			WithTag("entities", len(f.Entities))
	}

	bw := bufio.NewWriter(w)
	codes := make([]uint32, len(f.Tiles))
	for i, t := range f.Tiles {
		codes[i] = TileCode(t)
	}

	records := make([]entityRecord, len(f.Entities))
	for i, e := range f.Entities {
		records[i] = entityRecord{
			Kind:  uint32(e.Kind),
			Flags: e.Flags,
			X:     e.Position.X(),
			Y:     e.Position.Y(),
		}
	}

	for _, v := range []any{
		fileHeader{Identity: Identity, Version: Version},
		tileHeader{Width: uint32(f.Width), Height: uint32(f.Height)},
		codes,
		entityHeader{Count: uint32(len(records))},
		records,
	} {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return errors.New("writing level file failed").Wrap(err)
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.New("writing level file failed").Wrap(err)
	}
	return nil
}

// checkDimensions rejects grids with more than MaxTiles tiles and grids
// with a single zero dimension, whose rows or columns would still be
// walked every frame.
func checkDimensions(width, height uint64) error {
	if (width == 0) != (height == 0) {
		return errors.New("level has a zero dimension").
			WithType(ErrTypeInvalidDimensions).
			WithTag("width", width).
			WithTag("height", height)
	}
	if width*height > MaxTiles {
		return errors.New("level is too large").
			WithType(ErrTypeTooLarge).
			WithTag("width", width).
			WithTag("height", height)
	}
	return nil
}

// Decode reads a level file from r.
func Decode(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	var fh fileHeader
	if err := read(br, &fh, "file header"); err != nil {
		return nil, err
	}
	if fh.Identity != Identity {
		return nil, errors.New("not a level file").
			WithType(ErrTypeInvalidIdentity).
			WithTag("identity", fh.Identity[:])
	}
	if fh.Version != Version {
		return nil, errors.New("unsupported level file version").
			WithType(ErrTypeUnsupportedVersion).
			WithTag("version", fh.Version)
	}

	var th tileHeader
	if err := read(br, &th, "tile header"); err != nil {
		return nil, err
	}
	if err := checkDimensions(uint64(th.Width), uint64(th.Height)); err != nil {
		return nil, err
	}

	codes := make([]uint32, uint64(th.Width)*uint64(th.Height))
	if err := read(br, codes, "tiles"); err != nil {
		return nil, err
	}

	var eh entityHeader
	if err := read(br, &eh, "entity header"); err != nil {
		return nil, err
	}
	if eh.Count > MaxEntities {
		return nil, errors.New("level has too many entities").
			WithType(ErrTypeTooLarge).
			WithTag("count", eh.Count)
	}

	records := make([]entityRecord, eh.Count)
	if err := read(br, records, "entities"); err != nil {
		return nil, err
	}

	f := &File{
		Width:    int(th.Width),
		Height:   int(th.Height),
		Tiles:    make([]models.Tile, len(codes)),
		Entities: make([]Entity, len(records)),
	}
	for i, c := range codes {
		f.Tiles[i] = TileFromCode(c)
	}
	for i, rec := range records {
		f.Entities[i] = Entity{
			Kind:     models.Kind(rec.Kind),
			Flags:    rec.Flags,
			Position: geom.Vec2{rec.X, rec.Y},
		}
	}
	return f, nil
}

func read(r io.Reader, v any, section string) error {
	err := binary.Read(r, binary.LittleEndian, v)
	switch {
	case err == nil:
		return nil

	case err == io.EOF, err == io.ErrUnexpectedEOF:
		return errors.New("level file is truncated").
			WithType(ErrTypeTruncated).
			WithTag("section", section).
			Wrap(err)

	default:
		return errors.New("reading level file failed").
			WithTag("section", section).
			Wrap(err)
	}
}

// Marshal returns the encoding of f.
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a level file held in memory.
func Unmarshal(b []byte) (*File, error) {
	return Decode(bytes.NewReader(b))
}
