// Package level holds the level aggregate and drives its frames: index
// rebuild, neighbourhood queries and collision dispatch.
package level

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/pixelplumber/plumber/featureflag"
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/quadtree"
	"github.com/pixelplumber/plumber/render"
)

const (
	DefaultWidth  = 200
	DefaultHeight = 26

	ErrTypeTileOutOfRange = "tile_out_of_range"
)

// DefaultBounds is the region covered by the spatial indexes of a level.
var DefaultBounds = geom.Quad{
	BottomLeft: geom.Vec2{0, 0},
	TopRight:   geom.Vec2{100, 13},
}

// Config configures a level.
type Config struct {
	Width  int
	Height int
	Bounds geom.Quad

	EntityTree   quadtree.Config
	ColliderTree quadtree.Config

	Flags featureflag.FeatureFlag

	// Optional debug line sink.
	Lines render.LineRenderer
}

// InputSource provides the input of each controllable for a frame.
type InputSource interface {
	Input(player int) models.Input
}

// Level owns the tile grid, the actors, the controllables and the colliders
// of a level. The spatial indexes are caches rebuilt from them.
type Level struct {
	ID string

	conf   Config
	width  int
	height int
	tiles  []models.Tile

	entities []models.Actor
	players  []models.Controllable
	input    InputSource
	ids      models.IDGenerator

	colliders      []*models.Collider
	tileColliders  []*models.Collider
	collidersDirty bool
	colliderMargin float32

	entityTree   *quadtree.Tree[models.Actor]
	colliderTree *quadtree.Tree[*models.Collider]

	frame       uint64
	neighbors   []models.Actor
	nearbyTiles []*models.Collider
}

func New(conf Config) *Level {
	if conf.Width <= 0 {
		conf.Width = DefaultWidth
	}
	if conf.Height <= 0 {
		conf.Height = DefaultHeight
	}
	if conf.Bounds == (geom.Quad{}) {
		conf.Bounds = DefaultBounds
	}
	if conf.Flags == nil {
		conf.Flags = featureflag.New(nil)
	}
	if conf.EntityTree.Name == "" {
		conf.EntityTree.Name = "entities"
	}
	conf.Flags.IfSet(featureflag.FlagGrowQuadtreeArena, func() {
		conf.EntityTree.Grow = true
	})
	if conf.ColliderTree.Name == "" {
		conf.ColliderTree.Name = "colliders"
		conf.ColliderTree.Grow = true
	}

	l := &Level{
		conf:       conf,
		entityTree: quadtree.New[models.Actor](conf.Bounds, conf.EntityTree),
	}
	l.Reset()
	return l
}

// Reset empties the level and restores the default dimensions. Players are
// kept.
func (l *Level) Reset() {
	l.Resize(l.conf.Width, l.conf.Height)
	l.entities = nil
	l.colliders = nil
	l.ids.Reset()
	l.frame = 0
	l.entityTree.Clear()
}

// Resize replaces the tile grid with an empty grid of the given
// dimensions. The collider tree is rebuilt over the new grid.
func (l *Level) Resize(width, height int) {
	l.width = width
	l.height = height
	l.tiles = make([]models.Tile, width*height)
	l.colliderTree = quadtree.New[*models.Collider](gridBounds(width, height), l.conf.ColliderTree)
	l.collidersDirty = true
}

// gridBounds returns the region covered by a tile grid. Empty grids still
// get a unit region.
func gridBounds(width, height int) geom.Quad {
	return geom.Quad{
		BottomLeft: geom.Vec2{0, 0},
		TopRight:   geom.Vec2{float32(max(width, 1)), float32(max(height, 1))},
	}
}

func (l *Level) Width() int {
	return l.width
}

func (l *Level) Height() int {
	return l.height
}

func (l *Level) Bounds() geom.Quad {
	return l.conf.Bounds
}

func (l *Level) Flags() featureflag.FeatureFlag {
	return l.conf.Flags
}

// FrameCount returns the number of frames run since the last reset.
func (l *Level) FrameCount() uint64 {
	return l.frame
}

func (l *Level) AddTile(tile models.Tile, x, y int) error {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		return errors.New("tile is outside of the level").
			WithType(ErrTypeTileOutOfRange).
			WithTag("x", x).
			WithTag("y", y).
			WithTag("width", l.width).
			WithTag("height", l.height)
	}

	l.tiles[x+y*l.width] = tile
	l.collidersDirty = true
	return nil
}

func (l *Level) Tile(x, y int) (models.Tile, bool) {
	if x < 0 || x >= l.width || y < 0 || y >= l.height {
		return models.Tile{}, false
	}
	return l.tiles[x+y*l.width], true
}

// Tiles returns the row-major tile grid.
func (l *Level) Tiles() []models.Tile {
	return l.tiles
}

// AddEntity adds a to the level and gives it an id when it has none.
func (l *Level) AddEntity(a models.Actor) {
	if b := a.GetBody(); b.ID == 0 {
		b.ID = l.ids.Next()
	}
	l.entities = append(l.entities, a)
}

func (l *Level) Entity(i int) models.Actor {
	return l.entities[i]
}

func (l *Level) Entities() []models.Actor {
	return l.entities
}

func (l *Level) EntityCount() int {
	return len(l.entities)
}

// RemoveDead drops the dead actors and releases their ids. It returns the
// number of removed actors.
func (l *Level) RemoveDead() int {
	alive := l.entities[:0]
	for _, e := range l.entities {
		if e.GetBody().Alive {
			alive = append(alive, e)
			continue
		}
		l.ids.Release(e.GetBody().ID)
	}

	removed := len(l.entities) - len(alive)
	for i := len(alive); i < len(l.entities); i++ {
		l.entities[i] = nil
	}
	l.entities = alive
	return removed
}

func (l *Level) AddPlayer(p models.Controllable) {
	l.players = append(l.players, p)
}

func (l *Level) Player(i int) models.Controllable {
	return l.players[i]
}

func (l *Level) Players() []models.Controllable {
	return l.players
}

func (l *Level) PlayerCount() int {
	return len(l.players)
}

// Camera returns the camera of the first controllable, or nil when the
// level has none.
func (l *Level) Camera() *render.Camera {
	if len(l.players) == 0 {
		return nil
	}
	return l.players[0].Camera()
}

func (l *Level) SetInputSource(src InputSource) {
	l.input = src
}

// AddCollider adds a collider that is not derived from the tile grid, like
// a coin.
func (l *Level) AddCollider(c *models.Collider) {
	l.colliders = append(l.colliders, c)
	l.collidersDirty = true
}

// BuildColliders rebuilds the tile colliders and the collider tree.
func (l *Level) BuildColliders() {
	l.collidersDirty = true
	l.refreshColliders()
}

// Colliders returns the tile colliders followed by the added ones.
func (l *Level) Colliders() []*models.Collider {
	l.refreshColliders()

	res := make([]*models.Collider, 0, len(l.tileColliders)+len(l.colliders))
	res = append(res, l.tileColliders...)
	return append(res, l.colliders...)
}

// EntityTreeInfo describes the entity tree built by the last frame.
func (l *Level) EntityTreeInfo() quadtree.DebugInfo {
	return l.entityTree.DebugInfo()
}
