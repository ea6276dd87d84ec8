package models

import "github.com/pixelplumber/plumber/render"

// Tile is a cell of the level grid.
type Tile struct {
	Solid  bool
	Sprite render.SpriteID
}
