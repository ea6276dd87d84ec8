package levelfile

import (
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/render"
)

const (
	demoWidth  = 64
	demoHeight = 13
)

// Demo returns a small level with a ground floor, a pit, a few blocks and
// some enemies. It is used when no level is configured.
func Demo() *File {
	f := &File{
		Width:  demoWidth,
		Height: demoHeight,
		Tiles:  make([]models.Tile, demoWidth*demoHeight),
	}

	set := func(x, y int, sprite render.SpriteID) {
		f.Tiles[y*demoWidth+x] = models.Tile{Solid: true, Sprite: sprite}
	}

	for x := 0; x < demoWidth; x++ {
		if x >= 30 && x < 32 {
			continue
		}
		set(x, 0, models.SpriteGround)
		set(x, 1, models.SpriteGround)
	}

	for x := 16; x < 21; x++ {
		sprite := models.SpriteBrick
		if x%2 == 0 {
			sprite = models.SpriteQuestionBlock
		}
		set(x, 5, sprite)
	}

	for _, x := range []int{24, 44} {
		set(x, 2, models.SpritePipeLeft)
		set(x+1, 2, models.SpritePipeRight)
		set(x, 3, models.SpritePipeTopLeft)
		set(x+1, 3, models.SpritePipeTopRight)
	}

	for y := 2; y < 6; y++ {
		for x := 56 + y; x < 62; x++ {
			set(x, y, models.SpriteHardBlock)
		}
	}

	f.Entities = []Entity{
		{Kind: models.KindPlayer, Position: geom.Vec2{3, 2}},
		{Kind: models.KindGoomba, Position: geom.Vec2{12, 2}},
		{Kind: models.KindGoomba, Position: geom.Vec2{14, 2}},
		{Kind: models.KindKoopa, Flags: FlagGreen, Position: geom.Vec2{28, 2}},
		{Kind: models.KindKoopa, Position: geom.Vec2{38, 2}},
		{Kind: models.KindKoopa, Flags: FlagGreen | FlagWinged, Position: geom.Vec2{50, 4}},
	}
	return f
}
