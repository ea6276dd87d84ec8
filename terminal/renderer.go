// Package terminal draws levels in a text terminal and reads the player
// input from its keyboard.
package terminal

import (
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/gdamore/tcell/v2"
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/render"
)

// Glyph is the cell a sprite is drawn with.
type Glyph struct {
	Rune  rune
	Style tcell.Style
}

// MissingGlyph is drawn for sprites without a glyph.
var MissingGlyph = Glyph{Rune: '?', Style: tcell.StyleDefault.Foreground(tcell.ColorFuchsia)}

func glyph(r rune, c tcell.Color) Glyph {
	return Glyph{Rune: r, Style: tcell.StyleDefault.Foreground(c)}
}

// DefaultGlyphs returns the glyphs of the sprite sheet.
func DefaultGlyphs() map[render.SpriteID]Glyph {
	return map[render.SpriteID]Glyph{
		models.SpriteGround:             glyph('▓', tcell.ColorMaroon),
		models.SpriteBrick:              glyph('▒', tcell.ColorOrangeRed),
		models.SpriteQuestionBlock:      glyph('?', tcell.ColorYellow),
		models.SpriteHardBlock:          glyph('█', tcell.ColorSaddleBrown),
		models.SpriteCoin:               glyph('o', tcell.ColorGold),
		models.SpritePipeTopLeft:        glyph('╔', tcell.ColorGreen),
		models.SpritePipeTopRight:       glyph('╗', tcell.ColorGreen),
		models.SpritePipeLeft:           glyph('║', tcell.ColorGreen),
		models.SpritePipeRight:          glyph('║', tcell.ColorGreen),
		models.SpriteGoombaLeft:         glyph('g', tcell.ColorSandyBrown),
		models.SpriteGoombaRight:        glyph('g', tcell.ColorSandyBrown),
		models.SpriteKoopaGreen1:        glyph('k', tcell.ColorLime),
		models.SpriteKoopaGreen2:        glyph('k', tcell.ColorLime),
		models.SpriteKoopaGreenStomped1: glyph('@', tcell.ColorLime),
		models.SpriteKoopaGreenStomped2: glyph('@', tcell.ColorLime),
		models.SpriteKoopaRed1:          glyph('k', tcell.ColorRed),
		models.SpriteKoopaRed2:          glyph('k', tcell.ColorRed),
		models.SpriteKoopaRedStomped1:   glyph('@', tcell.ColorRed),
		models.SpriteKoopaRedStomped2:   glyph('@', tcell.ColorRed),
		models.SpriteParakoopaGreen1:    glyph('K', tcell.ColorLime),
		models.SpriteParakoopaGreen2:    glyph('K', tcell.ColorLime),
		models.SpriteParakoopaRed1:      glyph('K', tcell.ColorRed),
		models.SpriteParakoopaRed2:      glyph('K', tcell.ColorRed),
		models.SpritePlayerSmall:        glyph('m', tcell.ColorWhite),
		models.SpritePlayerLarge:        glyph('M', tcell.ColorWhite),
		models.SpritePlayerFire:         glyph('M', tcell.ColorOrange),
		models.SpritePlayerInvincible:   glyph('M', tcell.ColorAqua),
	}
}

// Renderer draws the buffered sprites of a frame as glyphs on a screen.
type Renderer struct {
	Screen tcell.Screen
	Glyphs map[render.SpriteID]Glyph

	mutex    sync.Mutex
	buffered []render.Sprite
	missing  map[render.SpriteID]struct{}
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		Screen:  screen,
		Glyphs:  DefaultGlyphs(),
		missing: make(map[render.SpriteID]struct{}),
	}
}

func (r *Renderer) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.buffered = r.buffered[:0]
}

func (r *Renderer) Buffer(position geom.Vec2, sprite render.SpriteID) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.buffered = append(r.buffered, render.Sprite{Position: position, ID: sprite})
}

// Render draws the buffered sprites seen by camera. A nil camera draws the
// default view.
func (r *Renderer) Render(camera *render.Camera) {
	if camera == nil {
		camera = render.NewCamera()
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.Screen.Clear()
	width, height := r.Screen.Size()

	for _, s := range r.buffered {
		x, y, ok := cell(camera, s.Position, width, height)
		if !ok {
			continue
		}

		g := r.glyph(s.ID)
		r.Screen.SetContent(x, y, g.Rune, nil, g.Style)
	}

	r.Screen.Show()
}

func (r *Renderer) glyph(id render.SpriteID) Glyph {
	if g, ok := r.Glyphs[id]; ok {
		return g
	}

	if _, warned := r.missing[id]; !warned {
		r.missing[id] = struct{}{}
		logs.Warn(errors.New("sprite has no glyph").
			WithTag("sprite_id", id).
			WithTag("sprite", models.SpriteName(id)))
	}
	return MissingGlyph
}

// cell maps a world position to a screen cell. Screen rows grow downward
// while world y grows upward.
func cell(camera *render.Camera, p geom.Vec2, width, height int) (int, int, bool) {
	v := camera.ToView(p)
	if v.X() < 0 || v.X() >= 1 || v.Y() < 0 || v.Y() >= 1 {
		return 0, 0, false
	}

	x := int(v.X() * float32(width))
	y := height - 1 - int(v.Y()*float32(height))
	return x, y, x >= 0 && x < width && y >= 0 && y < height
}
