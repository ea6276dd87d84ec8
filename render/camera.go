package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixelplumber/plumber/geom"
)

const (
	DefaultViewWidth  = 24
	DefaultViewHeight = 13
)

// Camera is a 2D viewpoint centered on Position.
type Camera struct {
	Position geom.Vec2
	Width    float32
	Height   float32
}

func NewCamera() *Camera {
	return &Camera{
		Position: geom.Vec2{12, 6.5},
		Width:    DefaultViewWidth,
		Height:   DefaultViewHeight,
	}
}

// Follow centers the camera horizontally on target. The camera never
// scrolls left of the world origin.
func (c *Camera) Follow(target geom.Vec2) {
	x := target.X()
	if left := c.Width / 2; x < left {
		x = left
	}
	c.Position = geom.Vec2{x, c.Position.Y()}
}

// View returns the visible world rectangle.
func (c *Camera) View() geom.Quad {
	half := geom.Vec2{c.Width / 2, c.Height / 2}
	return geom.Quad{
		BottomLeft: c.Position.Sub(half),
		TopRight:   c.Position.Add(half),
	}
}

// Projection returns the orthographic projection of the view.
func (c *Camera) Projection() mgl32.Mat4 {
	v := c.View()
	return mgl32.Ortho2D(v.BottomLeft.X(), v.TopRight.X(), v.BottomLeft.Y(), v.TopRight.Y())
}

// ToView maps a world position to normalized view coordinates in [0, 1).
func (c *Camera) ToView(p geom.Vec2) geom.Vec2 {
	clip := c.Projection().Mul4x1(p.Vec4(0, 1))
	return geom.Vec2{(clip.X() + 1) / 2, (clip.Y() + 1) / 2}
}
