package geom

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	ErrTypeInvalidQuad = "invalid_quad"
)

// Vec2 is the 2D vector used for world positions, velocities and extents.
type Vec2 = mgl32.Vec2

// Quad is an axis-aligned rectangle. BottomLeft is never greater than
// TopRight on either axis.
type Quad struct {
	BottomLeft Vec2
	TopRight   Vec2
}

// NewQuad returns the quad spanning bottomLeft to topRight.
func NewQuad(bottomLeft, topRight Vec2) (Quad, error) {
	if bottomLeft.X() > topRight.X() || bottomLeft.Y() > topRight.Y() {
		return Quad{}, errors.New("bottom left corner is above or right of top right corner").
			WithType(ErrTypeInvalidQuad).
			WithTag("bottom_left", bottomLeft).
			WithTag("top_right", topRight)
	}

	return Quad{BottomLeft: bottomLeft, TopRight: topRight}, nil
}

// MustQuad is like NewQuad but panics on an invalid pair of corners. Meant
// for constants and tests.
func MustQuad(x0, y0, x1, y1 float32) Quad {
	q, err := NewQuad(Vec2{x0, y0}, Vec2{x1, y1})
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quad) Width() float32 {
	return q.TopRight.X() - q.BottomLeft.X()
}

func (q Quad) Height() float32 {
	return q.TopRight.Y() - q.BottomLeft.Y()
}

func (q Quad) Center() Vec2 {
	return q.BottomLeft.Add(q.TopRight).Mul(0.5)
}

func (q Quad) TopLeft() Vec2 {
	return Vec2{q.BottomLeft.X(), q.TopRight.Y()}
}

func (q Quad) BottomRight() Vec2 {
	return Vec2{q.TopRight.X(), q.BottomLeft.Y()}
}

// ContainsPoint reports whether p lies in [BottomLeft, TopRight). Points on
// the top or right edge belong to the neighbouring cell.
func (q Quad) ContainsPoint(p Vec2) bool {
	return p.X() >= q.BottomLeft.X() && p.X() < q.TopRight.X() &&
		p.Y() >= q.BottomLeft.Y() && p.Y() < q.TopRight.Y()
}

// Intersects reports whether the closed rectangles q and o share at least
// one point. Touching edges count as intersecting.
func (q Quad) Intersects(o Quad) bool {
	return !(o.BottomLeft.X() > q.TopRight.X() ||
		o.TopRight.X() < q.BottomLeft.X() ||
		o.BottomLeft.Y() > q.TopRight.Y() ||
		o.TopRight.Y() < q.BottomLeft.Y())
}

func (q Quad) ContainsQuad(o Quad) bool {
	return o.BottomLeft.X() >= q.BottomLeft.X() && o.TopRight.X() <= q.TopRight.X() &&
		o.BottomLeft.Y() >= q.BottomLeft.Y() && o.TopRight.Y() <= q.TopRight.Y()
}

// Quarter splits q at its center. The result is ordered top-left,
// top-right, bottom-left, bottom-right.
func (q Quad) Quarter() [4]Quad {
	c := q.Center()
	bl, tr := q.BottomLeft, q.TopRight

	return [4]Quad{
		{BottomLeft: Vec2{bl.X(), c.Y()}, TopRight: Vec2{c.X(), tr.Y()}},
		{BottomLeft: c, TopRight: tr},
		{BottomLeft: bl, TopRight: c},
		{BottomLeft: Vec2{c.X(), bl.Y()}, TopRight: Vec2{tr.X(), c.Y()}},
	}
}

// Expand grows q by margin on every side.
func (q Quad) Expand(margin float32) Quad {
	m := Vec2{margin, margin}
	return Quad{
		BottomLeft: q.BottomLeft.Sub(m),
		TopRight:   q.TopRight.Add(m),
	}
}

// Edges returns the four sides of q as point pairs, counter clockwise from
// the bottom edge.
func (q Quad) Edges() [4][2]Vec2 {
	bl, br, tr, tl := q.BottomLeft, q.BottomRight(), q.TopRight, q.TopLeft()
	return [4][2]Vec2{
		{bl, br},
		{br, tr},
		{tr, tl},
		{tl, bl},
	}
}
