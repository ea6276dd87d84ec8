package geom

// Box is the hit box of a world object: the rectangle spanning Position to
// Position+Dimensions.
type Box struct {
	Position   Vec2
	Dimensions Vec2
}

func (b Box) Min() Vec2 {
	return b.Position
}

func (b Box) Max() Vec2 {
	return b.Position.Add(b.Dimensions)
}

// Overlaps is the symmetric AABB test. Boxes that only touch do not
// overlap.
func (b Box) Overlaps(o Box) bool {
	bMax, oMax := b.Max(), o.Max()

	return b.Position.X() < oMax.X() && bMax.X() > o.Position.X() &&
		b.Position.Y() < oMax.Y() && bMax.Y() > o.Position.Y()
}

// Penetration returns how far b has to move along each axis to stop
// overlapping o. The sign points away from o.
func (b Box) Penetration(o Box) Vec2 {
	bMax, oMax := b.Max(), o.Max()

	dx := oMax.X() - b.Position.X()
	if left := bMax.X() - o.Position.X(); left < dx {
		dx = -left
	}

	dy := oMax.Y() - b.Position.Y()
	if down := bMax.Y() - o.Position.Y(); down < dy {
		dy = -down
	}

	return Vec2{dx, dy}
}

func (b Box) Quad() Quad {
	return Quad{BottomLeft: b.Min(), TopRight: b.Max()}
}
