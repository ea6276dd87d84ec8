package models

import (
	"github.com/pixelplumber/plumber/geom"
)

type ColliderType uint8

const (
	ColliderNone ColliderType = iota
	// Indestructible tiles.
	ColliderStrength3
	// Hard destructible tiles like stones and question blocks.
	ColliderStrength2
	// Destructible tiles like bricks.
	ColliderStrength1
	ColliderCoin
	ColliderPipe
)

func (t ColliderType) String() string {
	switch t {
	case ColliderStrength3:
		return "strength_3"
	case ColliderStrength2:
		return "strength_2"
	case ColliderStrength1:
		return "strength_1"
	case ColliderCoin:
		return "coin"
	case ColliderPipe:
		return "pipe"
	default:
		return "none"
	}
}

// Solid reports whether actors are pushed out of colliders of this type.
func (t ColliderType) Solid() bool {
	switch t {
	case ColliderStrength3, ColliderStrength2, ColliderStrength1, ColliderPipe:
		return true
	default:
		return false
	}
}

// Collider is a static piece of terrain.
type Collider struct {
	Type       ColliderType
	Position   geom.Vec2
	Dimensions geom.Vec2

	// Consumed colliders, like collected coins, no longer interact.
	Consumed bool
}

func NewCollider(t ColliderType, position geom.Vec2) *Collider {
	return &Collider{
		Type:       t,
		Position:   position,
		Dimensions: geom.Vec2{1, 1},
	}
}

func (c *Collider) Point() geom.Vec2 {
	return c.Position
}

func (c *Collider) Box() geom.Box {
	return geom.Box{Position: c.Position, Dimensions: c.Dimensions}
}

// ResolveEntityCollision pushes a out of a solid collider along the axis
// of least penetration. Landing on top stops the fall, a side hit turns
// the actor around.
func (c *Collider) ResolveEntityCollision(a Actor) bool {
	b := a.GetBody()
	if c.Consumed || !c.Type.Solid() || !b.Alive || !b.Box().Overlaps(c.Box()) {
		return false
	}

	pen := b.Box().Penetration(c.Box())
	if abs(pen.X()) < abs(pen.Y()) {
		b.Position[0] += pen.X()
		if (pen.X() > 0) == (b.Velocity.X() < 0) {
			a.Reverse()
		}
		return true
	}

	b.Position[1] += pen.Y()
	switch {
	case pen.Y() > 0 && b.Velocity.Y() < 0:
		b.Velocity[1] = 0
	case pen.Y() < 0 && b.Velocity.Y() > 0:
		b.Velocity[1] = 0
	}
	return true
}

type coinCollector interface {
	CollectCoin()
}

// ResolvePlayerCollision lets a controllable collect coins. Controllables
// are never pushed out of terrain.
func (c *Collider) ResolvePlayerCollision(p Controllable) bool {
	b := p.GetBody()
	if c.Consumed || c.Type != ColliderCoin || !b.Alive || !b.Box().Overlaps(c.Box()) {
		return false
	}

	collector, ok := p.(coinCollector)
	if !ok {
		return false
	}

	collector.CollectCoin()
	c.Consumed = true
	return true
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
