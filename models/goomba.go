package models

import (
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/render"
)

const (
	GoombaSpeed = 0.5 / 60.0

	goombaAnimationCycle = 20
)

// Goomba is a hazard walking in a straight line until it bumps into
// something.
type Goomba struct {
	Body

	animator Animator
}

func NewGoomba(position geom.Vec2) *Goomba {
	return &Goomba{
		Body: Body{
			Position:   position,
			Velocity:   geom.Vec2{-GoombaSpeed, 0},
			Dimensions: geom.Vec2{1, 1},
			Alive:      true,
		},
		animator: NewAnimator(goombaAnimationCycle, SpriteGoombaLeft, SpriteGoombaRight),
	}
}

func (g *Goomba) Kind() Kind {
	return KindGoomba
}

func (g *Goomba) Draw(r render.Renderer) {
	if g.Alive {
		r.Buffer(g.Position, g.animator.Current())
	}
}

func (g *Goomba) Update() {
	g.Position = g.Position.Add(g.Velocity)
	g.animator.Update()
}

func (g *Goomba) Reverse() {
	g.Velocity[0] = -g.Velocity[0]
}

// Damage does nothing, a goomba only dies.
func (g *Goomba) Damage() {}

func (g *Goomba) Kill() {
	g.Alive = false
}

func (g *Goomba) ResolveCollisionWithActor(other Actor) bool {
	return ResolveActorCollision(g, other)
}

func (g *Goomba) ResolveCollisionWithControllable(c Controllable) bool {
	return ResolveControllableCollision(g, c)
}
