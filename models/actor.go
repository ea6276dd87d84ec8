package models

import (
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/render"
)

// Body is the physical state shared by every world object.
type Body struct {
	ID         uint32
	Position   geom.Vec2
	Velocity   geom.Vec2
	Dimensions geom.Vec2
	Alive      bool

	// CanJump is set while the body rests on solid ground.
	CanJump bool
}

func (b *Body) GetBody() *Body {
	return b
}

// Point returns the position the body is indexed at.
func (b *Body) Point() geom.Vec2 {
	return b.Position
}

func (b *Body) Box() geom.Box {
	return geom.Box{Position: b.Position, Dimensions: b.Dimensions}
}

func (b *Body) IsAlive() bool {
	return b.Alive
}

// Actor is a dynamic world object.
type Actor interface {
	GetBody() *Body
	Point() geom.Vec2
	Kind() Kind

	Draw(r render.Renderer)
	Update()
	Reverse()
	Damage()
	Kill()

	// ResolveCollisionWithActor applies the collision rule of the receiver
	// against other. It reports whether a rule fired.
	ResolveCollisionWithActor(other Actor) bool

	// ResolveCollisionWithControllable applies the collision rule of the
	// receiver against a player driven actor.
	ResolveCollisionWithControllable(c Controllable) bool
}

// Controllable is an actor driven by input.
type Controllable interface {
	Actor

	HandleInput(in Input)
	Camera() *render.Camera
}

// Input is the state of the buttons of a controller for one frame.
type Input struct {
	Left  bool `json:"left,omitempty"`
	Right bool `json:"right,omitempty"`
	Up    bool `json:"up,omitempty"`
	Down  bool `json:"down,omitempty"`
	Jump  bool `json:"jump,omitempty"`
	Run   bool `json:"run,omitempty"`
}
