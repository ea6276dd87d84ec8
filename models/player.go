package models

import (
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/render"
)

const (
	// PlayerStep is how far one pressed direction moves a player per frame.
	PlayerStep = 1.0 / 60.0

	// PlayerRunFactor multiplies the step while the run button is held.
	PlayerRunFactor = 2

	// PlayerJumpSpeed is the upward speed given by a jump. It decays with
	// gravity until the player hovers again.
	PlayerJumpSpeed = 0.6

	// InvulnerableFrames is the number of frames a player ignores damage
	// after being hit.
	InvulnerableFrames = 60
)

type PowerUp uint8

const (
	PowerUpSmall PowerUp = iota
	PowerUpLarge
	PowerUpFire
	PowerUpInvincible
)

func (p PowerUp) String() string {
	switch p {
	case PowerUpLarge:
		return "large"
	case PowerUpFire:
		return "fire"
	case PowerUpInvincible:
		return "invincible"
	default:
		return "small"
	}
}

func (p PowerUp) sprite() render.SpriteID {
	switch p {
	case PowerUpLarge:
		return SpritePlayerLarge
	case PowerUpFire:
		return SpritePlayerFire
	case PowerUpInvincible:
		return SpritePlayerInvincible
	default:
		return SpritePlayerSmall
	}
}

// Player is the controllable actor. Other actors resolve their collisions
// against it, it never resolves any itself.
type Player struct {
	Body

	PowerUp PowerUp
	Coins   int

	invulnerable int
	camera       *render.Camera
}

func NewPlayer(position geom.Vec2) *Player {
	return &Player{
		Body: Body{
			Position:   position,
			Dimensions: geom.Vec2{1, 1},
			Alive:      true,
		},
		camera: render.NewCamera(),
	}
}

func (p *Player) Kind() Kind {
	return KindPlayer
}

func (p *Player) Camera() *render.Camera {
	return p.camera
}

func (p *Player) Draw(r render.Renderer) {
	if p.Alive {
		r.Buffer(p.Position, p.PowerUp.sprite())
	}
}

// HandleInput moves the player one step per pressed direction. Jumping
// only works from solid ground.
func (p *Player) HandleInput(in Input) {
	step := float32(PlayerStep)
	if in.Run {
		step *= PlayerRunFactor
	}

	if in.Right {
		p.Position[0] += step
	}
	if in.Left {
		p.Position[0] -= step
	}
	if in.Up {
		p.Position[1] += step
	}
	if in.Down {
		p.Position[1] -= step
	}

	if in.Jump && p.CanJump {
		p.Velocity[1] = PlayerJumpSpeed
		p.CanJump = false
	}
}

func (p *Player) Update() {
	p.Position = p.Position.Add(p.Velocity)
	if p.Velocity[1] > 0 {
		p.Velocity[1] = max(p.Velocity[1]-Gravity, 0)
	}
	if p.invulnerable > 0 {
		p.invulnerable--
	}
	p.camera.Follow(p.Position)
}

// Reverse does nothing, players are not bounced by other actors.
func (p *Player) Reverse() {}

// Damage downgrades the power-up state. A small player dies.
func (p *Player) Damage() {
	if !p.Alive || p.invulnerable > 0 || p.PowerUp == PowerUpInvincible {
		return
	}

	switch p.PowerUp {
	case PowerUpFire:
		p.PowerUp = PowerUpLarge
	case PowerUpLarge:
		p.PowerUp = PowerUpSmall
	default:
		p.Kill()
		return
	}
	p.invulnerable = InvulnerableFrames
}

func (p *Player) Kill() {
	p.Alive = false
}

// Invulnerable reports whether the player is in its grace period after a
// hit.
func (p *Player) Invulnerable() bool {
	return p.invulnerable > 0
}

// CollectCoin is called by coin colliders.
func (p *Player) CollectCoin() {
	p.Coins++
}

func (p *Player) ResolveCollisionWithActor(other Actor) bool {
	return ResolveActorCollision(p, other)
}

func (p *Player) ResolveCollisionWithControllable(c Controllable) bool {
	return ResolveControllableCollision(p, c)
}
