package models

import (
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/render"
)

// Koopa health levels. Damage only ever moves down this scale.
const (
	KoopaDead = iota
	KoopaCramped
	KoopaWalking
	KoopaWinged
)

const (
	Gravity = 9.8 / 60.0

	koopaAnimationCycle = 15
)

var koopaKinds = [4]Kind{
	KindRedKoopa,
	KindGreenKoopa,
	KindRedParakoopa,
	KindGreenParakoopa,
}

// Koopa is a shelled hazard. It comes in red or green, with or without
// wings. Once cramped in its shell it can be kicked and spins.
type Koopa struct {
	Body

	Green    bool
	Winged   bool
	Spinning bool
	Stomped  bool
	Health   int

	animator Animator
}

func NewKoopa(position geom.Vec2, green, winged bool) *Koopa {
	k := &Koopa{
		Body: Body{
			Position:   position,
			Velocity:   geom.Vec2{-GoombaSpeed, 0},
			Dimensions: geom.Vec2{1, 1.5},
			Alive:      true,
		},
		Green:  green,
		Winged: winged,
		Health: KoopaWalking,
	}
	if winged {
		k.Health = KoopaWinged
	}

	k.setAnimator()
	return k
}

func (k *Koopa) Kind() Kind {
	var i int
	if k.Winged {
		i += 2
	}
	if k.Green {
		i++
	}
	return koopaKinds[i]
}

// TouchingGround reports whether the koopa rested on solid ground at the
// end of the last terrain pass.
func (k *Koopa) TouchingGround() bool {
	return k.CanJump
}

func (k *Koopa) IsSpinning() bool {
	return k.Spinning
}

func (k *Koopa) IsStomped() bool {
	return k.Stomped
}

func (k *Koopa) Draw(r render.Renderer) {
	r.Buffer(k.Position, k.animator.Current())
}

func (k *Koopa) Update() {
	if !k.TouchingGround() {
		k.Velocity[1] -= Gravity
	}
	k.Position = k.Position.Add(k.Velocity)
	k.animator.Update()
}

func (k *Koopa) Reverse() {
	k.Velocity[0] = -k.Velocity[0]
}

// Damage strips exactly one health level: wings first, then the koopa is
// cramped in its shell, then it dies.
func (k *Koopa) Damage() {
	switch k.Health {
	case KoopaWinged:
		k.Winged = false
		k.Health = KoopaWalking

	case KoopaWalking:
		k.Stomped = true
		k.Spinning = false
		k.Velocity[0] = 0
		k.Health = KoopaCramped

	case KoopaCramped:
		k.Kill()
		return
	}

	k.setAnimator()
}

func (k *Koopa) Kill() {
	k.Health = KoopaDead
	k.Alive = false
	k.Spinning = false
}

// Kick sends a cramped shell spinning in the given horizontal direction.
func (k *Koopa) Kick(direction float32) {
	if !k.Stomped || !k.Alive {
		return
	}

	speed := float32(KickSpeed)
	if direction < 0 {
		speed = -speed
	}
	k.Spinning = true
	k.Velocity[0] = speed
}

// Stop halts a spinning shell.
func (k *Koopa) Stop() {
	k.Spinning = false
	k.Velocity[0] = 0
}

func (k *Koopa) ResolveCollisionWithActor(other Actor) bool {
	return ResolveActorCollision(k, other)
}

func (k *Koopa) ResolveCollisionWithControllable(c Controllable) bool {
	return ResolveControllableCollision(k, c)
}

func (k *Koopa) setAnimator() {
	var sprites [2]render.SpriteID

	switch {
	case k.Green && k.Winged:
		sprites = [2]render.SpriteID{SpriteParakoopaGreen1, SpriteParakoopaGreen2}
	case k.Green && k.Stomped:
		sprites = [2]render.SpriteID{SpriteKoopaGreenStomped1, SpriteKoopaGreenStomped2}
	case k.Green:
		sprites = [2]render.SpriteID{SpriteKoopaGreen1, SpriteKoopaGreen2}
	case k.Winged:
		sprites = [2]render.SpriteID{SpriteParakoopaRed1, SpriteParakoopaRed2}
	case k.Stomped:
		sprites = [2]render.SpriteID{SpriteKoopaRedStomped1, SpriteKoopaRedStomped2}
	default:
		sprites = [2]render.SpriteID{SpriteKoopaRed1, SpriteKoopaRed2}
	}

	k.animator = NewAnimator(koopaAnimationCycle, sprites[:]...)
}
