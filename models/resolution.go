package models

import "math"

const (
	// StompThreshold is the fraction of an actor's height a controllable
	// has to be above for its landing to count as a stomp.
	StompThreshold = 0.65

	// ShellKillSpeed is the horizontal speed above which a green shell kills
	// the walkers it runs into.
	ShellKillSpeed = 2.5 / 60.0

	// KickSpeed is the horizontal speed of a kicked shell.
	KickSpeed = 3.0 / 60.0
)

// ActorRule resolves a collision between two overlapping, alive actors.
type ActorRule func(self, other Actor) bool

// ControllableRule resolves a collision between an overlapping, alive
// actor and a controllable.
type ControllableRule func(self Actor, c Controllable) bool

// VariantPair keys the actor rule table.
type VariantPair struct {
	Self  Variant
	Other Variant
}

// Every collision outcome is listed here. Pairs without an entry do
// nothing: controllables and inert actors never resolve collisions, the
// other side of the pair does.
var (
	controllableRules = map[Variant]ControllableRule{
		VariantWalker: walkerMeetsControllable,
		VariantShell:  shellMeetsControllable,
	}

	actorRules = map[VariantPair]ActorRule{
		{Self: VariantWalker, Other: VariantWalker}: bounce,
		{Self: VariantWalker, Other: VariantShell}:  walkerMeetsShell,
		{Self: VariantWalker, Other: VariantInert}:  bounce,
		{Self: VariantShell, Other: VariantWalker}:  shellMeetsActor,
		{Self: VariantShell, Other: VariantShell}:   shellMeetsActor,
		{Self: VariantShell, Other: VariantInert}:   shellMeetsActor,
	}
)

// ActorRuleFor returns the rule applied when an actor of variant self
// resolves a collision against an actor of variant other.
func ActorRuleFor(self, other Variant) (ActorRule, bool) {
	r, ok := actorRules[VariantPair{Self: self, Other: other}]
	return r, ok
}

// ControllableRuleFor returns the rule applied when an actor of variant
// self resolves a collision against a controllable.
func ControllableRuleFor(self Variant) (ControllableRule, bool) {
	r, ok := controllableRules[self]
	return r, ok
}

// ResolveActorCollision applies the rule of self against other when both
// are alive and their boxes overlap. It reports whether a rule fired.
func ResolveActorCollision(self, other Actor) bool {
	if !colliding(self, other) {
		return false
	}

	rule, ok := ActorRuleFor(VariantOf(self.Kind()), VariantOf(other.Kind()))
	if !ok {
		return false
	}
	return rule(self, other)
}

// ResolveControllableCollision applies the rule of self against c when both
// are alive and their boxes overlap. It reports whether a rule fired.
func ResolveControllableCollision(self Actor, c Controllable) bool {
	if !colliding(self, c) {
		return false
	}

	rule, ok := ControllableRuleFor(VariantOf(self.Kind()))
	if !ok {
		return false
	}
	return rule(self, c)
}

func colliding(a, b Actor) bool {
	ab, bb := a.GetBody(), b.GetBody()
	return ab != bb &&
		ab.Alive && bb.Alive &&
		ab.Box().Overlaps(bb.Box())
}

// stomps reports whether the controllable body c is high enough above
// self to land on it.
func stomps(c, self *Body) bool {
	return c.Position.Y() > StompThreshold*self.Dimensions.Y()+self.Position.Y()
}

func walkerMeetsControllable(self Actor, c Controllable) bool {
	if stomps(c.GetBody(), self.GetBody()) {
		kill(self)
	} else {
		damage(c)
	}
	return true
}

// walkerMeetsShell only fears fast green shells. Red shells bounce off
// here even when spinning, unlike in shellMeetsActor.
func walkerMeetsShell(self, other Actor) bool {
	if other.Kind() == KindGreenKoopa &&
		math.Abs(float64(other.GetBody().Velocity.X())) > ShellKillSpeed {
		kill(self)
		return true
	}
	return bounce(self, other)
}

func bounce(self, other Actor) bool {
	self.Reverse()
	other.Reverse()
	return true
}

type shell interface {
	Actor

	IsSpinning() bool
	IsStomped() bool
	Kick(direction float32)
	Stop()
}

func shellMeetsControllable(self Actor, c Controllable) bool {
	s, ok := self.(shell)
	if !ok {
		damage(c)
		return true
	}

	switch {
	case stomps(c.GetBody(), self.GetBody()) && s.IsSpinning():
		s.Stop()

	case stomps(c.GetBody(), self.GetBody()):
		damage(s)

	case s.IsStomped() && !s.IsSpinning():
		direction := self.GetBody().Box().Quad().Center().X() -
			c.GetBody().Box().Quad().Center().X()
		s.Kick(direction)

	default:
		damage(c)
	}
	return true
}

func shellMeetsActor(self, other Actor) bool {
	if s, ok := self.(shell); ok && s.IsSpinning() {
		kill(other)
		return true
	}
	return bounce(self, other)
}

func kill(a Actor) {
	k := a.Kind()
	a.Kill()
	instrumentKill(k)
}

func damage(a Actor) {
	k := a.Kind()
	a.Damage()
	instrumentDamage(k)
}
