package models

import "github.com/pixelplumber/plumber/render"

// Animator cycles through sprites, showing each for a fixed number of
// frames.
type Animator struct {
	sprites []render.SpriteID
	cycle   int
	frames  int
	current int
}

func NewAnimator(cycle int, sprites ...render.SpriteID) Animator {
	return Animator{
		sprites: sprites,
		cycle:   cycle,
	}
}

// Update advances the animation by one frame.
func (a *Animator) Update() {
	a.frames++
	if a.frames > a.cycle {
		a.frames = 0
		a.current++
	}

	if a.current >= len(a.sprites) {
		a.current = 0
	}
}

func (a *Animator) Reset() {
	a.frames = 0
	a.current = 0
}

func (a *Animator) Current() render.SpriteID {
	if len(a.sprites) == 0 {
		return SpriteNone
	}
	return a.sprites[a.current]
}
