package terminal

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pixelplumber/plumber/models"
)

// DefaultHoldDuration is how long a key counts as held after it was
// pressed. Terminals report key repeats but never key releases.
const DefaultHoldDuration = time.Millisecond * 150

type button int

const (
	buttonLeft button = iota
	buttonRight
	buttonUp
	buttonDown
	buttonJump
	buttonRun
	buttonCount
)

// Keyboard turns terminal key events into the input of the first
// controllable.
type Keyboard struct {
	HoldDuration time.Duration

	mutex   sync.Mutex
	pressed [buttonCount]time.Time
	now     func() time.Time
}

func NewKeyboard() *Keyboard {
	return &Keyboard{
		HoldDuration: DefaultHoldDuration,
		now:          time.Now,
	}
}

// HandleEvent records the key presses of ev. It returns false when ev
// asks to quit.
func (k *Keyboard) HandleEvent(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return true
	}

	var b button
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		b = buttonLeft
	case tcell.KeyRight:
		b = buttonRight
	case tcell.KeyUp:
		b = buttonUp
	case tcell.KeyDown:
		b = buttonDown
	case tcell.KeyRune:
		switch key.Rune() {
		case 'q':
			return false
		case 'a', 'h':
			b = buttonLeft
		case 'd', 'l':
			b = buttonRight
		case 'w', 'k':
			b = buttonUp
		case 's', 'j':
			b = buttonDown
		case ' ', 'z':
			b = buttonJump
		case 'x':
			b = buttonRun
		default:
			return true
		}
	default:
		return true
	}

	k.mutex.Lock()
	k.pressed[b] = k.now()
	k.mutex.Unlock()
	return true
}

// Input returns the buttons held by player 0. Other players have no input.
func (k *Keyboard) Input(player int) models.Input {
	if player != 0 {
		return models.Input{}
	}

	k.mutex.Lock()
	defer k.mutex.Unlock()

	now := k.now()
	held := func(b button) bool {
		t := k.pressed[b]
		return !t.IsZero() && now.Sub(t) < k.HoldDuration
	}

	return models.Input{
		Left:  held(buttonLeft),
		Right: held(buttonRight),
		Up:    held(buttonUp),
		Down:  held(buttonDown),
		Jump:  held(buttonJump),
		Run:   held(buttonRun),
	}
}
