package terminal

import (
	"context"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/gdamore/tcell/v2"
)

// Terminal owns a screen with the renderer drawing on it and the keyboard
// reading from it.
type Terminal struct {
	Screen   tcell.Screen
	Renderer *Renderer
	Keyboard *Keyboard
}

// Open initializes the terminal screen.
func Open() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.New("creating terminal screen failed").Wrap(err)
	}
	return New(screen)
}

// New initializes screen.
func New(screen tcell.Screen) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, errors.New("initializing terminal screen failed").Wrap(err)
	}

	screen.HideCursor()
	screen.Clear()

	return &Terminal{
		Screen:   screen,
		Renderer: NewRenderer(screen),
		Keyboard: NewKeyboard(),
	}, nil
}

// Run reads the screen events until ctx is done or the player quits. quit
// is called when the player quits.
func (t *Terminal) Run(ctx context.Context, quit func()) {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.Screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}

			if _, resized := ev.(*tcell.EventResize); resized {
				t.Screen.Sync()
				continue
			}

			if !t.Keyboard.HandleEvent(ev) {
				logs.Info("terminal quit")
				if quit != nil {
					quit()
				}
				return
			}
		}
	}
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.Screen.Fini()
}
