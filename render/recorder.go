package render

import (
	"sync"

	"github.com/pixelplumber/plumber/geom"
)

// Sprite is a buffered sprite.
type Sprite struct {
	Position geom.Vec2 `json:"position" msgpack:"p"`
	ID       SpriteID  `json:"id"       msgpack:"i"`
}

// Recorder is an in-memory Renderer. It keeps the sprites of the last
// rendered frame.
type Recorder struct {
	mutex    sync.Mutex
	buffered []Sprite
	rendered []Sprite
	frames   int
}

func (r *Recorder) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.buffered = r.buffered[:0]
}

func (r *Recorder) Buffer(position geom.Vec2, sprite SpriteID) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.buffered = append(r.buffered, Sprite{Position: position, ID: sprite})
}

func (r *Recorder) Render(camera *Camera) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.rendered = append(r.rendered[:0], r.buffered...)
	r.frames++
}

// Buffered returns a copy of the sprites buffered since the last Clear.
func (r *Recorder) Buffered() []Sprite {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return append([]Sprite(nil), r.buffered...)
}

// Rendered returns a copy of the sprites of the last rendered frame.
func (r *Recorder) Rendered() []Sprite {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return append([]Sprite(nil), r.rendered...)
}

func (r *Recorder) Frames() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.frames
}

// LineRecorder is an in-memory LineRenderer.
type LineRecorder struct {
	Lines [][2]geom.Vec2
}

func (l *LineRecorder) Buffer(a, b geom.Vec2) {
	l.Lines = append(l.Lines, [2]geom.Vec2{a, b})
}

func (l *LineRecorder) Reset() {
	l.Lines = l.Lines[:0]
}
