package render

import "github.com/pixelplumber/plumber/geom"

// SpriteID identifies a frame of a sprite sheet.
type SpriteID uint32

// Renderer is the sprite sink. Objects buffer one sprite per visible frame,
// the owner of the renderer flushes it with Render.
type Renderer interface {
	Clear()
	Buffer(position geom.Vec2, sprite SpriteID)
	Render(camera *Camera)
}

// LineRenderer is the debug line sink.
type LineRenderer interface {
	Buffer(a, b geom.Vec2)
}

// BufferQuad buffers the outline of q.
func BufferQuad(l LineRenderer, q geom.Quad) {
	for _, e := range q.Edges() {
		l.Buffer(e[0], e[1])
	}
}
