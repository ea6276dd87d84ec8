package quadtree

import (
	"github.com/pixelplumber/plumber/render"
)

// DebugInfo describes the shape of a tree.
type DebugInfo struct {
	Name       string `json:"name"`
	Nodes      int    `json:"nodes"`
	MaxNodes   int    `json:"max_nodes"`
	Items      int    `json:"items"`
	Depth      int    `json:"depth"`
	Generation uint64 `json:"generation"`

	// Occupancy is the number of stored items per depth, root first.
	Occupancy []int `json:"occupancy"`
}

func (t *Tree[T]) DebugInfo() DebugInfo {
	info := DebugInfo{
		Name:       t.name,
		Nodes:      t.cursor,
		MaxNodes:   len(t.nodes),
		Items:      t.size,
		Generation: t.generation,
	}
	t.walk(0, 0, func(i, depth int) {
		if depth >= len(info.Occupancy) {
			info.Occupancy = append(info.Occupancy, 0)
		}
		info.Occupancy[depth] += t.nodes[i].count
		if depth+1 > info.Depth {
			info.Depth = depth + 1
		}
	})
	return info
}

// Draw buffers the outline of every node.
func (t *Tree[T]) Draw(lines render.LineRenderer) {
	t.walk(0, 0, func(i, depth int) {
		render.BufferQuad(lines, t.nodes[i].bounds)
	})
}

func (t *Tree[T]) walk(i, depth int, visit func(i, depth int)) {
	visit(i, depth)

	n := &t.nodes[i]
	if !n.divided {
		return
	}
	for _, c := range n.children {
		t.walk(c, depth+1, visit)
	}
}
