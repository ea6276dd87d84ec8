// Package quadtree implements a point quadtree whose nodes live in a
// pre-sized arena. Nodes reference each other by arena slot, so clearing
// the tree is a cursor reset and a new root, whatever the tree held.
package quadtree

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/pixelplumber/plumber/geom"
)

const (
	// Capacity is the number of items a node stores before it subdivides.
	Capacity = 4

	DefaultMaxNodes = 1000

	ErrTypeCapacityExceeded = "quadtree_capacity_exceeded"
	ErrTypeStaleNodeRef     = "quadtree_stale_node_ref"
)

// Item is anything indexed by a single point.
type Item interface {
	Point() geom.Vec2
}

// Config configures a tree.
type Config struct {
	// The number of arena slots allocated up front.
	MaxNodes int

	// When set, a full arena is extended instead of failing the insert.
	Grow bool

	// Name labels the tree metrics.
	Name string
}

type node[T Item] struct {
	bounds   geom.Quad
	items    [Capacity]T
	count    int
	divided  bool
	children [4]int
}

// NodeRef is a handle to a node. Handles are invalidated by Clear.
type NodeRef struct {
	index      int
	generation uint64
}

// NodeView is a read-only copy of a node.
type NodeView[T Item] struct {
	Bounds   geom.Quad
	Items    []T
	Divided  bool
	Children [4]NodeRef
}

// Tree is a quadtree over T. It holds non-owning references to the items
// and is not safe for concurrent use.
type Tree[T Item] struct {
	bounds     geom.Quad
	nodes      []node[T]
	cursor     int
	generation uint64
	size       int
	grow       bool
	name       string
}

// New returns a tree covering bounds with its root already created.
func New[T Item](bounds geom.Quad, conf Config) *Tree[T] {
	if conf.MaxNodes <= 0 {
		conf.MaxNodes = DefaultMaxNodes
	}
	if conf.Name == "" {
		conf.Name = "default"
	}

	t := &Tree[T]{
		bounds: bounds,
		nodes:  make([]node[T], conf.MaxNodes),
		grow:   conf.Grow,
		name:   conf.Name,
	}
	t.reset()
	return t
}

// Bounds returns the region covered by the root.
func (t *Tree[T]) Bounds() geom.Quad {
	return t.bounds
}

// Len returns the number of stored items.
func (t *Tree[T]) Len() int {
	return t.size
}

// NodeCount returns the number of nodes in use.
func (t *Tree[T]) NodeCount() int {
	return t.cursor
}

// Create writes a new node covering bounds at the next free arena slot.
// It returns an ErrTypeCapacityExceeded error when the arena is full and
// growing is disabled.
func (t *Tree[T]) Create(bounds geom.Quad) (NodeRef, error) {
	i, err := t.create(bounds)
	if err != nil {
		return NodeRef{}, err
	}
	return NodeRef{index: i, generation: t.generation}, nil
}

// Insert stores item in every node whose bounds contain its position and
// that still has room. Items outside the tree bounds are ignored.
func (t *Tree[T]) Insert(item T) error {
	return t.insert(0, item)
}

// Query returns the items whose position lies in region.
func (t *Tree[T]) Query(region geom.Quad) []T {
	return t.query(0, region, nil)
}

// QueryInto is like Query but appends to dst.
func (t *Tree[T]) QueryInto(region geom.Quad, dst []T) []T {
	return t.query(0, region, dst)
}

// Clear discards every node and recreates an empty root.
func (t *Tree[T]) Clear() {
	instrumentNodesInUse(t.name, t.cursor)
	t.reset()
}

// Root returns a handle to the root node.
func (t *Tree[T]) Root() NodeRef {
	return NodeRef{index: 0, generation: t.generation}
}

// Node returns a copy of the node referenced by ref.
func (t *Tree[T]) Node(ref NodeRef) (NodeView[T], error) {
	if ref.generation != t.generation || ref.index < 0 || ref.index >= t.cursor {
		return NodeView[T]{}, errors.New("node reference is no longer valid").
			WithType(ErrTypeStaleNodeRef).
			WithTag("index", ref.index).
			WithTag("generation", ref.generation).
			WithTag("tree_generation", t.generation)
	}

	n := &t.nodes[ref.index]
	view := NodeView[T]{
		Bounds:  n.bounds,
		Items:   append([]T(nil), n.items[:n.count]...),
		Divided: n.divided,
	}
	if n.divided {
		for i, c := range n.children {
			view.Children[i] = NodeRef{index: c, generation: t.generation}
		}
	}
	return view, nil
}

func (t *Tree[T]) reset() {
	t.cursor = 0
	t.size = 0
	t.generation++

	// There is always at least one slot.
	t.create(t.bounds)
}

func (t *Tree[T]) create(bounds geom.Quad) (int, error) {
	if t.cursor == len(t.nodes) {
		if !t.grow {
			instrumentCapacityExceeded(t.name)
			return -1, errors.New("node arena is full").
				WithType(ErrTypeCapacityExceeded).
				WithTag("tree", t.name).
				WithTag("max_nodes", len(t.nodes))
		}

		t.nodes = append(t.nodes, node[T]{})
		instrumentArenaGrowth(t.name)
	}

	i := t.cursor
	t.nodes[i] = node[T]{bounds: bounds}
	t.cursor++
	return i, nil
}

func (t *Tree[T]) insert(i int, item T) error {
	n := &t.nodes[i]
	if !n.bounds.ContainsPoint(item.Point()) {
		return nil
	}

	if n.count < Capacity {
		n.items[n.count] = item
		n.count++
		t.size++
		return nil
	}

	if !n.divided {
		if err := t.subdivide(i); err != nil {
			return err
		}
	}

	// Every child checks containment on its own, only one accepts.
	for _, c := range t.nodes[i].children {
		if err := t.insert(c, item); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree[T]) subdivide(i int) error {
	if !t.grow && t.cursor+4 > len(t.nodes) {
		instrumentCapacityExceeded(t.name)
		return errors.New("node arena has no room for a subdivision").
			WithType(ErrTypeCapacityExceeded).
			WithTag("tree", t.name).
			WithTag("max_nodes", len(t.nodes)).
			WithTag("nodes_in_use", t.cursor)
	}

	var children [4]int
	for q, bounds := range t.nodes[i].bounds.Quarter() {
		c, err := t.create(bounds)
		if err != nil {
			return err
		}
		children[q] = c
	}

	// The arena may have moved while growing.
	n := &t.nodes[i]
	n.children = children
	n.divided = true
	return nil
}

func (t *Tree[T]) query(i int, region geom.Quad, dst []T) []T {
	n := &t.nodes[i]
	if !n.bounds.Intersects(region) {
		return dst
	}

	for k := 0; k < n.count; k++ {
		if region.ContainsPoint(n.items[k].Point()) {
			dst = append(dst, n.items[k])
		}
	}

	if n.divided {
		for _, c := range n.children {
			dst = t.query(c, region, dst)
		}
	}
	return dst
}
