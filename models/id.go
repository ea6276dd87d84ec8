package models

import "sync"

// IDGenerator hands out actor ids. Released ids are handed out again, most
// recently released first, before new ones.
type IDGenerator struct {
	mutex    sync.Mutex
	last     uint32
	released []uint32
}

// Next returns an unused id. Ids start at 1.
func (g *IDGenerator) Next() uint32 {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if n := len(g.released); n != 0 {
		id := g.released[n-1]
		g.released = g.released[:n-1]
		return id
	}

	g.last++
	return g.last
}

// Release marks id as reusable.
func (g *IDGenerator) Release(id uint32) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.released = append(g.released, id)
}

// Reset forgets every id handed out so far.
func (g *IDGenerator) Reset() {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.last = 0
	g.released = g.released[:0]
}
