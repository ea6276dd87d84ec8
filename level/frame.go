package level

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/pixelplumber/plumber/featureflag"
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/render"
)

// NeighborhoodMargin is the distance around an actor's box within which
// other actors are checked for collisions.
const NeighborhoodMargin = 1

// FrameStats summarizes a frame.
type FrameStats struct {
	Frame                  uint64        `json:"frame"                   msgpack:"frame"`
	Alive                  int           `json:"alive"                   msgpack:"alive"`
	Indexed                int           `json:"indexed"                 msgpack:"indexed"`
	InsertErrors           int           `json:"insert_errors"           msgpack:"insert_errors"`
	ControllableCollisions int           `json:"controllable_collisions" msgpack:"controllable_collisions"`
	ActorCollisions        int           `json:"actor_collisions"        msgpack:"actor_collisions"`
	TerrainCollisions      int           `json:"terrain_collisions"      msgpack:"terrain_collisions"`
	Duration               time.Duration `json:"duration"                msgpack:"duration"`
}

// Frame runs one frame. The entity tree is rebuilt from the positions at
// the start of the frame and every query of the frame runs against it.
// Actors only advance their own state when simulating is set, controllables
// always do.
func (l *Level) Frame(r render.Renderer, simulating bool) FrameStats {
	start := time.Now()
	stats := FrameStats{Frame: l.frame}

	l.rebuildEntityTree(&stats)
	l.refreshColliders()
	terrain := !l.conf.Flags.IsSet(featureflag.FlagDisableTerrainCollisions)

	r.Clear()
	l.drawTiles(r)

	for i, p := range l.players {
		p.Draw(r)
		if !p.GetBody().Alive {
			continue
		}

		p.HandleInput(l.inputFor(i))
		p.Update()

		if terrain {
			stats.TerrainCollisions += l.resolvePlayerTerrain(p)
		}
	}

	for _, e := range l.entities {
		if !e.GetBody().Alive {
			continue
		}
		e.Draw(r)

		for _, p := range l.players {
			if e.ResolveCollisionWithControllable(p) {
				stats.ControllableCollisions++
			}
		}

		if simulating {
			e.Update()
			if terrain {
				stats.TerrainCollisions += l.resolveTerrain(e)
			}
		}
	}

	if l.conf.Flags.IsSet(featureflag.FlagResolveAllActorPairs) {
		for _, e := range l.entities {
			stats.ActorCollisions += l.resolveNeighbors(e, true)
		}
	} else if len(l.entities) != 0 {
		stats.ActorCollisions += l.resolveNeighbors(l.entities[0], false)
	}

	for _, e := range l.entities {
		if e.GetBody().Alive {
			stats.Alive++
		}
	}

	l.drawDebug()

	l.frame++
	stats.Duration = time.Since(start)
	instrumentFrame(l.conf.EntityTree.Name, stats)
	return stats
}

func (l *Level) rebuildEntityTree(stats *FrameStats) {
	l.entityTree.Clear()

	for _, e := range l.entities {
		b := e.GetBody()
		if !b.Alive {
			continue
		}

		if err := l.entityTree.Insert(e); err != nil {
			stats.InsertErrors++
			logs.Warn(errors.New("indexing actor failed").
				WithTag("actor_id", b.ID).
				WithTag("kind", e.Kind().String()).
				WithTag("frame", l.frame).
				Wrap(err))
		}
	}
	stats.Indexed = l.entityTree.Len()
}

// resolveNeighbors lets every actor found around a resolve its collision
// with a. When pairwise is set, only actors with a greater id resolve so
// that each pair is resolved once per frame.
func (l *Level) resolveNeighbors(a models.Actor, pairwise bool) int {
	self := a.GetBody()
	if !self.Alive {
		return 0
	}

	region := self.Box().Quad().Expand(NeighborhoodMargin)
	l.neighbors = l.entityTree.QueryInto(region, l.neighbors[:0])

	var n int
	for _, found := range l.neighbors {
		b := found.GetBody()
		if b == self || !b.Alive || (pairwise && b.ID <= self.ID) {
			continue
		}

		if found.ResolveCollisionWithActor(a) {
			n++
		}
	}
	return n
}

func (l *Level) inputFor(player int) models.Input {
	if l.input == nil {
		return models.Input{}
	}
	return l.input.Input(player)
}

func (l *Level) drawTiles(r render.Renderer) {
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			if t := l.tiles[x+y*l.width]; t.Sprite != models.SpriteNone {
				r.Buffer(geom.Vec2{float32(x), float32(y)}, t.Sprite)
			}
		}
	}
}

func (l *Level) drawDebug() {
	if l.conf.Lines == nil {
		return
	}

	l.conf.Flags.IfSet(featureflag.FlagDrawQuadtree, func() {
		l.entityTree.Draw(l.conf.Lines)
	})

	l.conf.Flags.IfSet(featureflag.FlagDrawColliders, func() {
		for _, c := range l.tileColliders {
			render.BufferQuad(l.conf.Lines, c.Box().Quad())
		}
		for _, c := range l.colliders {
			if !c.Consumed {
				render.BufferQuad(l.conf.Lines, c.Box().Quad())
			}
		}
		for _, e := range l.entities {
			if e.GetBody().Alive {
				render.BufferQuad(l.conf.Lines, e.GetBody().Box().Quad())
			}
		}
	})
}
