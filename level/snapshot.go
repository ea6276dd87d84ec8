package level

import (
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/models"
	"github.com/pixelplumber/plumber/render"
)

// ActorState is the public state of an actor at the end of a frame.
type ActorState struct {
	ID       uint32    `json:"id"       msgpack:"id"`
	Kind     string    `json:"kind"     msgpack:"kind"`
	Position geom.Vec2 `json:"position" msgpack:"position"`
	Velocity geom.Vec2 `json:"velocity" msgpack:"velocity"`
	Alive    bool      `json:"alive"    msgpack:"alive"`
}

// PlayerState is the public state of a controllable.
type PlayerState struct {
	ActorState

	PowerUp string `json:"power_up,omitempty" msgpack:"power_up,omitempty"`
	Coins   int    `json:"coins"              msgpack:"coins"`
}

// Snapshot is an immutable copy of the level state after a frame.
type Snapshot struct {
	LevelID string        `json:"level_id" msgpack:"level_id"`
	Stats   FrameStats    `json:"stats"    msgpack:"stats"`
	Actors  []ActorState  `json:"actors"   msgpack:"actors"`
	Players []PlayerState `json:"players"  msgpack:"players"`

	// The sprites drawn by the frame, when recorded.
	Sprites []render.Sprite `json:"sprites,omitempty" msgpack:"sprites,omitempty"`
}

// Snapshot copies the current state of the level.
func (l *Level) Snapshot(stats FrameStats) Snapshot {
	s := Snapshot{
		LevelID: l.ID,
		Stats:   stats,
		Actors:  make([]ActorState, 0, len(l.entities)),
		Players: make([]PlayerState, 0, len(l.players)),
	}

	for _, e := range l.entities {
		s.Actors = append(s.Actors, actorState(e))
	}

	for _, p := range l.players {
		ps := PlayerState{ActorState: actorState(p)}
		if player, ok := p.(*models.Player); ok {
			ps.PowerUp = player.PowerUp.String()
			ps.Coins = player.Coins
		}
		s.Players = append(s.Players, ps)
	}
	return s
}

func actorState(a models.Actor) ActorState {
	b := a.GetBody()
	return ActorState{
		ID:       b.ID,
		Kind:     a.Kind().String(),
		Position: b.Position,
		Velocity: b.Velocity,
		Alive:    b.Alive,
	}
}
