package geom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxOverlaps(t *testing.T) {
	unit := Box{Position: Vec2{0, 0}, Dimensions: Vec2{1, 1}}

	t.Run("overlapping boxes", func(t *testing.T) {
		other := Box{Position: Vec2{0.5, 0.5}, Dimensions: Vec2{1, 1}}
		require.True(t, unit.Overlaps(other))
		require.True(t, other.Overlaps(unit))
	})

	t.Run("disjoint boxes", func(t *testing.T) {
		other := Box{Position: Vec2{2, 2}, Dimensions: Vec2{1, 1}}
		require.False(t, unit.Overlaps(other))
		require.False(t, other.Overlaps(unit))
	})

	t.Run("vertical overlap only", func(t *testing.T) {
		other := Box{Position: Vec2{3, 0.5}, Dimensions: Vec2{1, 1}}
		require.False(t, unit.Overlaps(other))
	})

	t.Run("horizontal overlap only", func(t *testing.T) {
		other := Box{Position: Vec2{0.5, 3}, Dimensions: Vec2{1, 1}}
		require.False(t, unit.Overlaps(other))
	})

	t.Run("touching boxes do not overlap", func(t *testing.T) {
		other := Box{Position: Vec2{1, 0}, Dimensions: Vec2{1, 1}}
		require.False(t, unit.Overlaps(other))
	})

	t.Run("box above overlapping from top", func(t *testing.T) {
		other := Box{Position: Vec2{0, 0.7}, Dimensions: Vec2{1, 1}}
		require.True(t, unit.Overlaps(other))
		require.True(t, other.Overlaps(unit))
	})
}

func TestBoxPenetration(t *testing.T) {
	ground := Box{Position: Vec2{0, 0}, Dimensions: Vec2{4, 1}}

	t.Run("resting slightly inside from above", func(t *testing.T) {
		b := Box{Position: Vec2{1, 0.75}, Dimensions: Vec2{1, 1}}
		p := b.Penetration(ground)
		require.InDelta(t, 0.25, p.Y(), 1e-6)
	})

	t.Run("pushed left when entering from the left", func(t *testing.T) {
		wall := Box{Position: Vec2{2, 0}, Dimensions: Vec2{1, 4}}
		b := Box{Position: Vec2{1.2, 1}, Dimensions: Vec2{1, 1}}
		p := b.Penetration(wall)
		require.InDelta(t, -0.2, p.X(), 1e-6)
	})
}

func TestBoxQuad(t *testing.T) {
	b := Box{Position: Vec2{1, 2}, Dimensions: Vec2{3, 4}}
	require.Equal(t, MustQuad(1, 2, 4, 6), b.Quad())
}
