package level

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/pixelplumber/plumber/geom"
	"github.com/pixelplumber/plumber/models"
)

// groundProbe is how far below an actor solid ground is looked for.
const groundProbe = 0.01

// refreshColliders rebuilds the collider tree when tiles or colliders
// changed since the last build.
func (l *Level) refreshColliders() {
	if !l.collidersDirty {
		return
	}
	l.collidersDirty = false

	l.tileColliders = l.tileColliders[:0]
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			if l.tiles[x+y*l.width].Solid {
				l.tileColliders = append(l.tileColliders,
					models.NewCollider(models.ColliderStrength3, geom.Vec2{float32(x), float32(y)}))
			}
		}
	}

	l.colliderTree.Clear()
	l.colliderMargin = 0

	insert := func(c *models.Collider) {
		if err := l.colliderTree.Insert(c); err != nil {
			logs.Warn(errors.New("indexing collider failed").
				WithTag("type", c.Type.String()).
				WithTag("position", c.Position).
				Wrap(err))
			return
		}

		if d := max(c.Dimensions.X(), c.Dimensions.Y()); d > l.colliderMargin {
			l.colliderMargin = d
		}
	}
	for _, c := range l.tileColliders {
		insert(c)
	}
	for _, c := range l.colliders {
		insert(c)
	}
}

// nearbyColliders returns the colliders that may overlap box or the ground
// probe below it. Colliders are indexed by their bottom left corner, so
// the search region is widened by the largest collider extent.
func (l *Level) nearbyColliders(box geom.Box) []*models.Collider {
	region := box.Quad().Expand(l.colliderMargin + groundProbe)
	l.nearbyTiles = l.colliderTree.QueryInto(region, l.nearbyTiles[:0])
	return l.nearbyTiles
}

// resolveTerrain pushes a out of the solid colliders it overlaps and
// updates whether it stands on the ground.
func (l *Level) resolveTerrain(a models.Actor) int {
	b := a.GetBody()

	var n int
	for _, c := range l.nearbyColliders(b.Box()) {
		if c.ResolveEntityCollision(a) {
			n++
		}
	}

	b.CanJump = l.onGround(b)
	return n
}

// resolvePlayerTerrain lets a controllable interact with the colliders it
// overlaps. Controllables are never pushed out.
func (l *Level) resolvePlayerTerrain(p models.Controllable) int {
	b := p.GetBody()

	var n int
	for _, c := range l.nearbyColliders(b.Box()) {
		if c.ResolvePlayerCollision(p) {
			n++
		}
	}

	b.CanJump = l.onGround(b)
	return n
}

// onGround reports whether a solid collider of the last neighbourhood query
// lies right below b.
func (l *Level) onGround(b *models.Body) bool {
	probe := geom.Box{
		Position:   b.Position.Sub(geom.Vec2{0, groundProbe}),
		Dimensions: b.Dimensions,
	}
	for _, c := range l.nearbyTiles {
		if !c.Consumed && c.Type.Solid() && probe.Overlaps(c.Box()) {
			return true
		}
	}
	return false
}
