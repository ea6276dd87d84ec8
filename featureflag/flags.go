package featureflag

type Flag string

const (
	// Buffers the outline of every entity tree node on the line renderer.
	FlagDrawQuadtree Flag = "DRAW_QUADTREE"

	// Buffers the collider boxes on the line renderer.
	FlagDrawColliders Flag = "DRAW_COLLIDERS"

	// Runs the neighbourhood query around every actor instead of the first
	// one only.
	FlagResolveAllActorPairs Flag = "RESOLVE_ALL_ACTOR_PAIRS"

	FlagDisableTerrainCollisions Flag = "DISABLE_TERRAIN_COLLISIONS"

	// Extends the entity tree arena instead of dropping inserts once full.
	FlagGrowQuadtreeArena Flag = "GROW_QUADTREE_ARENA"
)
