package quadtree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	treeLabel = "tree"
)

var (
	quadtreeNodesInUse = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quadtree_nodes_in_use",
		Help: "The number of arena nodes used by the last build of a tree.",
	}, []string{treeLabel})

	quadtreeCapacityExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadtree_capacity_exceeded_total",
		Help: "The number of node allocations refused because the arena was full.",
	}, []string{treeLabel})

	quadtreeArenaGrowth = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quadtree_arena_growth_total",
		Help: "The number of arena slots added past the configured capacity.",
	}, []string{treeLabel})
)

func instrumentNodesInUse(tree string, n int) {
	quadtreeNodesInUse.
		With(prometheus.Labels{treeLabel: tree}).
		Set(float64(n))
}

func instrumentCapacityExceeded(tree string) {
	quadtreeCapacityExceeded.
		With(prometheus.Labels{treeLabel: tree}).
		Inc()
}

func instrumentArenaGrowth(tree string) {
	quadtreeArenaGrowth.
		With(prometheus.Labels{treeLabel: tree}).
		Inc()
}
