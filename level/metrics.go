package level

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	treeLabel = "tree"
	passLabel = "pass"

	controllablePass = "controllable"
	actorPass        = "actor"
	terrainPass      = "terrain"
)

var (
	levelFrameDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "level_frame_duration_seconds",
		Help:    "The time to run a level frame.",
		Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025},
	}, []string{treeLabel})

	levelAliveActors = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "level_alive_actors",
		Help: "The number of alive actors at the end of the last frame.",
	}, []string{treeLabel})

	levelInsertErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "level_insert_errors_total",
		Help: "The number of actors that could not be indexed.",
	}, []string{treeLabel})

	levelCollisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "level_collisions_total",
		Help: "The number of resolved collisions.",
	}, []string{treeLabel, passLabel})
)

func instrumentFrame(tree string, stats FrameStats) {
	levelFrameDuration.
		With(prometheus.Labels{treeLabel: tree}).
		Observe(stats.Duration.Seconds())

	levelAliveActors.
		With(prometheus.Labels{treeLabel: tree}).
		Set(float64(stats.Alive))

	if stats.InsertErrors != 0 {
		levelInsertErrors.
			With(prometheus.Labels{treeLabel: tree}).
			Add(float64(stats.InsertErrors))
	}

	for pass, n := range map[string]int{
		controllablePass: stats.ControllableCollisions,
		actorPass:        stats.ActorCollisions,
		terrainPass:      stats.TerrainCollisions,
	} {
		if n != 0 {
			levelCollisions.
				With(prometheus.Labels{treeLabel: tree, passLabel: pass}).
				Add(float64(n))
		}
	}
}
