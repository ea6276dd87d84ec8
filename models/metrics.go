package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindLabel = "kind"
)

var (
	actorKills = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actor_kills_total",
		Help: "The number of actors killed by a collision.",
	}, []string{kindLabel})

	actorDamages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "actor_damages_total",
		Help: "The number of times an actor took damage from a collision.",
	}, []string{kindLabel})
)

func instrumentKill(k Kind) {
	actorKills.
		With(prometheus.Labels{kindLabel: k.String()}).
		Inc()
}

func instrumentDamage(k Kind) {
	actorDamages.
		With(prometheus.Labels{kindLabel: k.String()}).
		Inc()
}
