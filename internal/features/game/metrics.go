// Package game — metrics.go считает исходы взаимодействий для Prometheus.
package game

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// interactionsTotal — счётчик взаимодействий по исходам:
// allowed, cooldown, daily_limit, error.
var interactionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ecocoin_interactions_total",
		Help: "Количество игровых взаимодействий по исходам.",
	},
	[]string{"result"},
)

func observeInteraction(result string) {
	interactionsTotal.WithLabelValues(result).Inc()
}
