package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forum_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_logins_total",
			Help: "Total number of login attempts by status.",
		},
		[]string{"status"},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_mutations_total",
			Help: "Total number of successful create, update and delete operations by entity.",
		},
		[]string{"entity", "action"},
	)
)
