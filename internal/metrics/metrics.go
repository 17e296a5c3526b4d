// Package metrics exposes Prometheus instrumentation for the simulation
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts completed engine ticks across all sessions.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nationsim_ticks_total",
		Help: "Completed simulation ticks across all sessions.",
	})

	// GameOversTotal counts terminal conditions by reason.
	GameOversTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nationsim_game_overs_total",
		Help: "Runs ended, labeled by terminal condition.",
	}, []string{"reason"})

	// AchievementsTotal counts achievement unlocks.
	AchievementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nationsim_achievements_total",
		Help: "Achievements unlocked across all sessions.",
	})

	// PolicyTogglesTotal counts successful policy toggles by policy.
	PolicyTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nationsim_policy_toggles_total",
		Help: "Successful policy toggles, labeled by policy.",
	}, []string{"policy"})

	// ActiveSessions tracks live sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nationsim_active_sessions",
		Help: "Sessions currently held by the manager.",
	})
)
