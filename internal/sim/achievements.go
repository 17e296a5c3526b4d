package sim

import "github.com/openborders/nationsim/internal/metrics"

// AchievementID identifies a milestone.
type AchievementID string

// Achievement pairs a milestone predicate with its identifier and display
// label. Predicates are evaluated against the post-tick state; a transient
// spike is enough to unlock, and unlocks are never revoked.
type Achievement struct {
	ID       AchievementID
	Label    string
	Unlocked func(n *NationState) bool
}

var achievements = []Achievement{
	{"pop_5000", "Growing Nation", func(n *NationState) bool { return n.Population >= 5000 }},
	{"pop_10000", "Major Power", func(n *NationState) bool { return n.Population >= 10000 }},
	{"gdp_25000", "Economic Engine", func(n *NationState) bool { return n.GDP >= 25000 }},
	{"gdp_50000", "Economic Powerhouse", func(n *NationState) bool { return n.GDP >= 50000 }},
	{"utopia", "Utopia", func(n *NationState) bool { return n.Happiness >= 90 }},
	{"full_employment", "Full Employment", func(n *NationState) bool { return n.Unemployment <= 2 }},
	{"seasoned_leader", "Seasoned Leader", func(n *NationState) bool { return n.Year >= EpochYear+4 }},
	{"score_10000", "High Scorer", func(n *NationState) bool { return n.Score >= 10000 }},
}

// AchievementList returns all achievements in declaration order.
func AchievementList() []Achievement {
	out := make([]Achievement, len(achievements))
	copy(out, achievements)
	return out
}

// unlockAchievements evaluates every not-yet-unlocked predicate and records
// first satisfactions. Idempotent: an unlocked achievement never re-fires.
func unlockAchievements(n *NationState) []Event {
	var events []Event
	for _, a := range achievements {
		if n.Achievements[a.ID] {
			continue
		}
		if a.Unlocked(n) {
			n.Achievements[a.ID] = true
			metrics.AchievementsTotal.Inc()
			events = append(events, achievementEvent(n.Year, a))
		}
	}
	return events
}
