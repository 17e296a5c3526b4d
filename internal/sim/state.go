// Package sim implements the nation policy simulation: a deterministic
// tick-based engine that advances national statistics one simulated year at a
// time under a set of togglable immigration policies.
package sim

import "fmt"

// Difficulty selects a parameter profile for a run. Immutable once a session
// has started.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a user-supplied string to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	case "":
		return DifficultyMedium, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// GameOverReason identifies which terminal condition ended a run.
type GameOverReason string

const (
	ReasonUnhappiness      GameOverReason = "unhappiness"
	ReasonEconomicCollapse GameOverReason = "economic_collapse"
	ReasonBankruptcy       GameOverReason = "bankruptcy"
	ReasonPopulationCrisis GameOverReason = "population_crisis"
)

// Stat bounds and starting values. All clamped fields must satisfy their
// bounds after every tick.
const (
	EpochYear = 2024

	PopulationFloor = 500
	GDPFloor        = 1000
	HappinessMax    = 100.0
	UnemploymentMax = 40.0

	BankruptcyThreshold = -15000

	StartingPopulation   = 1000
	StartingGDP          = 55000
	StartingHappiness    = 70.0
	StartingUnemployment = 5.0
	BaseStartingBudget   = 10000
)

// NationState is the complete mutable snapshot of one run. It is owned by a
// single Session and mutated in place by Step and by policy toggles.
type NationState struct {
	Year         int     `json:"year"`
	Population   int     `json:"population"`
	GDP          int     `json:"gdp"`
	Happiness    float64 `json:"happiness"`
	Unemployment float64 `json:"unemployment"`
	Budget       int     `json:"budget"`
	Score        int     `json:"score"`

	ActivePolicies map[PolicyID]bool      `json:"active_policies"`
	Achievements   map[AchievementID]bool `json:"achievements"`

	Difficulty Difficulty `json:"difficulty"`
	Started    bool       `json:"started"`
	Paused     bool       `json:"paused"`
}

// NewNationState creates the starting state for a run at the given difficulty.
func NewNationState(d Difficulty) *NationState {
	prof := ProfileFor(d)
	return &NationState{
		Year:           EpochYear,
		Population:     StartingPopulation,
		GDP:            StartingGDP,
		Happiness:      StartingHappiness,
		Unemployment:   StartingUnemployment,
		Budget:         BaseStartingBudget + prof.StartingBudgetBonus,
		ActivePolicies: make(map[PolicyID]bool),
		Achievements:   make(map[AchievementID]bool),
		Difficulty:     d,
		Started:        true,
	}
}

// Clone returns a deep copy, used to hand snapshots to the API layer without
// aliasing the live maps.
func (n *NationState) Clone() NationState {
	c := *n
	c.ActivePolicies = make(map[PolicyID]bool, len(n.ActivePolicies))
	for id, v := range n.ActivePolicies {
		c.ActivePolicies[id] = v
	}
	c.Achievements = make(map[AchievementID]bool, len(n.Achievements))
	for id, v := range n.Achievements {
		c.Achievements[id] = v
	}
	return c
}

// clampStats pins every bounded statistic back inside its range.
func (n *NationState) clampStats() {
	if n.Population < PopulationFloor {
		n.Population = PopulationFloor
	}
	if n.GDP < GDPFloor {
		n.GDP = GDPFloor
	}
	if n.Happiness < 0 {
		n.Happiness = 0
	}
	if n.Happiness > HappinessMax {
		n.Happiness = HappinessMax
	}
	if n.Unemployment < 0 {
		n.Unemployment = 0
	}
	if n.Unemployment > UnemploymentMax {
		n.Unemployment = UnemploymentMax
	}
}

// ActivePolicyList returns the active policies in catalog order, so that
// iteration order is deterministic across runs.
func (n *NationState) ActivePolicyList() []Policy {
	var out []Policy
	for _, p := range Catalog() {
		if n.ActivePolicies[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// Deltas records how much each statistic moved during one tick.
type Deltas struct {
	Population   int     `json:"population"`
	GDP          int     `json:"gdp"`
	Happiness    float64 `json:"happiness"`
	Unemployment float64 `json:"unemployment"`
	Budget       int     `json:"budget"`
	Score        int     `json:"score"`
}
