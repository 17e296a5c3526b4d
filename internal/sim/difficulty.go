package sim

// Profile holds the per-difficulty engine parameters. Pure lookup data.
type Profile struct {
	StartingBudgetBonus    int     `json:"starting_budget_bonus"`
	HappinessDrainPerTick  float64 `json:"happiness_drain_per_tick"`
	UnemploymentMultiplier float64 `json:"unemployment_multiplier"`
	GDPMultiplier          float64 `json:"gdp_multiplier"`
}

var profiles = map[Difficulty]Profile{
	DifficultyEasy: {
		StartingBudgetBonus:    5000,
		HappinessDrainPerTick:  0.3,
		UnemploymentMultiplier: 0.8,
		GDPMultiplier:          1.2,
	},
	DifficultyMedium: {
		StartingBudgetBonus:    0,
		HappinessDrainPerTick:  0.6,
		UnemploymentMultiplier: 1.0,
		GDPMultiplier:          1.0,
	},
	DifficultyHard: {
		StartingBudgetBonus:    -3000,
		HappinessDrainPerTick:  1.0,
		UnemploymentMultiplier: 1.3,
		GDPMultiplier:          0.85,
	},
}

// ProfileFor returns the parameter profile for a difficulty. Unknown values
// fall back to medium.
func ProfileFor(d Difficulty) Profile {
	if p, ok := profiles[d]; ok {
		return p
	}
	return profiles[DifficultyMedium]
}

// Profiles returns all difficulty tiers, for the catalog endpoint.
func Profiles() map[Difficulty]Profile {
	out := make(map[Difficulty]Profile, len(profiles))
	for d, p := range profiles {
		out[d] = p
	}
	return out
}
