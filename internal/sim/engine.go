package sim

import "github.com/openborders/nationsim/internal/metrics"

// Rand is the random source injected into Step. *math/rand.Rand satisfies it;
// tests substitute fixed sequences so ticks are reproducible.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Engine tuning constants. Percentage-like stats are float64; population,
// GDP, budget and score are ints, with fractional contributions truncated at
// the point of application rather than accumulated across ticks.
const (
	gdpNoiseRange     = 400 // uniform perturbation in [-400, +400]
	gdpGrowthDivisor  = 25.0
	prosperityGDP     = 60000
	prosperityBonus   = 0.5
	unemploymentPain  = 10.0
	unemploymentSting = 1.0

	immigrantUnemploymentDivisor = 40.0

	taxDivisor            = 12
	tourismDivisor        = 50
	infrastructureDivisor = 20
	policyUpkeep          = 150
	benefitsOutlayDivisor = 400.0

	eventProbability = 0.20
)

// Step advances the nation by one simulated year and returns the events the
// presentation layer should render. It runs to full completion or not at all:
// callers must not observe intermediate state (the Session serializes access).
//
// RNG draws happen in a fixed order (GDP noise, event trigger, then event
// selection when triggered) so a fixed seed replays a run exactly.
func Step(n *NationState, rng Rand) []Event {
	if !n.Started || n.Paused {
		return nil
	}

	prevPop := n.Population
	prevGDP := n.GDP
	prevHappiness := n.Happiness
	prevUnemployment := n.Unemployment
	prevBudget := n.Budget
	prevScore := n.Score

	n.Year++

	// Accumulate base policy effects.
	totalImmigrants := 0
	gdpGain := 0
	happinessDelta := 0.0
	unempPolicyDelta := 0.0
	activeCount := 0
	for _, p := range Catalog() {
		if !n.ActivePolicies[p.ID] {
			continue
		}
		activeCount++
		if p.Modifier {
			continue
		}
		totalImmigrants += p.ImmigrantYield
		gdpGain += p.GDPDelta
		happinessDelta += p.HappinessDelta
		unempPolicyDelta += p.UnemploymentDelta
	}

	// Strict-control dampens the accumulated totals, then adds its own
	// happiness bonus and a natural decline. Ordering matters: applying it as
	// a plain additive term changes the balance.
	strictActive := n.ActivePolicies[PolicyStrictControl]
	if strictActive {
		sc, _ := PolicyByID(PolicyStrictControl)
		totalImmigrants /= strictImmigrantDivisor
		gdpGain = int(float64(gdpGain) * strictGDPDamping)
		happinessDelta += sc.HappinessDelta
		unempPolicyDelta += sc.UnemploymentDelta
		n.Population -= int(float64(n.Population) * naturalDeclineRate)
		n.GDP -= int(float64(n.GDP) * naturalDeclineRate)
	}

	// Random perturbation plus population-scaled growth.
	prof := ProfileFor(n.Difficulty)
	gdpGain += rng.Intn(2*gdpNoiseRange+1) - gdpNoiseRange
	gdpGain += int(float64(n.Population) / gdpGrowthDivisor * prof.GDPMultiplier)

	// Happiness drain and conditional adjustments.
	happinessDelta -= prof.HappinessDrainPerTick
	if n.GDP > prosperityGDP {
		happinessDelta += prosperityBonus
	}
	if n.Unemployment > unemploymentPain {
		happinessDelta -= unemploymentSting
	}

	// Immigration-driven unemployment pressure plus fixed policy deltas.
	unempDelta := float64(totalImmigrants)/immigrantUnemploymentDivisor*prof.UnemploymentMultiplier + unempPolicyDelta

	n.Population += totalImmigrants
	n.GDP += gdpGain
	n.Happiness += happinessDelta
	n.Unemployment += unempDelta
	n.clampStats()

	// Budget ledger: tax revenue and tourism income against infrastructure,
	// policy upkeep, and unemployment benefits. Unbounded below.
	tax := n.GDP / taxDivisor
	tourism := n.Population / tourismDivisor
	infra := n.Population / infrastructureDivisor
	upkeep := policyUpkeep * activeCount
	benefits := int(n.Unemployment * float64(n.Population) / benefitsOutlayDivisor)
	n.Budget += tax + tourism - infra - upkeep - benefits

	// Tick score from the realized deltas, asymmetric weights, floored at 0
	// so cumulative score never decreases.
	tickScore := (n.Population-prevPop)/2 +
		(n.GDP-prevGDP)/100 +
		int((n.Happiness-prevHappiness)*20) -
		int((n.Unemployment-prevUnemployment)*30)
	if tickScore > 0 {
		n.Score += tickScore
	}

	var events []Event

	// At most one random world event per tick, independent of policies.
	if rng.Float64() < eventProbability {
		ev := chooseWeighted(worldEvents, rng.Float64())
		ev.apply(n)
		n.clampStats()
		events = append(events, ev.event(n.Year))
	}

	events = append(events, unlockAchievements(n)...)

	metrics.TicksTotal.Inc()

	if reason, over := checkGameOver(n); over {
		n.Started = false
		n.Paused = true
		metrics.GameOversTotal.WithLabelValues(string(reason)).Inc()
		events = append(events, gameOverEvent(n, reason))
		return events
	}

	// Spawn events for the renderer, one per active yielding policy, sized by
	// the effective (post-damping) yield.
	for _, p := range n.ActivePolicyList() {
		if p.Modifier || p.ImmigrantYield == 0 {
			continue
		}
		count := p.ImmigrantYield
		if strictActive {
			count /= strictImmigrantDivisor
		}
		if count > 0 {
			events = append(events, spawnEvent(n.Year, p, count))
		}
	}

	events = append(events, yearSummaryEvent(n, Deltas{
		Population:   n.Population - prevPop,
		GDP:          n.GDP - prevGDP,
		Happiness:    n.Happiness - prevHappiness,
		Unemployment: n.Unemployment - prevUnemployment,
		Budget:       n.Budget - prevBudget,
		Score:        n.Score - prevScore,
	}))

	return events
}

// checkGameOver evaluates the terminal conditions in fixed priority order.
func checkGameOver(n *NationState) (GameOverReason, bool) {
	switch {
	case n.Happiness <= 0:
		return ReasonUnhappiness, true
	case n.Unemployment >= UnemploymentMax:
		return ReasonEconomicCollapse, true
	case n.Budget < BankruptcyThreshold:
		return ReasonBankruptcy, true
	case n.Population <= PopulationFloor:
		return ReasonPopulationCrisis, true
	}
	return "", false
}
