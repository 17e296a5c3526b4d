package sim

// WorldEvent is one entry in the weighted random-event table. Effects are
// applied directly to the state, independent of which policies are active.
type WorldEvent struct {
	Name     string
	Weight   float64
	Text     string
	Severity Severity

	GDP          int
	Happiness    float64
	Population   int
	Unemployment float64
	Budget       int
}

// worldEvents is the canonical table. Declaration order matters for the
// weighted selection scan; the three disaster tiers carry larger penalties at
// lower weight.
var worldEvents = []WorldEvent{
	{
		Name:      "economic-boom",
		Weight:    30,
		Text:      "An economic boom sweeps the nation",
		Severity:  SeverityInfo,
		GDP:       2500,
		Happiness: 3,
	},
	{
		Name:      "minor-disaster",
		Weight:    12,
		Text:      "A minor natural disaster strikes",
		Severity:  SeverityWarning,
		GDP:       -1200,
		Happiness: -2,
		Budget:    -500,
	},
	{
		Name:       "severe-disaster",
		Weight:     7,
		Text:       "A severe natural disaster devastates a region",
		Severity:   SeverityDanger,
		GDP:        -2800,
		Happiness:  -5,
		Population: -80,
		Budget:     -1500,
	},
	{
		Name:       "major-disaster",
		Weight:     3,
		Text:       "A catastrophic disaster shakes the whole country",
		Severity:   SeverityDanger,
		GDP:        -5000,
		Happiness:  -9,
		Population: -250,
		Budget:     -4000,
	},
	{
		Name:         "tech-breakthrough",
		Weight:       18,
		Text:         "A technology breakthrough creates new industries",
		Severity:     SeverityInfo,
		GDP:          1800,
		Unemployment: -1.5,
	},
	{
		Name:      "cultural-festival",
		Weight:    20,
		Text:      "A nationwide cultural festival lifts spirits",
		Severity:  SeverityInfo,
		Happiness: 4,
	},
	{
		Name:         "trade-war",
		Weight:       10,
		Text:         "A trade war hits exports",
		Severity:     SeverityWarning,
		GDP:          -2200,
		Unemployment: 1.2,
	},
}

// WorldEventTable returns a copy of the event table, for the catalog endpoint
// and tests.
func WorldEventTable() []WorldEvent {
	out := make([]WorldEvent, len(worldEvents))
	copy(out, worldEvents)
	return out
}

// chooseWeighted picks one event by linear scan with a running threshold.
// draw is uniform in [0,1); weights need not sum to 1, normalization is
// implicit via the sum. The last entry absorbs any floating-point remainder.
func chooseWeighted(events []WorldEvent, draw float64) WorldEvent {
	total := 0.0
	for _, e := range events {
		total += e.Weight
	}
	r := draw * total
	for _, e := range events {
		if r < e.Weight {
			return e
		}
		r -= e.Weight
	}
	return events[len(events)-1]
}

func (e WorldEvent) event(year int) Event {
	return Event{
		Year:     year,
		Kind:     EventNotification,
		Text:     e.Text,
		Severity: e.Severity,
		Meta:     map[string]any{"event": e.Name},
	}
}

func (e WorldEvent) apply(n *NationState) {
	n.GDP += e.GDP
	n.Happiness += e.Happiness
	n.Population += e.Population
	n.Unemployment += e.Unemployment
	n.Budget += e.Budget
}
