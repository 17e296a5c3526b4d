package sim

// PolicyID identifies one of the six togglable immigration policies.
type PolicyID string

const (
	PolicyOpenBorders         PolicyID = "open-borders"
	PolicySkilledWorker       PolicyID = "skilled-worker"
	PolicyRefugee             PolicyID = "refugee"
	PolicyFamilyReunification PolicyID = "family-reunification"
	PolicyInvestor            PolicyID = "investor"
	PolicyStrictControl       PolicyID = "strict-control"
)

// Policy declares one catalog entry: its one-time activation cost and the
// recurring per-tick effects it contributes while active.
type Policy struct {
	ID   PolicyID `json:"id"`
	Name string   `json:"name"`

	// UpfrontCost is deducted from the budget on activation. Negative means
	// the treasury gains money (investor visas pay in).
	UpfrontCost int `json:"upfront_cost"`

	// ImmigrantYield is people added to the population each tick while active.
	ImmigrantYield int `json:"immigrant_yield"`

	// Recurring per-tick deltas.
	GDPDelta          int     `json:"gdp_delta"`
	HappinessDelta    float64 `json:"happiness_delta"`
	UnemploymentDelta float64 `json:"unemployment_delta"`

	// Modifier marks strict border control, which dampens the other active
	// policies' accumulated effects instead of adding its own yield.
	Modifier bool `json:"modifier,omitempty"`
}

// Strict-control modifier parameters. Base policy effects are accumulated
// first; the modifier then halves immigration, scales the GDP contribution,
// and applies a natural decline to population and GDP.
const (
	strictImmigrantDivisor = 2
	strictGDPDamping       = 0.6
	naturalDeclineRate     = 0.009
)

var catalog = []Policy{
	{
		ID:                PolicyOpenBorders,
		Name:              "Open Borders",
		UpfrontCost:       2000,
		ImmigrantYield:    24,
		GDPDelta:          300,
		HappinessDelta:    -2.0,
		UnemploymentDelta: 0.8,
	},
	{
		ID:                PolicySkilledWorker,
		Name:              "Skilled Worker Visas",
		UpfrontCost:       3500,
		ImmigrantYield:    8,
		GDPDelta:          520,
		HappinessDelta:    0.5,
		UnemploymentDelta: -0.6,
	},
	{
		ID:                PolicyRefugee,
		Name:              "Refugee Program",
		UpfrontCost:       1500,
		ImmigrantYield:    14,
		GDPDelta:          80,
		HappinessDelta:    1.5,
		UnemploymentDelta: 0.9,
	},
	{
		ID:                PolicyFamilyReunification,
		Name:              "Family Reunification",
		UpfrontCost:       1000,
		ImmigrantYield:    10,
		GDPDelta:          140,
		HappinessDelta:    1.2,
		UnemploymentDelta: 0.3,
	},
	{
		ID:                PolicyInvestor,
		Name:              "Investor Visas",
		UpfrontCost:       -2500,
		ImmigrantYield:    4,
		GDPDelta:          700,
		HappinessDelta:    -0.5,
		UnemploymentDelta: -0.3,
	},
	{
		ID:                PolicyStrictControl,
		Name:              "Strict Border Control",
		UpfrontCost:       1200,
		ImmigrantYield:    0,
		GDPDelta:          0,
		HappinessDelta:    1.0,
		UnemploymentDelta: -0.4,
		Modifier:          true,
	},
}

// Catalog returns the six policies in canonical declaration order.
func Catalog() []Policy {
	out := make([]Policy, len(catalog))
	copy(out, catalog)
	return out
}

// PolicyByID looks up a catalog entry.
func PolicyByID(id PolicyID) (Policy, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Policy{}, false
}
