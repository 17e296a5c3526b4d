package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIntegrity(t *testing.T) {
	policies := Catalog()
	require.Len(t, policies, 6)

	seen := map[PolicyID]bool{}
	for _, p := range policies {
		assert.False(t, seen[p.ID], "duplicate policy %s", p.ID)
		seen[p.ID] = true
		assert.NotEmpty(t, p.Name)
		assert.GreaterOrEqual(t, p.ImmigrantYield, 0)
	}

	for _, p := range policies {
		if p.Modifier {
			assert.Equal(t, PolicyStrictControl, p.ID, "strict control is the only modifier")
			assert.Zero(t, p.ImmigrantYield)
			assert.Zero(t, p.GDPDelta)
		}
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	a := Catalog()
	a[0].UpfrontCost = -999999
	b := Catalog()
	assert.NotEqual(t, a[0].UpfrontCost, b[0].UpfrontCost)
}

func TestPolicyByID(t *testing.T) {
	p, ok := PolicyByID(PolicyInvestor)
	require.True(t, ok)
	assert.Equal(t, "Investor Visas", p.Name)
	assert.Negative(t, p.UpfrontCost)

	_, ok = PolicyByID("golden-passport")
	assert.False(t, ok)
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("hard")
	require.NoError(t, err)
	assert.Equal(t, DifficultyHard, d)

	d, err = ParseDifficulty("")
	require.NoError(t, err)
	assert.Equal(t, DifficultyMedium, d, "empty defaults to medium")

	_, err = ParseDifficulty("nightmare")
	assert.Error(t, err)
}

func TestDifficultyProfilesOrdering(t *testing.T) {
	easy := ProfileFor(DifficultyEasy)
	medium := ProfileFor(DifficultyMedium)
	hard := ProfileFor(DifficultyHard)

	assert.Less(t, easy.HappinessDrainPerTick, medium.HappinessDrainPerTick)
	assert.Less(t, medium.HappinessDrainPerTick, hard.HappinessDrainPerTick)
	assert.Greater(t, easy.StartingBudgetBonus, hard.StartingBudgetBonus)

	// Unknown difficulties fall back to medium rather than zero values.
	assert.Equal(t, medium, ProfileFor("nightmare"))
}

func TestStartingBudgetIncludesBonus(t *testing.T) {
	assert.Equal(t, BaseStartingBudget+5000, NewNationState(DifficultyEasy).Budget)
	assert.Equal(t, BaseStartingBudget, NewNationState(DifficultyMedium).Budget)
	assert.Equal(t, BaseStartingBudget-3000, NewNationState(DifficultyHard).Budget)
}

func TestCloneDoesNotAliasMaps(t *testing.T) {
	n := NewNationState(DifficultyMedium)
	n.ActivePolicies[PolicyRefugee] = true

	c := n.Clone()
	c.ActivePolicies[PolicyOpenBorders] = true
	c.Achievements["utopia"] = true

	assert.False(t, n.ActivePolicies[PolicyOpenBorders])
	assert.False(t, n.Achievements["utopia"])
}
