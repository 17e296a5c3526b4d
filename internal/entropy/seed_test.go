package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedProducesDistinctValues(t *testing.T) {
	seen := map[int64]bool{}
	for i := 0; i < 32; i++ {
		s := Seed()
		assert.NotZero(t, s)
		assert.False(t, seen[s], "duplicate seed %d", s)
		seen[s] = true
	}
}
