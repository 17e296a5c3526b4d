package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openborders/nationsim/internal/sim"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleState(year int) sim.NationState {
	n := sim.NewNationState(sim.DifficultyMedium)
	n.Year = year
	n.Population = 1200
	n.Score = 340
	return n.Clone()
}

func TestRecordAndQueryYearStats(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.RecordYear("sess-a", sampleState(2025)))
	require.NoError(t, db.RecordYear("sess-a", sampleState(2026)))
	require.NoError(t, db.RecordYear("sess-b", sampleState(2025)))

	rows, err := db.YearStats("sess-a", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2025, rows[0].Year)
	assert.Equal(t, 2026, rows[1].Year)
	assert.Equal(t, 1200, rows[0].Population)
	assert.Equal(t, 340, rows[0].Score)
}

func TestRecordRunAndLeaderboardOrder(t *testing.T) {
	db := openTestDB(t)

	low := sampleState(2030)
	low.Score = 100
	high := sampleState(2040)
	high.Score = 9000

	require.NoError(t, db.RecordRun("sess-low", low, sim.ReasonBankruptcy))
	require.NoError(t, db.RecordRun("sess-high", high, sim.ReasonUnhappiness))

	runs, err := db.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "sess-high", runs[0].SessionID)
	assert.Equal(t, 9000, runs[0].Score)
	assert.Equal(t, string(sim.ReasonUnhappiness), runs[0].Reason)
	assert.Equal(t, 2040-sim.EpochYear, runs[0].Years)
}

func TestRecordRunReplacesSameSession(t *testing.T) {
	db := openTestDB(t)

	first := sampleState(2030)
	require.NoError(t, db.RecordRun("sess-a", first, sim.ReasonBankruptcy))

	second := sampleState(2035)
	second.Score = 777
	require.NoError(t, db.RecordRun("sess-a", second, sim.ReasonPopulationCrisis))

	runs, err := db.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 777, runs[0].Score)
	assert.Equal(t, string(sim.ReasonPopulationCrisis), runs[0].Reason)
}

func TestYearStatsUnknownSession(t *testing.T) {
	db := openTestDB(t)
	rows, err := db.YearStats("nope", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
