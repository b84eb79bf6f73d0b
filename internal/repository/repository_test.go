package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchday-consensus/internal/database"
	"github.com/yourusername/matchday-consensus/internal/models"
)

func newRecord(fixtureID int64, pick models.Selection) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:        uuid.New(),
		FixtureID: fixtureID,
		Match: models.MatchContext{
			FixtureID: fixtureID,
			HomeTeam:  models.Team{ID: 1, Name: "Besiktas"},
			AwayTeam:  models.Team{ID: 2, Name: "Trabzonspor"},
			League:    "Super Lig",
		},
		Agents: []models.AgentReport{
			{Kind: models.AgentStats, Phase: 1, Opinion: &models.AgentOpinion{
				Kind:  models.AgentStats,
				Picks: map[models.Family]models.Pick{models.FamilyMatchResult: {Selection: pick, Confidence: 64}},
			}},
			{Kind: models.AgentOdds, Phase: 1, Error: "odds: timeout"},
		},
		Consensus: models.ConsensusResult{
			Markets: []models.MarketConsensus{{Market: models.FamilyMatchResult, Prediction: pick, Confidence: 64}},
		},
		Arbitration: models.ArbitrationResult{
			Mode:        models.ArbitrationFallback,
			PrimaryPick: models.PricedPick{Market: models.FamilyMatchResult, Selection: pick},
		},
		Errors:   []string{"odds: timeout"},
		TimingMs: models.Timing{Total: 1200},
	}
}

func testSettlement(home, away int) *models.Settlement {
	return &models.Settlement{
		Score:     models.FinalScore{Home: home, Away: away},
		Flags:     map[string]bool{"consensus.match_result": home > away},
		Graded:    1,
		SettledAt: time.Date(2026, 4, 12, 20, 0, 0, 0, time.UTC),
	}
}

// runAnalysisRepositoryContract checks the behavior every implementation shares
func runAnalysisRepositoryContract(t *testing.T, repo AnalysisRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t.Run("get missing", func(t *testing.T) {
		_, err := repo.GetByFixtureID(ctx, 999)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("upsert is last write wins", func(t *testing.T) {
		first := newRecord(10, models.SelectionHome)
		require.NoError(t, repo.Upsert(ctx, first))

		second := newRecord(10, models.SelectionAway)
		require.NoError(t, repo.Upsert(ctx, second))

		got, err := repo.GetByFixtureID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, models.SelectionAway, got.Arbitration.PrimaryPick.Selection)
		assert.Nil(t, got.Agents[1].Opinion, "failed agents round-trip as nil opinions")
		assert.Equal(t, []string{"odds: timeout"}, got.Errors)
	})

	t.Run("settle once", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, newRecord(20, models.SelectionHome)))

		n, err := repo.CountUnsettled(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		require.NoError(t, repo.Settle(ctx, 20, testSettlement(2, 1)))
		err = repo.Settle(ctx, 20, testSettlement(0, 3))
		assert.ErrorIs(t, err, models.ErrAlreadySettled)

		got, err := repo.GetByFixtureID(ctx, 20)
		require.NoError(t, err)
		require.NotNil(t, got.Settlement)
		assert.Equal(t, 2, got.Settlement.Score.Home, "first settlement is kept")

		n, err = repo.CountUnsettled(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("settled fixture rejects re-analysis", func(t *testing.T) {
		err := repo.Upsert(ctx, newRecord(20, models.SelectionDraw))
		assert.ErrorIs(t, err, models.ErrAlreadySettled)
	})

	t.Run("settle missing", func(t *testing.T) {
		assert.ErrorIs(t, repo.Settle(ctx, 404, testSettlement(1, 0)), models.ErrNotFound)
	})

	t.Run("list unsettled", func(t *testing.T) {
		records, err := repo.ListUnsettled(ctx, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, int64(10), records[0].FixtureID)
	})

	t.Run("list since", func(t *testing.T) {
		records, err := repo.ListSince(ctx, time.Now().Add(-time.Hour), 0)
		require.NoError(t, err)
		assert.Len(t, records, 2)

		records, err = repo.ListSince(ctx, time.Now().Add(-time.Hour), 1)
		require.NoError(t, err)
		assert.Len(t, records, 1)

		records, err = repo.ListSince(ctx, time.Now().Add(time.Hour), 0)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestMemoryAnalysisRepository(t *testing.T) {
	runAnalysisRepositoryContract(t, NewMemoryAnalysisRepository())
}

func TestPostgresAnalysisRepository(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	runAnalysisRepositoryContract(t, NewRepositories(db).Analysis)
}

func TestMemoryRepositoryCopiesRecords(t *testing.T) {
	repo := NewMemoryAnalysisRepository()
	ctx := context.Background()

	record := newRecord(30, models.SelectionHome)
	require.NoError(t, repo.Upsert(ctx, record))
	record.Errors = append(record.Errors, "mutated after write")

	got, err := repo.GetByFixtureID(ctx, 30)
	require.NoError(t, err)
	assert.Len(t, got.Errors, 1)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMemoryRepositoryConcurrentSettle(t *testing.T) {
	repo := NewMemoryAnalysisRepository()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, newRecord(40, models.SelectionHome)))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(home int) {
			defer wg.Done()
			if err := repo.Settle(ctx, 40, testSettlement(home, 0)); err == nil {
				mu.Lock()
				settled++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, settled)
}
