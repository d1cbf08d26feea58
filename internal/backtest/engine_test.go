package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

type recordingObserver struct {
	skipped  []string
	placed   int
	rejected int
	settled  int
}

func (o *recordingObserver) ObserveRaceSkipped(reason string) { o.skipped = append(o.skipped, reason) }
func (o *recordingObserver) ObserveDecision(d models.BetDecision) {
	if d.Placed {
		o.placed++
		return
	}
	o.rejected++
}
func (o *recordingObserver) ObserveRaceSettled(float64, float64, float64) { o.settled++ }

func TestNewEngineFailsFast(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SimulationConfig)
		wantErr error
	}{
		{name: "unknown stake mode", mutate: func(c *SimulationConfig) { c.StakeMode = "martingale" }, wantErr: models.ErrUnknownStakeMode},
		{name: "unknown winrate mode", mutate: func(c *SimulationConfig) { c.WinRateMode = "adaptive" }, wantErr: models.ErrUnknownWinRate},
		{name: "fraction above one", mutate: func(c *SimulationConfig) { c.BankrollFraction = 1.5 }},
		{name: "inverted band", mutate: func(c *SimulationConfig) { c.FieldSizeBands = []FieldSizeBand{{Min: 8, Max: 5}} }},
		{name: "min odds above max", mutate: func(c *SimulationConfig) { c.MinOdds = 20; c.MaxOdds = 10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSimulationConfig()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg, quietLogger(), nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestRunKellyScenario(t *testing.T) {
	engine := newTestEngine(t, nil)

	result, err := engine.Run(context.Background(), []models.RaceGroup{fiveRunnerRace(1)})
	require.NoError(t, err)

	// Only ranks 1 and 2 are considered
	require.Len(t, result.Ledger, 2)
	fav, second := result.Ledger[0], result.Ledger[1]

	assert.True(t, fav.Decision.Placed)
	assert.InDelta(t, 175, fav.Decision.Stake, 1e-6)
	assert.InDelta(t, 350, fav.Decision.Return, 1e-6)
	assert.True(t, fav.Decision.Won)

	assert.False(t, second.Decision.Placed)
	assert.Equal(t, models.RejectKellyLow|models.RejectEVLow, second.Decision.Reasons)
	assert.Equal(t, 100.0, second.Decision.Stake, "placeholder stake")
	assert.Equal(t, 0.0, second.Decision.Return)

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, second.Entry.Horse, result.Rejected[0].Entry.Horse)

	snap := result.State.Snapshots[0]
	assert.InDelta(t, 1000, snap.StakePool, 1e-9)
	assert.LessOrEqual(t, snap.Staked, snap.StakePool)
	assert.InDelta(t, 10350, result.State.CurrentBankroll, 1e-6)
	assert.InDelta(t, 10350, fav.BankrollAfter, 1e-6)
}

func TestRunFixedScenario(t *testing.T) {
	engine := newTestEngine(t, func(c *SimulationConfig) {
		c.StakeMode = StakeModeFixed
		c.AllowedRanks = []int{1, 2, 3, 4}
	})

	group := makeGroup(1,
		runner{odds: 5, prob: 0.3, place: 2},
		runner{odds: 5, prob: 0.3, place: 3},
		runner{odds: 5, prob: 0.3, place: 4},
		runner{odds: 5, prob: 0.1, place: 1},
	)

	result, err := engine.Run(context.Background(), []models.RaceGroup{group})
	require.NoError(t, err)
	require.Len(t, result.Ledger, 4)

	for _, row := range result.Ledger[:3] {
		assert.True(t, row.Decision.Placed)
		assert.InDelta(t, 1000.0/3, row.Decision.Stake, 1e-9)
		assert.InDelta(t, -1000.0/3, row.Decision.Return, 1e-9)
	}

	outsider := result.Ledger[3]
	assert.False(t, outsider.Decision.Placed)
	assert.True(t, outsider.Decision.Won)
	assert.Equal(t, 100.0, outsider.Decision.Stake)
	assert.Equal(t, 0.0, outsider.Decision.Return, "placeholder is never paid out")

	assert.InDelta(t, 9000, result.State.CurrentBankroll, 1e-6)
}

func TestRunWinRateStakes(t *testing.T) {
	engine := newTestEngine(t, func(c *SimulationConfig) { c.StakeMode = StakeModeWinRate })

	group := makeGroup(1,
		runner{odds: 4, prob: 0.3, place: 1},
		runner{odds: 6, prob: 0.2, place: 2},
		runner{odds: 10, prob: 0.25},
		runner{odds: 12, prob: 0.25},
	)
	// ranks 1 and 2 are the two 0.3/0.25 runners in file order
	result, err := engine.Run(context.Background(), []models.RaceGroup{group})
	require.NoError(t, err)

	total := 0.0
	for _, row := range result.Ledger {
		if row.Decision.Placed {
			total += row.Decision.Stake
		}
	}
	assert.InDelta(t, 1000, total, 1e-9)
	require.Len(t, result.Ledger, 2)
	assert.InDelta(t, 1000*0.3/0.55, result.Ledger[0].Decision.Stake, 1e-9)
	assert.InDelta(t, 1000*0.25/0.55, result.Ledger[1].Decision.Stake, 1e-9)
}

func TestRunFieldSizeSkip(t *testing.T) {
	engine := newTestEngine(t, nil)
	observer := &recordingObserver{}
	engine.observer = observer

	seven := makeGroup(1,
		runner{odds: 3, prob: 0.4, place: 1}, runner{odds: 5, prob: 0.2}, runner{odds: 6, prob: 0.1},
		runner{odds: 8, prob: 0.1}, runner{odds: 9, prob: 0.1}, runner{odds: 12, prob: 0.05},
		runner{odds: 20, prob: 0.05},
	)

	result, err := engine.Run(context.Background(), []models.RaceGroup{seven})
	require.NoError(t, err)

	assert.Empty(t, result.Ledger)
	assert.Empty(t, result.State.Snapshots)
	assert.Equal(t, 10000.0, result.State.CurrentBankroll)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipFieldSize, result.Skipped[0].Reason)
	assert.Equal(t, 7, result.Skipped[0].FieldSize)
	assert.Equal(t, []string{"field_size"}, observer.skipped)
	assert.True(t, result.Empty())
}

func TestRunDegenerateRaceSkipped(t *testing.T) {
	engine := newTestEngine(t, nil)

	zero := makeGroup(1,
		runner{odds: 3}, runner{odds: 4}, runner{odds: 5}, runner{odds: 6},
	)
	result, err := engine.Run(context.Background(), []models.RaceGroup{zero, fiveRunnerRace(2)})
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, SkipDegenerate, result.Skipped[0].Reason)
	assert.Len(t, result.State.Snapshots, 1)
}

func TestRunCapitalCapWithMinStakeFloor(t *testing.T) {
	engine := newTestEngine(t, func(c *SimulationConfig) {
		c.InitialBankroll = 1000
		c.AllowedRanks = []int{1, 2}
	})

	// pool is 100; both runners are floored to 100, so 200 is scaled to 100
	group := makeGroup(1,
		runner{odds: 5, prob: 0.30},
		runner{odds: 6, prob: 0.25},
		runner{odds: 2, prob: 0.25},
		runner{odds: 2, prob: 0.20},
	)
	result, err := engine.Run(context.Background(), []models.RaceGroup{group})
	require.NoError(t, err)
	require.Len(t, result.Ledger, 2)

	for _, row := range result.Ledger {
		require.True(t, row.Decision.Placed)
		assert.InDelta(t, 50, row.Decision.Stake, 1e-9)
	}
	assert.InDelta(t, 100, result.State.Snapshots[0].Staked, 1e-9)
}

func TestRunMissingPlace(t *testing.T) {
	race := func() models.RaceGroup {
		return makeGroup(1,
			runner{odds: 3, prob: 0.45},
			runner{odds: 2, prob: 0.35, place: 1},
			runner{odds: 4, prob: 0.10, place: 2},
			runner{odds: 6, prob: 0.10, place: 3},
		)
	}

	lossEngine := newTestEngine(t, nil)
	result, err := lossEngine.Run(context.Background(), []models.RaceGroup{race()})
	require.NoError(t, err)
	assert.InDelta(t, -175, result.Ledger[0].Decision.Return, 1e-6)
	assert.False(t, result.Ledger[0].Decision.Voided)

	voidEngine := newTestEngine(t, func(c *SimulationConfig) { c.VoidMissingResults = true })
	result, err = voidEngine.Run(context.Background(), []models.RaceGroup{race()})
	require.NoError(t, err)
	assert.True(t, result.Ledger[0].Decision.Voided)
	assert.Equal(t, 0.0, result.Ledger[0].Decision.Return)
	assert.Equal(t, 0.0, result.Ledger[0].Decision.StakedAmount())
	assert.Equal(t, 10000.0, result.State.CurrentBankroll)
}

func TestRunBankrollRecurrence(t *testing.T) {
	engine := newTestEngine(t, nil)

	groups := []models.RaceGroup{
		fiveRunnerRace(1),
		makeGroup(2,
			runner{odds: 3, prob: 0.45, place: 2},
			runner{odds: 2, prob: 0.35, place: 1},
			runner{odds: 4, prob: 0.10}, runner{odds: 6, prob: 0.10},
		),
		fiveRunnerRace(3),
		makeGroup(4,
			runner{odds: 4, prob: 0.40, place: 3},
			runner{odds: 5, prob: 0.30, place: 4},
			runner{odds: 8, prob: 0.15, place: 1},
			runner{odds: 9, prob: 0.10, place: 2},
			runner{odds: 20, prob: 0.05},
		),
	}

	result, err := engine.Run(context.Background(), groups)
	require.NoError(t, err)
	require.Len(t, result.State.Snapshots, 4)

	prev := 10000.0
	maxSeen := 10000.0
	for _, snap := range result.State.Snapshots {
		assert.InDelta(t, prev, snap.BankrollBefore, 1e-9)
		assert.InDelta(t, prev+snap.Profit, snap.BankrollAfter, 1e-9)
		assert.LessOrEqual(t, snap.Staked, snap.StakePool+1e-9)
		assert.InDelta(t, prev*0.1, snap.StakePool, 1e-9)
		if snap.BankrollAfter > maxSeen {
			maxSeen = snap.BankrollAfter
		}
		assert.InDelta(t, maxSeen, snap.MaxBankroll, 1e-9)
		assert.GreaterOrEqual(t, snap.Drawdown, 0.0)
		prev = snap.BankrollAfter
	}
	assert.InDelta(t, prev, result.State.CurrentBankroll, 1e-9)
	assert.Len(t, result.State.EquityCurve, 4)
}

func TestRunDeterministic(t *testing.T) {
	groups := []models.RaceGroup{fiveRunnerRace(1), fiveRunnerRace(2), fiveRunnerRace(3)}

	first, err := newTestEngine(t, nil).Run(context.Background(), groups)
	require.NoError(t, err)
	second, err := newTestEngine(t, nil).Run(context.Background(), groups)
	require.NoError(t, err)

	assert.Equal(t, first.Ledger, second.Ledger)
	assert.Equal(t, first.State.EquityCurve, second.State.EquityCurve)
}

func TestRunRejectsUnsortedInput(t *testing.T) {
	engine := newTestEngine(t, nil)

	_, err := engine.Run(context.Background(), []models.RaceGroup{fiveRunnerRace(2), fiveRunnerRace(1)})
	assert.True(t, errors.Is(err, models.ErrUnsortedInput))

	_, err = engine.Run(context.Background(), []models.RaceGroup{fiveRunnerRace(1), fiveRunnerRace(1)})
	assert.True(t, errors.Is(err, models.ErrUnsortedInput))
}

func TestRunInterrupted(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Run(ctx, []models.RaceGroup{fiveRunnerRace(1), fiveRunnerRace(2)})
	require.NoError(t, err)
	assert.True(t, result.Interrupted)
	assert.True(t, result.Empty())
	assert.Equal(t, 10000.0, result.State.CurrentBankroll)
}

func TestRunObserverCounts(t *testing.T) {
	engine := newTestEngine(t, nil)
	observer := &recordingObserver{}
	engine.observer = observer

	_, err := engine.Run(context.Background(), []models.RaceGroup{fiveRunnerRace(1), fiveRunnerRace(2)})
	require.NoError(t, err)

	assert.Equal(t, 2, observer.placed)
	assert.Equal(t, 2, observer.rejected)
	assert.Equal(t, 2, observer.settled)
}
