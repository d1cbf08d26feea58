package backtest

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-kelly-sim/internal/models"
)

var baseTime = time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)

type runner struct {
	odds  float64
	prob  float64
	place int // 0 means no recorded place
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func makeGroup(n int, runners ...runner) models.RaceGroup {
	start := baseTime.Add(time.Duration(n) * time.Hour)
	id := fmt.Sprintf("race_%03d", n)
	g := models.RaceGroup{ID: id, Time: start, Track: "Ascot", Class: "Class 2"}
	for i, r := range runners {
		e := models.HorseEntry{
			Seq:            n*100 + i,
			RaceID:         id,
			RaceTime:       start,
			Horse:          fmt.Sprintf("horse_%d", i),
			Track:          g.Track,
			Class:          g.Class,
			Odds:           r.odds,
			RawProbability: r.prob,
			FieldSize:      len(runners),
		}
		if r.place > 0 {
			place := r.place
			e.Place = &place
		}
		g.Entries = append(g.Entries, e)
	}

	order := make([]int, len(g.Entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return g.Entries[order[a]].RawProbability > g.Entries[order[b]].RawProbability
	})
	for rank, i := range order {
		g.Entries[i].PredictedRank = rank + 1
	}
	return g
}

func newTestEngine(t interface{ Fatalf(string, ...interface{}) }, mutate func(*SimulationConfig)) *Engine {
	cfg := DefaultSimulationConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	engine, err := NewEngine(cfg, quietLogger(), nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

// fiveRunnerRace has odds [3,2,4,6,10]; only the favourite clears every threshold.
func fiveRunnerRace(n int) models.RaceGroup {
	return makeGroup(n,
		runner{odds: 3, prob: 0.45, place: 1},
		runner{odds: 2, prob: 0.35, place: 2},
		runner{odds: 4, prob: 0.10, place: 3},
		runner{odds: 6, prob: 0.06, place: 4},
		runner{odds: 10, prob: 0.04, place: 5},
	)
}
