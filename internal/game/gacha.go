package game

import (
	"math"
	"math/rand"
	"time"

	"gacha_backend/internal/domain"
)

// RankWeight pairs a tier with its draw weight in percent. The table is
// ordered lowest tier first and the weights sum to 100.
type RankWeight struct {
	Rank   domain.Rank
	Weight float64
}

// RankThreshold reclassifies a rolled combat power into a tier: the first
// entry whose Max is not exceeded wins. A catch-all entry ends the table.
type RankThreshold struct {
	Max  int
	Rank domain.Rank
}

// GachaConfig holds every tunable of the draw algorithm. Weights,
// variance and thresholds are configuration, not literals, so tests can
// substitute their own tables.
type GachaConfig struct {
	Weights       []RankWeight
	PityThreshold int
	VarianceLow   float64
	VarianceHigh  float64
	Thresholds    []RankThreshold
}

// DefaultGachaConfig returns the production draw table.
func DefaultGachaConfig() GachaConfig {
	return GachaConfig{
		Weights: []RankWeight{
			{Rank: domain.RankNormal, Weight: 70},
			{Rank: domain.RankRare, Weight: 20},
			{Rank: domain.RankEpic, Weight: 7},
			{Rank: domain.RankLegendary, Weight: 2.5},
			{Rank: domain.RankMythic, Weight: 0.5},
		},
		PityThreshold: 100,
		VarianceLow:   0.7,
		VarianceHigh:  1.3,
		Thresholds: []RankThreshold{
			{Max: 150, Rank: domain.RankNormal},
			{Max: 400, Rank: domain.RankRare},
			{Max: 900, Rank: domain.RankEpic},
			{Max: 2000, Rank: domain.RankLegendary},
			{Max: math.MaxInt, Rank: domain.RankMythic},
		},
	}
}

// TopRank is the highest tier the random table can produce; pity forces
// it. Catalog entries above it are never selected by a draw.
func (c GachaConfig) TopRank() domain.Rank {
	return c.Weights[len(c.Weights)-1].Rank
}

// RankForCP reclassifies a combat power value into a tier.
func (c GachaConfig) RankForCP(cp int) domain.Rank {
	for _, t := range c.Thresholds {
		if cp < t.Max {
			return t.Rank
		}
	}
	return c.Thresholds[len(c.Thresholds)-1].Rank
}

// DrawOutcome is the result of one pity state transition.
type DrawOutcome struct {
	Rank          domain.Rank
	PityTriggered bool
	NextPity      int
}

// Engine samples ranks and combat power. The rand source is injectable so
// tests are deterministic.
type Engine struct {
	cfg GachaConfig
	rng *rand.Rand
}

func NewEngine(cfg GachaConfig, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{cfg: cfg, rng: rng}
}

func (e *Engine) Config() GachaConfig { return e.cfg }

// DrawRank advances the pity counter state machine for one draw.
// Reaching the threshold forces the top tier and resets the counter;
// otherwise a tier is sampled by cumulative weight, and drawing the top
// tier by luck also resets.
func (e *Engine) DrawRank(pity int) DrawOutcome {
	next := pity + 1
	if next >= e.cfg.PityThreshold {
		return DrawOutcome{Rank: e.cfg.TopRank(), PityTriggered: true, NextPity: 0}
	}

	roll := e.rng.Float64() * 100
	rank := e.cfg.Weights[0].Rank
	cumulative := 0.0
	for _, w := range e.cfg.Weights {
		cumulative += w.Weight
		if roll < cumulative {
			rank = w.Rank
			break
		}
	}

	if rank == e.cfg.TopRank() {
		return DrawOutcome{Rank: rank, NextPity: 0}
	}
	return DrawOutcome{Rank: rank, NextPity: next}
}

// RollCP randomizes a catalog base combat power by the configured
// variance, uniform over the inclusive range
// [floor(base*low), floor(base*high)].
func (e *Engine) RollCP(base int) int {
	lo := int(math.Floor(float64(base) * e.cfg.VarianceLow))
	hi := int(math.Floor(float64(base) * e.cfg.VarianceHigh))
	if hi <= lo {
		return lo
	}
	return lo + e.rng.Intn(hi-lo+1)
}

// PickIndex selects uniformly among n eligible catalog powers.
func (e *Engine) PickIndex(n int) int {
	if n <= 1 {
		return 0
	}
	return e.rng.Intn(n)
}
