package game

import (
	"math/rand"
	"testing"

	"gacha_backend/internal/domain"
)

func newTestEngine(seed int64) *Engine {
	return NewEngine(DefaultGachaConfig(), rand.New(rand.NewSource(seed)))
}

func TestDrawRankPityForcesTopTier(t *testing.T) {
	e := newTestEngine(1)

	out := e.DrawRank(99)
	if !out.PityTriggered {
		t.Fatalf("expected pity to trigger at counter 99")
	}
	if out.Rank != domain.RankMythic {
		t.Fatalf("pity draw rank = %s; want mythic", out.Rank)
	}
	if out.NextPity != 0 {
		t.Fatalf("pity draw should reset counter, got %d", out.NextPity)
	}
}

func TestDrawRankCounterTransitions(t *testing.T) {
	e := newTestEngine(7)

	for i := 0; i < 5000; i++ {
		pity := e.rng.Intn(99) // any value below the threshold
		out := e.DrawRank(pity)

		if out.PityTriggered {
			t.Fatalf("pity triggered below threshold (counter %d)", pity)
		}
		if out.Rank == domain.RankMythic {
			if out.NextPity != 0 {
				t.Fatalf("top-tier draw must reset the counter, got %d", out.NextPity)
			}
		} else if out.NextPity != pity+1 {
			t.Fatalf("non-top draw: counter %d -> %d; want %d", pity, out.NextPity, pity+1)
		}
	}
}

func TestDrawRankDistribution(t *testing.T) {
	e := newTestEngine(42)

	const trials = 200000
	counts := make(map[domain.Rank]int)
	for i := 0; i < trials; i++ {
		counts[e.DrawRank(0).Rank]++
	}

	for _, w := range DefaultGachaConfig().Weights {
		got := float64(counts[w.Rank]) / trials * 100
		want := w.Weight
		// generous tolerance: half a percentage point absolute
		if diff := got - want; diff > 0.5 || diff < -0.5 {
			t.Fatalf("rank %s frequency %.2f%%; want %.2f%%", w.Rank, got, want)
		}
	}
}

func TestRollCPStaysWithinVariance(t *testing.T) {
	e := newTestEngine(3)

	const base = 1000
	lo, hi := 700, 1300
	seenLo, seenHi := false, false
	for i := 0; i < 100000; i++ {
		cp := e.RollCP(base)
		if cp < lo || cp > hi {
			t.Fatalf("RollCP(%d) = %d outside [%d,%d]", base, cp, lo, hi)
		}
		if cp == lo {
			seenLo = true
		}
		if cp == hi {
			seenHi = true
		}
	}
	if !seenLo || !seenHi {
		t.Fatalf("variance range should be inclusive; hit lo=%v hi=%v", seenLo, seenHi)
	}
}

func TestRollCPZeroBase(t *testing.T) {
	e := newTestEngine(5)
	if cp := e.RollCP(0); cp != 0 {
		t.Fatalf("RollCP(0) = %d; want 0", cp)
	}
}

func TestRankForCP(t *testing.T) {
	cfg := DefaultGachaConfig()
	cases := []struct {
		cp   int
		want domain.Rank
	}{
		{0, domain.RankNormal},
		{149, domain.RankNormal},
		{150, domain.RankRare},
		{399, domain.RankRare},
		{400, domain.RankEpic},
		{899, domain.RankEpic},
		{900, domain.RankLegendary},
		{1999, domain.RankLegendary},
		{2000, domain.RankMythic},
		{50000, domain.RankMythic},
	}

	for _, tc := range cases {
		if got := cfg.RankForCP(tc.cp); got != tc.want {
			t.Fatalf("RankForCP(%d) = %s; want %s", tc.cp, got, tc.want)
		}
	}
}

func TestPickIndexBounds(t *testing.T) {
	e := newTestEngine(9)
	if got := e.PickIndex(0); got != 0 {
		t.Fatalf("PickIndex(0) = %d; want 0", got)
	}
	if got := e.PickIndex(1); got != 0 {
		t.Fatalf("PickIndex(1) = %d; want 0", got)
	}
	for i := 0; i < 1000; i++ {
		if got := e.PickIndex(5); got < 0 || got > 4 {
			t.Fatalf("PickIndex(5) = %d out of range", got)
		}
	}
}
