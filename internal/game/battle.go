package game

import (
	"math/rand"
	"time"
)

// BattleConfig tunes reward computation. The reward on victory is a
// guaranteed share of the enemy's strength plus a bounded random share.
type BattleConfig struct {
	RewardBase   float64
	RewardJitter float64
	MinReward    int64
}

func DefaultBattleConfig() BattleConfig {
	return BattleConfig{
		RewardBase:   0.5,
		RewardJitter: 0.5,
		MinReward:    10,
	}
}

// BattleOutcome is the resolved result of one fight.
type BattleOutcome struct {
	Won       bool
	UserRoll  float64
	EnemyRoll float64
	Reward    int64
}

// Resolver runs the randomized proportional-roll battle.
type Resolver struct {
	cfg BattleConfig
	rng *rand.Rand
}

func NewResolver(cfg BattleConfig, rng *rand.Rand) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Resolver{cfg: cfg, rng: rng}
}

// Resolve draws userRoll uniform over [0, userCP) and enemyRoll over
// [0, enemyCP); the user wins only on a strictly greater roll, so a tie
// is a loss. A combat power of 0 can only roll 0 and never wins, even
// against another 0. No reward is computed on a loss.
func (r *Resolver) Resolve(userCP, enemyCP int) BattleOutcome {
	out := BattleOutcome{
		UserRoll:  r.rng.Float64() * float64(userCP),
		EnemyRoll: r.rng.Float64() * float64(enemyCP),
	}
	out.Won = out.UserRoll > out.EnemyRoll
	if out.Won {
		share := r.cfg.RewardBase + r.rng.Float64()*r.cfg.RewardJitter
		out.Reward = int64(float64(enemyCP) * share)
		if out.Reward < r.cfg.MinReward {
			out.Reward = r.cfg.MinReward
		}
	}
	return out
}
