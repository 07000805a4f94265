package domain

import (
	"fmt"
	"time"
)

// RewardKind discriminates the closed set of redeem reward variants.
type RewardKind string

const (
	RewardCoins      RewardKind = "coins"
	RewardGachaDraws RewardKind = "gacha_draws"
	RewardPower      RewardKind = "power"
)

// Reward is one typed reward descriptor in a code's ordered reward list.
// Amount is used by coins and gacha_draws, PowerID and CPOverride by power.
type Reward struct {
	Kind       RewardKind `json:"kind"`
	Amount     int64      `json:"amount,omitempty"`
	PowerID    int64      `json:"power_id,omitempty"`
	CPOverride *int       `json:"cp_override,omitempty"`
}

// Validate rejects descriptors outside the closed variant set. A
// malformed stored reward is a terminal rejection, not a transient store
// failure, so the errors are validation errors and never retried.
func (r Reward) Validate() error {
	switch r.Kind {
	case RewardCoins, RewardGachaDraws:
		if r.Amount <= 0 {
			return Validation(fmt.Sprintf("reward %s: amount must be positive", r.Kind))
		}
	case RewardPower:
		if r.PowerID <= 0 {
			return Validation("reward power: missing power_id")
		}
	default:
		return Validation(fmt.Sprintf("unknown reward kind %q", r.Kind))
	}
	return nil
}

type RedeemCode struct {
	ID        int64      `db:"id"`
	Code      string     `db:"code"`
	Rewards   []Reward   `db:"rewards"`
	MaxUses   *int       `db:"max_uses"`
	UsedCount int        `db:"used_count"`
	ExpiresAt *time.Time `db:"expires_at"`
	IsActive  bool       `db:"is_active"`
	CreatedAt time.Time  `db:"created_at"`
}

// CodeUsage marks a single redemption; at most one row exists per
// (code, user) pair and its existence is the authority for "already redeemed".
type CodeUsage struct {
	ID         int64     `db:"id"`
	CodeID     int64     `db:"code_id"`
	UserID     int64     `db:"user_id"`
	RedeemedAt time.Time `db:"redeemed_at"`
}
