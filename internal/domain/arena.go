package domain

import "time"

// ArenaRanking is a derived snapshot of a user's equipped combat power.
// It is recomputed whenever the equipped power changes, not appended to.
type ArenaRanking struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	Username  string    `db:"username" json:"username"`
	TotalCP   int       `db:"total_cp" json:"total_cp"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GachaDraw is one history row recorded for every successful draw.
type GachaDraw struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	PowerID       int64     `db:"power_id" json:"power_id"`
	CombatPower   int       `db:"combat_power" json:"combat_power"`
	Rank          Rank      `db:"rank" json:"rank"`
	PityTriggered bool      `db:"pity_triggered" json:"pity_triggered"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
