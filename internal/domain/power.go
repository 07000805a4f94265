package domain

import "time"

// Rank is the ordered tier of a power. Higher is rarer.
type Rank int

const (
	RankNormal Rank = iota
	RankRare
	RankEpic
	RankLegendary
	RankMythic
)

func (r Rank) String() string {
	switch r {
	case RankNormal:
		return "normal"
	case RankRare:
		return "rare"
	case RankEpic:
		return "epic"
	case RankLegendary:
		return "legendary"
	case RankMythic:
		return "mythic"
	default:
		return "unknown"
	}
}

// Power is an immutable catalog entry.
type Power struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Rank      Rank   `db:"rank" json:"rank"`
	BaseCP    int    `db:"base_cp" json:"base_cp"`
	BasePrice int64  `db:"base_price" json:"base_price"`
}

// UserPower is a user's owned instance of a catalog power. CombatPower is
// rolled at creation time and the rank is reclassified from it, so it may
// differ from the catalog entry.
type UserPower struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	PowerID     int64     `db:"power_id" json:"power_id"`
	Name        string    `db:"name" json:"name"`
	CombatPower int       `db:"combat_power" json:"combat_power"`
	Rank        Rank      `db:"rank" json:"rank"`
	ObtainedAt  time.Time `db:"obtained_at" json:"obtained_at"`
}
