package domain

import "time"

type User struct {
	ID              int64     `db:"id"`
	DiscordID       string    `db:"discord_id"`
	Username        string    `db:"username"`
	Coins           int64     `db:"coins" json:"coins"`
	BankBalance     int64     `db:"bank_balance" json:"bank_balance"`
	GachaDraws      int       `db:"gacha_draws" json:"gacha_draws"`
	PityCounter     int       `db:"pity_counter" json:"pity_counter"`
	EquippedPowerID *int64    `db:"equipped_power_id" json:"equipped_power_id,omitempty"`
	BattlesWon      int       `db:"battles_won" json:"battles_won"`
	BattlesLost     int       `db:"battles_lost" json:"battles_lost"`
	CreatedAt       time.Time `db:"created_at"`
}
