package domain

import "time"

// Transaction is one append-only ledger record. Rows are never updated or
// deleted; the ledger is an audit trail, balances live on the user row.
type Transaction struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Type        string    `db:"type" json:"type"`
	Amount      int64     `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const (
	TxTypeTransfer     = "transfer"
	TxTypeRedeem       = "redeem"
	TxTypeBattleReward = "battle_reward"
	TxTypeBankDeposit  = "bank_deposit"
	TxTypeBankWithdraw = "bank_withdraw"
)
