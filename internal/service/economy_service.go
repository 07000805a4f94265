package service

import (
	"context"
	"errors"
	"fmt"

	"gacha_backend/internal/cache"
	"gacha_backend/internal/domain"
	"gacha_backend/internal/locker"
	"gacha_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EconomyService owns coin movements: transfers between users and moves
// between wallet and bank.
type EconomyService struct {
	locks  *locker.Manager
	users  *repository.UserRepository
	ledger *repository.TransactionRepository
	inv    *cache.Invalidator
}

func NewEconomyService(db *pgxpool.Pool, locks *locker.Manager, inv *cache.Invalidator) *EconomyService {
	return &EconomyService{
		locks:  locks,
		users:  repository.NewUserRepository(db),
		ledger: repository.NewTransactionRepository(db),
		inv:    inv,
	}
}

// TransferResult reports both post-transfer balances.
type TransferResult struct {
	SenderBalance   int64 `json:"sender_balance"`
	ReceiverBalance int64 `json:"receiver_balance"`
}

// Transfer moves coins between two users under a single canonical pair
// lock, so transfer(A,B) and transfer(B,A) contend for the same key and
// can never deadlock against each other.
func (s *EconomyService) Transfer(ctx context.Context, fromID, toID, amount int64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if fromID == toID {
		return nil, domain.ErrSelfTransfer
	}

	key := locker.PairKey("transfer", fromID, toID)
	res, err := locker.ExecuteWithLock(ctx, s.locks, key, locker.Options{}, func(tx pgx.Tx) (*TransferResult, error) {
		// row locks in ascending id order, matching the pair key order
		firstID, secondID := fromID, toID
		if firstID > secondID {
			firstID, secondID = secondID, firstID
		}
		first, err := s.users.GetForUpdateTx(ctx, tx, firstID)
		if err != nil {
			return nil, usersNotFound(err)
		}
		second, err := s.users.GetForUpdateTx(ctx, tx, secondID)
		if err != nil {
			return nil, usersNotFound(err)
		}

		sender := first
		if sender.ID != fromID {
			sender = second
		}
		if sender.Coins < amount {
			return nil, domain.ErrInsufficientFunds
		}

		senderBalance, err := s.users.AddCoinsTx(ctx, tx, fromID, -amount)
		if err != nil {
			return nil, err
		}
		receiverBalance, err := s.users.AddCoinsTx(ctx, tx, toID, amount)
		if err != nil {
			return nil, err
		}

		record := &domain.Transaction{
			UserID:      fromID,
			Type:        domain.TxTypeTransfer,
			Amount:      amount,
			Description: fmt.Sprintf("transfer to user %d", toID),
		}
		if err := s.ledger.CreateTx(ctx, tx, record); err != nil {
			return nil, err
		}

		return &TransferResult{SenderBalance: senderBalance, ReceiverBalance: receiverBalance}, nil
	})
	if err != nil {
		return nil, err
	}

	s.inv.InvalidateUsers(ctx, fromID, toID)
	return res, nil
}

// BankResult reports wallet and bank after a deposit or withdrawal.
type BankResult struct {
	Coins       int64 `json:"coins"`
	BankBalance int64 `json:"bank_balance"`
}

// Deposit moves coins from the wallet into the bank.
func (s *EconomyService) Deposit(ctx context.Context, userID, amount int64) (*BankResult, error) {
	return s.bankMove(ctx, userID, amount, true)
}

// Withdraw moves coins from the bank back into the wallet.
func (s *EconomyService) Withdraw(ctx context.Context, userID, amount int64) (*BankResult, error) {
	return s.bankMove(ctx, userID, amount, false)
}

func (s *EconomyService) bankMove(ctx context.Context, userID, amount int64, toBank bool) (*BankResult, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	key := locker.UserKey("bank", userID)
	res, err := locker.ExecuteWithLock(ctx, s.locks, key, locker.Options{}, func(tx pgx.Tx) (*BankResult, error) {
		u, err := s.users.GetForUpdateTx(ctx, tx, userID)
		if err != nil {
			return nil, err
		}

		coins, bank := u.Coins, u.BankBalance
		txType := domain.TxTypeBankDeposit
		if toBank {
			if coins < amount {
				return nil, domain.ErrInsufficientFunds
			}
			coins -= amount
			bank += amount
		} else {
			if bank < amount {
				return nil, domain.ErrInsufficientFunds
			}
			coins += amount
			bank -= amount
			txType = domain.TxTypeBankWithdraw
		}

		if err := s.users.SetBankStateTx(ctx, tx, userID, coins, bank); err != nil {
			return nil, err
		}
		record := &domain.Transaction{
			UserID:      userID,
			Type:        txType,
			Amount:      amount,
			Description: txType,
		}
		if err := s.ledger.CreateTx(ctx, tx, record); err != nil {
			return nil, err
		}

		return &BankResult{Coins: coins, BankBalance: bank}, nil
	})
	if err != nil {
		return nil, err
	}

	s.inv.InvalidateUsers(ctx, userID)
	return res, nil
}

// usersNotFound folds a per-user not-found into the pair-operation error.
func usersNotFound(err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUsersNotFound
	}
	return err
}
