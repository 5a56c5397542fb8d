package domain

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType enumerates ledger entry kinds.
type TransactionType string

const (
	TxEntryFee TransactionType = "ENTRY_FEE"
	TxPayout   TransactionType = "PAYOUT"
	TxRefund   TransactionType = "REFUND"
)

// solDecimals is the number of lamport digits in one SOL (1 SOL = 10^9 lamports).
const solDecimals = 9

// Transaction is an immutable ledger entry keyed by its on-chain hash.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	ContestID       *uuid.UUID      `json:"contest_id,omitempty"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionHash string          `json:"transaction_hash"`
	CreatedAt       time.Time       `json:"created_at"`
}

// LamportsToSOL converts an on-chain lamport amount to SOL without float rounding.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -solDecimals)
}

// ParseTransactionType validates a raw type string.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch t := TransactionType(s); t {
	case TxEntryFee, TxPayout, TxRefund:
		return t, true
	}
	return "", false
}
