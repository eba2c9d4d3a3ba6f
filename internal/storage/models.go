package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contribution captures a submitted buy attempt for auditing.
type Contribution struct {
	ID        int64
	Sale      string
	Account   string
	AmountWei decimal.Decimal
	TxHash    string
	Result    string
	Reason    string
	CreatedAt time.Time
}

// RaiseSample represents a persisted observation of a sale's total raise.
type RaiseSample struct {
	Sale       string
	Bucket     time.Time
	RaisedWei  decimal.Decimal
	SoftCapWei decimal.Decimal
	Status     string
	CreatedAt  time.Time
}
