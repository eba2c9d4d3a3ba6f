// Package sale holds the immutable sale snapshot and the pure functions
// derived from it: the time-window evaluator and the contribution validator.
package sale

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var weiPerEther = decimal.New(1, 18)

// RoundKind distinguishes eligibility windows within a sale.
type RoundKind int

const (
	RoundWhitelist RoundKind = iota
	RoundPublic
)

// Round is a sub-window of the sale gating who may participate.
type Round struct {
	Kind  RoundKind
	Start int64
	End   int64
}

// TokenMeta carries display metadata for the token on offer.
type TokenMeta struct {
	Address     common.Address
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply decimal.Decimal
}

// Config is the immutable snapshot of one sale. It is produced by the
// sale-data fetch, replaced wholesale on refresh, and never patched.
type Config struct {
	Address common.Address
	Owner   common.Address

	// Contribution limits in wei.
	MinContribution decimal.Decimal
	MaxContribution decimal.Decimal

	SoftCap decimal.Decimal
	Raised  decimal.Decimal

	IsPublic bool
	Finished bool

	SaleStart int64
	SaleEnd   int64
	Rounds    []Round

	Token TokenMeta
}

// PublicRound returns the public eligibility window, if any.
func (c Config) PublicRound() (Round, bool) {
	for _, r := range c.Rounds {
		if r.Kind == RoundPublic {
			return r, true
		}
	}
	return Round{}, false
}

// HasWhitelistRound reports whether the sale carries a whitelist window.
func (c Config) HasWhitelistRound() bool {
	for _, r := range c.Rounds {
		if r.Kind == RoundWhitelist {
			return true
		}
	}
	return false
}

// PublicOnly reports whether everyone may participate without whitelist
// gating, either because the sale is flagged public or because no whitelist
// window exists.
func (c Config) PublicOnly() bool {
	return c.IsPublic || !c.HasWhitelistRound()
}

// ToWei converts a display-unit amount into wei using exact arithmetic.
func ToWei(display decimal.Decimal) decimal.Decimal {
	return display.Mul(weiPerEther)
}

// FromWei converts a wei amount into display units using exact arithmetic.
func FromWei(wei decimal.Decimal) decimal.Decimal {
	return wei.DivRound(weiPerEther, 18)
}
