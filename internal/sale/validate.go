package sale

import "github.com/shopspring/decimal"

// Verdict is the local validation result for a candidate contribution.
type Verdict int

const (
	Valid Verdict = iota
	BelowMinimum
	AboveMaximum
	InsufficientBalance
	AlreadyParticipated
)

func (v Verdict) String() string {
	switch v {
	case Valid:
		return "valid"
	case BelowMinimum:
		return "below minimum"
	case AboveMaximum:
		return "above maximum"
	case InsufficientBalance:
		return "insufficient balance"
	case AlreadyParticipated:
		return "already participated"
	default:
		return "unknown"
	}
}

// ClampAmount caps an entry-time amount at the sale maximum. No lower bound
// is applied here; being under the minimum is a validation verdict, not an
// input constraint.
func ClampAmount(amount decimal.Decimal, cfg Config) decimal.Decimal {
	maxDisplay := FromWei(cfg.MaxContribution)
	if amount.GreaterThan(maxDisplay) {
		return maxDisplay
	}
	return amount
}

// ValidateContribution checks a candidate amount (display units) against
// the sale limits, the caller's wei balance, and any prior participation.
// First matching rule wins.
func ValidateContribution(amount decimal.Decimal, cfg Config, balanceWei decimal.Decimal, priorTokens decimal.Decimal) Verdict {
	if priorTokens.IsPositive() {
		return AlreadyParticipated
	}

	amountWei := ToWei(amount)
	if amountWei.GreaterThan(balanceWei) {
		return InsufficientBalance
	}
	if amountWei.LessThan(cfg.MinContribution) {
		return BelowMinimum
	}
	if amountWei.GreaterThan(cfg.MaxContribution) {
		return AboveMaximum
	}
	return Valid
}
