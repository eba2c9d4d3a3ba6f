package chain

import "strings"

// FailureKind is the closed set of user-facing failure categories that a
// chain error can map onto.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureUserRejected
	FailureAlreadyParticipated
	FailureWrongRound
	FailureInsufficientFunds
	FailureReverted
)

func (k FailureKind) String() string {
	switch k {
	case FailureUserRejected:
		return "user rejected"
	case FailureAlreadyParticipated:
		return "already participated"
	case FailureWrongRound:
		return "wrong round"
	case FailureInsufficientFunds:
		return "insufficient funds"
	case FailureReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// failureTable maps error-message substrings (lowercased) to categories.
// The matching is ad hoc by nature — node and wallet software report
// failures as free text — so the table is kept closed and first-match so
// the rules can be tested in isolation. Order matters: more specific
// substrings come first.
var failureTable = []struct {
	substr string
	kind   FailureKind
}{
	{"user rejected transaction", FailureUserRejected},
	{"user denied transaction", FailureUserRejected},
	{"already participated", FailureAlreadyParticipated},
	{"wrong round", FailureWrongRound},
	{"not in whitelist", FailureWrongRound},
	{"not whitelisted", FailureWrongRound},
	{"insufficient funds", FailureInsufficientFunds},
	{"execution reverted", FailureReverted},
}

// Classify maps a chain error onto a failure category. Unrecognised
// messages fall back to FailureUnknown.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}

	message := strings.ToLower(err.Error())
	for _, entry := range failureTable {
		if strings.Contains(message, entry.substr) {
			return entry.kind
		}
	}
	return FailureUnknown
}
