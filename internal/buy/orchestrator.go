// Package buy drives a single contribution submission through its
// lifecycle: estimate, submit, confirm. Failures are classified into
// user-facing outcomes; nothing escapes as a raw error.
package buy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"launchpad-client/internal/chain"
	"launchpad-client/internal/notify"
)

// ErrBusy indicates a submission is already in flight; the new request is
// dropped, never queued.
var ErrBusy = errors.New("buy: contribution already in flight")

// State is the orchestrator lifecycle position.
type State int

const (
	StateIdle State = iota
	StateEstimating
	StateSubmitting
	StateConfirming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEstimating:
		return "estimating"
	case StateSubmitting:
		return "submitting"
	case StateConfirming:
		return "confirming"
	default:
		return "unknown"
	}
}

// Result is the terminal disposition of one submission.
type Result int

const (
	Succeeded Result = iota
	Rejected
	Failed
)

func (r Result) String() string {
	switch r {
	case Succeeded:
		return "succeeded"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reason details a failed submission.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonEstimation
	ReasonAlreadyParticipated
	ReasonWrongRound
	ReasonInsufficientFunds
	ReasonReverted
	ReasonUnknown
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonEstimation:
		return "estimation failed"
	case ReasonAlreadyParticipated:
		return "already participated"
	case ReasonWrongRound:
		return "wrong round"
	case ReasonInsufficientFunds:
		return "insufficient funds"
	case ReasonReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// Outcome is consumed once by the caller and then discarded; the live
// orchestrator state returns to idle as soon as the flow terminates.
type Outcome struct {
	Result Result
	Reason Reason
	TxHash common.Hash
}

// TxWaiter tracks a submitted transaction to confirmation.
type TxWaiter interface {
	Hash() common.Hash
	AwaitConfirmation(ctx context.Context) error
}

// Submitter is the chain-write surface the orchestrator needs. The signing
// capability is already bound; it is invoked at most once per flow.
type Submitter interface {
	EstimateParticipate(ctx context.Context, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (uint64, error)
	SubmitParticipate(ctx context.Context, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (TxWaiter, error)
}

// Orchestrator runs at most one contribution flow at a time.
type Orchestrator struct {
	submitter Submitter
	notifier  notify.Notifier
	logger    zerolog.Logger
	tokenName string
	onSuccess func()

	mu    sync.Mutex
	state State
}

// NewOrchestrator constructs an orchestrator. onSuccess is invoked after a
// confirmed contribution to signal that cached facts (participation,
// balance) are stale; the orchestrator never refreshes them itself.
func NewOrchestrator(submitter Submitter, notifier notify.Notifier, tokenName string, onSuccess func(), logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		submitter: submitter,
		notifier:  notifier,
		logger:    logger.With().Str("component", "buy_orchestrator").Logger(),
		tokenName: tokenName,
		onSuccess: onSuccess,
	}
}

// State returns the live lifecycle position.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Active reports whether a submission is in flight.
func (o *Orchestrator) Active() bool {
	return o.State() != StateIdle
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Submit drives one already-validated contribution through the chain. A
// call while another flow is active returns ErrBusy without touching the
// chain. Every terminal path resets the orchestrator to idle and emits
// exactly one notification.
func (o *Orchestrator) Submit(ctx context.Context, saleAddr common.Address, roundID uint64, valueWei decimal.Decimal) (Outcome, error) {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	o.state = StateEstimating
	o.mu.Unlock()

	defer o.setState(StateIdle)

	if _, err := o.submitter.EstimateParticipate(ctx, saleAddr, roundID, valueWei); err != nil {
		o.logger.Warn().Err(err).Str("sale", saleAddr.Hex()).Msg("estimation failed; submission aborted")
		o.notifyError("Sorry", "Transaction would fail, nothing was submitted")
		return Outcome{Result: Failed, Reason: ReasonEstimation}, nil
	}

	o.setState(StateSubmitting)

	waiter, err := o.submitter.SubmitParticipate(ctx, saleAddr, roundID, valueWei)
	if err != nil {
		return o.failSubmission(saleAddr, err), nil
	}

	o.setState(StateConfirming)

	if err := waiter.AwaitConfirmation(ctx); err != nil {
		outcome := o.failSubmission(saleAddr, err)
		outcome.TxHash = waiter.Hash()
		return outcome, nil
	}

	o.logger.Info().
		Str("sale", saleAddr.Hex()).
		Str("tx_hash", waiter.Hash().Hex()).
		Str("value_wei", valueWei.String()).
		Msg("contribution confirmed")
	o.notify(notify.KindSuccess, "Thanks", "Thanks for participation")

	if o.onSuccess != nil {
		o.onSuccess()
	}

	return Outcome{Result: Succeeded, TxHash: waiter.Hash()}, nil
}

func (o *Orchestrator) failSubmission(saleAddr common.Address, err error) Outcome {
	kind := chain.Classify(err)
	o.logger.Warn().Err(err).
		Str("sale", saleAddr.Hex()).
		Str("failure_kind", kind.String()).
		Msg("contribution failed")

	switch kind {
	case chain.FailureUserRejected:
		// Declined signing is informational, not an error.
		o.notify(notify.KindInfo, "Rejected", "Please approve the wallet prompt to continue buying")
		return Outcome{Result: Rejected}
	case chain.FailureAlreadyParticipated:
		o.notify(notify.KindInfo, "Sorry", "Sorry, already participated")
		return Outcome{Result: Failed, Reason: ReasonAlreadyParticipated}
	case chain.FailureWrongRound:
		o.notify(notify.KindInfo, "Sorry", "Sorry, wrong round, or you're not in the whitelist")
		return Outcome{Result: Failed, Reason: ReasonWrongRound}
	case chain.FailureInsufficientFunds:
		o.notifyError("Error", "You don't have enough funds")
		return Outcome{Result: Failed, Reason: ReasonInsufficientFunds}
	case chain.FailureReverted:
		o.notifyError("Error", "Transaction reverted")
		return Outcome{Result: Failed, Reason: ReasonReverted}
	default:
		o.notifyError("Error", "Buying "+o.tokenName+" failed")
		return Outcome{Result: Failed, Reason: ReasonUnknown}
	}
}

func (o *Orchestrator) notify(kind notify.Kind, title, message string) {
	if o.notifier == nil {
		return
	}
	note := notify.Note{Kind: kind, Title: title, Message: message, Duration: 3 * time.Second}
	if err := o.notifier.Notify(context.Background(), note); err != nil {
		o.logger.Error().Err(err).Msg("failed to dispatch notification")
	}
}

func (o *Orchestrator) notifyError(title, message string) {
	o.notify(notify.KindError, title, message)
}
