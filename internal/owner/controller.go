// Package owner implements the privileged finalize-or-cancel action for a
// sale whose time window has passed.
package owner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"launchpad-client/internal/notify"
	"launchpad-client/internal/sale"
)

var (
	// ErrBusy indicates a finish submission is already in flight.
	ErrBusy = errors.New("owner: action already in flight")
	// ErrNotEligible indicates the caller or sale fails the gate.
	ErrNotEligible = errors.New("owner: action not available")
)

// Action is the label of the privileged call. The underlying contract call
// is the same either way; the contract decides the effect from the raise.
type Action int

const (
	ActionFinalize Action = iota
	ActionCancel
)

func (a Action) String() string {
	if a == ActionFinalize {
		return "Finalize"
	}
	return "Cancel"
}

// Decide picks the action from the raise against the soft cap. Raised
// exactly equal to the soft cap counts as reaching it.
func Decide(cfg sale.Config) Action {
	if cfg.Raised.GreaterThanOrEqual(cfg.SoftCap) {
		return ActionFinalize
	}
	return ActionCancel
}

// Eligible gates the action: the caller must be the sale owner or an
// admin, the sale's end time must have passed, and the sale must not
// already be finished.
func Eligible(cfg sale.Config, account common.Address, isAdmin bool, now int64) bool {
	if cfg.Finished {
		return false
	}
	if now < cfg.SaleEnd {
		return false
	}
	return isAdmin || (account != (common.Address{}) && account == cfg.Owner)
}

// TxWaiter tracks the finish transaction to confirmation.
type TxWaiter interface {
	Hash() common.Hash
	AwaitConfirmation(ctx context.Context) error
}

// Finisher is the chain-write surface for the finish call.
type Finisher interface {
	SubmitFinish(ctx context.Context, saleAddr common.Address) (TxWaiter, error)
}

// Controller runs at most one finish flow at a time.
type Controller struct {
	finisher  Finisher
	notifier  notify.Notifier
	logger    zerolog.Logger
	onRefresh func()

	mu         sync.Mutex
	processing bool
}

// NewController constructs a Controller. onRefresh is invoked after the
// flow terminates so the surrounding application re-fetches sale state; the
// controller never reloads anything itself.
func NewController(finisher Finisher, notifier notify.Notifier, onRefresh func(), logger zerolog.Logger) *Controller {
	return &Controller{
		finisher:  finisher,
		notifier:  notifier,
		logger:    logger.With().Str("component", "owner_controller").Logger(),
		onRefresh: onRefresh,
	}
}

// Processing reports whether a finish submission is in flight.
func (c *Controller) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Confirm submits the finishSale call after re-checking the gate. A second
// confirm while one is processing returns ErrBusy. Two privileged accounts
// can still race each other on chain; the second confirmation then fails
// like any other reverted call and is reported, not treated as fatal.
func (c *Controller) Confirm(ctx context.Context, cfg sale.Config, account common.Address, isAdmin bool, now int64) error {
	if !Eligible(cfg, account, isAdmin, now) {
		return ErrNotEligible
	}

	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.processing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.processing = false
		c.mu.Unlock()
	}()

	action := Decide(cfg)
	c.logger.Info().
		Str("sale", cfg.Address.Hex()).
		Str("action", action.String()).
		Msg("submitting finish call")

	waiter, err := c.finisher.SubmitFinish(ctx, cfg.Address)
	if err == nil {
		err = waiter.AwaitConfirmation(ctx)
	}

	if err != nil {
		c.logger.Warn().Err(err).Str("sale", cfg.Address.Hex()).Msg("finish call failed")
		c.notify(notify.KindError, "Sorry", action.String()+" sale failed")
		return nil
	}

	c.notify(notify.KindSuccess, "Thanks", action.String()+" sale succeeded")

	if c.onRefresh != nil {
		c.onRefresh()
	}
	return nil
}

func (c *Controller) notify(kind notify.Kind, title, message string) {
	if c.notifier == nil {
		return
	}
	note := notify.Note{Kind: kind, Title: title, Message: message, Duration: 2 * time.Second}
	if err := c.notifier.Notify(context.Background(), note); err != nil {
		c.logger.Error().Err(err).Msg("failed to dispatch notification")
	}
}
