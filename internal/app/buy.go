package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"launchpad-client/internal/buy"
	"launchpad-client/internal/sale"
	"launchpad-client/internal/storage"
)

// Buy submits one contribution through the full validate-estimate-submit
// flow and records the attempt when a database is configured.
func (a *App) Buy(ctx context.Context, opts BuyOptions) error {
	amount, err := decimal.NewFromString(opts.Amount)
	if err != nil {
		return fmt.Errorf("invalid --amount value: %w", err)
	}
	if !amount.IsPositive() {
		return errors.New("--amount must be positive")
	}

	sess, err := a.newSession(opts.SaleAddress)
	if err != nil {
		return err
	}

	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	sess.WaitSettled(waitCtx)

	outcome, verdict, err := sess.SubmitContribution(ctx, amount)
	if err != nil {
		return err
	}

	cfg, _ := sess.Config()
	a.recordContribution(ctx, cfg, amount, outcome, verdict)

	if verdict != sale.Valid {
		return fmt.Errorf("contribution not submitted: %s", verdict)
	}

	switch outcome.Result {
	case buy.Succeeded:
		fmt.Fprintf(os.Stdout, "contribution confirmed: %s\n", outcome.TxHash.Hex())
		return nil
	case buy.Rejected:
		return errors.New("signing was rejected")
	default:
		if outcome.TxHash != (common.Hash{}) {
			return fmt.Errorf("contribution failed (%s): %s", outcome.Reason, outcome.TxHash.Hex())
		}
		return fmt.Errorf("contribution failed: %s", outcome.Reason)
	}
}

func (a *App) recordContribution(ctx context.Context, cfg sale.Config, amount decimal.Decimal, outcome buy.Outcome, verdict sale.Verdict) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil || store == nil {
		if err != nil {
			a.Logger.Warn().Err(err).Msg("contribution audit skipped; store unavailable")
		}
		return
	}
	defer closeStore()

	result := outcome.Result.String()
	reason := outcome.Reason.String()
	if verdict != sale.Valid {
		result = "blocked"
		reason = verdict.String()
	}

	account := ""
	if w, wErr := a.newWallet(); wErr == nil && w.Connected() {
		account = w.Address().Hex()
	}

	txHash := ""
	if outcome.TxHash != (common.Hash{}) {
		txHash = outcome.TxHash.Hex()
	}

	rec := storage.Contribution{
		Sale:      normalizeAddress(cfg.Address.Hex()),
		Account:   account,
		AmountWei: sale.ToWei(sale.ClampAmount(amount, cfg)),
		TxHash:    txHash,
		Result:    result,
		Reason:    reason,
	}
	if _, insErr := store.InsertContribution(ctx, rec); insErr != nil {
		a.Logger.Warn().Err(insErr).Msg("failed to record contribution")
	}
}
