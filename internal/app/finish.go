package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"launchpad-client/internal/sale"
)

// Finish submits the privileged finishSale call. The outcome (finalize or
// cancel) follows from the raise against the soft cap; the command prints
// which one applies and requires --yes before touching the chain.
func (a *App) Finish(ctx context.Context, opts FinishOptions) error {
	sess, err := a.newSession(opts.SaleAddress)
	if err != nil {
		return err
	}

	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	action, eligible, err := sess.OwnerAction()
	if err != nil {
		return err
	}

	cfg, err := sess.Config()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "sale %s raised %s / soft cap %s %s: %s applies\n",
		cfg.Address.Hex(),
		sale.FromWei(cfg.Raised).StringFixed(4),
		sale.FromWei(cfg.SoftCap).StringFixed(4),
		a.Config.Chain.NativeSymbol,
		action,
	)

	if !eligible {
		return fmt.Errorf("finish not available: sale must be ended, unfinished, and the wallet must be the owner or an admin")
	}

	if !opts.Confirmed {
		fmt.Fprintln(os.Stdout, "dry run; pass --yes to submit")
		return nil
	}

	confirmCtx, cancel := context.WithTimeout(ctx, a.confirmTimeout())
	defer cancel()
	return sess.ConfirmOwnerAction(confirmCtx)
}

func (a *App) confirmTimeout() time.Duration {
	if a.Config.Chain.ConfirmTimeout > 0 {
		return a.Config.Chain.ConfirmTimeout
	}
	return 3 * time.Minute
}
