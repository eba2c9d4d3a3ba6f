package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"launchpad-client/internal/sale"
)

// Status fetches the sale snapshot and prints the derived state.
func (a *App) Status(ctx context.Context, opts StatusOptions) error {
	sess, err := a.newSession(opts.SaleAddress)
	if err != nil {
		return err
	}

	if err := sess.Refresh(ctx); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	record, status := sess.WaitSettled(waitCtx)

	cfg, err := sess.Config()
	if err != nil {
		return err
	}

	window := sess.Window()
	state := sess.ButtonState()
	symbol := a.Config.Chain.NativeSymbol

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Sale\t%s\n", cfg.Address.Hex())
	fmt.Fprintf(writer, "Token\t%s (%s)\n", cfg.Token.Name, cfg.Token.Symbol)
	fmt.Fprintf(writer, "Phase\t%s\n", window.Phase)
	fmt.Fprintf(writer, "Access\t%s\n", accessLabel(cfg, window))
	fmt.Fprintf(writer, "Raised\t%s / %s %s (soft cap)\n",
		sale.FromWei(cfg.Raised).StringFixed(4),
		sale.FromWei(cfg.SoftCap).StringFixed(4),
		symbol,
	)
	fmt.Fprintf(writer, "Limits\t%s - %s %s\n",
		sale.FromWei(cfg.MinContribution).StringFixed(4),
		sale.FromWei(cfg.MaxContribution).StringFixed(4),
		symbol,
	)
	fmt.Fprintf(writer, "Window\t%s -> %s\n",
		time.Unix(cfg.SaleStart, 0).UTC().Format(time.RFC3339),
		time.Unix(cfg.SaleEnd, 0).UTC().Format(time.RFC3339),
	)

	if fee, ok := sess.ServiceFee(); ok {
		fmt.Fprintf(writer, "Service fee\t%s %s\n", sale.FromWei(fee).StringFixed(4), symbol)
	}

	fmt.Fprintf(writer, "Participation\t%s\n", status)
	if record.HasContribution() {
		fmt.Fprintf(writer, "Contributed\t%s %s for %s %s\n",
			sale.FromWei(record.NativeAmount).StringFixed(4), symbol,
			record.TokenAmount.String(), cfg.Token.Symbol,
		)
	}

	fmt.Fprintf(writer, "Action\t%s\n", state.Label)

	if action, eligible, aErr := sess.OwnerAction(); aErr == nil && eligible {
		fmt.Fprintf(writer, "Owner action\t%s available (run finish)\n", action)
	}

	return writer.Flush()
}

func accessLabel(cfg sale.Config, window sale.WindowState) string {
	switch {
	case cfg.PublicOnly():
		return "public"
	case window.IsPublicRound:
		return "whitelist + public (public round active)"
	default:
		return "whitelist + public"
	}
}
