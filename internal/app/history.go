package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"launchpad-client/internal/sale"
)

// History prints recent contribution attempts and raise observations.
func (a *App) History(ctx context.Context, opts HistoryOptions) error {
	saleAddress := opts.SaleAddress
	if saleAddress == "" {
		saleAddress = a.Config.Launchpad.SaleAddress
	}
	if saleAddress == "" {
		return errors.New("no sale address configured")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show history")
	}
	if closeStore != nil {
		defer closeStore()
	}

	saleKey := normalizeAddress(saleAddress)

	contributions, err := store.ListRecentContributions(ctx, saleKey, opts.Limit)
	if err != nil {
		return err
	}
	samples, err := store.ListRecentSamples(ctx, saleKey, opts.Limit)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	if len(contributions) == 0 {
		fmt.Fprintln(os.Stdout, "no contribution attempts recorded")
	} else {
		fmt.Fprintln(writer, "Time (UTC)\tAccount\tAmount\tResult\tReason\tTx")
		for _, c := range contributions {
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
				c.CreatedAt.UTC().Format(time.RFC3339),
				shortAddress(c.Account),
				sale.FromWei(c.AmountWei).StringFixed(4),
				c.Result,
				c.Reason,
				shortAddress(c.TxHash),
			)
		}
	}

	if len(samples) > 0 {
		fmt.Fprintln(writer, "")
		fmt.Fprintln(writer, "Bucket (UTC)\tRaised\tSoft cap\tStatus")
		for _, s := range samples {
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
				s.Bucket.UTC().Format(time.RFC3339),
				sale.FromWei(s.RaisedWei).StringFixed(4),
				sale.FromWei(s.SoftCapWei).StringFixed(4),
				s.Status,
			)
		}
	}

	return writer.Flush()
}

func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

func shortAddress(v string) string {
	if len(v) <= 12 {
		return v
	}
	return v[:8] + ".." + v[len(v)-4:]
}
