package app

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"launchpad-client/internal/button"
	"launchpad-client/internal/participation"
	"launchpad-client/internal/sale"
)

// SimulateBuy 基于给定的静态快照, 离线评估一次购买输入.
// Nothing touches the chain; the command prints the clamp, the verdict,
// and the button state the same inputs would produce.
func (a *App) SimulateBuy(opts SimulateOptions) error {
	amount, err := decimal.NewFromString(opts.Amount)
	if err != nil {
		return fmt.Errorf("invalid --amount value: %w", err)
	}
	balance, err := decimal.NewFromString(opts.Balance)
	if err != nil {
		return fmt.Errorf("invalid --balance value: %w", err)
	}
	minBuy, err := decimal.NewFromString(opts.MinBuy)
	if err != nil {
		return fmt.Errorf("invalid --min value: %w", err)
	}
	maxBuy, err := decimal.NewFromString(opts.MaxBuy)
	if err != nil {
		return fmt.Errorf("invalid --max value: %w", err)
	}

	now := opts.Now
	if now == 0 {
		now = time.Now().Unix()
	}

	tokenName := opts.TokenName
	if tokenName == "" {
		tokenName = "Token"
	}

	cfg := sale.Config{
		MinContribution: sale.ToWei(minBuy),
		MaxContribution: sale.ToWei(maxBuy),
		SaleStart:       opts.SaleStart,
		SaleEnd:         opts.SaleEnd,
		Token:           sale.TokenMeta{Name: tokenName},
	}

	prior := decimal.Zero
	if opts.Participated {
		prior = decimal.NewFromInt(1)
	}

	clamped := sale.ClampAmount(amount, cfg)
	verdict := sale.ValidateContribution(clamped, cfg, sale.ToWei(balance), prior)
	window := sale.Window(cfg, now)

	state := button.Project(button.Inputs{
		Connected:           true,
		ParticipationStatus: participation.StatusResolved,
		HasParticipated:     opts.Participated,
		Window:              window,
		TokenName:           tokenName,
		InitDone:            true,
	})

	fmt.Fprintf(os.Stdout, "phase: %s\n", window.Phase)
	if !clamped.Equal(amount) {
		fmt.Fprintf(os.Stdout, "amount clamped: %s -> %s\n", amount, clamped)
	}
	fmt.Fprintf(os.Stdout, "verdict: %s\n", verdict)
	fmt.Fprintf(os.Stdout, "button: %q (disabled=%t)\n", state.Label, state.Disabled)

	wouldSubmit := verdict == sale.Valid && window.Phase == sale.PhaseInProgress && !state.Disabled
	fmt.Fprintf(os.Stdout, "would submit: %t\n", wouldSubmit)
	return nil
}
