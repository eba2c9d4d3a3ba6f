package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"launchpad-client/internal/app"
)

var (
	simAmount       string
	simBalance      string
	simMin          string
	simMax          string
	simStart        int64
	simEnd          int64
	simNow          int64
	simToken        string
	simParticipated bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-buy",
	Short: "Evaluate a buy input offline against a static sale snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simAmount == "" {
			return errors.New("--amount is required")
		}
		return getApp().SimulateBuy(app.SimulateOptions{
			Amount:       simAmount,
			Balance:      simBalance,
			MinBuy:       simMin,
			MaxBuy:       simMax,
			SaleStart:    simStart,
			SaleEnd:      simEnd,
			Now:          simNow,
			TokenName:    simToken,
			Participated: simParticipated,
		})
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simAmount, "amount", "", "Candidate contribution amount")
	simulateCmd.Flags().StringVar(&simBalance, "balance", "0", "Wallet balance in native units")
	simulateCmd.Flags().StringVar(&simMin, "min", "0", "Sale minimum contribution")
	simulateCmd.Flags().StringVar(&simMax, "max", "0", "Sale maximum contribution")
	simulateCmd.Flags().Int64Var(&simStart, "start", 0, "Sale start (unix seconds)")
	simulateCmd.Flags().Int64Var(&simEnd, "end", 0, "Sale end (unix seconds)")
	simulateCmd.Flags().Int64Var(&simNow, "now", 0, "Evaluation instant (unix seconds, defaults to wall clock)")
	simulateCmd.Flags().StringVar(&simToken, "token", "", "Token display name")
	simulateCmd.Flags().BoolVar(&simParticipated, "participated", false, "Treat the account as having already participated")
}
