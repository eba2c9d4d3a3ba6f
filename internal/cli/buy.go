package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"launchpad-client/internal/app"
)

var buyAmount string

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Contribute to the sale",
	RunE: func(cmd *cobra.Command, args []string) error {
		if buyAmount == "" {
			return errors.New("--amount is required")
		}
		return getApp().Buy(cmd.Context(), app.BuyOptions{
			SaleAddress: saleAddr,
			Amount:      buyAmount,
		})
	},
}

func init() {
	buyCmd.Flags().StringVar(&buyAmount, "amount", "", "Contribution amount in native currency units")
}
