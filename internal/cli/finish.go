package cli

import (
	"github.com/spf13/cobra"

	"launchpad-client/internal/app"
)

var finishConfirmed bool

var finishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Finalize or cancel an ended sale (owner or admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Finish(cmd.Context(), app.FinishOptions{
			SaleAddress: saleAddr,
			Confirmed:   finishConfirmed,
		})
	},
}

func init() {
	finishCmd.Flags().BoolVar(&finishConfirmed, "yes", false, "Actually submit the finish transaction")
}
