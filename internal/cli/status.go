package cli

import (
	"github.com/spf13/cobra"

	"launchpad-client/internal/app"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sale snapshot and the derived buy state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Status(cmd.Context(), app.StatusOptions{SaleAddress: saleAddr})
	},
}
