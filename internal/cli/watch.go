package cli

import (
	"github.com/spf13/cobra"

	"launchpad-client/internal/app"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Periodically refresh the sale and record raise history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context(), app.WatchOptions{SaleAddress: saleAddr})
	},
}
