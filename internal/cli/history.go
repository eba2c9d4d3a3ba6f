package cli

import (
	"github.com/spf13/cobra"

	"launchpad-client/internal/app"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded contribution attempts and raise observations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().History(cmd.Context(), app.HistoryOptions{
			SaleAddress: saleAddr,
			Limit:       historyLimit,
		})
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum rows to display")
}
