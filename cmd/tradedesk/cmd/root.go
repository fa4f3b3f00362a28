package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradedesk",
	Short: "An order-execution facade over an external stock-price vendor",
	Long: `Tradedesk fronts an upstream stock vendor with a small trading API.

It provides:
  - A cached, paginated view of the vendor's tradable instruments
  - Buy-order execution with a price-deviation guard
  - An append-only transaction ledger with filtering
  - Per-user portfolio valuation against live prices
  - Daily transaction reports`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
