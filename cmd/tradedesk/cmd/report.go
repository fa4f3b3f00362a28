package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradedesk/ledger"
	"github.com/rustyeddy/tradedesk/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a daily transaction report from a sqlite ledger",
	Long: `Build the daily transaction report (totals, success rate, volume,
per-user activity) from a sqlite-backed ledger and render it as HTML.

Example:
  tradedesk report --db ./ledger.db --date 2025-06-15 --out report.html`,
	RunE: runReport,
}

var (
	reportDBPath string
	reportDate   string
	reportOut    string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportDBPath, "db", "", "path to the sqlite ledger (required)")
	reportCmd.Flags().StringVar(&reportDate, "date", "", "report date as YYYY-MM-DD (default today)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (default stdout)")
	reportCmd.MarkFlagRequired("db")
}

func runReport(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if reportDate != "" {
		var err error
		day, err = time.ParseInLocation("2006-01-02", reportDate, time.Local)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	led, err := ledger.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	daily, err := report.BuildDaily(led, day)
	if err != nil {
		return err
	}

	html, err := daily.HTML()
	if err != nil {
		return err
	}

	if reportOut == "" {
		fmt.Print(html)
		return nil
	}
	if err := os.WriteFile(reportOut, []byte(html), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("Report for %s written to %s (%d transactions, %s%% success)\n",
		day.Format("2006-01-02"), reportOut, daily.Stats.Total, daily.Stats.SuccessRate)
	return nil
}
