package cmd

import (
	"github.com/spf13/cobra"

	"saldo/internal/core"
	"saldo/internal/report"
)

var (
	accountID int64
	year      int
	month     int
	kind      string
)

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Print the balance of every account",
	Args:  cobra.NoArgs,
	RunE:  runBalances,
}

var timeseriesCmd = &cobra.Command{
	Use:   "timeseries",
	Short: "Print the daily cumulative balance of an account",
	Args:  cobra.NoArgs,
	RunE:  runTimeseries,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the monthly report of an account",
	Long: `Print income, expense, net, the balance at the end of the month and
the spending per category.

Example:
  saldoctl report --account 1 --year 2026 --month 1`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Print the per-category totals of an account",
	Args:  cobra.NoArgs,
	RunE:  runChart,
}

func init() {
	for _, c := range []*cobra.Command{timeseriesCmd, reportCmd, chartCmd} {
		c.Flags().Int64Var(&accountID, "account", 0, "account id")
		_ = c.MarkFlagRequired("account")
	}
	reportCmd.Flags().IntVar(&year, "year", 0, "report year")
	reportCmd.Flags().IntVar(&month, "month", 0, "report month, 1-12")
	_ = reportCmd.MarkFlagRequired("year")
	_ = reportCmd.MarkFlagRequired("month")
	chartCmd.Flags().StringVar(&kind, "kind", string(core.KindExpense), "income or expense")
}

// withEngine runs fn against a report engine over the configured backend.
func withEngine(cmd *cobra.Command, fn func(*report.Engine) error) error {
	res, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore(res)
	return fn(report.NewEngine(res.Store))
}

func runBalances(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(e *report.Engine) error {
		rows, err := e.AllBalances(cmd.Context())
		if err != nil {
			return err
		}
		return renderBalances(cmd.OutOrStdout(), output, rows)
	})
}

func runTimeseries(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(e *report.Engine) error {
		points, err := e.Timeseries(cmd.Context(), accountID)
		if err != nil {
			return err
		}
		return renderTimeseries(cmd.OutOrStdout(), output, points)
	})
}

func runReport(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(e *report.Engine) error {
		rep, err := e.MonthlyReport(cmd.Context(), accountID, year, month)
		if err != nil {
			return err
		}
		return renderReport(cmd.OutOrStdout(), output, rep)
	})
}

func runChart(cmd *cobra.Command, args []string) error {
	k, err := core.ParseKind(kind)
	if err != nil {
		return err
	}
	return withEngine(cmd, func(e *report.Engine) error {
		rows, err := e.ChartData(cmd.Context(), accountID, k)
		if err != nil {
			return err
		}
		return renderChart(cmd.OutOrStdout(), output, rows)
	})
}
