package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"saldo/internal/report"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
)

func amount(d decimal.Decimal) string { return d.StringFixed(2) }

type balanceView struct {
	AccountID int64  `yaml:"account_id"`
	Name      string `yaml:"name"`
	Currency  string `yaml:"currency"`
	Balance   string `yaml:"balance"`
}

type pointView struct {
	Date    string `yaml:"date"`
	Balance string `yaml:"balance"`
}

type categoryView struct {
	Category string `yaml:"category"`
	Amount   string `yaml:"amount"`
}

type reportView struct {
	AccountID  int64          `yaml:"account_id"`
	Period     string         `yaml:"period"`
	Income     string         `yaml:"income"`
	Expense    string         `yaml:"expense"`
	Net        string         `yaml:"net"`
	BalanceEnd string         `yaml:"balance_end"`
	ByCategory []categoryView `yaml:"by_category"`
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderBalances(w io.Writer, format string, rows []report.AccountBalance) error {
	views := make([]balanceView, 0, len(rows))
	for _, r := range rows {
		views = append(views, balanceView{AccountID: r.AccountID, Name: r.AccountName, Currency: r.Currency, Balance: amount(r.Balance)})
	}
	if format == formatYAML {
		return writeYAML(w, views)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tACCOUNT\tCURRENCY\tBALANCE")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", v.AccountID, v.Name, v.Currency, v.Balance)
	}
	return tw.Flush()
}

func renderTimeseries(w io.Writer, format string, points []report.DailyBalance) error {
	views := make([]pointView, 0, len(points))
	for _, p := range points {
		views = append(views, pointView{Date: p.Date.Format("2006-01-02"), Balance: amount(p.Balance)})
	}
	if format == formatYAML {
		return writeYAML(w, views)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tBALANCE")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\n", v.Date, v.Balance)
	}
	return tw.Flush()
}

func renderReport(w io.Writer, format string, rep report.MonthlyReport) error {
	view := reportView{
		AccountID:  rep.AccountID,
		Period:     rep.Period.String(),
		Income:     amount(rep.KPIs.Income),
		Expense:    amount(rep.KPIs.Expense),
		Net:        amount(rep.KPIs.Net),
		BalanceEnd: amount(rep.KPIs.BalanceEnd),
		ByCategory: make([]categoryView, 0, len(rep.ByCategory)),
	}
	for _, c := range rep.ByCategory {
		view.ByCategory = append(view.ByCategory, categoryView{Category: c.Category, Amount: amount(c.Spent)})
	}
	if format == formatYAML {
		return writeYAML(w, view)
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Account\t%d\n", view.AccountID)
	fmt.Fprintf(tw, "Period\t%s\n", view.Period)
	fmt.Fprintf(tw, "Income\t%s\n", view.Income)
	fmt.Fprintf(tw, "Expense\t%s\n", view.Expense)
	fmt.Fprintf(tw, "Net\t%s\n", view.Net)
	fmt.Fprintf(tw, "Balance end\t%s\n", view.BalanceEnd)
	if len(view.ByCategory) > 0 {
		fmt.Fprintln(tw, "\t")
		fmt.Fprintln(tw, "CATEGORY\tSPENT")
		for _, c := range view.ByCategory {
			fmt.Fprintf(tw, "%s\t%s\n", c.Category, c.Amount)
		}
	}
	return tw.Flush()
}

func renderChart(w io.Writer, format string, rows []report.CategoryTotal) error {
	views := make([]categoryView, 0, len(rows))
	for _, r := range rows {
		views = append(views, categoryView{Category: r.Category, Amount: amount(r.Total)})
	}
	if format == formatYAML {
		return writeYAML(w, views)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tTOTAL")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\n", v.Category, v.Amount)
	}
	return tw.Flush()
}
