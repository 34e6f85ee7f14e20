package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fintrack/internal/config"
	"fintrack/internal/core"
)

func reportCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize income and expenses",
	}
	cmd.AddCommand(monthlyReportCmd(cfg), yearlyReportCmd(cfg))
	return cmd
}

func monthlyReportCmd(cfg *config.Config) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "monthly YEAR MONTH",
		Short: "Per-category totals for one calendar month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := userID(user)
			if err != nil {
				return err
			}
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			month, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid month %q", args[1])
			}

			rt, err := commandRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			report, err := rt.services.Reports.Monthly(cmd.Context(), uid, year, month)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	userFlag(cmd, &user)
	return cmd
}

func yearlyReportCmd(cfg *config.Config) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "yearly YEAR",
		Short: "Per-category totals for one calendar year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := userID(user)
			if err != nil {
				return err
			}
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}

			rt, err := commandRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			report, err := rt.services.Reports.Yearly(cmd.Context(), uid, year)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	userFlag(cmd, &user)
	return cmd
}

func printReport(out io.Writer, r core.Report) error {
	fmt.Fprintf(out, "Report %s .. %s\n\n", r.Start, r.End)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCATEGORY\tAMOUNT")
	writeSection(w, core.Income, r.Income)
	writeSection(w, core.Expense, r.Expense)
	fmt.Fprintln(w, "\t\t")
	fmt.Fprintf(w, "\tTotal income\t%s\n", core.FormatAmount(r.TotalIncome))
	fmt.Fprintf(w, "\tTotal expense\t%s\n", core.FormatAmount(r.TotalExpense))
	fmt.Fprintf(w, "\tNet savings\t%s\n", core.FormatAmount(r.NetSavings))
	return w.Flush()
}

func writeSection(w io.Writer, typ core.TransactionType, totals map[string]decimal.Decimal) {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\t%s\n", typ, name, core.FormatAmount(totals[name]))
	}
}
