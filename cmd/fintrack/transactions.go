package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/config"
	"fintrack/internal/core"
)

func transactionsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Inspect the ledger",
	}
	cmd.AddCommand(listTransactionsCmd(cfg))
	return cmd
}

func listTransactionsCmd(cfg *config.Config) *cobra.Command {
	var (
		user, start, end, category, typ string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, err := userID(user)
			if err != nil {
				return err
			}
			filter := core.TransactionFilter{Category: category}
			if start != "" {
				if filter.Start, err = core.ParseDate(start); err != nil {
					return err
				}
			}
			if end != "" {
				if filter.End, err = core.ParseDate(end); err != nil {
					return err
				}
			}
			if typ != "" {
				if filter.Type, err = core.ParseTransactionType(typ); err != nil {
					return err
				}
			}

			rt, err := commandRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			txs, err := rt.services.Ledger.List(cmd.Context(), uid, filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
			for _, t := range txs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Date, t.Type, t.Category, core.FormatAmount(t.Amount), t.Description)
			}
			return nil
		},
	}
	userFlag(cmd, &user)
	f := cmd.Flags()
	f.StringVar(&start, "from", "", "first date, YYYY-MM-DD")
	f.StringVar(&end, "to", "", "last date, YYYY-MM-DD")
	f.StringVar(&category, "category", "", "only this category")
	f.StringVar(&typ, "type", "", "INCOME or EXPENSE")
	return cmd
}
