package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/config"
)

func categoriesCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Inspect and seed categories",
	}
	cmd.AddCommand(listCategoriesCmd(cfg), seedCategoriesCmd(cfg))
	return cmd
}

func listCategoriesCmd(cfg *config.Config) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the default categories followed by a user's own",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uid, err := userID(user)
			if err != nil {
				return err
			}
			rt, err := commandRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			cats, err := rt.services.Categories.ListAll(cmd.Context(), uid)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "NAME\tTYPE\tCUSTOM")
			for _, c := range cats {
				fmt.Fprintf(w, "%s\t%s\t%t\n", c.Name, c.Type, c.IsCustom)
			}
			return nil
		},
	}
	userFlag(cmd, &user)
	return cmd
}

func seedCategoriesCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories if none exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := commandRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.services.Categories.EnsureDefaultsSeeded(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "default categories present")
			return nil
		},
	}
}
