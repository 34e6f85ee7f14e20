package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fintrack/internal/config"
	"fintrack/internal/core"
)

func goalsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Inspect savings goals",
	}
	cmd.AddCommand(listGoalsCmd(cfg))
	return cmd
}

func listGoalsCmd(cfg *config.Config) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's goals with their progress as of today",
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

			goals, err := rt.services.Goals.List(cmd.Context(), uid)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tNAME\tTARGET\tBY\tSAVED\tREMAINING\tPROGRESS")
			for _, g := range goals {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s%%\n",
					g.Goal.ID,
					g.Goal.Name,
					core.FormatAmount(g.Goal.TargetAmount),
					g.Goal.TargetDate,
					core.FormatAmount(g.CurrentProgress),
					core.FormatAmount(g.RemainingAmount),
					core.FormatAmount(g.ProgressPercentage))
			}
			return nil
		},
	}
	userFlag(cmd, &user)
	return cmd
}
