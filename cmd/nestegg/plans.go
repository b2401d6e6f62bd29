package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/nestegg/internal/cli"
	"github.com/Veraticus/nestegg/internal/common"
	"github.com/spf13/cobra"
)

func plansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Manage saved retirement plans",
		Long:  `List, show, and delete retirement plans saved with 'nestegg retire --save' or the planner.`,
	}

	cmd.AddCommand(plansListCmd())
	cmd.AddCommand(plansShowCmd())
	cmd.AddCommand(plansDeleteCmd())

	return cmd
}

func plansListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			plans, err := store.ListRetirementPlans(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list plans: %w", err)
			}

			printLine(cmd, cli.RenderPlanList(plans))
			return nil
		},
	}
}

func plansShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the inputs of a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			plan, err := store.GetRetirementPlan(cmd.Context(), args[0])
			if err != nil {
				return planLookupError(args[0], err)
			}

			printLine(cmd, cli.RenderPlan(*plan))
			return nil
		},
	}
}

func plansDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			store, _, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			// Confirm deletion
			if !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to delete plan %q? (y/N): ", name)
				var response string
				_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
				if strings.ToLower(strings.TrimSpace(response)) != "y" {
					printLine(cmd, "Deletion cancelled.")
					return nil
				}
			}

			if err := store.DeleteRetirementPlan(cmd.Context(), name); err != nil {
				return planLookupError(name, err)
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted plan %q", name)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

func planLookupError(name string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("No saved plan named %q.", name), err)
	}
	return fmt.Errorf("failed to load plan %q: %w", name, err)
}
