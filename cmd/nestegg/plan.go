package main

import (
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/Veraticus/nestegg/internal/auth"
	"github.com/Veraticus/nestegg/internal/config"
	"github.com/Veraticus/nestegg/internal/projection"
	"github.com/Veraticus/nestegg/internal/service"
	"github.com/Veraticus/nestegg/internal/tui"
	"github.com/Veraticus/nestegg/internal/tui/themes"
	"github.com/spf13/cobra"
)

const sessionSecretBytes = 32

func planCmd() *cobra.Command {
	var (
		sim        simulationFlags
		theme      string
		storedPlan string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Open the interactive retirement planner",
		Long: `Open a terminal planner to edit a retirement plan, run its projections and
save it. When users have been added with 'nestegg users add', the planner asks
you to sign in first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cfg, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			opts := []tui.Option{
				tui.WithPlanStore(store),
				tui.WithTheme(themes.GetTheme(theme)),
				tui.WithSimulator(projection.NewSimulator(sim.options(cmd.Flags(), cfg)...)),
			}

			if storedPlan != "" {
				plan, err := store.GetRetirementPlan(ctx, storedPlan)
				if err != nil {
					return planLookupError(storedPlan, err)
				}
				opts = append(opts, tui.WithPlan(*plan))
			}

			gate, err := plannerGate(cmd, store, cfg)
			if err != nil {
				return err
			}
			if gate != nil {
				opts = append(opts, tui.WithGate(gate))
			}

			return tui.Run(ctx, opts...)
		},
	}

	sim.register(cmd.Flags())
	cmd.Flags().StringVar(&theme, "theme", "default", "Color theme (default, catppuccin-mocha)")
	cmd.Flags().StringVar(&storedPlan, "plan", "", "Open a saved plan")

	return cmd
}

// plannerGate returns a login gate when any user exists. Planner sessions are
// never exported, so without a configured secret a random one is used.
func plannerGate(cmd *cobra.Command, users service.UserStore, cfg *config.Config) (*auth.Gate, error) {
	count, err := users.CountUsers(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if count == 0 {
		slog.Debug("No users configured, planner opens without sign in")
		return nil, nil
	}

	secret, err := cfg.RequireSecret()
	if err != nil {
		secret = make([]byte, sessionSecretBytes)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
	}

	return auth.NewGate(users, secret, auth.WithTTL(cfg.SessionTTL))
}
