package main

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Veraticus/nestegg/internal/auth"
	"github.com/Veraticus/nestegg/internal/certs"
	"github.com/Veraticus/nestegg/internal/cli"
	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/config"
	"github.com/Veraticus/nestegg/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	var (
		useTLS  bool
		certDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve the dashboard over HTTP. Every route except /api/v1/login needs a
bearer token obtained by signing in as a user added with 'nestegg users add'.

The token signing secret is read from auth.jwt_secret or NESTEGG_AUTH_JWT_SECRET.
With --tls the API is served over HTTPS using a self-signed certificate for
localhost that is generated on first use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, cfg, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			secret, err := cfg.RequireSecret()
			if err != nil {
				return common.NewUserError("Set a token secret of at least 16 bytes before serving.", err)
			}

			gate, err := auth.NewGate(store, secret, auth.WithTTL(cfg.SessionTTL))
			if err != nil {
				return err
			}

			users, err := store.CountUsers(ctx)
			if err != nil {
				return fmt.Errorf("failed to count users: %w", err)
			}
			if users == 0 {
				slog.Warn("No users exist yet, nobody can sign in. Add one with 'nestegg users add'.")
			}

			var tlsConfig *tls.Config
			scheme := "http"
			if useTLS {
				if tlsConfig, err = serverTLS(certDir); err != nil {
					return err
				}
				scheme = "https"
			}

			api := server.NewWebAPI(server.Config{
				Addr: cfg.ServerAddr,
				TLS:  tlsConfig,
				Dependencies: server.Dependencies{
					Reports: store,
					Plans:   store,
					Gate:    gate,
					Logger:  slog.Default(),
				},
				Simulation: server.SimulationConfig{
					Trials:     cfg.Trials,
					Volatility: cfg.Volatility,
					Workers:    cfg.Workers,
				},
			})

			printLine(cmd, cli.FormatInfo(fmt.Sprintf("Serving on %s://%s (ctrl+c to stop)", scheme, cfg.ServerAddr)))
			return api.Start(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from server.addr)")
	cmd.Flags().BoolVar(&useTLS, "tls", false, "Serve HTTPS with a self-signed localhost certificate")
	cmd.Flags().StringVar(&certDir, "cert-dir", "", "Certificate directory (default: ~/.config/nestegg/certs)")
	_ = viper.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))

	return cmd
}

func serverTLS(certDir string) (*tls.Config, error) {
	if certDir == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		certDir = filepath.Join(dir, "certs")
	}
	return certs.NewStore(config.ExpandPath(certDir)).TLSConfig()
}
