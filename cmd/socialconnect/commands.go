package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/socialconnect/internal/app"
	"github.com/dropDatabas3/socialconnect/internal/http/server"
	"github.com/dropDatabas3/socialconnect/internal/observability/logger"
	"github.com/dropDatabas3/socialconnect/internal/observability/tracing"
	"github.com/dropDatabas3/socialconnect/internal/security/secretbox"
	"github.com/dropDatabas3/socialconnect/internal/store"
	"github.com/dropDatabas3/socialconnect/internal/store/pg"
)

func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger.Init(cfg.Logger())
			defer func() { _ = logger.Sync() }()
			log := logger.L()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing())
			if err != nil {
				return fmt.Errorf("tracing: %w", err)
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(sctx); err != nil {
					log.Warn("tracing shutdown", logger.Err(err))
				}
			}()

			a, err := app.New(ctx, cfg, app.Options{})
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Warn("app close", logger.Err(err))
				}
			}()

			log.Info("listening", logger.String("addr", cfg.Server.Addr), logger.String("public_url", cfg.Server.PublicURL))
			return server.Run(ctx, server.Config{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, a.Handler)
		},
	}
}

// providers imprime el mapa habilitado/deshabilitado tal como lo ve el servicio.
func newProvidersCmd(load loadFunc) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Lista los providers y si están habilitados",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			cfg.Metrics.Enabled = false
			cfg.Rate.Enabled = false
			a, err := app.New(cmd.Context(), cfg, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			enabled, err := a.Service.EnabledProviders(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(enabled)
			}
			names := make([]string, 0, len(enabled))
			for n := range enabled {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				fmt.Fprintf(out, "%-10s %v\n", n, enabled[n])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Salida JSON")
	return cmd
}

func newMigrateCmd(load loadFunc) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica migraciones de Postgres y siembra los grants iniciales",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger.Init(cfg.Logger())
			defer func() { _ = logger.Sync() }()

			if cfg.Storage.Driver != "postgres" {
				return errors.New("migrate requires storage.driver=postgres")
			}
			conn, err := store.Open(cmd.Context(), cfg.Store())
			if err != nil {
				return err
			}
			defer conn.Close()
			pgConn := conn.(*pg.Connection)

			applied, err := pg.Migrate(cmd.Context(), pgConn.Pool())
			if err != nil {
				return err
			}
			for _, name := range applied {
				logger.L().Info("migration applied", logger.String("name", name))
			}
			if seed {
				if err := pgConn.Settings().Seed(cmd.Context(), cfg.Grant, cfg.Advanced); err != nil {
					return fmt.Errorf("seed settings: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied=%d seeded=%v\n", len(applied), seed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", true, "Sembrar grant/advanced desde la config si no existen")
	return cmd
}

// seal cifra un secreto con SECRETBOX_MASTER_KEY para guardarlo en config.
func newSealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seal <secret>",
		Short: "Cifra un client secret (enc:...) con la master key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := secretbox.FromEnv()
			if err != nil {
				return err
			}
			sealed, err := box.Seal(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secretbox.Prefix+sealed)
			return nil
		},
	}
}
