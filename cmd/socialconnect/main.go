package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/socialconnect/internal/config"
)

func main() {
	// .env es opcional; las variables del sistema siempre ganan.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath = os.Getenv(config.EnvPath)

	root := &cobra.Command{
		Use:           "socialconnect",
		Short:         "Broker de login social (OAuth) con emisión de JWT",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", cfgPath, "Ruta al YAML de configuración (env "+config.EnvPath+")")

	load := func() (*config.Config, error) { return config.Load(cfgPath) }

	root.AddCommand(
		newServeCmd(load),
		newProvidersCmd(load),
		newMigrateCmd(load),
		newSealCmd(),
	)
	return root
}

type loadFunc func() (*config.Config, error)
