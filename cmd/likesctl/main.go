// Command likesctl runs maintenance tasks against the likes store: schema
// migrations, counter reconciliation, user seeding and dev tokens.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikiasgoitom/likes/internal/infrastructure/config"
	"github.com/mikiasgoitom/likes/internal/infrastructure/logger"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// env is populated before any subcommand runs.
type env struct {
	cfg    *config.Config
	logger usecasecontract.IAppLogger
}

func main() {
	e := &env{}
	var configFile string

	root := &cobra.Command{
		Use:           "likesctl",
		Short:         "Operate the likes store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if configFile != "" {
				if err := os.Setenv("LIKES_CONFIG_FILE", configFile); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.logger = logger.New(cfg.LogLevel, cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides LIKES_CONFIG_FILE)")

	root.AddCommand(migrateCmd(e))
	root.AddCommand(recountCmd(e))
	root.AddCommand(tokenCmd(e))
	root.AddCommand(usersCmd(e))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
