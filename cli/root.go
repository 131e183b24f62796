package cli

import (
	"os"

	"pointsBot/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg config.Config
	log *logrus.Logger
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pointsbot",
		Short: "Discord bot for points and rank-up roles",
		Long: `pointsbot tracks points for players in a Discord community and lets them
trade points for randomly drawn server roles.

Configuration comes from the environment (and a .env file when present).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			log, err = cfg.NewLogger()
			return err
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newGrantAdminCmd())
	rootCmd.AddCommand(newAddRoleCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
