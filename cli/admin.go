package cli

import (
	"fmt"

	"pointsBot/services/playerService"
	"pointsBot/services/roleService"

	"github.com/spf13/cobra"
)

type noDraws struct{}

func (noDraws) Abandon(uint64) bool { return false }

func newGrantAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <user-id>",
		Short: "Make a Discord user an admin, adding them to the game if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user id", args[0])
			if err != nil {
				return err
			}

			store, db, err := openPersistentLedger(cmd.Name())
			if err != nil {
				return err
			}
			defer closeDB(db)

			players := playerService.NewEngine(store, noDraws{}, nil, log)
			if err := players.Bootstrap(cmd.Context(), userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d is now an admin\n", userID)
			return nil
		},
	}
}

func newAddRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-role <guild-id> <role-id>",
		Short: "Add a server role to the rank-up pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			guildID, err := parseID("guild id", args[0])
			if err != nil {
				return err
			}
			roleID, err := parseID("role id", args[1])
			if err != nil {
				return err
			}

			store, db, err := openPersistentLedger(cmd.Name())
			if err != nil {
				return err
			}
			defer closeDB(db)

			roles := roleService.NewEngine(store, log)
			if _, err := roles.SeedRole(cmd.Context(), guildID, roleID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "role %d added to guild %d\n", roleID, guildID)
			return nil
		},
	}
}
