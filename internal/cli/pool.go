package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/lanterngame/internal/api/response"
)

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage the credential pool (admin)",
	}

	cmd.AddCommand(newPoolSeedCmd())
	cmd.AddCommand(newPoolUsersCmd())
	cmd.AddCommand(newPoolFakeCmd())

	return cmd
}

func newPoolSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.json>",
		Short: "Seed game users from a JSON array of {user_name, passwords, station_id}",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var users []map[string]any
			if err := json.Unmarshal(data, &users); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			var result response.SeedResult
			if err := client.Post("/api/v1/game-users", map[string]any{"game_users": users}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPoolUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List seeded game users",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.GameUser
			if err := client.Get("/api/v1/game-users", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPoolFakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fake [password...]",
		Short: "Add fake passwords, or list them when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.FakePasswords
			var err error
			if len(args) == 0 {
				err = client.Get("/api/v1/fake-passwords", &result)
			} else {
				err = client.Post("/api/v1/fake-passwords", map[string]any{"passwords": args}, &result)
			}
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
