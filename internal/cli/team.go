package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/lanterngame/internal/api/response"
)

func newTeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Team and scoreboard commands",
	}

	cmd.AddCommand(newTeamListCmd())
	cmd.AddCommand(newTeamCreateCmd())
	cmd.AddCommand(newTeamDeleteCmd())
	cmd.AddCommand(newTeamResetPointsCmd())
	cmd.AddCommand(newStandingsCmd())

	return cmd
}

func newTeamListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Team
			if err := client.Get("/api/v1/teams", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newTeamCreateCmd() *cobra.Command {
	var (
		id          int
		name, short string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"team_id":    id,
				"team_name":  name,
				"short_name": short,
			}

			var result response.Team
			if err := client.Post("/api/v1/teams", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Team ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "Team name (required)")
	cmd.Flags().StringVar(&short, "short", "", "Short name (required)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("short")

	return cmd
}

func newTeamDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a team (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := client.Delete(fmt.Sprintf("/api/v1/teams/%d", id)); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Deleted team %d", id))
			return nil
		},
	}
}

func newTeamResetPointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-points",
		Short: "Reset every team's points to zero (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Team
			if err := client.Post("/api/v1/teams/points/reset", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newStandingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Show the scoreboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Standing
			if err := client.Get("/api/v1/standings", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
