package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/lanterngame/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the game server is up and whether a round is live",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := HealthResult{Server: cfg.ServerURL}
			if err := client.Get("/api/v1/health", &result); err != nil {
				return err
			}

			// The round only exists once the server has bootstrapped
			var round response.Round
			if err := client.Get("/api/v1/round", &round); err == nil {
				result.RoundActive = &round.IsActive
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
