package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/lanterngame/internal/api/response"
)

func newRoundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Round commands",
	}

	cmd.AddCommand(newRoundActionCmd("status", "Show the round", "GET", "/api/v1/round"))
	cmd.AddCommand(newRoundActionCmd("start", "Start the round (admin)", "POST", "/api/v1/round/start"))
	cmd.AddCommand(newRoundActionCmd("stop", "Stop the round (admin)", "POST", "/api/v1/round/stop"))

	return cmd
}

func newRoundActionCmd(use, short, method, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Round
			if err := client.Do(method, path, nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
