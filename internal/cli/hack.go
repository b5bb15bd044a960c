package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/lanterngame/internal/api/response"
)

func newHackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hack",
		Short: "Hack a station to capture it for your team",
	}

	cmd.AddCommand(newHackStartCmd())
	cmd.AddCommand(newHackStatusCmd())
	cmd.AddCommand(newHackGuessCmd())
	cmd.AddCommand(newHackAbortCmd())

	return cmd
}

func newHackStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <station-id>",
		Short: "Start hacking a station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var result response.HackSession
			if err := client.Post("/api/v1/hacks", map[string]int{"station_id": id}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newHackStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your current hack session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.HackSession
			if err := client.Get("/api/v1/hacks/current", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newHackGuessCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "guess <user-name> <password>",
		Short: "Try a credential against the station",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"user_name": args[0],
				"password":  args[1],
			}
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				req["coordinates"] = map[string]float64{"latitude": lat, "longitude": lon}
			}

			var result response.GuessResponse
			if err := client.Post("/api/v1/hacks/current/guess", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude to record")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude to record")

	return cmd
}

func newHackAbortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abort",
		Short: "Give up on the current hack",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Resolution
			if err := client.Post("/api/v1/hacks/current/abort", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
