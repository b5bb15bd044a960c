package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/lanterngame/internal/api/response"
)

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: must be an integer", raw)
	}
	return id, nil
}

func newStationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "station",
		Short: "Station commands",
	}

	cmd.AddCommand(newStationListCmd())
	cmd.AddCommand(newStationGetCmd())
	cmd.AddCommand(newStationCreateCmd())
	cmd.AddCommand(newStationUpdateCmd())
	cmd.AddCommand(newStationDeleteCmd())
	cmd.AddCommand(newStationResetSignalsCmd())

	return cmd
}

func newStationListCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stations",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/stations"
			if activeOnly {
				path += "?active=true"
			}

			var result []response.Station
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active stations")
	return cmd
}

func newStationGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var result response.Station
			if err := client.Get(fmt.Sprintf("/api/v1/stations/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newStationCreateCmd() *cobra.Command {
	var (
		id, signal, reward int
		name               string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a station (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"station_id":   id,
				"station_name": name,
				"signal_value": signal,
			}
			if reward > 0 {
				req["calibration_reward"] = reward
			}

			var result response.Station
			if err := client.Post("/api/v1/stations", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Station ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "Station name (required)")
	cmd.Flags().IntVar(&signal, "signal", 0, "Initial signal value")
	cmd.Flags().IntVar(&reward, "reward", 0, "Calibration reward (default from server config)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newStationUpdateCmd() *cobra.Command {
	var (
		owner      int
		clearOwner bool
		active     bool
		name       string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a station (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			req := map[string]any{}
			if cmd.Flags().Changed("owner") {
				req["owner"] = owner
			}
			if clearOwner {
				req["reset_owner"] = true
			}
			if cmd.Flags().Changed("active") {
				req["is_active"] = active
			}
			if name != "" {
				req["station_name"] = name
			}
			if len(req) == 0 {
				return fmt.Errorf("nothing to update")
			}

			var result response.Station
			if err := client.Patch(fmt.Sprintf("/api/v1/stations/%d", id), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&owner, "owner", 0, "Set the owning team")
	cmd.Flags().BoolVar(&clearOwner, "clear-owner", false, "Remove the owning team")
	cmd.Flags().BoolVar(&active, "active", true, "Set whether the station is active")
	cmd.Flags().StringVar(&name, "name", "", "Rename the station")
	cmd.MarkFlagsMutuallyExclusive("owner", "clear-owner")

	return cmd
}

func newStationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a station (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := client.Delete(fmt.Sprintf("/api/v1/stations/%d", id)); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Deleted station %d", id))
			return nil
		},
	}
}

func newStationResetSignalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-signals <value>",
		Short: "Set every station's signal to value (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid value %q", args[0])
			}

			var result []response.Station
			if err := client.Post("/api/v1/stations/signals", map[string]int{"value": value}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
