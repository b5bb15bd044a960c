package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/lanterngame/internal/api/response"
)

func newCalibrationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calibrate",
		Aliases: []string{"calibration"},
		Short:   "Calibration missions for your wallet",
	}

	cmd.AddCommand(newCalibrationStartCmd())
	cmd.AddCommand(newCalibrationStatusCmd())
	cmd.AddCommand(newCalibrationCompleteCmd())
	cmd.AddCommand(newCalibrationCancelCmd())
	cmd.AddCommand(newCalibrationHistoryCmd())

	return cmd
}

func newCalibrationStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <station-id>",
		Short: "Start a calibration mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var result response.CalibrationMission
			if err := client.Post("/api/v1/calibrations", map[string]int{"station_id": id}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCalibrationStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your active mission",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.ActiveCalibration
			if err := client.Get("/api/v1/calibrations/active", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCalibrationCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <code>",
		Short: "Submit the code read at the station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Completion
			if err := client.Post("/api/v1/calibrations/active/complete", map[string]string{"code": args[0]}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCalibrationCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel your active mission",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.CalibrationMission
			if err := client.Post("/api/v1/calibrations/active/cancel", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCalibrationHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List your finished missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.CalibrationMission
			if err := client.Get("/api/v1/calibrations/history", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
