package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/wallmon/internal/config"
	"github.com/bnema/wallmon/internal/display"
	"github.com/bnema/wallmon/internal/logger"
)

var (
	setVideo string
	setFPS   int
	setClear bool
)

var setCmd = &cobra.Command{
	Use:   "set <monitor-id>",
	Short: "Assign a video to a monitor",
	Long: `Assign a looping video and target frame rate to a monitor, or clear an
existing assignment. Monitor IDs are the device names shown by
"wallmon monitors", e.g. \\.\DISPLAY1.`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVar(&setVideo, "video", "", "path to the video file")
	setCmd.Flags().IntVar(&setFPS, "fps", config.DefaultFPS, "target frame rate (24, 30, 60 or 120)")
	setCmd.Flags().BoolVar(&setClear, "clear", false, "remove the monitor's assignment")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	monitorID := args[0]

	if setClear {
		if err := config.ClearAssignment(monitorID); err != nil {
			return err
		}
		logger.Infof("cleared wallpaper for %s", monitorID)
		return nil
	}

	if setVideo == "" {
		return fmt.Errorf("either --video or --clear is required")
	}
	if err := config.ValidateFPS(setFPS); err != nil {
		return err
	}

	disp, err := display.New()
	if err != nil {
		return fmt.Errorf("failed to enumerate monitors: %w", err)
	}
	mon := disp.ByID(monitorID)
	if mon == nil {
		return fmt.Errorf("monitor %s is not connected (see \"wallmon monitors\")", monitorID)
	}

	if _, err := os.Stat(setVideo); err != nil {
		logger.Warnf("video file not readable right now: %v", err)
	}

	err = config.SetAssignment(mon.ID, config.Wallpaper{
		VideoPath: setVideo,
		FPS:       setFPS,
		Monitor: config.MonitorSnapshot{
			X:       mon.X,
			Y:       mon.Y,
			Width:   mon.Width,
			Height:  mon.Height,
			Primary: mon.Primary,
			Device:  mon.ID,
		},
	})
	if err != nil {
		return err
	}

	logger.Infof("assigned %s to %s at %d fps", setVideo, mon.ID, setFPS)
	return nil
}
