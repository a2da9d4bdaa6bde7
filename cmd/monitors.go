package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/wallmon/internal/config"
	"github.com/bnema/wallmon/internal/display"
)

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID        string `json:"id"`
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
	Width     int32  `json:"width"`
	Height    int32  `json:"height"`
	Primary   bool   `json:"primary"`
	VideoPath string `json:"video_path,omitempty"`
	FPS       int    `json:"fps,omitempty"`
}

var jsonOutput bool

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "Show monitor configuration",
	Long:  `Display connected monitors, their geometry and their wallpaper assignments.`,
	RunE:  runMonitors,
}

func init() {
	monitorsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.AddCommand(monitorsCmd)
}

func runMonitors(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	disp, err := display.New()
	if err != nil {
		return fmt.Errorf("failed to enumerate monitors: %w", err)
	}

	monitors := disp.GetMonitors()
	infos := make([]MonitorInfo, len(monitors))
	for i, mon := range monitors {
		infos[i] = MonitorInfo{
			ID:      mon.ID,
			X:       mon.X,
			Y:       mon.Y,
			Width:   mon.Width,
			Height:  mon.Height,
			Primary: mon.Primary,
		}
		if w, ok := config.Assignment(mon.ID); ok {
			infos[i].VideoPath = w.VideoPath
			infos[i].FPS = w.FPS
		}
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(infos)
	}

	if len(infos) == 0 {
		fmt.Println("No monitors detected")
		return nil
	}

	fmt.Printf("Detected %d monitor(s):\n\n", len(infos))
	for i, info := range infos {
		role := "Secondary"
		if info.Primary {
			role = "Primary"
		}
		fmt.Printf("Monitor %d - %s\n", i+1, role)
		fmt.Printf("  Device:   %s\n", info.ID)
		fmt.Printf("  Geometry: %dx%d at (%d, %d)\n", info.Width, info.Height, info.X, info.Y)
		if info.VideoPath != "" {
			fmt.Printf("  Video:    %s @ %d fps\n", info.VideoPath, info.FPS)
		} else {
			fmt.Printf("  Video:    none\n")
		}
		fmt.Println()
	}
	return nil
}
