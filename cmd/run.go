package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/wallmon/internal/config"
	"github.com/bnema/wallmon/internal/logger"
	"github.com/bnema/wallmon/internal/player"
)

var watchConfig bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Render the configured video wallpapers",
	Long: `Start a playback session for every monitor with an assigned video and keep
rendering until interrupted. Configuration edits made while running only take
effect on the next session; with --watch a config file change restarts the
session automatically.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&watchConfig, "watch", false, "restart playback when the config file changes")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	p := player.New()

	// Drain the report channels into the log for the whole process
	// lifetime; the channels never close.
	go func() {
		for {
			select {
			case msg := <-p.Errors():
				logger.Errorf("playback: %s", msg)
			case rate := <-p.Rates():
				logger.Debugf("playback: rate %.2f fps", rate)
			}
		}
	}()

	if err := p.Start(assignmentsFromConfig()); err != nil {
		return err
	}

	restart := make(chan struct{}, 1)
	if watchConfig {
		viper.OnConfigChange(func(fsnotify.Event) {
			select {
			case restart <- struct{}{}:
			default:
			}
		})
		viper.WatchConfig()
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case sig := <-interrupt:
			logger.Infof("received %v, stopping playback", sig)
			p.Stop()
			return nil
		case <-restart:
			logger.Info("config changed, restarting playback session")
			p.Stop()
			if err := config.Init(); err != nil {
				logger.Errorf("reloading config: %v", err)
				continue
			}
			if err := p.Start(assignmentsFromConfig()); err != nil {
				logger.Errorf("restarting playback: %v", err)
			}
		}
	}
}

// assignmentsFromConfig snapshots the persisted wallpaper map for the player.
func assignmentsFromConfig() []player.Assignment {
	wallpapers := config.Get().Wallpapers
	assignments := make([]player.Assignment, 0, len(wallpapers))
	for id, w := range wallpapers {
		assignments = append(assignments, player.Assignment{
			MonitorID: id,
			VideoPath: w.VideoPath,
			FPS:       w.FPS,
		})
	}
	return assignments
}
