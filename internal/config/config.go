// Package config persists monitor-to-video assignments using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AllowedRates are the selectable target frame rates.
var AllowedRates = []int{24, 30, 60, 120}

// Config represents the persisted application state
type Config struct {
	// Wallpapers maps a monitor device name to its assignment
	Wallpapers map[string]Wallpaper `mapstructure:"wallpapers"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// Wallpaper is one monitor's video assignment. The json tags are the
// persisted form (viper writes structs with encoding/json), the mapstructure
// tags the decoded one; they must stay in sync.
type Wallpaper struct {
	VideoPath string          `mapstructure:"video_path" json:"video_path"`
	FPS       int             `mapstructure:"fps" json:"fps"`
	Monitor   MonitorSnapshot `mapstructure:"monitor" json:"monitor"`
}

// MonitorSnapshot records the geometry the assignment was made against, so
// the configuration survives unplugged displays and can be shown in listings.
type MonitorSnapshot struct {
	X       int32  `mapstructure:"x" json:"x"`
	Y       int32  `mapstructure:"y" json:"y"`
	Width   int32  `mapstructure:"width" json:"width"`
	Height  int32  `mapstructure:"height" json:"height"`
	Primary bool   `mapstructure:"primary" json:"primary"`
	Device  string `mapstructure:"device" json:"device"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Overrides the LOG_LEVEL env var
}

// DefaultFPS is used when an assignment carries no rate.
const DefaultFPS = 30

var (
	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("wallmon")
	viper.SetConfigType("json")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "wallmon"))
		}
		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	viper.SetDefault("wallpapers", map[string]Wallpaper{})
	viper.SetDefault("logging.log_level", "")

	if err := viper.ReadInConfig(); err != nil {
		// A missing file surfaces as ConfigFileNotFoundError on the search
		// path and as a plain not-exist error with an explicit override;
		// both mean "use defaults".
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if cfg.Wallpapers == nil {
		cfg.Wallpapers = map[string]Wallpaper{}
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		return &Config{Wallpapers: map[string]Wallpaper{}}
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "wallmon.json"
	}
	return filepath.Join(dir, "wallmon", "wallmon.json")
}

// ValidateFPS checks a rate against the allowed set.
func ValidateFPS(fps int) error {
	for _, r := range AllowedRates {
		if fps == r {
			return nil
		}
	}
	return fmt.Errorf("fps %d not supported (allowed: %v)", fps, AllowedRates)
}

// SetAssignment stores or replaces the wallpaper for a monitor
func SetAssignment(monitorID string, w Wallpaper) error {
	if w.FPS == 0 {
		w.FPS = DefaultFPS
	}
	if err := ValidateFPS(w.FPS); err != nil {
		return err
	}

	c := Get()
	c.Wallpapers[monitorID] = w

	// The whole map is written in one Set: device names contain dots and
	// backslashes that viper would otherwise treat as key separators.
	viper.Set("wallpapers", c.Wallpapers)
	return Save()
}

// ClearAssignment removes a monitor's wallpaper
func ClearAssignment(monitorID string) error {
	c := Get()

	for key := range c.Wallpapers {
		if strings.EqualFold(key, monitorID) {
			delete(c.Wallpapers, key)
			viper.Set("wallpapers", c.Wallpapers)
			return Save()
		}
	}

	return fmt.Errorf("no assignment for monitor %s", monitorID)
}

// Assignment looks up a monitor's wallpaper, tolerating the key-case
// mangling viper applies to persisted maps.
func Assignment(monitorID string) (Wallpaper, bool) {
	c := Get()
	for key, w := range c.Wallpapers {
		if strings.EqualFold(key, monitorID) {
			return w, true
		}
	}
	return Wallpaper{}, false
}
