package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Init initializes configuration with viper
func Init() error {
	viper.SetDefault("binary", "xrandr")
	viper.SetDefault("update_policy", "deferred")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("color_output", "36")       // Cyan
	viper.SetDefault("color_connected", "32")    // Green
	viper.SetDefault("color_disconnected", "90") // Gray
	viper.SetDefault("color_mode", "37")         // White
	viper.SetDefault("color_current", "33")      // Yellow
	viper.SetDefault("color_preferred", "35")    // Magenta
	viper.SetDefault("color_dim", "241")
	viper.SetDefault("color_cursor", "212")
	viper.SetDefault("color_selected", "236")
	viper.SetDefault("color_border", "240")

	viper.SetConfigName("xrandrctl")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "xrandrctl"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("XRANDRCTL")
	viper.AutomaticEnv()

	// A missing file is fine; a broken one is reported but defaults still apply
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// GetBinary returns the xrandr binary name or path with tilde expansion
func GetBinary() string {
	return expandTilde(viper.GetString("binary"))
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetUpdatePolicy returns "deferred" or "immediate"
func GetUpdatePolicy() string {
	return viper.GetString("update_policy")
}

// GetLogLevel returns the log level name
func GetLogLevel() string {
	return viper.GetString("log_level")
}

// GetColorOutput returns ANSI color code for output names
func GetColorOutput() string {
	return viper.GetString("color_output")
}

// GetColorConnected returns ANSI color code for the connected status
func GetColorConnected() string {
	return viper.GetString("color_connected")
}

// GetColorDisconnected returns ANSI color code for disconnected or unknown status
func GetColorDisconnected() string {
	return viper.GetString("color_disconnected")
}

// GetColorMode returns ANSI color code for mode lines
func GetColorMode() string {
	return viper.GetString("color_mode")
}

// GetColorCurrent returns ANSI color code for the current mode marker
func GetColorCurrent() string {
	return viper.GetString("color_current")
}

// GetColorPreferred returns ANSI color code for the preferred mode marker
func GetColorPreferred() string {
	return viper.GetString("color_preferred")
}

// GetColorDim returns the color for secondary text
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// GetColorCursor returns the picker cursor color
func GetColorCursor() string {
	return viper.GetString("color_cursor")
}

// GetColorSelected returns the picker selection background
func GetColorSelected() string {
	return viper.GetString("color_selected")
}

// GetColorBorder returns the divider color
func GetColorBorder() string {
	return viper.GetString("color_border")
}

// SetUpdatePolicy overrides the update policy at runtime
func SetUpdatePolicy(policy string) {
	viper.Set("update_policy", policy)
}
