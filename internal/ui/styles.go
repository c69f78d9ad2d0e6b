package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gubarz/xrandrctl/internal/config"
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	// Report styles
	Screen       lipgloss.Style
	Output       lipgloss.Style
	Connected    lipgloss.Style
	Disconnected lipgloss.Style
	Mode         lipgloss.Style
	Current      lipgloss.Style
	Preferred    lipgloss.Style
	Dim          lipgloss.Style

	// Picker styles
	Selected lipgloss.Style
	Cursor   lipgloss.Style

	// Chrome styles
	Divider lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Screen:       lipgloss.NewStyle().Bold(true),
		Output:       lipgloss.NewStyle().Bold(true),
		Connected:    lipgloss.NewStyle(),
		Disconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Mode:         lipgloss.NewStyle(),
		Current:      lipgloss.NewStyle().Bold(true),
		Preferred:    lipgloss.NewStyle(),
		Dim:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Selected:     lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Divider:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg:   lipgloss.Color("236"),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	outputColor := parseANSIColor(config.GetColorOutput())
	connectedColor := parseANSIColor(config.GetColorConnected())
	disconnectedColor := parseANSIColor(config.GetColorDisconnected())
	modeColor := parseANSIColor(config.GetColorMode())
	currentColor := parseANSIColor(config.GetColorCurrent())
	preferredColor := parseANSIColor(config.GetColorPreferred())
	borderColor := lipgloss.Color(config.GetColorBorder())
	cursorColor := lipgloss.Color(config.GetColorCursor())
	selectedBg := lipgloss.Color(config.GetColorSelected())
	dimColor := lipgloss.Color(config.GetColorDim())

	// Report styles
	s.Screen = lipgloss.NewStyle().Bold(true)
	s.Output = lipgloss.NewStyle().Bold(true).Foreground(outputColor)
	s.Connected = lipgloss.NewStyle().Foreground(connectedColor)
	s.Disconnected = lipgloss.NewStyle().Foreground(disconnectedColor)
	s.Mode = lipgloss.NewStyle().Foreground(modeColor)
	s.Current = lipgloss.NewStyle().Bold(true).Foreground(currentColor)
	s.Preferred = lipgloss.NewStyle().Foreground(preferredColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)

	// Picker styles
	s.Selected = lipgloss.NewStyle().Background(selectedBg)
	s.Cursor = lipgloss.NewStyle().Foreground(cursorColor)

	// Chrome styles
	s.Divider = lipgloss.NewStyle().Foreground(borderColor)
	s.SelectedBg = selectedBg
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
