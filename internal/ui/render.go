package ui

import (
	"fmt"
	"strings"

	"github.com/gubarz/xrandrctl/internal/model"
)

// RenderScreen renders the screen as a styled tree: screen header, one block
// per output, one line per mode
func RenderScreen(s *model.Screen) string {
	var b strings.Builder

	b.WriteString(styles.Screen.Render(fmt.Sprintf("Screen %d", s.Number)))
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  min %s  current %s  max %s",
		formatSize(s.Min), formatSize(s.Current), formatSize(s.Max))))
	b.WriteString("\n")

	for _, o := range s.Outputs {
		b.WriteString(renderOutputLine(o))
		b.WriteString("\n")
		for _, m := range o.Modes {
			b.WriteString("  ")
			b.WriteString(renderModeLine(m))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderOutputLine(o *model.Output) string {
	status := styles.Disconnected.Render(o.Connection.String())
	if o.Connection == model.Connected {
		status = styles.Connected.Render(o.Connection.String())
	}

	line := styles.Output.Render(o.Name) + " " + status
	if o.Primary {
		line += " " + styles.Dim.Render("primary")
	}
	if o.Size != nil {
		geometry := formatSize(*o.Size)
		if o.Position != nil {
			geometry += fmt.Sprintf("+%d+%d", o.Position.X, o.Position.Y)
		}
		line += " " + geometry
	}
	if o.CurrentModeID != nil {
		line += " " + styles.Dim.Render("("+o.CurrentModeID.String()+")")
	}
	return line
}

func renderModeLine(m *model.Mode) string {
	line := styles.Mode.Render(fmt.Sprintf("%-12s", m.Name)) + " " +
		styles.Dim.Render(fmt.Sprintf("%-7s", m.ID.String())) + " " +
		formatFrequency(m.Clock)
	if len(m.Flags) > 0 {
		line += " " + styles.Dim.Render(strings.Join(m.Flags, " "))
	}
	if m.Current {
		line += " " + styles.Current.Render("*current")
	}
	if m.Preferred {
		line += " " + styles.Preferred.Render("+preferred")
	}
	return line
}

func formatSize(s model.Size) string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// formatFrequency prints a frequency with the largest fitting unit
func formatFrequency(hz float64) string {
	switch {
	case hz >= 1e9:
		return fmt.Sprintf("%.3fGHz", hz/1e9)
	case hz >= 1e6:
		return fmt.Sprintf("%.3fMHz", hz/1e6)
	case hz >= 1e3:
		return fmt.Sprintf("%.2fKHz", hz/1e3)
	default:
		return fmt.Sprintf("%.2fHz", hz)
	}
}
