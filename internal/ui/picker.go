package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/xrandrctl/internal/model"
)

// ============================================================================
// Mode Item
// ============================================================================

// modeItem pairs a mode with the output offering it
type modeItem struct {
	output *model.Output
	mode   *model.Mode
	search string // lowercased text the filter matches against
}

func newModeItem(o *model.Output, m *model.Mode) modeItem {
	parts := []string{o.Name, m.Name, m.ID.String(), formatFrequency(m.Clock)}
	parts = append(parts, m.Flags...)
	if m.Current {
		parts = append(parts, "current")
	}
	if m.Preferred {
		parts = append(parts, "preferred")
	}
	return modeItem{
		output: o,
		mode:   m,
		search: strings.ToLower(strings.Join(parts, " ")),
	}
}

// matchesQuery checks that every search word occurs in the item
func (item *modeItem) matchesQuery(words []string) bool {
	for _, word := range words {
		if !strings.Contains(item.search, word) {
			return false
		}
	}
	return true
}

// ============================================================================
// Picker Model
// ============================================================================

// pickerModel is the Bubble Tea model for choosing a mode
type pickerModel struct {
	width     int
	height    int
	textInput textinput.Model
	quitting  bool

	items    []modeItem
	filtered []modeItem
	cursor   int
	offset   int // viewport scroll offset
	selected *modeItem
}

// newPickerModel lists every mode of the given outputs, starting on the
// current mode when there is one
func newPickerModel(outputs []*model.Output) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter modes..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 50

	var items []modeItem
	cursor, found := 0, false
	for _, o := range outputs {
		for _, m := range o.Modes {
			if m.Current && !found {
				cursor, found = len(items), true
			}
			items = append(items, newModeItem(o, m))
		}
	}

	return pickerModel{
		textInput: ti,
		items:     items,
		filtered:  items,
		cursor:    cursor,
	}
}

// Init implements tea.Model
func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 4
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	prevQuery := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if m.textInput.Value() != prevQuery {
		m.filterModes()
	}
	return m, cmd
}

// handleKey processes navigation keys; everything else goes to the input
func (m *pickerModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit, true
	case "enter":
		if m.cursor < len(m.filtered) {
			item := m.filtered[m.cursor]
			m.selected = &item
			return tea.Quit, true
		}
		return nil, true
	case "up", "ctrl+p":
		m.moveCursor(-1)
	case "down", "ctrl+n":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-10)
	case "pgdown":
		m.moveCursor(10)
	case "home":
		m.cursor = 0
		m.adjustOffset()
	case "end":
		m.cursor = max(0, len(m.filtered)-1)
		m.adjustOffset()
	default:
		return nil, false
	}
	return nil, true
}

// moveCursor moves the cursor by delta, clamping to valid range
func (m *pickerModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(0, len(m.filtered)-1))
	m.adjustOffset()
}

// adjustOffset ensures cursor is visible within viewport
func (m *pickerModel) adjustOffset() {
	viewHeight := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+viewHeight {
		m.offset = m.cursor - viewHeight + 1
	}
	m.offset = clamp(m.offset, 0, max(0, len(m.filtered)-viewHeight))
}

func (m pickerModel) listHeight() int {
	return max(m.height-4, 3) // divider + header + input
}

// filterModes narrows the list to items matching every query word
func (m *pickerModel) filterModes() {
	query := strings.TrimSpace(m.textInput.Value())
	if query == "" {
		m.filtered = m.items
	} else {
		words := strings.Fields(strings.ToLower(query))
		m.filtered = make([]modeItem, 0, len(m.items))
		for i := range m.items {
			if m.items[i].matchesQuery(words) {
				m.filtered = append(m.filtered, m.items[i])
			}
		}
	}
	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
	m.adjustOffset()
}

// View implements tea.Model
func (m pickerModel) View() string {
	if m.quitting || m.selected != nil {
		return ""
	}
	width := max(m.width, 60)

	var b strings.Builder
	b.WriteString(styles.Dim.Render(fmt.Sprintf("%d/%d modes • enter to apply • esc to cancel", len(m.filtered), len(m.items))))
	b.WriteString("\n")
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	end := min(len(m.filtered), m.offset+m.listHeight())
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderItem(m.filtered[i], i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	return b.String()
}

func (m pickerModel) renderItem(item modeItem, selected bool) string {
	name := fmt.Sprintf("%-10s", item.output.Name)
	line := styles.Output.Render(name) + " " + renderModeLine(item.mode)
	if selected {
		return styles.WithSelection(styles.Cursor).Render("▶ ") + styles.Selected.Render(line)
	}
	return "  " + line
}

// ============================================================================
// Run Picker
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty to bypass shell pipes and command substitution
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) != 0 {
		return os.Stdin, os.Stdout, func() {}
	}

	var closers []func()
	out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		out = os.Stderr
	} else {
		closers = append(closers, func() { out.Close() })
	}
	in, err = os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		in = os.Stdin
	} else {
		closers = append(closers, func() { in.Close() })
	}

	// Tell lipgloss to use the TTY for color detection
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

	return in, out, func() {
		for _, c := range closers {
			c()
		}
	}
}

// PickMode lets the user choose one mode among the given outputs. It
// returns nil values when the picker is cancelled.
func PickMode(outputs []*model.Output) (*model.Output, *model.Mode, error) {
	m := newPickerModel(outputs)
	if len(m.items) == 0 {
		return nil, nil, fmt.Errorf("no modes to choose from")
	}

	ttyIn, ttyOut, cleanup := getTTY()
	RefreshStyles()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	finalModel, err := p.Run()
	cleanup()
	if err != nil {
		return nil, nil, err
	}

	result := finalModel.(pickerModel)
	if result.selected == nil {
		return nil, nil, nil
	}
	return result.selected.output, result.selected.mode, nil
}

func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
