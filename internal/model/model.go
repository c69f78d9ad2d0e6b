package model

import (
	"fmt"
	"strings"
)

// Size is a width x height pair in pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Position is an X,Y offset in pixels
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ModeID is the RandR identifier of a mode, reported in hex
type ModeID uint32

// String renders the id the way xrandr prints and accepts it
func (id ModeID) String() string {
	return fmt.Sprintf("0x%x", uint32(id))
}

// Connection is the tri-state connection status of an output
type Connection int

const (
	UnknownConnection Connection = iota
	Connected
	Disconnected
)

// String returns the status token used in the report
func (c Connection) String() string {
	switch c {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown connection"
	}
}

// MarshalText lets JSON output carry the status token
func (c Connection) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Stamp records which context produced an object and at which generation.
// It is the only link an object keeps to its context. The zero Stamp, which
// nil objects report, belongs to no context.
type Stamp struct {
	Context    uint64 `json:"-"`
	Generation uint64 `json:"generation"`
}

// Stamped is implemented by every model object
type Stamped interface {
	Stamp() Stamp
	Identifier() string
}

// Screen is one X screen with its outputs
type Screen struct {
	stamp Stamp

	Number  int       `json:"number"`
	Min     Size      `json:"size_min"`
	Current Size      `json:"size_current"`
	Max     Size      `json:"size_max"`
	Outputs []*Output `json:"outputs"`
}

// NewScreen builds a screen stamped with s
func NewScreen(s Stamp, number int, minSize, curSize, maxSize Size, outputs []*Output) *Screen {
	return &Screen{stamp: s, Number: number, Min: minSize, Current: curSize, Max: maxSize, Outputs: outputs}
}

func (s *Screen) Stamp() Stamp {
	if s == nil {
		return Stamp{}
	}
	return s.stamp
}

func (s *Screen) Identifier() string { return fmt.Sprintf("Screen(%d)", s.Number) }

// Output returns the output with the given name, or nil
func (s *Screen) Output(name string) *Output {
	for _, o := range s.Outputs {
		if o.Name == name {
			return o
		}
	}
	return nil
}

func (s *Screen) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Screen %d: minimum %d x %d, current %d x %d, maximum %d x %d",
		s.Number,
		s.Min.Width, s.Min.Height,
		s.Current.Width, s.Current.Height,
		s.Max.Width, s.Max.Height)
	for _, o := range s.Outputs {
		b.WriteString("\n")
		b.WriteString(o.String())
	}
	return b.String()
}

// Output is a RandR output. Size and Position are nil when the output is not
// active; CurrentModeID is nil when the report named no mode.
type Output struct {
	stamp Stamp

	Name          string     `json:"name"`
	Connection    Connection `json:"connection"`
	Primary       bool       `json:"primary"`
	Size          *Size      `json:"size,omitempty"`
	Position      *Position  `json:"position,omitempty"`
	CurrentModeID *ModeID    `json:"current_mode_id,omitempty"`
	Modes         []*Mode    `json:"modes"`
}

// NewOutput builds an output stamped with s
func NewOutput(s Stamp, name string, conn Connection, primary bool, size *Size, pos *Position, current *ModeID, modes []*Mode) *Output {
	return &Output{
		stamp:         s,
		Name:          name,
		Connection:    conn,
		Primary:       primary,
		Size:          size,
		Position:      pos,
		CurrentModeID: current,
		Modes:         modes,
	}
}

func (o *Output) Stamp() Stamp {
	if o == nil {
		return Stamp{}
	}
	return o.stamp
}

func (o *Output) Identifier() string { return fmt.Sprintf("Output(%s)", o.Name) }

// PreferredMode returns the first mode flagged +preferred, or nil
func (o *Output) PreferredMode() *Mode {
	for _, m := range o.Modes {
		if m.Preferred {
			return m
		}
	}
	return nil
}

// CurrentMode returns the mode flagged *current when exactly one is, else nil
func (o *Output) CurrentMode() *Mode {
	var found *Mode
	for _, m := range o.Modes {
		if !m.Current {
			continue
		}
		if found != nil {
			return nil
		}
		found = m
	}
	return found
}

// Mode returns the mode with the given id, or nil
func (o *Output) Mode(id ModeID) *Mode {
	for _, m := range o.Modes {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (o *Output) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Output %s is ", o.Name)
	switch o.Connection {
	case Connected:
		b.WriteString("connected")
	case Disconnected:
		b.WriteString("disconnected")
	default:
		b.WriteString("status unknown")
	}
	if o.Size != nil {
		fmt.Fprintf(&b, " (%dx%d", o.Size.Width, o.Size.Height)
		if o.Position != nil {
			fmt.Fprintf(&b, "+%d+%d", o.Position.X, o.Position.Y)
		}
		if o.CurrentModeID != nil {
			fmt.Fprintf(&b, ", mode ID %s", o.CurrentModeID)
		}
		b.WriteString(")")
	}
	for _, m := range o.Modes {
		b.WriteString("\n  ")
		b.WriteString(m.String())
	}
	return b.String()
}

// Mode is a resolution and timing offered by an output
type Mode struct {
	stamp  Stamp
	output string

	Name      string   `json:"name"`
	Size      Size     `json:"size"`
	ID        ModeID   `json:"id"`
	Clock     float64  `json:"clock_hz"` // frequency before the flags; the pixel clock in --verbose reports
	Current   bool     `json:"current"`
	Preferred bool     `json:"preferred"`
	Flags     []string `json:"flags"`
}

// NewMode builds a mode of the named output stamped with s
func NewMode(s Stamp, output, name string, size Size, id ModeID, clock float64, current, preferred bool, flags []string) *Mode {
	return &Mode{
		stamp:     s,
		output:    output,
		Name:      name,
		Size:      size,
		ID:        id,
		Clock:     clock,
		Current:   current,
		Preferred: preferred,
		Flags:     flags,
	}
}

func (m *Mode) Stamp() Stamp {
	if m == nil {
		return Stamp{}
	}
	return m.stamp
}

func (m *Mode) Identifier() string { return fmt.Sprintf("Mode(%s,%s)", m.output, m.ID) }

// OutputName is the name of the output that listed this mode
func (m *Mode) OutputName() string { return m.output }

func (m *Mode) String() string {
	s := fmt.Sprintf("%dx%d (%s) %s", m.Size.Width, m.Size.Height, m.ID, strings.Join(m.Flags, " "))
	if m.Current {
		s += " current"
	}
	if m.Preferred {
		s += " preferred"
	}
	return s
}
