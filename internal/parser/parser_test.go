package parser

import (
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/gubarz/xrandrctl/internal/lines"
	"github.com/gubarz/xrandrctl/internal/model"
)

var testStamp = model.Stamp{Context: 1, Generation: 1}

const singleOutputReport = "Screen 0: minimum 320 x 200, current 1920 x 1080, maximum 8192 x 8192\n" +
	"eDP-1 connected 1920x1080+0+0 (0x44)\n" +
	"  1920x1080 (0x44) 60.00Hz -HSync +VSync  *current +preferred\n" +
	"        h: width  1920 start 1968 end 2000 total 2080 skew    0 clock  66.68KHz\n" +
	"        v: height 1080 start 1083 end 1088 total 1111           clock  60.02Hz\n" +
	"\n"

func readFixture(t *testing.T, name string) string {
	t.Helper()
	blob, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(blob)
}

func TestParseSingleOutputScenario(t *testing.T) {
	screen, err := ParseText(singleOutputReport, testStamp)
	if err != nil {
		t.Fatalf("ParseText returned error: %v", err)
	}

	if screen.Number != 0 {
		t.Errorf("screen number: got %d want 0", screen.Number)
	}
	if screen.Min != (model.Size{Width: 320, Height: 200}) {
		t.Errorf("min size: got %+v", screen.Min)
	}
	if screen.Current != (model.Size{Width: 1920, Height: 1080}) {
		t.Errorf("current size: got %+v", screen.Current)
	}
	if screen.Max != (model.Size{Width: 8192, Height: 8192}) {
		t.Errorf("max size: got %+v", screen.Max)
	}
	if len(screen.Outputs) != 1 {
		t.Fatalf("outputs: got %d want 1", len(screen.Outputs))
	}

	out := screen.Outputs[0]
	if out.Name != "eDP-1" {
		t.Errorf("output name: got %q want %q", out.Name, "eDP-1")
	}
	if out.Connection != model.Connected {
		t.Errorf("connection: got %v want connected", out.Connection)
	}
	if out.Size == nil || *out.Size != (model.Size{Width: 1920, Height: 1080}) {
		t.Errorf("output size: got %+v", out.Size)
	}
	if out.Position == nil || *out.Position != (model.Position{}) {
		t.Errorf("output position: got %+v", out.Position)
	}
	if out.CurrentModeID == nil || *out.CurrentModeID != 0x44 {
		t.Errorf("current mode id: got %v want 0x44", out.CurrentModeID)
	}
	if len(out.Modes) != 1 {
		t.Fatalf("modes: got %d want 1", len(out.Modes))
	}

	mode := out.Modes[0]
	if mode.Size != (model.Size{Width: 1920, Height: 1080}) {
		t.Errorf("mode size: got %+v", mode.Size)
	}
	if mode.ID != 0x44 {
		t.Errorf("mode id: got %s want 0x44", mode.ID)
	}
	if !mode.Preferred || !mode.Current {
		t.Errorf("mode markers: preferred=%v current=%v", mode.Preferred, mode.Current)
	}
	if want := []string{"-HSync", "+VSync"}; !reflect.DeepEqual(mode.Flags, want) {
		t.Errorf("mode flags: got %q want %q", mode.Flags, want)
	}
	if mode.Clock != 60 {
		t.Errorf("mode clock: got %v want 60", mode.Clock)
	}
}

func TestParseVerboseFixture(t *testing.T) {
	screen, err := ParseText(readFixture(t, "verbose.txt"), testStamp)
	if err != nil {
		t.Fatalf("ParseText returned error: %v", err)
	}

	var names []string
	for _, o := range screen.Outputs {
		names = append(names, o.Name)
	}
	if want := []string{"eDP-1", "HDMI-1", "DP-1", "VIRTUAL1"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("outputs: got %q want %q", names, want)
	}

	edp := screen.Output("eDP-1")
	if !edp.Primary {
		t.Errorf("eDP-1 should be primary")
	}
	if len(edp.Modes) != 2 {
		t.Fatalf("eDP-1 modes: got %d want 2", len(edp.Modes))
	}
	if math.Abs(edp.Modes[0].Clock-138.7e6) > 1 {
		t.Errorf("eDP-1 clock: got %v want 138.7e6", edp.Modes[0].Clock)
	}
	if edp.CurrentMode() != edp.Modes[0] || edp.PreferredMode() != edp.Modes[0] {
		t.Errorf("eDP-1 current/preferred mode not resolved to first mode")
	}

	hdmi := screen.Output("HDMI-1")
	if hdmi.Primary {
		t.Errorf("HDMI-1 should not be primary")
	}
	if *hdmi.Position != (model.Position{X: 1920, Y: 0}) {
		t.Errorf("HDMI-1 position: got %+v", *hdmi.Position)
	}
	interlaced := hdmi.Mode(0x47)
	if interlaced == nil {
		t.Fatalf("HDMI-1 mode 0x47 missing")
	}
	if interlaced.Name != "1920x1080i" {
		t.Errorf("mode name: got %q want %q", interlaced.Name, "1920x1080i")
	}
	if want := []string{"+HSync", "+VSync", "Interlace"}; !reflect.DeepEqual(interlaced.Flags, want) {
		t.Errorf("interlaced flags: got %q want %q", interlaced.Flags, want)
	}
	if interlaced.Preferred || interlaced.Current {
		t.Errorf("interlaced mode should carry no markers")
	}

	dp := screen.Output("DP-1")
	if dp.Connection != model.Disconnected {
		t.Errorf("DP-1 connection: got %v", dp.Connection)
	}
	if dp.Size != nil || dp.Position != nil || dp.CurrentModeID != nil {
		t.Errorf("DP-1 should have no size, position or mode: %+v", dp)
	}
	if len(dp.Modes) != 0 {
		t.Errorf("DP-1 modes: got %d want 0", len(dp.Modes))
	}

	virtual := screen.Output("VIRTUAL1")
	if virtual.Connection != model.UnknownConnection {
		t.Errorf("VIRTUAL1 connection: got %v want unknown", virtual.Connection)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	text := readFixture(t, "verbose.txt")

	first, err := ParseText(text, model.Stamp{Context: 1, Generation: 1})
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	second, err := ParseText(text, model.Stamp{Context: 1, Generation: 1})
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parsing the same report twice gave different graphs")
	}
}

func TestParseStampsEveryObject(t *testing.T) {
	stamp := model.Stamp{Context: 7, Generation: 3}
	screen, err := ParseText(readFixture(t, "verbose.txt"), stamp)
	if err != nil {
		t.Fatalf("ParseText returned error: %v", err)
	}
	if screen.Stamp() != stamp {
		t.Errorf("screen stamp: got %+v", screen.Stamp())
	}
	for _, o := range screen.Outputs {
		if o.Stamp() != stamp {
			t.Errorf("%s stamp: got %+v", o.Identifier(), o.Stamp())
		}
		for _, m := range o.Modes {
			if m.Stamp() != stamp {
				t.Errorf("%s stamp: got %+v", m.Identifier(), m.Stamp())
			}
		}
	}
}

func TestParseMalformedScreenLine(t *testing.T) {
	screen, err := ParseText("Screen: bogus\n", testStamp)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if screen != nil {
		t.Fatalf("expected no screen, got %+v", screen)
	}
	if !errors.Is(err, ErrParse) {
		t.Fatalf("error does not match ErrParse: %v", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Line != "Screen: bogus" {
		t.Errorf("offending line: got %q want %q", pe.Line, "Screen: bogus")
	}
	if !strings.Contains(err.Error(), "Screen: bogus") {
		t.Errorf("message does not include the line: %v", err)
	}
}

func TestParseOutputSectionBoundaries(t *testing.T) {
	const header = "Screen 0: minimum 320 x 200, current 1920 x 1080, maximum 8192 x 8192\n" +
		"eDP-1 connected 1920x1080+0+0 (0x44)\n"

	tests := []struct {
		name      string
		body      string
		wantErr   string
		wantModes int
	}{
		{
			name:      "tab prefixed lines are skipped",
			body:      "\tIdentifier: 0x42\n\t\tnested: 1\n",
			wantModes: 0,
		},
		{
			name:    "space prefixed non mode line is an error",
			body:    "   something odd\n",
			wantErr: "   something odd",
		},
		{
			name:    "unindented junk ends the section and fails the trailer check",
			body:    "junk\n",
			wantErr: "junk",
		},
		{
			name:      "unindented output header starts the next output",
			body:      "HDMI-1 disconnected (normal left inverted right x axis y axis)\n",
			wantModes: 0,
		},
		{
			name:    "truncated mode timing",
			body:    "  1920x1080 (0x44) 60.00Hz +HSync\n        h: width 1920\n",
			wantErr: "  1920x1080 (0x44) 60.00Hz +HSync",
		},
		{
			name:      "mode between supplementary lines",
			body:      "\tIdentifier: 0x42\n  1920x1080 (0x44) 60.00Hz +HSync\n h\n v\n\tmore: 1\n",
			wantModes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			screen, err := ParseText(header+tt.body, testStamp)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected parse error")
				}
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("expected *ParseError, got %T: %v", err, err)
				}
				if pe.Line != tt.wantErr {
					t.Fatalf("offending line: got %q want %q", pe.Line, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(screen.Outputs[0].Modes); got != tt.wantModes {
				t.Fatalf("modes: got %d want %d", got, tt.wantModes)
			}
		})
	}
}

func TestParseWithoutTrailingBlankLine(t *testing.T) {
	cur := lines.FromSlice([]string{
		"Screen 1: minimum 8 x 8, current 1024 x 768, maximum 4096 x 4096",
		"VGA-1 connected 1024x768+0+0 (0x50)",
	})
	screen, err := NewParser(cur, testStamp).Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if screen.Number != 1 || len(screen.Outputs) != 1 {
		t.Fatalf("unexpected screen: %+v", screen)
	}
}

func TestParseEmptyReport(t *testing.T) {
	_, err := ParseText("", testStamp)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected parse error for empty report, got %v", err)
	}
}

func TestMatchOutputHeaderOptionalFields(t *testing.T) {
	tests := []struct {
		line      string
		wantSize  bool
		wantPos   bool
		wantMode  bool
		wantState string
	}{
		{"DP-1 disconnected (normal left inverted right x axis y axis)", false, false, false, "disconnected"},
		{"DP-2 connected (normal left inverted right x axis y axis)", false, false, false, "connected"},
		{"DP-3 connected 1920x1080 (0x44) normal", true, false, true, "connected"},
		{"DP-4 connected 1920x1080+10+20", true, true, false, "connected"},
		{"DP-5 unknown connection (0x46)", false, false, true, "unknown connection"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			h, ok := matchOutputHeader(tt.line)
			if !ok {
				t.Fatalf("line did not match")
			}
			if h.status != tt.wantState {
				t.Errorf("status: got %q want %q", h.status, tt.wantState)
			}
			if (h.width != nil) != tt.wantSize {
				t.Errorf("size present: got %v want %v", h.width != nil, tt.wantSize)
			}
			if (h.xpos != nil) != tt.wantPos {
				t.Errorf("position present: got %v want %v", h.xpos != nil, tt.wantPos)
			}
			if (h.modeID != nil) != tt.wantMode {
				t.Errorf("mode id present: got %v want %v", h.modeID != nil, tt.wantMode)
			}
		})
	}
}

func TestOutputWithoutSizeHasNoPosition(t *testing.T) {
	text := "Screen 0: minimum 320 x 200, current 1920 x 1080, maximum 8192 x 8192\n" +
		"DP-3 connected (0x44)\n"
	screen, err := ParseText(text, testStamp)
	if err != nil {
		t.Fatalf("ParseText returned error: %v", err)
	}
	out := screen.Outputs[0]
	if out.Size != nil || out.Position != nil {
		t.Fatalf("expected absent size and position, got %+v %+v", out.Size, out.Position)
	}
	if out.CurrentModeID == nil || *out.CurrentModeID != 0x44 {
		t.Fatalf("current mode id: got %v", out.CurrentModeID)
	}
}

func TestOutputWithSizeDefaultsToOrigin(t *testing.T) {
	text := "Screen 0: minimum 320 x 200, current 1920 x 1080, maximum 8192 x 8192\n" +
		"DP-3 connected 1920x1080 (0x44)\n"
	screen, err := ParseText(text, testStamp)
	if err != nil {
		t.Fatalf("ParseText returned error: %v", err)
	}
	out := screen.Outputs[0]
	if out.Size == nil || *out.Size != (model.Size{Width: 1920, Height: 1080}) {
		t.Fatalf("size: got %+v", out.Size)
	}
	if out.Position == nil || *out.Position != (model.Position{}) {
		t.Fatalf("position: got %+v want (0,0)", out.Position)
	}
}

func TestOutputHeaderRoundTrip(t *testing.T) {
	headers := []string{
		"eDP-1 connected 1920x1080+0+0 (0x44)",
		"HDMI-1 connected 2560x1440+1920+360 (0x1f2)",
		"DP-2 disconnected 1280x1024+0+0 (0x7)",
	}
	for _, line := range headers {
		h, ok := matchOutputHeader(line)
		if !ok {
			t.Fatalf("no match for %q", line)
		}
		rendered := fmt.Sprintf("%s %s %dx%d+%d+%d (0x%x)",
			h.name, h.status, *h.width, *h.height, *h.xpos, *h.ypos, *h.modeID)
		if rendered != line {
			t.Errorf("round trip: got %q want %q", rendered, line)
		}
	}
}

func TestMatchModeHeaderFlags(t *testing.T) {
	tests := []struct {
		name          string
		line          string
		wantFlags     []string
		wantCurrent   bool
		wantPreferred bool
		wantClock     float64
	}{
		{
			name:      "no flags",
			line:      "  800x600 (0x4a) 40.000MHz",
			wantFlags: []string{},
			wantClock: 40e6,
		},
		{
			name:      "two sync flags",
			line:      "  800x600 (0x4b) 60.00Hz +HSync -VSync",
			wantFlags: []string{"+HSync", "-VSync"},
			wantClock: 60,
		},
		{
			name:          "preferred only",
			line:          "  1024x768 (0x4c) 65.000MHz +preferred",
			wantFlags:     []string{},
			wantPreferred: true,
			wantClock:     65e6,
		},
		{
			name:          "flags with both markers",
			line:          "  1920x1080 (0x44) 1.5GHz -HSync +VSync DoubleScan *current +preferred",
			wantFlags:     []string{"-HSync", "+VSync", "DoubleScan"},
			wantCurrent:   true,
			wantPreferred: true,
			wantClock:     1.5e9,
		},
		{
			name:        "current only",
			line:        "  640x480 (0x4d) 25KHz -HSync -VSync *current",
			wantFlags:   []string{"-HSync", "-VSync"},
			wantCurrent: true,
			wantClock:   25e3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := matchModeHeader(tt.line)
			if !ok {
				t.Fatalf("line did not match: %q", tt.line)
			}
			flags := splitFlags(h.flags)
			if !reflect.DeepEqual(flags, tt.wantFlags) {
				t.Errorf("flags: got %q want %q", flags, tt.wantFlags)
			}
			if h.current != tt.wantCurrent {
				t.Errorf("current: got %v want %v", h.current, tt.wantCurrent)
			}
			if h.preferred != tt.wantPreferred {
				t.Errorf("preferred: got %v want %v", h.preferred, tt.wantPreferred)
			}
			if h.clock != tt.wantClock {
				t.Errorf("clock: got %v want %v", h.clock, tt.wantClock)
			}
		})
	}
}

func TestMatchersRejectOtherLines(t *testing.T) {
	if _, ok := matchScreenHeader("eDP-1 connected"); ok {
		t.Errorf("screen matcher accepted an output line")
	}
	if _, ok := matchOutputHeader("Screen 0: minimum 320 x 200, current 1 x 1, maximum 2 x 2"); ok {
		t.Errorf("output matcher accepted a screen line")
	}
	if _, ok := matchOutputHeader("  1920x1080 (0x44) 60.00Hz"); ok {
		t.Errorf("output matcher accepted a mode line")
	}
	if _, ok := matchModeHeader("        h: width  1920 start 1968"); ok {
		t.Errorf("mode matcher accepted a timing line")
	}
	if _, ok := matchModeHeader("  1920x1080 0x44 60.00Hz"); ok {
		t.Errorf("mode matcher accepted a line without a parenthesised id")
	}
}

func TestParseRejectsOversizedNumbers(t *testing.T) {
	const huge = "99999999999999999999999"
	tests := []struct {
		name string
		text string
		bad  string
	}{
		{
			name: "screen size",
			text: "Screen 0: minimum 320 x 200, current " + huge + " x 2, maximum 8192 x 8192\n",
			bad:  huge + " x 2",
		},
		{
			name: "output size",
			text: "Screen 0: minimum 320 x 200, current 1920 x 1080, maximum 8192 x 8192\n" +
				"eDP-1 connected " + huge + "x1080+0+0 (0x44)\n",
			bad: "eDP-1 connected " + huge,
		},
		{
			name: "output position",
			text: "Screen 0: minimum 320 x 200, current 1920 x 1080, maximum 8192 x 8192\n" +
				"eDP-1 connected 1920x1080+" + huge + "+0 (0x44)\n",
			bad: "+" + huge + "+0",
		},
		{
			name: "mode size",
			text: "Screen 0: minimum 320 x 200, current 1920 x 1080, maximum 8192 x 8192\n" +
				"eDP-1 connected 1920x1080+0+0 (0x44)\n" +
				"  " + huge + "x1080 (0x44) 60.00Hz +HSync +VSync\n" +
				"        h: width  1920 start 1968 end 2000 total 2080 skew    0 clock  66.68KHz\n" +
				"        v: height 1080 start 1083 end 1088 total 1111           clock  60.02Hz\n",
			bad: huge + "x1080 (0x44)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText(tt.text, testStamp)
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected parse error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.bad) {
				t.Errorf("message lacks offending line: %v", err)
			}
		})
	}
}
