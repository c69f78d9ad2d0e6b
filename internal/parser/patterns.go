package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	screenHeaderRe = regexp.MustCompile(
		`^Screen (?P<num>[0-9]+): ` +
			`minimum (?P<minW>[0-9]+) x (?P<minH>[0-9]+), ` +
			`current (?P<curW>[0-9]+) x (?P<curH>[0-9]+), ` +
			`maximum (?P<maxW>[0-9]+) x (?P<maxH>[0-9]+)`)

	// Size/position and mode id blocks are both optional. primary is only
	// printed for the primary output.
	outputHeaderRe = regexp.MustCompile(
		`^(?P<name>\S+) ` +
			`(?P<status>disconnected|connected|unknown connection)` +
			`(?: (?P<primary>primary))?` +
			`(?: (?P<width>[0-9]+)x(?P<height>[0-9]+)(?:\+(?P<xpos>[0-9]+)\+(?P<ypos>[0-9]+))?)?` +
			`(?: \(0x(?P<mode_id>[0-9a-fA-F]+)\))?` +
			`(?:\s|$)`)

	// Flags are whatever tokens sit between the clock and the optional
	// *current/+preferred markers.
	modeHeaderRe = regexp.MustCompile(
		`^  (?P<name>(?P<width>[0-9]+)x(?P<height>[0-9]+)\S*) ` +
			`\(0x(?P<mode_id>[0-9a-fA-F]+)\) ` +
			`(?P<clock>[0-9]+(?:\.[0-9]+)?)(?P<magnitude>[GMK])?Hz` +
			`(?P<flags>(?:\s+\S+)*?)` +
			`(?:\s+(?P<current>\*current))?` +
			`(?:\s+(?P<preferred>\+preferred))?` +
			`\s*$`)
)

// submatches maps named groups to their captures. Groups that did not take
// part in the match are left out, so a lookup reports them as absent.
func submatches(re *regexp.Regexp, line string) (map[string]string, bool) {
	idx := re.FindStringSubmatchIndex(line)
	if idx == nil {
		return nil, false
	}
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name == "" || idx[2*i] < 0 {
			continue
		}
		groups[name] = line[idx[2*i]:idx[2*i+1]]
	}
	return groups, true
}

// screenHeader holds the fields of a "Screen N: ..." line
type screenHeader struct {
	num        int
	minW, minH int
	curW, curH int
	maxW, maxH int
}

func matchScreenHeader(line string) (*screenHeader, bool) {
	g, ok := submatches(screenHeaderRe, line)
	if !ok {
		return nil, false
	}
	var n ints
	h := &screenHeader{
		num:  n.atoi(g["num"]),
		minW: n.atoi(g["minW"]),
		minH: n.atoi(g["minH"]),
		curW: n.atoi(g["curW"]),
		curH: n.atoi(g["curH"]),
		maxW: n.atoi(g["maxW"]),
		maxH: n.atoi(g["maxH"]),
	}
	return h, n.err == nil
}

// outputHeader holds the fields of an output line. Optional fields are nil
// when the report left them out.
type outputHeader struct {
	name    string
	status  string
	primary bool
	width   *int
	height  *int
	xpos    *int
	ypos    *int
	modeID  *uint32
}

func matchOutputHeader(line string) (*outputHeader, bool) {
	g, ok := submatches(outputHeaderRe, line)
	if !ok {
		return nil, false
	}
	h := &outputHeader{
		name:   g["name"],
		status: g["status"],
	}
	_, h.primary = g["primary"]
	var n ints
	if w, ok := g["width"]; ok {
		h.width = n.ptr(w)
		h.height = n.ptr(g["height"])
	}
	if x, ok := g["xpos"]; ok {
		h.xpos = n.ptr(x)
		h.ypos = n.ptr(g["ypos"])
	}
	if n.err != nil {
		return nil, false
	}
	if id, ok := g["mode_id"]; ok {
		v, err := parseHexID(id)
		if err != nil {
			return nil, false
		}
		h.modeID = &v
	}
	return h, true
}

// modeHeader holds the fields of a two-space indented mode line
type modeHeader struct {
	name      string
	width     int
	height    int
	modeID    uint32
	clock     float64
	flags     string
	current   bool
	preferred bool
}

func matchModeHeader(line string) (*modeHeader, bool) {
	g, ok := submatches(modeHeaderRe, line)
	if !ok {
		return nil, false
	}
	id, err := parseHexID(g["mode_id"])
	if err != nil {
		return nil, false
	}
	clock, err := strconv.ParseFloat(g["clock"], 64)
	if err != nil {
		return nil, false
	}
	var n ints
	h := &modeHeader{
		name:    g["name"],
		width:   n.atoi(g["width"]),
		height:  n.atoi(g["height"]),
		modeID:  id,
		clock:   clock * magnitude(g["magnitude"]),
		flags:   g["flags"],
	}
	if n.err != nil {
		return nil, false
	}
	_, h.current = g["current"]
	_, h.preferred = g["preferred"]
	return h, true
}

// splitFlags turns the captured flag text into tokens. Blank text gives an
// empty, non-nil slice.
func splitFlags(s string) []string {
	fields := strings.Fields(s)
	if fields == nil {
		return []string{}
	}
	return fields
}

func magnitude(suffix string) float64 {
	switch suffix {
	case "G":
		return 1e9
	case "M":
		return 1e6
	case "K":
		return 1e3
	default:
		return 1
	}
}

func parseHexID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err
}

// ints converts digit-only captures and keeps the first failure, which can
// only be a value out of range for int
type ints struct {
	err error
}

func (n *ints) atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil && n.err == nil {
		n.err = err
	}
	return v
}

func (n *ints) ptr(s string) *int {
	v := n.atoi(s)
	return &v
}
