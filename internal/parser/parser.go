package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gubarz/xrandrctl/internal/lines"
	"github.com/gubarz/xrandrctl/internal/model"
)

// ErrParse matches every *ParseError via errors.Is
var ErrParse = errors.New("xrandr report parse error")

// ParseError reports a line that did not fit the grammar where it appeared
type ParseError struct {
	What   string // what the parser expected, e.g. "Screen"
	Line   string // the offending line, verbatim
	LineNo int    // 1-based line number, 0 when input ran out
}

func (e *ParseError) Error() string {
	if e.LineNo == 0 {
		if e.Line == "" {
			return fmt.Sprintf("could not parse %s line: report ended early", e.What)
		}
		return fmt.Sprintf("could not parse %s line: report ended early after: %s", e.What, e.Line)
	}
	return fmt.Sprintf("could not parse %s line %d: %s", e.What, e.LineNo, e.Line)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Parser turns the verbose xrandr report into a Screen. Every object it
// builds carries the stamp it was created with.
type Parser struct {
	lines *lines.Cursor
	stamp model.Stamp
}

// NewParser creates a parser reading from cur
func NewParser(cur *lines.Cursor, stamp model.Stamp) *Parser {
	return &Parser{lines: cur, stamp: stamp}
}

// ParseText parses a complete report
func ParseText(text string, stamp model.Stamp) (*model.Screen, error) {
	cur := lines.FromText(text)
	defer cur.Close()
	return NewParser(cur, stamp).Parse()
}

// Parse reads exactly one screen and requires nothing but blank lines after it
func (p *Parser) Parse() (*model.Screen, error) {
	return p.parseScreen()
}

func (p *Parser) parseScreen() (*model.Screen, error) {
	line, err := p.lines.Next()
	if err != nil {
		return nil, &ParseError{What: "Screen", Line: line}
	}
	h, ok := matchScreenHeader(line)
	if !ok {
		return nil, &ParseError{What: "Screen", Line: line, LineNo: p.lines.Consumed()}
	}

	outputs := make([]*model.Output, 0)
	for p.lines.HasNext() {
		next, _ := p.lines.Peek()
		if _, ok := matchOutputHeader(next); !ok {
			break
		}
		out, err := p.parseOutput()
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}

	for p.lines.HasNext() {
		next, _ := p.lines.Peek()
		if strings.TrimSpace(next) != "" {
			return nil, &ParseError{What: "xrandr output", Line: next, LineNo: p.lines.Consumed() + 1}
		}
		p.lines.Next()
	}

	return model.NewScreen(p.stamp, h.num,
		model.Size{Width: h.minW, Height: h.minH},
		model.Size{Width: h.curW, Height: h.curH},
		model.Size{Width: h.maxW, Height: h.maxH},
		outputs), nil
}

func (p *Parser) parseOutput() (*model.Output, error) {
	line, err := p.lines.Next()
	if err != nil {
		return nil, &ParseError{What: "Output header", Line: line}
	}
	h, ok := matchOutputHeader(line)
	if !ok {
		return nil, &ParseError{What: "Output header", Line: line, LineNo: p.lines.Consumed()}
	}

	conn := model.UnknownConnection
	switch h.status {
	case "connected":
		conn = model.Connected
	case "disconnected":
		conn = model.Disconnected
	}

	var size *model.Size
	if h.width != nil {
		size = &model.Size{Width: *h.width, Height: *h.height}
	}

	// Position defaults to the origin only for active outputs
	var pos *model.Position
	if h.xpos != nil {
		pos = &model.Position{X: *h.xpos, Y: *h.ypos}
	} else if size != nil {
		pos = &model.Position{}
	}

	var current *model.ModeID
	if h.modeID != nil {
		id := model.ModeID(*h.modeID)
		current = &id
	}

	modes := make([]*model.Mode, 0)
	for p.lines.HasNext() {
		next, _ := p.lines.Peek()
		switch {
		case strings.HasPrefix(next, "\t"):
			// properties, EDID, CRTC info and the like
			p.lines.Next()
		case isModeHeader(next):
			mode, err := p.parseMode(h.name)
			if err != nil {
				return nil, err
			}
			modes = append(modes, mode)
		case !strings.HasPrefix(next, " "):
			return model.NewOutput(p.stamp, h.name, conn, h.primary, size, pos, current, modes), nil
		default:
			return nil, &ParseError{What: "Output supplementary", Line: next, LineNo: p.lines.Consumed() + 1}
		}
	}

	return model.NewOutput(p.stamp, h.name, conn, h.primary, size, pos, current, modes), nil
}

func (p *Parser) parseMode(output string) (*model.Mode, error) {
	line, err := p.lines.Next()
	if err != nil {
		return nil, &ParseError{What: "Mode header", Line: line}
	}
	h, ok := matchModeHeader(line)
	if !ok {
		return nil, &ParseError{What: "Mode header", Line: line, LineNo: p.lines.Consumed()}
	}

	// The h: and v: timing lines are not modelled
	for i := 0; i < 2; i++ {
		if _, err := p.lines.Next(); err != nil {
			return nil, &ParseError{What: "Mode timing", Line: line}
		}
	}

	return model.NewMode(p.stamp, output, h.name,
		model.Size{Width: h.width, Height: h.height},
		model.ModeID(h.modeID),
		h.clock,
		h.current,
		h.preferred,
		splitFlags(h.flags)), nil
}

func isModeHeader(line string) bool {
	_, ok := matchModeHeader(line)
	return ok
}
