package xrandr

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/gubarz/xrandrctl/internal/executor"
	"github.com/gubarz/xrandrctl/internal/model"
	"github.com/gubarz/xrandrctl/internal/parser"
)

var lastContextID atomic.Uint64

// updateKey collapses repeated changes to one property of one object
type updateKey struct {
	object   string
	property string
}

type pendingUpdate struct {
	key  updateKey
	args []string
}

// Context is the live view of the display configuration. Every refresh
// bumps the generation and replaces the whole object graph; objects from
// earlier generations are no longer valid. A Context is not safe for
// concurrent use.
type Context struct {
	id         uint64
	generation uint64
	screen     *model.Screen

	runner  executor.Runner
	policy  UpdatePolicy
	logger  *log.Logger
	pending []pendingUpdate
	index   map[updateKey]int
}

// New creates a context and loads the current configuration
func New(runner executor.Runner, opts ...Option) (*Context, error) {
	c := &Context{
		id:     lastContextID.Add(1),
		runner: runner,
		policy: PolicyDeferred,
		logger: log.Default(),
		index:  make(map[updateKey]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// Screen returns the screen of the current generation. It is nil if the
// last refresh failed.
func (c *Context) Screen() *model.Screen {
	return c.screen
}

// Generation returns the current generation counter
func (c *Context) Generation() uint64 {
	return c.generation
}

// Policy returns the update policy
func (c *Context) Policy() UpdatePolicy {
	return c.policy
}

// IsValid reports whether obj belongs to this context's current generation.
// A nil object is never valid.
func (c *Context) IsValid(obj model.Stamped) bool {
	if obj == nil {
		return false
	}
	s := obj.Stamp()
	return s.Context == c.id && s.Generation == c.generation
}

func (c *Context) requireValid(objs ...model.Stamped) error {
	for _, obj := range objs {
		if !c.IsValid(obj) {
			return &ContextError{Object: obj.Identifier()}
		}
	}
	return nil
}

func (c *Context) stamp() model.Stamp {
	return model.Stamp{Context: c.id, Generation: c.generation}
}

// Refresh drops pending changes, starts a new generation and reparses the
// verbose report. All previously returned objects become invalid, even when
// the refresh fails.
func (c *Context) Refresh() error {
	c.generation++
	c.screen = nil
	c.clearPending()

	report, err := c.runner.Run("--verbose")
	if err != nil {
		return err
	}
	screen, err := parser.ParseText(report, c.stamp())
	if err != nil {
		return fmt.Errorf("parse xrandr report: %w", err)
	}
	c.screen = screen
	c.logger.Debug("refreshed", "generation", c.generation, "outputs", len(screen.Outputs))
	return nil
}

// Pending returns the argument groups waiting for Commit, in order
func (c *Context) Pending() [][]string {
	out := make([][]string, 0, len(c.pending))
	for _, u := range c.pending {
		out = append(out, append([]string(nil), u.args...))
	}
	return out
}

// Commit sends all pending changes in one invocation and refreshes. With
// nothing pending it only refreshes. On failure the pending changes are kept.
func (c *Context) Commit() error {
	if len(c.pending) > 0 {
		var args []string
		for _, u := range c.pending {
			args = append(args, u.args...)
		}
		c.logger.Debug("committing", "updates", len(c.pending))
		if _, err := c.runner.Run(args...); err != nil {
			return err
		}
	}
	return c.Refresh()
}

func (c *Context) clearPending() {
	c.pending = nil
	c.index = make(map[updateKey]int)
}

// register records args for (obj, property), replacing an earlier
// registration for the same pair in place. Under the immediate policy a
// change that fails to apply is dropped, not resent with the next one.
func (c *Context) register(obj model.Stamped, property string, args []string) error {
	key := updateKey{object: obj.Identifier(), property: property}
	if i, ok := c.index[key]; ok {
		c.pending[i].args = args
	} else {
		c.index[key] = len(c.pending)
		c.pending = append(c.pending, pendingUpdate{key: key, args: args})
	}
	c.logger.Debug("registered", "object", key.object, "property", property, "args", args)

	if c.policy == PolicyImmediate {
		if err := c.Commit(); err != nil {
			c.clearPending()
			return err
		}
	}
	return nil
}

// ============================================================================
// Output Mutations
// ============================================================================

// SetMode assigns one of the output's own modes
func (c *Context) SetMode(out *model.Output, mode *model.Mode) error {
	if out == nil || mode == nil {
		return &ArgumentError{Name: "mode target", Value: "nil"}
	}
	if err := c.requireValid(out, mode); err != nil {
		return err
	}
	if mode.OutputName() != out.Name {
		return &ArgumentError{Name: "mode for " + out.Name, Value: mode.Identifier()}
	}
	return c.register(out, "mode", []string{"--output", out.Name, "--mode", mode.ID.String()})
}

// Auto lets xrandr pick the preferred mode and enable the output
func (c *Context) Auto(out *model.Output) error {
	if err := c.requireOutput(out); err != nil {
		return err
	}
	return c.register(out, "mode", []string{"--output", out.Name, "--auto"})
}

// Off disables the output
func (c *Context) Off(out *model.Output) error {
	if err := c.requireOutput(out); err != nil {
		return err
	}
	return c.register(out, "mode", []string{"--output", out.Name, "--off"})
}

// SetPosition places the output at an absolute position
func (c *Context) SetPosition(out *model.Output, x, y int) error {
	if err := c.requireOutput(out); err != nil {
		return err
	}
	pos := strconv.Itoa(x) + "x" + strconv.Itoa(y)
	return c.register(out, "position", []string{"--output", out.Name, "--pos", pos})
}

// SetPositionRelative places the output relative to other
func (c *Context) SetPositionRelative(out *model.Output, rel Relation, other *model.Output) error {
	if !rel.Valid() {
		return &ArgumentError{Name: "relative position", Value: string(rel)}
	}
	if err := c.requireOutput(out); err != nil {
		return err
	}
	if err := c.requireOutput(other); err != nil {
		return err
	}
	return c.register(out, "position", []string{"--output", out.Name, string(rel), other.Name})
}

// NoPanning turns panning off for the output
func (c *Context) NoPanning(out *model.Output) error {
	if err := c.requireOutput(out); err != nil {
		return err
	}
	return c.register(out, "panning", []string{"--output", out.Name, "--panning", "0x0"})
}

func (c *Context) requireOutput(out *model.Output) error {
	if out == nil {
		return &ArgumentError{Name: "output", Value: "nil"}
	}
	return c.requireValid(out)
}
