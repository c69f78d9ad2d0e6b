package xrandr

import (
	"strings"

	"github.com/charmbracelet/log"
)

// UpdatePolicy decides when registered changes reach xrandr
type UpdatePolicy int

const (
	// PolicyDeferred holds changes until Commit
	PolicyDeferred UpdatePolicy = iota
	// PolicyImmediate commits after every change
	PolicyImmediate
)

func (p UpdatePolicy) String() string {
	if p == PolicyImmediate {
		return "immediate"
	}
	return "deferred"
}

// ParsePolicy accepts "deferred" or "immediate"
func ParsePolicy(s string) (UpdatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deferred":
		return PolicyDeferred, nil
	case "immediate":
		return PolicyImmediate, nil
	default:
		return PolicyDeferred, &ArgumentError{Name: "update policy", Value: s}
	}
}

// Relation places an output next to another one
type Relation string

const (
	LeftOf  Relation = "--left-of"
	RightOf Relation = "--right-of"
	Above   Relation = "--above"
	Below   Relation = "--below"
	SameAs  Relation = "--same-as"
)

// Relations lists every accepted relation
var Relations = []Relation{LeftOf, RightOf, Above, Below, SameAs}

// Valid reports whether r is one of Relations
func (r Relation) Valid() bool {
	for _, known := range Relations {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRelation accepts a relation with or without the leading dashes
func ParseRelation(s string) (Relation, error) {
	r := Relation("--" + strings.TrimPrefix(strings.TrimSpace(s), "--"))
	if !r.Valid() {
		return "", &ArgumentError{Name: "relative position", Value: s}
	}
	return r, nil
}

// Option configures a Context
type Option func(*Context)

// WithPolicy sets the update policy
func WithPolicy(p UpdatePolicy) Option {
	return func(c *Context) {
		c.policy = p
	}
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(c *Context) {
		c.logger = l
	}
}
