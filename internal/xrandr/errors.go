package xrandr

import "fmt"

// ContextError is returned when a model object from an older generation, or
// from another context, is used for a mutation
type ContextError struct {
	Object string
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("use of invalidated %s object", e.Object)
}

// ArgumentError is returned for values outside an allowed set
type ArgumentError struct {
	Name  string
	Value string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Name, e.Value)
}
