package models

import "fmt"

// ValidationError reports a constructor argument that violates an entity
// invariant (non-positive weeks, days, sets, reps, ...). It always prevents
// object creation.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Entity, e.Field, e.Reason)
}

// NotFoundError reports an index- or id-based operation that targets a set,
// result, or entity that does not exist. All mutation helpers surface this
// explicitly rather than silently ignoring stale references.
type NotFoundError struct {
	Entity string
	Op     string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s: %s not found", e.Op, e.Entity, e.Ref)
}

// InvalidTransitionError reports a state-machine operation that is not legal
// from the current state, e.g. completing an already-completed execution.
type InvalidTransitionError struct {
	Entity string
	Op     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Entity, e.Op, e.Reason)
}
