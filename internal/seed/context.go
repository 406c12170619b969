// Package seed coerces a subgraph's decoded JSON response into the
// response arena (C8), walking an Operation's BoundFields against the
// Schema's wrapping/type information and deciding, field by field, where
// a resolution failure gets absorbed as null versus bubbled to an
// enclosing nullable ancestor (spec §4.4, ported from
// response/write/deserialize/{mod,field}.rs).
package seed

import "github.com/graphweave/fedcore/internal/response"

// Context is the mutable state shared across one boundary item's
// recursive seeding: the path back to the value currently being built
// (for error reporting) and a reported flag so only the first failure
// in the subtree is ever recorded as a GraphqlError — every enclosing
// layer that decides to bubble rather than absorb just returns the same
// error without re-reporting it (SPEC_FULL.md supplemented feature 3,
// ported from deserialize/mod.rs's AtomicBool propagating_error; a plain
// bool suffices here since one Context is never shared across
// goroutines).
type Context struct {
	path     response.Path
	reported bool

	firstErr  error
	firstPath response.Path
}

// FirstError returns the first failure recorded in this subtree and the
// path it occurred at, or (nil, nil) if nothing failed.
func (c *Context) FirstError() (error, response.Path) {
	return c.firstErr, c.firstPath
}

// NewContext starts a Context rooted at root's own response path.
func NewContext(root response.Path) *Context {
	c := &Context{path: make(response.Path, len(root))}
	copy(c.path, root)
	return c
}

func (c *Context) pushEdge(e response.Edge) { c.path = append(c.path, e) }

func (c *Context) popEdge() { c.path = c.path[:len(c.path)-1] }

// Path returns a snapshot of the current path.
func (c *Context) Path() response.Path {
	out := make(response.Path, len(c.path))
	copy(out, c.path)
	return out
}

// fail idempotently records err against the first failing position in
// this subtree, then returns it unchanged for the caller to propagate;
// whether it's ultimately absorbed into a null or bubbled further is
// decided by the caller's own wrapping, not here.
func (c *Context) fail(err error) error {
	if !c.reported {
		c.reported = true
		c.firstErr = err
		c.firstPath = c.Path()
	}
	return err
}
