// Package response implements the arena-of-arenas response model (C4):
// ResponseDataPart holds objects and list items produced by one plan's
// execution; ResponseBuilder assembles parts from every plan into one
// response tree and nulls out the nearest nullable ancestor whenever a
// plan fails (spec §3, ported from response/write/mod.rs).
package response

import "github.com/graphweave/fedcore/internal/schema"

// PartID identifies one ResponseDataPart within a ResponseBuilder.
type PartID int32

// ObjectID addresses one ResponseObject: the part it lives in plus its
// index within that part's object slice. Stable once pushed — a part is
// only ever appended to, never compacted.
type ObjectID struct {
	Part  PartID
	Index int32
}

// ListID addresses a contiguous run of ResponseValue within one part's
// flat list arena.
type ListID struct {
	Part   PartID
	Offset int32
	Length int32
}

// EdgeKind distinguishes a named object field from a positional list item
// when walking a ResponsePath.
type EdgeKind int

const (
	EdgeField EdgeKind = iota
	EdgeIndex
)

// Edge is one step of a ResponsePath: either a field identified by its
// response key (alias or name) or a list index.
type Edge struct {
	Kind EdgeKind
	Key  string // response key, valid iff Kind == EdgeField
	Index int   // list index, valid iff Kind == EdgeIndex
}

// FieldEdge builds a named-field Edge.
func FieldEdge(key string) Edge { return Edge{Kind: EdgeField, Key: key} }

// IndexEdge builds a list-index Edge.
func IndexEdge(i int) Edge { return Edge{Kind: EdgeIndex, Index: i} }

// Path is the sequence of edges from the response root down to one value;
// it doubles as the GraphQL error "path" once converted to JSON-friendly
// form in gqlerr terms.
type Path []Edge

// JSON renders p as a gqlerr.Error-compatible path: each field edge becomes
// its response key, each index edge its int index, in order.
func (p Path) JSON() []any {
	if len(p) == 0 {
		return nil
	}
	out := make([]any, len(p))
	for i, e := range p {
		if e.Kind == EdgeIndex {
			out[i] = e.Index
		} else {
			out[i] = e.Key
		}
	}
	return out
}

// ObjectRef is a boundary hand-off value: one entity object already placed
// in the response tree, the path it lives at (for error propagation if the
// child plan that's about to resolve it fails), and its concrete type (for
// building the child's `_entities` representations).
type ObjectRef struct {
	ID   ObjectID
	Path Path
	Type schema.ObjectID
}
