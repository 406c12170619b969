package response

import (
	"encoding/json"
	"sync"

	"github.com/graphweave/fedcore/internal/gqlerr"
	"github.com/graphweave/fedcore/internal/schema"
)

// Builder assembles every plan's Part into one response tree (C4). Root is
// nil once an unrecoverable error has propagated all the way up — the
// final response then carries `"data": null`.
type Builder struct {
	mu sync.Mutex

	root     *ObjectID
	rootType schema.ObjectID

	parts  []*DataPart
	errors []*gqlerr.Error
}

// NewBuilder creates a Builder with its root object already allocated
// (empty, to be filled in by the first Ingest) in part 0.
func NewBuilder(rootType schema.ObjectID) *Builder {
	part0 := newDataPart(0)
	rootID := part0.PushObject(Object{Type: rootType})
	return &Builder{
		root:     &rootID,
		rootType: rootType,
		parts:    []*DataPart{part0},
	}
}

// RootRef returns the boundary item describing the response root, for the
// first plan(s) to resolve against.
func (b *Builder) RootRef() (ObjectRef, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.root == nil {
		return ObjectRef{}, false
	}
	return ObjectRef{ID: *b.root, Path: nil, Type: b.rootType}, true
}

// NewWriter reserves a fresh part for one plan's execution and returns the
// staging area it writes into; rootObjects are the boundary items (or the
// single synthetic root) this plan resolves, boundaryIDs are the nested
// PlanBoundary IDs whose output this plan itself produces.
func (b *Builder) NewWriter(rootObjects []ObjectRef, boundaryIDs []int) *Part {
	b.mu.Lock()
	id := PartID(len(b.parts))
	b.parts = append(b.parts, nil) // reserved; filled by Ingest
	b.mu.Unlock()

	return newPart(newDataPart(id), rootObjects, boundaryIDs)
}

// object resolves id against the builder's parts; caller must hold b.mu.
func (b *Builder) object(id ObjectID) *Object {
	part := b.parts[id.Part]
	if part == nil || int(id.Index) >= len(part.Objects) {
		return nil
	}
	return &part.Objects[id.Index]
}

// list resolves id against the builder's parts; caller must hold b.mu.
func (b *Builder) list(id ListID) []Value {
	part := b.parts[id.Part]
	if part == nil {
		return nil
	}
	end := int(id.Offset) + int(id.Length)
	if end > len(part.Lists) {
		return nil
	}
	return part.Lists[id.Offset:end]
}

// ReadKeyFields reads ref's object back out of the arena and renders its
// named fields as plain Go values plus "__typename": typeName, ready to be
// marshaled as one entry of a federation `representations` array. A missing
// or not-yet-written field is simply omitted (the entity was only partially
// resolved so far; the subgraph will report its own missing-key error if
// that turns out to matter).
func (b *Builder) ReadKeyFields(ref ObjectRef, typeName string, keyFields []string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	rep := map[string]any{"__typename": typeName}
	obj := b.object(ref.ID)
	if obj == nil {
		return rep
	}
	for _, name := range keyFields {
		idx, ok := obj.FieldPosition(FieldEdge(name))
		if !ok {
			continue
		}
		if v, ok := b.valueToAny(obj.Fields[idx].Value); ok {
			rep[name] = v
		}
	}
	return rep
}

// valueToAny renders v as a plain Go value suitable for JSON encoding;
// caller must hold b.mu. A null value renders as nil with ok=true, so
// ReadKeyFields still sends an explicit key field of null. ok=false means
// v could not be rendered (an unresolvable object, invalid raw JSON, or an
// unknown kind) and callers leave it out.
func (b *Builder) valueToAny(v Value) (any, bool) {
	switch v.Kind {
	case ValueNull:
		return nil, true
	case ValueBool:
		return v.Bool, true
	case ValueInt:
		return v.Int, true
	case ValueFloat:
		return v.Float, true
	case ValueString:
		return v.Str, true
	case ValueJSON:
		var out any
		if err := json.Unmarshal(v.Raw, &out); err != nil {
			return nil, false
		}
		return out, true
	case ValueList:
		items := b.list(v.List)
		out := make([]any, 0, len(items))
		for _, item := range items {
			if rendered, ok := b.valueToAny(item); ok {
				out = append(out, rendered)
			}
		}
		return out, true
	case ValueObject:
		obj := b.object(v.Obj)
		if obj == nil {
			return nil, false
		}
		out := make(map[string]any, len(obj.Fields))
		for _, f := range obj.Fields {
			if rendered, ok := b.valueToAny(f.Value); ok {
				out[f.Edge.Key] = rendered
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// BoundaryBatch is one nested PlanBoundary's collected entity objects,
// ready for the coordinator to dispatch the matching child Plan against.
type BoundaryBatch struct {
	BoundaryID int
	Objects    []ObjectRef
}

// Ingest merges a finished Part into the builder: its arena is installed
// at the part ID reserved for it, its errors are appended, and every
// update slot is applied — Fields are spliced into the target object,
// Error triggers propagateError from that object's path. Returns the
// boundary objects this part's writers collected, for the coordinator to
// dispatch the next wave of child plans.
func (b *Builder) Ingest(p *Part) []BoundaryBatch {
	p.mu.Lock()
	data := p.data
	rootObjects := p.rootObjects
	updates := p.updates
	errs := p.errors
	errorPaths := p.errorPathsToPropagate
	boundaries := p.boundaries
	p.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	if int(data.ID) < len(b.parts) {
		b.parts[data.ID] = data
	}

	for _, e := range errs {
		b.errors = append(b.errors, toGraphqlError(e))
	}

	for i, u := range updates {
		if i >= len(rootObjects) {
			break
		}
		ref := rootObjects[i]
		switch u.kind {
		case updateFields:
			if obj := b.object(ref.ID); obj != nil {
				obj.Fields = append(obj.Fields, u.fields...)
			}
		case updateError:
			b.propagateError(ref.Path)
		case updateReserved:
			b.errors = append(b.errors, gqlerr.InternalServerError())
			b.propagateError(ref.Path)
		}
	}

	for _, path := range errorPaths {
		b.propagateError(path)
	}

	out := make([]BoundaryBatch, len(boundaries))
	for i, bc := range boundaries {
		out[i] = BoundaryBatch{BoundaryID: bc.id, Objects: bc.objects}
	}
	return out
}

func toGraphqlError(err error) *gqlerr.Error {
	if ge, ok := err.(*gqlerr.Error); ok {
		return ge
	}
	return gqlerr.New(err.Error())
}

// Response is the final, immutable result of a request: either Data with
// a (possibly partially-null) tree plus zero or more Errors, or a nil Data
// when the root itself had to be nulled out.
type Response struct {
	RootType schema.ObjectID
	Root     *ObjectID
	Parts    []*DataPart
	Errors   []*gqlerr.Error
}

// Build finalizes b into an immutable Response. b must not be used again
// afterward.
func (b *Builder) Build() *Response {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &Response{
		RootType: b.rootType,
		Root:     b.root,
		Parts:    b.parts,
		Errors:   b.errors,
	}
}
