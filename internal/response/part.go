package response

import "sync"

// DataPart is one arena of objects and list items, owned by a single
// in-flight plan execution until it's ingested into the builder. Indices
// into Objects/Lists are stable for the part's whole lifetime — a part is
// only ever appended to.
type DataPart struct {
	ID      PartID
	Objects []Object
	Lists   []Value
}

func newDataPart(id PartID) *DataPart {
	return &DataPart{ID: id}
}

func (p *DataPart) isEmpty() bool {
	return len(p.Objects) == 0 && len(p.Lists) == 0
}

// PushObject appends obj and returns its stable ObjectID.
func (p *DataPart) PushObject(obj Object) ObjectID {
	idx := int32(len(p.Objects))
	p.Objects = append(p.Objects, obj)
	return ObjectID{Part: p.ID, Index: idx}
}

// PushList appends vals as one contiguous run and returns its ListID.
func (p *DataPart) PushList(vals []Value) ListID {
	offset := int32(len(p.Lists))
	p.Lists = append(p.Lists, vals...)
	return ListID{Part: p.ID, Offset: offset, Length: int32(len(vals))}
}

// updateKind distinguishes how a boundary item's writer finished.
type updateKind int

const (
	updateReserved updateKind = iota // writer allocated, never finished — a bug
	updateFields
	updateError
)

type update struct {
	kind   updateKind
	fields []Field
}

// Part is the mutable staging area one plan execution writes into: a
// DataPart for newly produced objects/lists, plus one update slot per
// boundary item this plan was asked to resolve (spec's reserved
// ResponsePart + UpdateSlot handshake, supplemented feature 2). Safe for
// concurrent use by a plan that fans sub-work across goroutines; the
// teacher's own executors don't, but errgroup-driven dispatch in this
// module does run multiple plans' writers concurrently against the same
// builder at Ingest time, and nothing stops a single plan's seed walk from
// using the same pattern.
type Part struct {
	mu sync.Mutex

	data *DataPart

	// rootObjects are the boundary items (from a parent plan, or the
	// synthetic single root item for a ResolverRoot plan) this part's
	// writers fill in, in order; updates[i] corresponds to rootObjects[i].
	rootObjects []ObjectRef
	updates     []update

	errors                []error
	errorPathsToPropagate []Path

	boundaries []boundaryCollection
}

type boundaryCollection struct {
	id      int
	objects []ObjectRef
}

// newPart pre-allocates one boundaryCollection per ID in boundaryIDs.
// IDs are looked up by linear scan rather than offset from boundaryIDs[0]:
// the planner allocates PlanBoundary.ID from one counter shared across the
// whole operation, and a single parent plan's own OutputBoundaries are not
// guaranteed consecutive (a crossing field's recursive split can allocate
// more IDs in between two of the parent's own boundaries). boundaryIDs
// per part is always small, so the scan cost is negligible.
func newPart(data *DataPart, rootObjects []ObjectRef, boundaryIDs []int) *Part {
	boundaries := make([]boundaryCollection, len(boundaryIDs))
	for i, id := range boundaryIDs {
		boundaries[i] = boundaryCollection{id: id}
	}
	return &Part{
		data:        data,
		rootObjects: rootObjects,
		boundaries:  boundaries,
	}
}

// NextWriter reserves the next unfinished root object's update slot,
// returning (nil, false) once every rootObject already has a writer.
func (p *Part) NextWriter() (*Writer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.updates) == len(p.rootObjects) {
		return nil, false
	}
	index := len(p.updates)
	p.updates = append(p.updates, update{kind: updateReserved})
	return &Writer{index: index, part: p}, true
}

// PushError appends a plan-level error not tied to any single boundary
// item's update slot (e.g. a malformed subgraph response body).
func (p *Part) PushError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, err)
}

// Writer fills in exactly one boundary item: either the fields resolved
// for it, or an error that must propagate from its path.
type Writer struct {
	index int
	part  *Part
}

// RootPath returns the response path of the boundary item this writer is
// filling in.
func (w *Writer) RootPath() Path {
	w.part.mu.Lock()
	defer w.part.mu.Unlock()
	return w.part.rootObjects[w.index].Path
}

// RootRef returns the full boundary reference (ID, path, and schema type)
// this writer is filling in.
func (w *Writer) RootRef() ObjectRef {
	w.part.mu.Lock()
	defer w.part.mu.Unlock()
	return w.part.rootObjects[w.index]
}

// PushObject stages a new object in this writer's part and returns its ID.
func (w *Writer) PushObject(obj Object) ObjectID {
	w.part.mu.Lock()
	defer w.part.mu.Unlock()
	return w.part.data.PushObject(obj)
}

// PushList stages a new list in this writer's part and returns its ID.
func (w *Writer) PushList(vals []Value) ListID {
	w.part.mu.Lock()
	defer w.part.mu.Unlock()
	return w.part.data.PushList(vals)
}

// Finish records the resolved fields for this writer's boundary item.
func (w *Writer) Finish(fields []Field) {
	w.part.mu.Lock()
	defer w.part.mu.Unlock()
	w.part.updates[w.index] = update{kind: updateFields, fields: fields}
}

// ReportError records err and marks this writer's boundary item as failed;
// Ingest will propagate the failure from the item's path.
func (w *Writer) ReportError(err error) {
	w.part.mu.Lock()
	defer w.part.mu.Unlock()
	w.part.errors = append(w.part.errors, err)
	w.part.updates[w.index] = update{kind: updateError}
}

// PushBoundaryObjects records the entity objects a nested boundary (one
// this plan's own output feeds) resolved, for the coordinator to dispatch
// the matching child plan against.
func (w *Writer) PushBoundaryObjects(boundaryID int, refs []ObjectRef) {
	w.part.mu.Lock()
	defer w.part.mu.Unlock()
	for i := range w.part.boundaries {
		if w.part.boundaries[i].id == boundaryID {
			w.part.boundaries[i].objects = append(w.part.boundaries[i].objects, refs...)
			return
		}
	}
}
