package schema

import "fmt"

// ScalarKind enumerates the built-in leaf scalars the seeds (C8) know how to
// coerce. Custom scalars are represented by ScalarJSON and deserialized as
// raw JSON (spec §4.4.1).
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarInt
	ScalarFloat
	ScalarBoolean
	ScalarBigInt
	ScalarJSON
)

// ListWrapping describes one list layer of a field's type and whether that
// layer itself may be null.
type ListWrapping struct {
	Nullable bool
}

// Wrapping is the full nullability/list shape of a field's type, outermost
// layer first, as consumed by the seeds (spec §4.4.1). A plain `String` has
// no list layers and InnerRequired == false. `[String!]!` has one list
// layer (Nullable: false) and InnerRequired == true.
type Wrapping struct {
	Lists         []ListWrapping
	InnerRequired bool
}

// PopList returns the outermost list layer and the remaining wrapping, or
// ok == false if there are no more list layers.
func (w Wrapping) PopList() (layer ListWrapping, rest Wrapping, ok bool) {
	if len(w.Lists) == 0 {
		return ListWrapping{}, w, false
	}
	return w.Lists[0], Wrapping{Lists: w.Lists[1:], InnerRequired: w.InnerRequired}, true
}

// IsRequired reports whether the outermost layer of w cannot be null: either
// there is at least one list layer and it is non-nullable, or there are no
// list layers and the inner scalar/object itself is required.
func (w Wrapping) IsRequired() bool {
	if len(w.Lists) > 0 {
		return !w.Lists[0].Nullable
	}
	return w.InnerRequired
}

// FieldTypeKind distinguishes a leaf scalar field from one whose type has a
// selection set.
type FieldTypeKind int

const (
	FieldTypeScalar FieldTypeKind = iota
	FieldTypeSelectionSet
)

// FieldType is the resolved, wrapping-stripped destination type of a field.
type FieldType struct {
	Kind     FieldTypeKind
	Scalar   ScalarKind // valid iff Kind == FieldTypeScalar
	TypeName StringID   // object/interface/union/enum name iff Kind == FieldTypeSelectionSet
	Wrapping Wrapping
}

// ArgumentDef describes one argument of a field, kept as its raw GraphQL
// type text (e.g. "ID!", "[String!]") since that's exactly what a
// precompiled query's variable declaration header needs to emit, and
// graphql-parser's ast.Type already round-trips through String().
type ArgumentDef struct {
	Name     string
	TypeText string
}

// FieldDef describes one field of an object or interface type.
type FieldDef struct {
	ID          FieldID
	Name        StringID
	Parent      ObjectID
	Type        FieldType
	Args        []ArgumentDef
	Owners      []SubgraphID // subgraphs able to resolve this field
	Requires    []StringID   // @requires field set, this subgraph's dependency on sibling fields
	Provides    []StringID   // @provides field set
	Shareable   bool
	External    bool
	Inaccessible bool
}

// ArgByName looks up one of fd's declared arguments by name.
func (fd *FieldDef) ArgByName(name string) (ArgumentDef, bool) {
	for _, a := range fd.Args {
		if a.Name == name {
			return a, true
		}
	}
	return ArgumentDef{}, false
}

// EntityKey is one `@key(fields: "...")` declaration; FieldSet is the
// ordered list of field names making up the (possibly composite) key.
type EntityKey struct {
	FieldSet   []StringID
	Resolvable bool
}

// ObjectDef describes one object type definition.
type ObjectDef struct {
	ID         ObjectID
	Name       StringID
	Fields     []FieldID // declaration order, used for introspection and collected-field tables
	Interfaces []InterfaceID
	Keys       []EntityKey // non-empty iff this is a federation entity
}

// IsEntity reports whether o carries at least one @key.
func (o *ObjectDef) IsEntity() bool { return len(o.Keys) > 0 }

// HeaderRuleKind distinguishes forwarding an incoming header from injecting
// a fixed value.
type HeaderRuleKind int

const (
	HeaderForward HeaderRuleKind = iota
	HeaderInject
)

// HeaderRule is one entry of a subgraph's header composition rules (spec
// §4.4 dispatch, §6 default_headers/subgraphs[name].headers).
type HeaderRule struct {
	Kind  HeaderRuleKind
	Name  string // header name, both for forward and inject
	Value string // static value, valid iff Kind == HeaderInject
}

// Subgraph holds the per-subgraph metadata the planner and executor need:
// its endpoint and its header composition rules.
type Subgraph struct {
	ID       SubgraphID
	Name     string
	Endpoint string
	Headers  []HeaderRule
}

// Schema is the immutable, interned representation of the composed
// supergraph (C1). It is built once by Build and shared by pointer across
// every in-flight request.
type Schema struct {
	Interner *Interner

	QueryType        ObjectID
	MutationType     ObjectID
	SubscriptionType ObjectID

	objects    []*ObjectDef
	objectByID map[ObjectID]*ObjectDef
	objectName map[StringID]ObjectID

	fields   []*FieldDef
	fieldsBy map[ObjectID]map[StringID]FieldID

	subgraphs   []*Subgraph
	subgraphIdx map[string]SubgraphID

	// Introspection is the pre-built metadata tree served directly by C7.
	Introspection *Introspection

	// EnableIntrospection gates whether C7 is reachable at all (spec §6).
	EnableIntrospection bool

	// Version distinguishes one Build call's output from another's: the
	// operation cache (C2) folds it into an Operation's fingerprint so a
	// schema recomposition (registry, spec §6) can't serve an Operation
	// whose BoundField.FieldID values were interned against a prior,
	// structurally unrelated Schema.
	Version int64
}

// Object returns the ObjectDef for id, or nil if id is unknown.
func (s *Schema) Object(id ObjectID) *ObjectDef {
	return s.objectByID[id]
}

// ObjectByName resolves an object type by its interned name.
func (s *Schema) ObjectByName(name StringID) (*ObjectDef, bool) {
	id, ok := s.objectName[name]
	if !ok {
		return nil, false
	}
	return s.objectByID[id], true
}

// ObjectByNameString resolves an object type by its textual name, interning
// the lookup string only for the comparison (it is not retained unless
// already present).
func (s *Schema) ObjectByNameString(name string) (*ObjectDef, bool) {
	id, ok := s.Interner.Lookup(name)
	if !ok {
		return nil, false
	}
	return s.ObjectByName(id)
}

// Field resolves a field by its ID.
func (s *Schema) Field(id FieldID) *FieldDef {
	if int(id) <= 0 || int(id) > len(s.fields) {
		return nil
	}
	return s.fields[id-1]
}

// FieldByName resolves a field declared directly on object typeID.
func (s *Schema) FieldByName(typeID ObjectID, name StringID) (*FieldDef, bool) {
	byName, ok := s.fieldsBy[typeID]
	if !ok {
		return nil, false
	}
	id, ok := byName[name]
	if !ok {
		return nil, false
	}
	return s.Field(id), true
}

// Subgraphs returns every composed subgraph, in registration order.
func (s *Schema) Subgraphs() []*Subgraph { return s.subgraphs }

// SubgraphByID resolves a subgraph by its ID, or nil if id is unknown.
func (s *Schema) SubgraphByID(id SubgraphID) *Subgraph {
	if int(id) <= 0 || int(id) > len(s.subgraphs) {
		return nil
	}
	return s.subgraphs[id-1]
}

// SubgraphByName resolves a subgraph by name.
func (s *Schema) SubgraphByName(name string) (*Subgraph, bool) {
	id, ok := s.subgraphIdx[name]
	if !ok {
		return nil, false
	}
	return s.subgraphs[id-1], true
}

// Name resolves a StringID to text via the schema's interner; a thin
// convenience so callers outside this package don't need the Interner type.
func (s *Schema) Name(id StringID) string { return s.Interner.String(id) }

// TypeName is a small helper used by error messages and query building.
func (s *Schema) TypeName(id ObjectID) string {
	o := s.Object(id)
	if o == nil {
		return fmt.Sprintf("<unknown object %d>", id)
	}
	return s.Name(o.Name)
}
