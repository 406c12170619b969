package schema

// Introspection is the pre-built metadata tree the introspection executor
// (C7) walks directly against a collected selection set; it never touches
// the AST or re-derives anything from the interner at request time.
type Introspection struct {
	Types     []*IntrospectionType
	typeByID  map[ObjectID]*IntrospectionType
	Directives []*IntrospectionDirective

	QueryTypeName        string
	MutationTypeName     string
	SubscriptionTypeName string
}

// IntrospectionTypeKind mirrors the __TypeKind enum.
type IntrospectionTypeKind string

const (
	KindScalar      IntrospectionTypeKind = "SCALAR"
	KindObject      IntrospectionTypeKind = "OBJECT"
	KindInterface   IntrospectionTypeKind = "INTERFACE"
	KindUnion       IntrospectionTypeKind = "UNION"
	KindEnum        IntrospectionTypeKind = "ENUM"
	KindInputObject IntrospectionTypeKind = "INPUT_OBJECT"
	KindList        IntrospectionTypeKind = "LIST"
	KindNonNull     IntrospectionTypeKind = "NON_NULL"
)

// IntrospectionType is one entry of __schema.types.
type IntrospectionType struct {
	Object      ObjectID // back-reference, InvalidID for non-object kinds
	Kind        IntrospectionTypeKind
	Name        string
	Description string
	Fields      []*IntrospectionField
	Interfaces  []string
	PossibleTypes []string
	EnumValues  []string
}

// IntrospectionField is one entry of a type's __Type.fields.
type IntrospectionField struct {
	Name              string
	Description       string
	Args              []*IntrospectionInputValue
	TypeRef           *IntrospectionTypeRef
	IsDeprecated      bool
	DeprecationReason string
}

// IntrospectionInputValue describes one argument or input field.
type IntrospectionInputValue struct {
	Name        string
	Description string
	TypeRef     *IntrospectionTypeRef
	DefaultValue string
}

// IntrospectionTypeRef is the recursive __Type shape used for field and
// argument types: a chain of LIST/NON_NULL wrappers around a named leaf,
// mirroring schema.Wrapping but in the GraphQL introspection wire shape.
type IntrospectionTypeRef struct {
	Kind   IntrospectionTypeKind
	Name   string                // set only when Kind is a named leaf kind
	OfType *IntrospectionTypeRef // set for LIST and NON_NULL
}

// NewTypeRef builds an IntrospectionTypeRef from a resolved Wrapping plus
// the wrapping-stripped leaf kind/name, outermost wrapper first -- the
// inverse of Wrapping's "outermost layer first" convention, since
// introspection wraps from the inside out (leaf, then NON_NULL, then LIST).
func NewTypeRef(leafKind IntrospectionTypeKind, leafName string, w Wrapping) *IntrospectionTypeRef {
	ref := &IntrospectionTypeRef{Kind: leafKind, Name: leafName}
	if w.InnerRequired {
		ref = &IntrospectionTypeRef{Kind: KindNonNull, OfType: ref}
	}
	for i := len(w.Lists) - 1; i >= 0; i-- {
		ref = &IntrospectionTypeRef{Kind: KindList, OfType: ref}
		if !w.Lists[i].Nullable {
			ref = &IntrospectionTypeRef{Kind: KindNonNull, OfType: ref}
		}
	}
	return ref
}

// IntrospectionDirective is one entry of __schema.directives.
type IntrospectionDirective struct {
	Name        string
	Description string
	Locations   []string
	Args        []*IntrospectionInputValue
}

// TypeByObject resolves the introspection entry for an object type, if any.
func (ins *Introspection) TypeByObject(id ObjectID) (*IntrospectionType, bool) {
	t, ok := ins.typeByID[id]
	return t, ok
}

// TypeByName resolves an introspection entry by its GraphQL type name.
func (ins *Introspection) TypeByName(name string) (*IntrospectionType, bool) {
	for _, t := range ins.Types {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// index populates the lookup map after Types is fully built; called once by
// Build.
func (ins *Introspection) index() {
	ins.typeByID = make(map[ObjectID]*IntrospectionType, len(ins.Types))
	for _, t := range ins.Types {
		if t.Object != InvalidID {
			ins.typeByID[t.Object] = t
		}
	}
}
