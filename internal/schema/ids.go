package schema

// StringID is an interned string handle (C1 — schema & ID tables).
type StringID int32

// ObjectID addresses an object type definition.
type ObjectID int32

// FieldID addresses a field definition within an object or interface type.
type FieldID int32

// ScalarID addresses a scalar type definition (including the five builtins).
type ScalarID int32

// InterfaceID addresses an interface type definition.
type InterfaceID int32

// UnionID addresses a union type definition.
type UnionID int32

// InputID addresses an input object type definition.
type InputID int32

// DirectiveID addresses a directive definition.
type DirectiveID int32

// SubgraphID addresses one upstream subgraph's metadata.
type SubgraphID int32

const (
	// InvalidID is the zero value sentinel shared by every ID type above; the
	// interner never hands out id 0 for a resolved definition so it doubles
	// as a "not found" marker in lookup tables.
	InvalidID = 0
)
