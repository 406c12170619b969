// Package operation turns a GraphQL request document into a bound,
// immutable Operation: fragments expanded, every field resolved against the
// schema, every response key deduplicated.
package operation

import "github.com/graphweave/fedcore/internal/schema"

// Kind is the operation type (query/mutation/subscription).
type Kind int

const (
	Query Kind = iota
	Mutation
	Subscription
)

// Location is a 1-indexed source position, carried through to error output.
type Location struct {
	Line   int
	Column int
}

// ArgumentValue is either a literal (already schema-coerced to a plain Go
// value: string, int64, float64, bool, nil, []any, map[string]any) or a
// reference to a top-level operation variable, resolved at dispatch time.
type ArgumentValue struct {
	IsVariable   bool
	VariableName string
	Literal      any
}

// Argument is one resolved field or directive argument.
type Argument struct {
	Name  string
	Value ArgumentValue
}

// BoundField is one field selection after fragment expansion and schema
// binding (spec §2, C2). ResponseKey is the alias if present, else the
// field name; Aliased records whether the two differ, since the seed layer
// (C8) surfaces a different missing-field message for each case.
type BoundField struct {
	ResponseKey string
	FieldName   string
	Aliased     bool
	FieldID     schema.FieldID
	ParentType  schema.ObjectID
	Arguments   []Argument
	Selections  []*BoundField
	Location    Location
}

// Operation is the immutable, shareable result of parsing + binding a
// request document. Two requests whose query text, operation name, and
// bound schema version match byte-for-byte share the same *Operation via
// the Cache (spec §2, C2: "Operations are immutable and shareable").
type Operation struct {
	Fingerprint  uint64
	Kind         Kind
	Name         string
	RootType     schema.ObjectID
	Selections   []*BoundField
	VariableDefs []VariableDef
}

// VariableDef is one `$name: Type` declaration from the operation's
// variable definitions. Parse does not fill Operation.VariableDefs and
// nothing in this module reads it: supplied variables are not validated or
// defaulted against these declarations.
type VariableDef struct {
	Name         string
	TypeName     string
	Wrapping     schema.Wrapping
	DefaultValue any
	HasDefault   bool
}
