package response

import (
	"encoding/json"

	"github.com/graphweave/fedcore/internal/schema"
)

// ValueKind tags the Value union.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
	ValueJSON // custom scalar / opaque subgraph-returned JSON, stored verbatim
	ValueList
	ValueObject
)

// Value is one scalar, list, or object reference in the response tree.
// List and Object values don't embed their contents inline — they point at
// a part's arena, the same indirection response/write/mod.rs uses, so that
// propagate_error can null a value in place without needing to walk back
// up a Rust-style owned tree.
type Value struct {
	Kind ValueKind

	Bool  bool
	Int   int64
	Float float64
	Str   string
	Raw   json.RawMessage

	// Nullable records whether this value's declared type permits null;
	// propagate_error needs this on every Object/List value it walks
	// through to know whether it's an eligible null target.
	Nullable bool

	Obj  ObjectID // valid iff Kind == ValueObject
	List ListID   // valid iff Kind == ValueList
}

// IsNull reports whether v is the null value (distinct from a nullable
// value that merely isn't null yet).
func (v Value) IsNull() bool { return v.Kind == ValueNull }

// Null is the null Value.
var Null = Value{Kind: ValueNull}

// BoolValue, IntValue, FloatValue, StringValue build leaf scalar Values.
func BoolValue(b bool) Value      { return Value{Kind: ValueBool, Bool: b} }
func IntValue(i int64) Value      { return Value{Kind: ValueInt, Int: i} }
func FloatValue(f float64) Value  { return Value{Kind: ValueFloat, Float: f} }
func StringValue(s string) Value  { return Value{Kind: ValueString, Str: s} }
func JSONValue(raw json.RawMessage) Value { return Value{Kind: ValueJSON, Raw: raw} }

// ObjectValue and ListValue build container Values; nullable is the
// declared nullability of the field/list-item slot holding this value.
func ObjectValue(id ObjectID, nullable bool) Value {
	return Value{Kind: ValueObject, Obj: id, Nullable: nullable}
}

func ListValue(id ListID, nullable bool) Value {
	return Value{Kind: ValueList, List: id, Nullable: nullable}
}

// Field is one entry of a ResponseObject: its response key edge plus the
// value resolved for it.
type Field struct {
	Edge  Edge
	Value Value
}

// Object is one object value's field slots, in selection order.
type Object struct {
	Type   schema.ObjectID
	Fields []Field
}

// FieldPosition returns the index of edge within o's fields, or false if
// not present (propagate_error's object-field lookup).
func (o *Object) FieldPosition(edge Edge) (int, bool) {
	for i, f := range o.Fields {
		if f.Edge == edge {
			return i, true
		}
	}
	return 0, false
}
