package executor

import (
	"github.com/graphweave/fedcore/internal/operation"
	"github.com/graphweave/fedcore/internal/planner"
	"github.com/graphweave/fedcore/internal/response"
	"github.com/graphweave/fedcore/internal/schema"
)

// executeIntrospection resolves a `__schema`/`__type` plan directly against
// sch.Introspection (C7) — no subgraph dispatch, no seed layer involved,
// since the whole result is already sitting in memory as schema.Introspection.
func executeIntrospection(sch *schema.Schema, plan *planner.Plan, builder *response.Builder, rootRef response.ObjectRef, variables map[string]any) {
	part := builder.NewWriter([]response.ObjectRef{rootRef}, nil)
	w, ok := part.NextWriter()
	if !ok {
		return
	}

	fields := make([]response.Field, 0, len(plan.Selections))
	for _, bf := range plan.Selections {
		var v response.Value
		switch bf.FieldName {
		case "__schema":
			v = writeSchemaObject(w, sch.Introspection, bf.Selections)
		case "__type":
			name, _ := stringArg(bf, "name", variables)
			t, ok := sch.Introspection.TypeByName(name)
			if !ok {
				v = response.Null
			} else {
				v = writeTypeObject(w, sch.Introspection, t, bf.Selections)
			}
		default:
			v = response.Null
		}
		fields = append(fields, response.Field{Edge: response.FieldEdge(bf.ResponseKey), Value: v})
	}

	w.Finish(fields)
	builder.Ingest(part)
}

func argValue(bf *operation.BoundField, name string, variables map[string]any) (any, bool) {
	for _, a := range bf.Arguments {
		if a.Name != name {
			continue
		}
		if a.Value.IsVariable {
			v, ok := variables[a.Value.VariableName]
			return v, ok
		}
		return a.Value.Literal, true
	}
	return nil, false
}

func stringArg(bf *operation.BoundField, name string, variables map[string]any) (string, bool) {
	v, ok := argValue(bf, name, variables)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolArg(bf *operation.BoundField, name string, def bool, variables map[string]any) bool {
	v, ok := argValue(bf, name, variables)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func writeSchemaObject(w *response.Writer, ins *schema.Introspection, sels []*operation.BoundField) response.Value {
	fields := make([]response.Field, 0, len(sels))
	for _, bf := range sels {
		var v response.Value
		switch bf.FieldName {
		case "description":
			v = response.Null
		case "types":
			v = writeTypeList(w, ins, ins.Types, bf.Selections)
		case "queryType":
			v = writeNamedTypeRef(w, ins, ins.QueryTypeName, bf.Selections)
		case "mutationType":
			if ins.MutationTypeName == "" {
				v = response.Null
			} else {
				v = writeNamedTypeRef(w, ins, ins.MutationTypeName, bf.Selections)
			}
		case "subscriptionType":
			if ins.SubscriptionTypeName == "" {
				v = response.Null
			} else {
				v = writeNamedTypeRef(w, ins, ins.SubscriptionTypeName, bf.Selections)
			}
		case "directives":
			v = writeDirectiveList(w, ins.Directives, bf.Selections)
		case "__typename":
			v = response.StringValue("__Schema")
		default:
			v = response.Null
		}
		fields = append(fields, response.Field{Edge: response.FieldEdge(bf.ResponseKey), Value: v})
	}
	id := w.PushObject(response.Object{Fields: fields})
	return response.ObjectValue(id, false)
}

func writeNamedTypeRef(w *response.Writer, ins *schema.Introspection, name string, sels []*operation.BoundField) response.Value {
	t, ok := ins.TypeByName(name)
	if !ok {
		return response.Null
	}
	return writeTypeObject(w, ins, t, sels)
}

func writeTypeList(w *response.Writer, ins *schema.Introspection, types []*schema.IntrospectionType, sels []*operation.BoundField) response.Value {
	vals := make([]response.Value, 0, len(types))
	for _, t := range types {
		vals = append(vals, writeTypeObject(w, ins, t, sels))
	}
	id := w.PushList(vals)
	return response.ListValue(id, false)
}

// writeTypeObject renders one __Type entry of __schema.types (or the
// resolved target of __type(name:)). `fields`/`interfaces`/`possibleTypes`/
// `enumValues`/`inputFields` follow the spec's kind-gating: each only
// returns non-null for the kinds that actually carry it, null otherwise.
func writeTypeObject(w *response.Writer, ins *schema.Introspection, t *schema.IntrospectionType, sels []*operation.BoundField) response.Value {
	fields := make([]response.Field, 0, len(sels))
	for _, bf := range sels {
		var v response.Value
		switch bf.FieldName {
		case "kind":
			v = response.StringValue(string(t.Kind))
		case "name":
			v = response.StringValue(t.Name)
		case "description":
			if t.Description == "" {
				v = response.Null
			} else {
				v = response.StringValue(t.Description)
			}
		case "fields":
			if t.Kind != schema.KindObject && t.Kind != schema.KindInterface {
				v = response.Null
				break
			}
			includeDeprecated := boolArg(bf, "includeDeprecated", false, nil)
			v = writeFieldList(w, visibleFields(t.Fields, includeDeprecated), bf.Selections)
		case "interfaces":
			if t.Kind != schema.KindObject {
				v = response.Null
				break
			}
			v = writeTypeRefsByName(w, ins, t.Interfaces, bf.Selections)
		case "possibleTypes":
			if t.Kind != schema.KindInterface && t.Kind != schema.KindUnion {
				v = response.Null
				break
			}
			v = writeTypeRefsByName(w, ins, t.PossibleTypes, bf.Selections)
		case "enumValues":
			if t.Kind != schema.KindEnum {
				v = response.Null
				break
			}
			includeDeprecated := boolArg(bf, "includeDeprecated", false, nil)
			_ = includeDeprecated // enum values carry no deprecation info in this schema's introspection model
			v = writeEnumValueList(w, t.EnumValues, bf.Selections)
		case "inputFields":
			// schema.IntrospectionType has no separate input-field list; an
			// INPUT_OBJECT's shape was never extracted into this tree
			// (SPEC_FULL.md's federation directives don't reference input
			// types), so this always reports null/empty rather than reusing
			// Fields, which would misrepresent an input object's arguments
			// as __Field entries.
			v = response.Null
		case "ofType":
			v = response.Null
		case "__typename":
			v = response.StringValue("__Type")
		default:
			v = response.Null
		}
		fields = append(fields, response.Field{Edge: response.FieldEdge(bf.ResponseKey), Value: v})
	}
	id := w.PushObject(response.Object{Fields: fields})
	return response.ObjectValue(id, true)
}

func visibleFields(fs []*schema.IntrospectionField, includeDeprecated bool) []*schema.IntrospectionField {
	if includeDeprecated {
		return fs
	}
	out := make([]*schema.IntrospectionField, 0, len(fs))
	for _, f := range fs {
		if !f.IsDeprecated {
			out = append(out, f)
		}
	}
	return out
}

func writeFieldList(w *response.Writer, fs []*schema.IntrospectionField, sels []*operation.BoundField) response.Value {
	vals := make([]response.Value, 0, len(fs))
	for _, f := range fs {
		vals = append(vals, writeFieldObject(w, f, sels))
	}
	id := w.PushList(vals)
	return response.ListValue(id, false)
}

func writeFieldObject(w *response.Writer, f *schema.IntrospectionField, sels []*operation.BoundField) response.Value {
	fields := make([]response.Field, 0, len(sels))
	for _, bf := range sels {
		var v response.Value
		switch bf.FieldName {
		case "name":
			v = response.StringValue(f.Name)
		case "description":
			if f.Description == "" {
				v = response.Null
			} else {
				v = response.StringValue(f.Description)
			}
		case "args":
			v = writeInputValueList(w, f.Args, bf.Selections)
		case "type":
			v = writeTypeRef(w, f.TypeRef, bf.Selections)
		case "isDeprecated":
			v = response.BoolValue(f.IsDeprecated)
		case "deprecationReason":
			if !f.IsDeprecated || f.DeprecationReason == "" {
				v = response.Null
			} else {
				v = response.StringValue(f.DeprecationReason)
			}
		case "__typename":
			v = response.StringValue("__Field")
		default:
			v = response.Null
		}
		fields = append(fields, response.Field{Edge: response.FieldEdge(bf.ResponseKey), Value: v})
	}
	id := w.PushObject(response.Object{Fields: fields})
	return response.ObjectValue(id, false)
}

func writeInputValueList(w *response.Writer, args []*schema.IntrospectionInputValue, sels []*operation.BoundField) response.Value {
	vals := make([]response.Value, 0, len(args))
	for _, a := range args {
		vals = append(vals, writeInputValueObject(w, a, sels))
	}
	id := w.PushList(vals)
	return response.ListValue(id, false)
}

func writeInputValueObject(w *response.Writer, a *schema.IntrospectionInputValue, sels []*operation.BoundField) response.Value {
	fields := make([]response.Field, 0, len(sels))
	for _, bf := range sels {
		var v response.Value
		switch bf.FieldName {
		case "name":
			v = response.StringValue(a.Name)
		case "description":
			if a.Description == "" {
				v = response.Null
			} else {
				v = response.StringValue(a.Description)
			}
		case "type":
			v = writeTypeRef(w, a.TypeRef, bf.Selections)
		case "defaultValue":
			if a.DefaultValue == "" {
				v = response.Null
			} else {
				v = response.StringValue(a.DefaultValue)
			}
		case "__typename":
			v = response.StringValue("__InputValue")
		default:
			v = response.Null
		}
		fields = append(fields, response.Field{Edge: response.FieldEdge(bf.ResponseKey), Value: v})
	}
	id := w.PushObject(response.Object{Fields: fields})
	return response.ObjectValue(id, false)
}

// writeTypeRef renders the recursive LIST/NON_NULL/named-leaf chain a
// field or argument's type occupies. Only kind/name/ofType/__typename are
// served here — the canonical introspection query's TypeRef fragment never
// asks for more than that at this level (fields/interfaces/etc. are only
// requested against the top-level __Type entries `types`/`queryType`/
// `__type` already walk through writeTypeObject).
func writeTypeRef(w *response.Writer, ref *schema.IntrospectionTypeRef, sels []*operation.BoundField) response.Value {
	if ref == nil {
		return response.Null
	}
	fields := make([]response.Field, 0, len(sels))
	for _, bf := range sels {
		var v response.Value
		switch bf.FieldName {
		case "kind":
			v = response.StringValue(string(ref.Kind))
		case "name":
			if ref.Name == "" {
				v = response.Null
			} else {
				v = response.StringValue(ref.Name)
			}
		case "ofType":
			v = writeTypeRef(w, ref.OfType, bf.Selections)
		case "__typename":
			v = response.StringValue("__Type")
		default:
			v = response.Null
		}
		fields = append(fields, response.Field{Edge: response.FieldEdge(bf.ResponseKey), Value: v})
	}
	id := w.PushObject(response.Object{Fields: fields})
	return response.ObjectValue(id, true)
}

// writeTypeRefsByName resolves a list of bare type names (ObjectDef.Interfaces
// text / union PossibleTypes) against ins's types and renders each as a full
// __Type object, the way `interfaces`/`possibleTypes` are specified to. A
// name with no matching IntrospectionType is skipped rather than erroring —
// composition should never produce one, but a dangling reference shouldn't
// crash introspection.
func writeTypeRefsByName(w *response.Writer, ins *schema.Introspection, names []string, sels []*operation.BoundField) response.Value {
	vals := make([]response.Value, 0, len(names))
	for _, name := range names {
		t, ok := ins.TypeByName(name)
		if !ok {
			continue
		}
		vals = append(vals, writeTypeObject(w, ins, t, sels))
	}
	id := w.PushList(vals)
	return response.ListValue(id, false)
}

func writeEnumValueList(w *response.Writer, names []string, sels []*operation.BoundField) response.Value {
	vals := make([]response.Value, 0, len(names))
	for _, name := range names {
		vals = append(vals, writeEnumValueObject(w, name, sels))
	}
	id := w.PushList(vals)
	return response.ListValue(id, false)
}

func writeEnumValueObject(w *response.Writer, name string, sels []*operation.BoundField) response.Value {
	fields := make([]response.Field, 0, len(sels))
	for _, bf := range sels {
		var v response.Value
		switch bf.FieldName {
		case "name":
			v = response.StringValue(name)
		case "description":
			v = response.Null
		case "isDeprecated":
			v = response.BoolValue(false)
		case "deprecationReason":
			v = response.Null
		case "__typename":
			v = response.StringValue("__EnumValue")
		default:
			v = response.Null
		}
		fields = append(fields, response.Field{Edge: response.FieldEdge(bf.ResponseKey), Value: v})
	}
	id := w.PushObject(response.Object{Fields: fields})
	return response.ObjectValue(id, false)
}

func writeDirectiveList(w *response.Writer, directives []*schema.IntrospectionDirective, sels []*operation.BoundField) response.Value {
	vals := make([]response.Value, 0, len(directives))
	for _, d := range directives {
		vals = append(vals, writeDirectiveObject(w, d, sels))
	}
	id := w.PushList(vals)
	return response.ListValue(id, false)
}

func writeDirectiveObject(w *response.Writer, d *schema.IntrospectionDirective, sels []*operation.BoundField) response.Value {
	fields := make([]response.Field, 0, len(sels))
	for _, bf := range sels {
		var v response.Value
		switch bf.FieldName {
		case "name":
			v = response.StringValue(d.Name)
		case "description":
			if d.Description == "" {
				v = response.Null
			} else {
				v = response.StringValue(d.Description)
			}
		case "locations":
			items := make([]response.Value, 0, len(d.Locations))
			for _, loc := range d.Locations {
				items = append(items, response.StringValue(loc))
			}
			id := w.PushList(items)
			v = response.ListValue(id, false)
		case "args":
			v = writeInputValueList(w, d.Args, bf.Selections)
		case "isRepeatable":
			// not modeled by schema.IntrospectionDirective; no directive
			// this module composes is ever used repeatably on one location.
			v = response.BoolValue(false)
		case "__typename":
			v = response.StringValue("__Directive")
		default:
			v = response.Null
		}
		fields = append(fields, response.Field{Edge: response.FieldEdge(bf.ResponseKey), Value: v})
	}
	id := w.PushObject(response.Object{Fields: fields})
	return response.ObjectValue(id, false)
}
