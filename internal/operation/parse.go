package operation

import (
	"fmt"

	"github.com/n9te9/graphql-parser/ast"
	"github.com/n9te9/graphql-parser/lexer"
	"github.com/n9te9/graphql-parser/parser"

	"github.com/graphweave/fedcore/internal/gqlerr"
	"github.com/graphweave/fedcore/internal/schema"
)

// binder binds one request document against a fixed schema snapshot.
// Fragment inlining follows the teacher's expandFragmentsInSelections: a
// fragment spread or inline fragment is flattened into its parent's
// selection list rather than kept as a distinct node, without re-checking
// the type condition against the parent type (planner_v2.go does the same).
type binder struct {
	schema    *schema.Schema
	fragments map[string]*ast.FragmentDefinition
}

// Parse parses text, selects the requested operation (by name, or the sole
// operation if name is empty), expands fragments, and binds every field to
// sch. Binding failures (unknown field, fragment on incompatible type is not
// checked — see above) and parse failures both surface as a single
// *gqlerr.Error, matching spec §2's "surfaced as a single GraphqlError
// placed in an otherwise-empty response".
func Parse(text, operationName string, sch *schema.Schema) (*Operation, *gqlerr.Error) {
	l := lexer.New(text)
	p := parser.New(l)
	doc := p.ParseDocument()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, gqlerr.Newf("parse error: %v", errs)
	}

	b := &binder{schema: sch, fragments: make(map[string]*ast.FragmentDefinition)}
	for _, def := range doc.Definitions {
		if frag, ok := def.(*ast.FragmentDefinition); ok {
			b.fragments[frag.Name.String()] = frag
		}
	}

	opDef, gerr := selectOperation(doc, operationName)
	if gerr != nil {
		return nil, gerr
	}

	kind, gerr := operationKind(opDef.Operation)
	if gerr != nil {
		return nil, gerr
	}

	rootType, err := rootTypeFor(sch, kind)
	if err != nil {
		return nil, gqlerr.New(err.Error())
	}

	if len(opDef.SelectionSet) == 0 {
		return nil, gqlerr.New("operation has an empty selection set")
	}

	selections, gerr := b.bindSelections(opDef.SelectionSet, rootType)
	if gerr != nil {
		return nil, gerr
	}

	name := ""
	if opDef.Name != nil {
		name = opDef.Name.String()
	}

	return &Operation{
		Kind:       kind,
		Name:       name,
		RootType:   rootType,
		Selections: selections,
	}, nil
}

func selectOperation(doc *ast.Document, operationName string) (*ast.OperationDefinition, *gqlerr.Error) {
	var ops []*ast.OperationDefinition
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok {
			ops = append(ops, op)
		}
	}

	if len(ops) == 0 {
		return nil, gqlerr.New("document contains no operation")
	}

	if operationName == "" {
		if len(ops) > 1 {
			return nil, gqlerr.New("must provide an operation name when the document contains multiple operations")
		}
		return ops[0], nil
	}

	for _, op := range ops {
		if op.Name != nil && op.Name.String() == operationName {
			return op, nil
		}
	}
	return nil, gqlerr.Newf("unknown operation named %q", operationName)
}

func operationKind(t ast.OperationType) (Kind, *gqlerr.Error) {
	switch t {
	case ast.Query, "":
		return Query, nil
	case ast.Mutation:
		return Mutation, nil
	case ast.Subscription:
		return Subscription, nil
	default:
		return 0, gqlerr.Newf("unknown operation type %q", t)
	}
}

func rootTypeFor(sch *schema.Schema, kind Kind) (schema.ObjectID, error) {
	switch kind {
	case Query:
		if sch.QueryType == schema.InvalidID {
			return schema.InvalidID, fmt.Errorf("schema has no Query type")
		}
		return sch.QueryType, nil
	case Mutation:
		if sch.MutationType == schema.InvalidID {
			return schema.InvalidID, fmt.Errorf("schema has no Mutation type")
		}
		return sch.MutationType, nil
	case Subscription:
		if sch.SubscriptionType == schema.InvalidID {
			return schema.InvalidID, fmt.Errorf("schema has no Subscription type")
		}
		return sch.SubscriptionType, nil
	default:
		return schema.InvalidID, fmt.Errorf("unknown operation kind")
	}
}

// bindSelections expands fragments inline (teacher's
// expandFragmentsInSelections) and binds every resulting field against
// parentType.
func (b *binder) bindSelections(selections []ast.Selection, parentType schema.ObjectID) ([]*BoundField, *gqlerr.Error) {
	var out []*BoundField

	for _, sel := range selections {
		switch s := sel.(type) {
		case *ast.Field:
			bf, gerr := b.bindField(s, parentType)
			if gerr != nil {
				return nil, gerr
			}
			out = append(out, bf)

		case *ast.InlineFragment:
			expanded, gerr := b.bindSelections(s.SelectionSet, parentType)
			if gerr != nil {
				return nil, gerr
			}
			out = append(out, expanded...)

		case *ast.FragmentSpread:
			frag, ok := b.fragments[s.Name.String()]
			if !ok {
				continue
			}
			expanded, gerr := b.bindSelections(frag.SelectionSet, parentType)
			if gerr != nil {
				return nil, gerr
			}
			out = append(out, expanded...)
		}
	}

	return out, nil
}

func (b *binder) bindField(f *ast.Field, parentType schema.ObjectID) (*BoundField, *gqlerr.Error) {
	fieldName := f.Name.String()
	responseKey := fieldName
	aliased := false
	if f.Alias != nil && f.Alias.String() != "" {
		responseKey = f.Alias.String()
		aliased = true
	}

	// Source locations are not threaded through yet: graphql-parser's token
	// positions aren't exposed on ast.Name in a form this binder can reach
	// safely, so bound fields carry a zero Location and error Locations stay
	// empty (spec's Location is "best effort", never required for a valid
	// response).
	loc := Location{}

	if fieldName == "__typename" {
		return &BoundField{
			ResponseKey: responseKey,
			FieldName:   fieldName,
			Aliased:     aliased,
			ParentType:  parentType,
			Location:    loc,
		}, nil
	}

	if fieldName == "__schema" || fieldName == "__type" {
		args, gerr := b.bindArguments(f.Arguments)
		if gerr != nil {
			return nil, gerr
		}
		return &BoundField{
			ResponseKey: responseKey,
			FieldName:   fieldName,
			Aliased:     aliased,
			ParentType:  parentType,
			Arguments:   args,
			Selections:  b.bindIntrospectionSelections(f.SelectionSet),
			Location:    loc,
		}, nil
	}

	typeName := b.schema.TypeName(parentType)
	nameID, ok := b.schema.Interner.Lookup(fieldName)
	if !ok {
		return nil, gqlerr.Newf("Cannot query field %q on type %q", fieldName, typeName)
	}
	fd, ok := b.schema.FieldByName(parentType, nameID)
	if !ok {
		return nil, gqlerr.Newf("Cannot query field %q on type %q", fieldName, typeName)
	}
	if fd.Inaccessible {
		return nil, gqlerr.Newf("Cannot query field %q on type %q", fieldName, typeName).WithCode(gqlerr.CodeInaccessibleField)
	}

	args, gerr := b.bindArguments(f.Arguments)
	if gerr != nil {
		return nil, gerr
	}

	var children []*BoundField
	if len(f.SelectionSet) > 0 {
		if fd.Type.Kind != schema.FieldTypeSelectionSet {
			return nil, gqlerr.Newf("field %q of type %q does not have a selection set", fieldName, typeName)
		}
		childType, ok := b.schema.ObjectByName(fd.Type.TypeName)
		if !ok {
			return nil, gqlerr.Newf("unknown type %q for field %q", b.schema.Name(fd.Type.TypeName), fieldName)
		}
		children, gerr = b.bindSelections(f.SelectionSet, childType.ID)
		if gerr != nil {
			return nil, gerr
		}
	} else if fd.Type.Kind == schema.FieldTypeSelectionSet {
		return nil, gqlerr.Newf("field %q of type %q must have a selection set", fieldName, typeName)
	}

	return &BoundField{
		ResponseKey: responseKey,
		FieldName:   fieldName,
		Aliased:     aliased,
		FieldID:     fd.ID,
		ParentType:  parentType,
		Arguments:   args,
		Selections:  children,
		Location:    loc,
	}, nil
}

func (b *binder) bindArguments(args []*ast.Argument) ([]Argument, *gqlerr.Error) {
	return bindArgumentList(args)
}

func bindArgumentList(args []*ast.Argument) ([]Argument, *gqlerr.Error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]Argument, 0, len(args))
	for _, a := range args {
		v, gerr := bindValue(a.Value)
		if gerr != nil {
			return nil, gerr
		}
		out = append(out, Argument{Name: a.Name.String(), Value: v})
	}
	return out, nil
}

// bindIntrospectionSelections binds a `__schema`/`__type` selection set
// without validating against the composed schema's field table: these
// meta-fields (__Type.fields, __Type.ofType, __Schema.types, and so on)
// describe the introspection shape itself, not the data graph, so the
// introspection executor (C7) walks the resulting BoundFields directly
// against schema.Introspection by name instead of through FieldID. Fragment
// spreads are still expanded against b.fragments — the canonical
// introspection query client tooling sends (e.g. GraphiQL's) relies on a
// `FullType`/`TypeRef` fragment to walk the recursive __Type.ofType chain.
func (b *binder) bindIntrospectionSelections(selections []ast.Selection) []*BoundField {
	var out []*BoundField
	for _, sel := range selections {
		switch s := sel.(type) {
		case *ast.Field:
			fieldName := s.Name.String()
			responseKey := fieldName
			aliased := false
			if s.Alias != nil && s.Alias.String() != "" {
				responseKey = s.Alias.String()
				aliased = true
			}
			args, _ := bindArgumentList(s.Arguments)
			out = append(out, &BoundField{
				ResponseKey: responseKey,
				FieldName:   fieldName,
				Aliased:     aliased,
				Arguments:   args,
				Selections:  b.bindIntrospectionSelections(s.SelectionSet),
			})
		case *ast.InlineFragment:
			out = append(out, b.bindIntrospectionSelections(s.SelectionSet)...)
		case *ast.FragmentSpread:
			frag, ok := b.fragments[s.Name.String()]
			if !ok {
				continue
			}
			out = append(out, b.bindIntrospectionSelections(frag.SelectionSet)...)
		}
	}
	return out
}

func bindValue(v ast.Value) (ArgumentValue, *gqlerr.Error) {
	switch val := v.(type) {
	case *ast.Variable:
		return ArgumentValue{IsVariable: true, VariableName: val.Name}, nil
	case *ast.StringValue:
		return ArgumentValue{Literal: val.Value}, nil
	case *ast.IntValue:
		return ArgumentValue{Literal: val.Value}, nil
	case *ast.FloatValue:
		return ArgumentValue{Literal: val.Value}, nil
	case *ast.BooleanValue:
		return ArgumentValue{Literal: val.Value}, nil
	case *ast.EnumValue:
		return ArgumentValue{Literal: val.Value}, nil
	case *ast.NullValue:
		return ArgumentValue{Literal: nil}, nil
	case *ast.ListValue:
		items := make([]any, 0, len(val.Values))
		for _, item := range val.Values {
			iv, gerr := bindValue(item)
			if gerr != nil {
				return ArgumentValue{}, gerr
			}
			if iv.IsVariable {
				return ArgumentValue{}, gqlerr.New("variables are not supported inside list literals")
			}
			items = append(items, iv.Literal)
		}
		return ArgumentValue{Literal: items}, nil
	case *ast.ObjectValue:
		obj := make(map[string]any, len(val.Fields))
		for _, f := range val.Fields {
			fv, gerr := bindValue(f.Value)
			if gerr != nil {
				return ArgumentValue{}, gerr
			}
			if fv.IsVariable {
				return ArgumentValue{}, gqlerr.New("variables are not supported inside object literals")
			}
			obj[f.Name.String()] = fv.Literal
		}
		return ArgumentValue{Literal: obj}, nil
	default:
		return ArgumentValue{}, gqlerr.New("unsupported argument value")
	}
}
