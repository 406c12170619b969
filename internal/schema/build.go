package schema

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/n9te9/graphql-parser/ast"

	"github.com/graphweave/fedcore/federation/graph"
)

// versionCounter hands out a fresh Schema.Version on every Build call,
// process-wide, so two composed schemas never collide even if the process
// recomposes repeatedly (registry, spec §6).
var versionCounter atomic.Int64

// SubgraphConfig carries the per-subgraph metadata Build cannot recover from
// the composed AST alone: the dispatch endpoint and header composition
// rules (spec §6 default_headers / subgraphs[name].headers).
type SubgraphConfig struct {
	Endpoint string
	Headers  []HeaderRule
}

// Build composes a Schema from an already-merged federation.SuperGraphV2
// plus the subgraph dispatch configuration that isn't recoverable from SDL.
// It interns every name, builds the ObjectDef/FieldDef tables, extracts
// entity keys, and pre-computes the introspection metadata tree.
func Build(sg *graph.SuperGraphV2, subgraphConfig map[string]SubgraphConfig, enableIntrospection bool) (*Schema, error) {
	s := &Schema{
		Interner:            NewInterner(),
		objectByID:          make(map[ObjectID]*ObjectDef),
		objectName:          make(map[StringID]ObjectID),
		fieldsBy:            make(map[ObjectID]map[StringID]FieldID),
		subgraphIdx:         make(map[string]SubgraphID),
		EnableIntrospection: enableIntrospection,
		Version:             versionCounter.Add(1),
	}

	if err := s.buildSubgraphs(sg, subgraphConfig); err != nil {
		return nil, err
	}
	if err := s.buildObjects(sg); err != nil {
		return nil, err
	}
	s.resolveRootTypes()
	s.buildIntrospection()

	return s, nil
}

func (s *Schema) buildSubgraphs(sg *graph.SuperGraphV2, cfg map[string]SubgraphConfig) error {
	for _, subGraph := range sg.SubGraphs {
		c := cfg[subGraph.Name]
		if c.Endpoint == "" {
			c.Endpoint = subGraph.Host
		}
		id := SubgraphID(len(s.subgraphs) + 1)
		s.subgraphs = append(s.subgraphs, &Subgraph{
			ID:       id,
			Name:     subGraph.Name,
			Endpoint: c.Endpoint,
			Headers:  c.Headers,
		})
		s.subgraphIdx[subGraph.Name] = id
	}
	return nil
}

func (s *Schema) subgraphIDByName(name string) SubgraphID {
	if id, ok := s.subgraphIdx[name]; ok {
		return id
	}
	return InvalidID
}

// buildObjects walks the composed document's object type definitions,
// interning names and building the field table. Entity keys are pulled
// from each owning subgraph's parsed Entity (subgraph_v2.go); ownership is
// resolved the way gateway.go / planner_v2.go already do it, one lookup per
// field against the SuperGraphV2 ownership map SuperGraphV2 already built.
func (s *Schema) buildObjects(sg *graph.SuperGraphV2) error {
	customScalars := make(map[string]bool)
	for _, def := range sg.Schema.Definitions {
		if scalarDef, ok := def.(*ast.ScalarTypeDefinition); ok {
			customScalars[scalarDef.Name.String()] = true
		}
	}

	for _, def := range sg.Schema.Definitions {
		objDef, ok := def.(*ast.ObjectTypeDefinition)
		if !ok {
			continue
		}

		typeName := objDef.Name.String()
		nameID := s.Interner.Intern(typeName)

		objID := ObjectID(len(s.objects) + 1)
		o := &ObjectDef{
			ID:   objID,
			Name: nameID,
			Keys: s.entityKeysFor(sg, typeName),
		}

		fieldsByName := make(map[StringID]FieldID, len(objDef.Fields))
		for _, fieldDef := range objDef.Fields {
			fieldName := fieldDef.Name.String()
			fieldNameID := s.Interner.Intern(fieldName)

			leafName, wrapping := typeNameAndWrapping(fieldDef.Type)
			ft := s.resolveFieldType(leafName, wrapping)
			if customScalars[leafName] {
				ft = FieldType{Kind: FieldTypeScalar, Scalar: ScalarJSON, Wrapping: wrapping}
			}

			fieldID := FieldID(len(s.fields) + 1)
			fd := &FieldDef{
				ID:     fieldID,
				Name:   fieldNameID,
				Parent: objID,
				Type:   ft,
				Args:   argumentDefs(fieldDef),
				Owners: s.fieldOwners(sg, typeName, fieldName),
			}
			s.annotateEntityField(sg, typeName, fieldName, fd)

			s.fields = append(s.fields, fd)
			fieldsByName[fieldNameID] = fieldID
			o.Fields = append(o.Fields, fieldID)
		}

		s.fieldsBy[objID] = fieldsByName
		s.objects = append(s.objects, o)
		s.objectByID[objID] = o
		s.objectName[nameID] = objID
	}

	return nil
}

// argumentDefs converts a field's declared arguments into ArgumentDef,
// keeping each argument's raw GraphQL type text as graphql-parser's
// ast.Type.String() renders it.
func argumentDefs(fieldDef *ast.FieldDefinition) []ArgumentDef {
	if len(fieldDef.Arguments) == 0 {
		return nil
	}
	args := make([]ArgumentDef, 0, len(fieldDef.Arguments))
	for _, arg := range fieldDef.Arguments {
		args = append(args, ArgumentDef{
			Name:     arg.Name.String(),
			TypeText: arg.Type.String(),
		})
	}
	return args
}

// entityKeysFor collects every @key declared on typeName across all
// subgraphs, deduplicating by field set text.
func (s *Schema) entityKeysFor(sg *graph.SuperGraphV2, typeName string) []EntityKey {
	var keys []EntityKey
	seen := make(map[string]bool)
	for _, subGraph := range sg.SubGraphs {
		entity, ok := subGraph.GetEntity(typeName)
		if !ok {
			continue
		}
		for _, k := range entity.Keys {
			if seen[k.FieldSet] {
				continue
			}
			seen[k.FieldSet] = true
			keys = append(keys, EntityKey{
				FieldSet:   s.internFieldSet(k.FieldSet),
				Resolvable: k.Resolvable,
			})
		}
	}
	return keys
}

// internFieldSet splits a @key(fields: "...") selection into its top-level
// field names. Nested selection sets inside a composite key ("id
// organization { id }") are not supported — only flat, space-separated key
// field lists are, matching the key shapes the planner exercises.
func (s *Schema) internFieldSet(fieldSet string) []StringID {
	names := strings.Fields(fieldSet)
	ids := make([]StringID, 0, len(names))
	for _, n := range names {
		if n == "{" || n == "}" {
			continue
		}
		ids = append(ids, s.Interner.Intern(n))
	}
	return ids
}

// fieldOwners returns every subgraph able to resolve typeName.fieldName,
// already override-aware via SuperGraphV2.GetSubGraphsForField.
func (s *Schema) fieldOwners(sg *graph.SuperGraphV2, typeName, fieldName string) []SubgraphID {
	owners := sg.GetSubGraphsForField(typeName, fieldName)
	if len(owners) == 0 {
		return nil
	}
	ids := make([]SubgraphID, 0, len(owners))
	for _, owner := range owners {
		ids = append(ids, s.subgraphIDByName(owner.Name))
	}
	return ids
}

// annotateEntityField fills in Requires/Provides/Shareable/External/
// Inaccessible from the first subgraph that declares fieldName as part of
// an entity; these directives are per-subgraph-field, not
// per-composed-field, but the planner only ever consults them via the
// field's owning subgraph so a single representative copy is enough.
func (s *Schema) annotateEntityField(sg *graph.SuperGraphV2, typeName, fieldName string, fd *FieldDef) {
	for _, subGraph := range sg.SubGraphs {
		entity, ok := subGraph.GetEntity(typeName)
		if !ok {
			continue
		}
		f, ok := entity.Fields[fieldName]
		if !ok {
			continue
		}
		fd.Requires = s.internNames(f.Requires)
		fd.Provides = s.internNames(f.Provides)
		fd.Shareable = f.IsShareable()
		fd.External = f.IsExternal()
		fd.Inaccessible = f.IsInaccessible()
		return
	}
}

func (s *Schema) internNames(names []string) []StringID {
	if len(names) == 0 {
		return nil
	}
	ids := make([]StringID, 0, len(names))
	for _, n := range names {
		ids = append(ids, s.Interner.Intern(n))
	}
	return ids
}

func (s *Schema) resolveFieldType(leafName string, w Wrapping) FieldType {
	if kind, ok := builtinScalar(leafName); ok {
		return FieldType{Kind: FieldTypeScalar, Scalar: kind, Wrapping: w}
	}
	return FieldType{Kind: FieldTypeSelectionSet, TypeName: s.Interner.Intern(leafName), Wrapping: w}
}

func builtinScalar(name string) (ScalarKind, bool) {
	switch name {
	case "String", "ID":
		return ScalarString, true
	case "Int":
		return ScalarInt, true
	case "Float":
		return ScalarFloat, true
	case "Boolean":
		return ScalarBoolean, true
	default:
		return 0, false
	}
}

// resolveRootTypes locates Query/Mutation/Subscription by name, following
// the unexceptional convention every subgraph in the pack uses (no
// `schema { query: ... }` block override support, matching the teacher).
func (s *Schema) resolveRootTypes() {
	if id, ok := s.ObjectByNameString("Query"); ok {
		s.QueryType = id.ID
	}
	if id, ok := s.ObjectByNameString("Mutation"); ok {
		s.MutationType = id.ID
	}
	if id, ok := s.ObjectByNameString("Subscription"); ok {
		s.SubscriptionType = id.ID
	}
}

// typeNameAndWrapping converts an ast.Type into its leaf type name plus the
// Wrapping describing every list/non-null layer around it, outermost layer
// first. `[String!]!` -> ("String", {Lists: [{Nullable:false}],
// InnerRequired: true}). `[Review!]` -> ("Review", {Lists:
// [{Nullable:true}], InnerRequired: true}).
func typeNameAndWrapping(t ast.Type) (string, Wrapping) {
	var lists []ListWrapping
	nullable := true
	cur := t
	for {
		switch n := cur.(type) {
		case *ast.NonNullType:
			nullable = false
			cur = n.Type
		case *ast.ListType:
			lists = append(lists, ListWrapping{Nullable: nullable})
			nullable = true
			cur = n.Type
		case *ast.NamedType:
			return n.Name.String(), Wrapping{Lists: lists, InnerRequired: !nullable}
		default:
			return "", Wrapping{Lists: lists, InnerRequired: !nullable}
		}
	}
}

func (s *Schema) buildIntrospection() {
	ins := &Introspection{
		QueryTypeName:        s.TypeName(s.QueryType),
		MutationTypeName:     s.TypeName(s.MutationType),
		SubscriptionTypeName: s.TypeName(s.SubscriptionType),
	}

	for _, o := range s.objects {
		it := &IntrospectionType{
			Object: o.ID,
			Kind:   KindObject,
			Name:   s.Name(o.Name),
		}
		for _, fieldID := range o.Fields {
			fd := s.Field(fieldID)
			it.Fields = append(it.Fields, s.introspectionField(fd))
		}
		ins.Types = append(ins.Types, it)
	}

	for _, kind := range []ScalarKind{ScalarString, ScalarInt, ScalarFloat, ScalarBoolean, ScalarBigInt, ScalarJSON} {
		ins.Types = append(ins.Types, &IntrospectionType{Kind: KindScalar, Name: scalarName(kind)})
	}

	ins.index()
	s.Introspection = ins
}

func (s *Schema) introspectionField(fd *FieldDef) *IntrospectionField {
	var leafKind IntrospectionTypeKind
	var leafName string
	if fd.Type.Kind == FieldTypeScalar {
		leafKind = KindScalar
		leafName = scalarName(fd.Type.Scalar)
	} else {
		leafKind = KindObject
		leafName = s.Name(fd.Type.TypeName)
	}
	return &IntrospectionField{
		Name:    s.Name(fd.Name),
		TypeRef: NewTypeRef(leafKind, leafName, fd.Type.Wrapping),
	}
}

func scalarName(k ScalarKind) string {
	switch k {
	case ScalarString:
		return "String"
	case ScalarInt:
		return "Int"
	case ScalarFloat:
		return "Float"
	case ScalarBoolean:
		return "Boolean"
	case ScalarBigInt:
		return "BigInt"
	case ScalarJSON:
		return "JSON"
	default:
		return fmt.Sprintf("<unknown scalar %d>", k)
	}
}
