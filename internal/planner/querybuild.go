package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/graphweave/fedcore/internal/operation"
	"github.com/graphweave/fedcore/internal/schema"
)

// BuildQueryText precompiles QueryText for every Plan in op, once per
// OperationPlan (grounded on federation/executor/query_builder_v2.go's
// writeSelection/writeValue, adapted to walk operation.BoundField instead
// of ast.Selection since the planner works post-binding). Root plans get a
// `query`/`mutation ($var: Type, ...) { ... }` header built from the
// schema's declared argument types; FederationEntity plans get the fixed
// `_entities(representations: $representations)` wrapper (spec §2 step 3,
// §4.2).
func BuildQueryText(op *OperationPlan, sch *schema.Schema) error {
	for _, p := range op.Plans {
		if p.Resolver == ResolverIntrospection {
			continue
		}
		text, err := buildPlanQueryText(p, sch)
		if err != nil {
			return fmt.Errorf("plan %d: %w", p.ID, err)
		}
		p.QueryText = text
	}
	return nil
}

func buildPlanQueryText(p *Plan, sch *schema.Schema) (string, error) {
	var sb strings.Builder

	switch p.Resolver {
	case ResolverFederationEntity:
		sb.WriteString("query ($representations: [_Any!]!) {\n")
		sb.WriteString("\t_entities(representations: $representations) {\n")
		sb.WriteString("\t\t... on ")
		sb.WriteString(p.InputBoundary.EntityTypeName)
		sb.WriteString(" {\n")
		for _, f := range p.Selections {
			if err := writeField(&sb, f, "\t\t\t", p.TypeID, sch); err != nil {
				return "", err
			}
		}
		sb.WriteString("\t\t}\n\t}\n}")
		return sb.String(), nil

	default: // ResolverRoot
		args := collectArgs(p.Selections, sch)

		switch p.OperationKind {
		case operation.Mutation:
			sb.WriteString("mutation")
		case operation.Subscription:
			sb.WriteString("subscription")
		default:
			sb.WriteString("query")
		}

		if len(args) > 0 {
			sb.WriteString(" (")
			for i, a := range args {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString("$")
				sb.WriteString(a.Name)
				sb.WriteString(": ")
				sb.WriteString(a.TypeText)
			}
			sb.WriteString(")")
		}
		sb.WriteString(" {\n")
		for _, f := range p.Selections {
			if err := writeField(&sb, f, "\t", p.TypeID, sch); err != nil {
				return "", err
			}
		}
		sb.WriteString("}")
		return sb.String(), nil
	}
}

// collectArgs walks every field's arguments (recursively, including nested
// selections) and returns the distinct variable-backed arguments' schema
// ArgumentDef, in first-seen order. Literal-only arguments need no
// variable declaration.
func collectArgs(fields []*operation.BoundField, sch *schema.Schema) []schema.ArgumentDef {
	var out []schema.ArgumentDef
	seen := make(map[string]bool)
	var walk func([]*operation.BoundField)
	walk = func(fs []*operation.BoundField) {
		for _, f := range fs {
			for _, a := range f.Arguments {
				if !a.Value.IsVariable || seen[a.Value.VariableName] {
					continue
				}
				seen[a.Value.VariableName] = true
				out = append(out, schema.ArgumentDef{Name: a.Value.VariableName, TypeText: argTypeText(f, a.Name, sch)})
			}
			walk(f.Selections)
		}
	}
	walk(fields)
	return out
}

// argTypeText resolves the declared GraphQL type text of field f's argument
// named argName from the schema, defaulting to "String" if the field or
// argument can't be resolved (matches the teacher's own String fallback in
// inferVariableType).
func argTypeText(f *operation.BoundField, argName string, sch *schema.Schema) string {
	fd := sch.Field(f.FieldID)
	if fd == nil {
		return "String"
	}
	if a, ok := fd.ArgByName(argName); ok {
		return a.TypeText
	}
	return "String"
}

func writeField(sb *strings.Builder, f *operation.BoundField, indent string, parentType schema.ObjectID, sch *schema.Schema) error {
	sb.WriteString(indent)

	if f.Aliased {
		sb.WriteString(f.ResponseKey)
		sb.WriteString(": ")
	}
	sb.WriteString(f.FieldName)

	if len(f.Arguments) > 0 {
		sb.WriteString("(")
		for i, a := range f.Arguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.Name)
			sb.WriteString(": ")
			writeArgValue(sb, a.Value)
		}
		sb.WriteString(")")
	}

	if len(f.Selections) > 0 {
		sb.WriteString(" {\n")
		for _, sub := range f.Selections {
			if err := writeField(sb, sub, indent+"\t", f.ParentType, sch); err != nil {
				return err
			}
		}
		sb.WriteString(indent)
		sb.WriteString("}")
	}
	sb.WriteString("\n")
	return nil
}

func writeArgValue(sb *strings.Builder, v operation.ArgumentValue) {
	if v.IsVariable {
		sb.WriteString("$")
		sb.WriteString(v.VariableName)
		return
	}
	writeLiteral(sb, v.Literal)
}

// writeLiteral renders an already-coerced Go value as GraphQL literal
// syntax (mirrors query_builder_v2.go's writeValue, operating on plain Go
// values instead of ast.Value since ArgumentValue.Literal is pre-coerced
// at bind time).
func writeLiteral(sb *strings.Builder, val any) {
	switch v := val.(type) {
	case nil:
		sb.WriteString("null")
	case string:
		sb.WriteString(strconv.Quote(v))
	case bool:
		if v {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case int64:
		sb.WriteString(strconv.FormatInt(v, 10))
	case int:
		sb.WriteString(strconv.Itoa(v))
	case float64:
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	case []any:
		sb.WriteString("[")
		for i, item := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeLiteral(sb, item)
		}
		sb.WriteString("]")
	case map[string]any:
		sb.WriteString("{")
		first := true
		for k, item := range v {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(k)
			sb.WriteString(": ")
			writeLiteral(sb, item)
		}
		sb.WriteString("}")
	default:
		sb.WriteString("null")
	}
}
