package seed

import (
	"fmt"

	"github.com/graphweave/fedcore/internal/gqlerr"
	"github.com/graphweave/fedcore/internal/operation"
	"github.com/graphweave/fedcore/internal/response"
	"github.com/graphweave/fedcore/internal/schema"
)

// Root seeds one boundary item's selections from raw, its already-decoded
// top-level JSON object (the subgraph's `data` object for a root plan, or
// one element of `data._entities` for a federation-entity plan), and
// finishes w with the result (spec's UpdateSeed equivalent).
//
// When raw is nil (the subgraph reported this object as absent
// altogether, e.g. `_entities` returned `null` for this representation),
// optional selections read as null and, if there is a required selection,
// the first one is reported as missing and w is failed at that field;
// later required selections are not reported.
//
// boundaries maps a schema object type to the boundary ID a child
// federation-entity plan was assigned for that type (planner.PlanBoundary),
// letting Root report every object of that type it builds back to the part
// via Writer.PushBoundaryObjects. A nil or empty map means this plan has no
// children to feed.
func Root(w *response.Writer, sch *schema.Schema, typeID schema.ObjectID, selections []*operation.BoundField, raw map[string]any, boundaries map[schema.ObjectID]int) {
	ctx := NewContext(w.RootPath())
	coll := newEntityCollector()

	fields, err := seedObjectFields(ctx, w, sch, typeID, selections, raw, coll)
	if err != nil {
		first, path := ctx.FirstError()
		if first == nil {
			first = err
			path = ctx.Path()
		}
		w.ReportError(toGraphqlError(first, path))
		return
	}

	if boundaryID, ok := boundaries[typeID]; ok {
		w.PushBoundaryObjects(boundaryID, []response.ObjectRef{w.RootRef()})
	}
	for t, boundaryID := range boundaries {
		if t == typeID {
			continue
		}
		if refs := coll.refs[t]; len(refs) > 0 {
			w.PushBoundaryObjects(boundaryID, refs)
		}
	}

	w.Finish(fields)
}

func toGraphqlError(err error, path response.Path) *gqlerr.Error {
	ge, ok := err.(*gqlerr.Error)
	if !ok {
		ge = gqlerr.New(err.Error())
	}
	ge.Path = path.JSON()
	return ge
}

// seedObjectFields seeds every selection of one object's fields from raw,
// producing the []response.Field ready for either Writer.Finish (root) or
// Writer.PushObject (nested). An error return means a required selection
// failed and this object's own value cannot be represented — the caller
// decides whether its own wrapping can absorb that as null.
func seedObjectFields(ctx *Context, w *response.Writer, sch *schema.Schema, typeID schema.ObjectID, selections []*operation.BoundField, raw map[string]any, coll *entityCollector) ([]response.Field, error) {
	fields := make([]response.Field, 0, len(selections))

	for _, bf := range selections {
		if bf.FieldName == "__typename" {
			fields = append(fields, response.Field{
				Edge:  edgeFor(bf),
				Value: response.StringValue(sch.TypeName(typeID)),
			})
			continue
		}

		fd := sch.Field(bf.FieldID)
		if fd == nil {
			return nil, ctx.fail(fmt.Errorf("field %q is not bound to a schema field", bf.FieldName))
		}

		fieldRaw, present := raw[bf.ResponseKey]
		ctx.pushEdge(edgeFor(bf))

		var v response.Value
		var err error
		if !present {
			if fd.Type.Wrapping.IsRequired() {
				err = ctx.fail(gqlerr.New(missingFieldMessage(bf)))
			} else {
				v = response.Null
			}
		} else {
			v, err = seedTyped(ctx, w, sch, bf, fd.Type.Wrapping, fd.Type, fieldRaw, coll)
		}

		ctx.popEdge()

		if err != nil {
			return nil, err
		}
		fields = append(fields, response.Field{Edge: edgeFor(bf), Value: v})
	}

	return fields, nil
}

func edgeFor(bf *operation.BoundField) response.Edge {
	return response.FieldEdge(bf.ResponseKey)
}

// seedTyped seeds one value against wrapping/ft, recursing through list
// layers before reaching the leaf scalar or nested selection set. At
// every layer, a failure below is either absorbed to null (if this
// layer's own nullability allows it) or returned unchanged so the next
// layer up makes the same decision — this recursion is exactly "walk up
// to the nearest nullable ancestor", done inline during parsing instead
// of via the builder's cross-part propagateError (which only runs at
// plan-boundary granularity, spec §3).
func seedTyped(ctx *Context, w *response.Writer, sch *schema.Schema, bf *operation.BoundField, wrapping schema.Wrapping, ft schema.FieldType, raw any, coll *entityCollector) (response.Value, error) {
	if layer, rest, ok := wrapping.PopList(); ok {
		if raw == nil {
			if layer.Nullable {
				return response.Null, nil
			}
			return response.Null, ctx.fail(gqlerr.New(missingFieldMessage(bf)))
		}

		arr, ok := raw.([]any)
		if !ok {
			err := ctx.fail(fmt.Errorf("expected a list for field %q, got %T", bf.ResponseKey, raw))
			if layer.Nullable {
				return response.Null, nil
			}
			return response.Null, err
		}

		vals := make([]response.Value, 0, len(arr))
		for i, item := range arr {
			ctx.pushEdge(response.IndexEdge(i))
			v, err := seedTyped(ctx, w, sch, bf, rest, ft, item, coll)
			ctx.popEdge()
			if err != nil {
				if layer.Nullable {
					return response.Null, nil
				}
				return response.Null, err
			}
			vals = append(vals, v)
		}

		id := w.PushList(vals)
		return response.ListValue(id, layer.Nullable), nil
	}

	if raw == nil {
		if !wrapping.InnerRequired {
			return response.Null, nil
		}
		return response.Null, ctx.fail(gqlerr.New(missingFieldMessage(bf)))
	}

	if ft.Kind == schema.FieldTypeScalar {
		v, err := CoerceScalar(ft.Scalar, raw)
		if err != nil {
			reported := ctx.fail(err)
			if !wrapping.InnerRequired {
				return response.Null, nil
			}
			return response.Null, reported
		}
		return v, nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		err := ctx.fail(fmt.Errorf("expected an object for field %q, got %T", bf.ResponseKey, raw))
		if !wrapping.InnerRequired {
			return response.Null, nil
		}
		return response.Null, err
	}

	childType, ok := sch.ObjectByName(ft.TypeName)
	if !ok {
		err := ctx.fail(fmt.Errorf("unknown object type for field %q", bf.ResponseKey))
		if !wrapping.InnerRequired {
			return response.Null, nil
		}
		return response.Null, err
	}

	fields, err := seedObjectFields(ctx, w, sch, childType.ID, bf.Selections, obj, coll)
	if err != nil {
		if !wrapping.InnerRequired {
			return response.Null, nil
		}
		return response.Null, err
	}

	id := w.PushObject(response.Object{Type: childType.ID, Fields: fields})
	coll.record(childType.ID, id, ctx.Path())
	return response.ObjectValue(id, !wrapping.InnerRequired), nil
}
