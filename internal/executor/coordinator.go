package executor

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/graphweave/fedcore/internal/gqlerr"
	"github.com/graphweave/fedcore/internal/operation"
	"github.com/graphweave/fedcore/internal/planner"
	"github.com/graphweave/fedcore/internal/response"
	"github.com/graphweave/fedcore/internal/schema"
	"github.com/graphweave/fedcore/internal/seed"
)

// Coordinator dispatches an OperationPlan's root and federation-entity plans
// against their owning subgraphs wave by wave, and resolves any introspection
// plan entirely in-process. Grounded on federation/executor/executor_v2.go's
// Execute/executeSteps/findReadySteps, restructured around PlanBoundary and
// ObjectRef linkage instead of a generic per-step dependency counter: the
// planner (C3) already encodes exactly which objects feed which child plan.
type Coordinator struct {
	Client *http.Client
}

// NewCoordinator returns a Coordinator that dispatches subgraph requests
// with client. A nil client falls back to http.DefaultClient.
func NewCoordinator(client *http.Client) *Coordinator {
	if client == nil {
		client = http.DefaultClient
	}
	return &Coordinator{Client: client}
}

// wavePlan pairs a plan with the boundary objects its execution should
// resolve: the shared root object for every root-wave plan, or the entity
// objects a parent's PlanBoundary just collected for a child plan.
type wavePlan struct {
	plan *planner.Plan
	refs []response.ObjectRef
}

// Execute resolves every plan in op against sch's subgraphs and returns the
// assembled response. incoming carries the client request's headers, for
// the subgraphs' forwarding header rules.
func (c *Coordinator) Execute(ctx context.Context, sch *schema.Schema, op *planner.OperationPlan, variables map[string]any, incoming http.Header) *response.Response {
	rootType := rootObjectType(sch, op.RootKind)
	builder := response.NewBuilder(rootType)
	rootRef, _ := builder.RootRef()

	var wave []wavePlan
	for _, p := range op.Plans {
		switch {
		case p.Resolver == planner.ResolverIntrospection:
			executeIntrospection(sch, p, builder, rootRef, variables)
		case p.IsRoot():
			wave = append(wave, wavePlan{plan: p, refs: []response.ObjectRef{rootRef}})
		}
	}

	byBoundaryID := indexBoundaries(op)

	for len(wave) > 0 {
		batches := c.executeWave(ctx, sch, builder, wave, variables, incoming)

		var next []wavePlan
		for _, batch := range batches {
			if len(batch.Objects) == 0 {
				continue
			}
			boundary, ok := byBoundaryID[batch.BoundaryID]
			if !ok || boundary.Child == nil {
				continue
			}
			next = append(next, wavePlan{plan: boundary.Child, refs: batch.Objects})
		}
		wave = next
	}

	return builder.Build()
}

// executeWave runs every unit in wave concurrently, each against its own
// Part, and ingests them into builder as they complete — ingestion order
// across units doesn't matter since each writes disjoint objects/boundaries.
func (c *Coordinator) executeWave(ctx context.Context, sch *schema.Schema, builder *response.Builder, wave []wavePlan, variables map[string]any, incoming http.Header) []response.BoundaryBatch {
	results := make([][]response.BoundaryBatch, len(wave))

	g, gctx := errgroup.WithContext(ctx)
	for i, unit := range wave {
		i, unit := i, unit
		g.Go(func() error {
			results[i] = c.executePlan(gctx, sch, builder, unit, variables, incoming)
			return nil
		})
	}
	_ = g.Wait() // executePlan reports its own failures into the response tree; nothing to bubble up here

	var out []response.BoundaryBatch
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// executePlan dispatches one plan's subgraph request (or, for a federation
// entity plan, builds and sends the entities query) and seeds the result
// into a fresh Part, returning whatever boundary objects the seeding pass
// collected for this plan's own OutputBoundaries.
func (c *Coordinator) executePlan(ctx context.Context, sch *schema.Schema, builder *response.Builder, unit wavePlan, variables map[string]any, incoming http.Header) []response.BoundaryBatch {
	plan := unit.plan
	part := builder.NewWriter(unit.refs, boundaryIDsFor(plan))
	boundaries := boundaryMap(sch, plan)

	reqVariables := variables
	var representations []map[string]any
	if plan.Resolver == planner.ResolverFederationEntity {
		ib := plan.InputBoundary
		representations = make([]map[string]any, len(unit.refs))
		for i, ref := range unit.refs {
			representations[i] = builder.ReadKeyFields(ref, ib.EntityTypeName, ib.KeyFieldNames)
		}
		reqVariables = mergeVariables(variables, representations)
	}

	resp, err := dispatch(ctx, c.Client, plan.Subgraph, incoming, plan.QueryText, reqVariables)
	if err != nil {
		for {
			w, ok := part.NextWriter()
			if !ok {
				break
			}
			w.ReportError(err)
		}
		return builder.Ingest(part)
	}

	for _, e := range resp.Errors {
		part.PushError(subgraphError(e, plan, unit))
	}

	switch plan.Resolver {
	case planner.ResolverFederationEntity:
		entities, _ := resp.Data["_entities"].([]any)
		if len(entities) > len(unit.refs) {
			part.PushError(gqlerr.New("Received more entities than expected").
				WithExtension("serviceName", plan.Subgraph.Name))
			entities = entities[:len(unit.refs)]
		}
		for i := range unit.refs {
			w, ok := part.NextWriter()
			if !ok {
				break
			}
			var raw map[string]any
			if i < len(entities) {
				raw, _ = entities[i].(map[string]any)
			}
			seed.Root(w, sch, plan.TypeID, plan.Selections, raw, boundaries)
		}
	default:
		w, ok := part.NextWriter()
		if ok {
			seed.Root(w, sch, plan.TypeID, plan.Selections, resp.Data, boundaries)
		}
	}

	return builder.Ingest(part)
}

// rootObjectType resolves the schema object a plan's own root type should
// be, from the operation's root kind.
func rootObjectType(sch *schema.Schema, kind operation.Kind) schema.ObjectID {
	switch kind {
	case operation.Mutation:
		return sch.MutationType
	case operation.Subscription:
		return sch.SubscriptionType
	default:
		return sch.QueryType
	}
}

// boundaryMap builds the schema-object-type -> PlanBoundary.ID lookup Root
// needs to know which objects it builds must be fed to a child plan.
func boundaryMap(sch *schema.Schema, plan *planner.Plan) map[schema.ObjectID]int {
	if len(plan.OutputBoundaries) == 0 {
		return nil
	}
	out := make(map[schema.ObjectID]int, len(plan.OutputBoundaries))
	for _, b := range plan.OutputBoundaries {
		obj, ok := sch.ObjectByNameString(b.EntityTypeName)
		if !ok {
			continue
		}
		out[obj.ID] = b.ID
	}
	return out
}

func boundaryIDsFor(plan *planner.Plan) []int {
	if len(plan.OutputBoundaries) == 0 {
		return nil
	}
	ids := make([]int, len(plan.OutputBoundaries))
	for i, b := range plan.OutputBoundaries {
		ids[i] = b.ID
	}
	return ids
}

// indexBoundaries flattens every plan's OutputBoundaries into one lookup by
// PlanBoundary.ID, for resolving a BoundaryBatch to the child plan it feeds.
func indexBoundaries(op *planner.OperationPlan) map[int]*planner.PlanBoundary {
	out := make(map[int]*planner.PlanBoundary)
	for _, p := range op.Plans {
		for _, b := range p.OutputBoundaries {
			out[b.ID] = b
		}
	}
	return out
}

// mergeVariables returns a copy of variables with "representations" set to
// reps, mirroring query_builder_v2.go's buildEntityQuery: the full client
// variables map is passed through unchanged to every subgraph request, only
// gaining "representations" for entity steps.
func mergeVariables(variables map[string]any, reps []map[string]any) map[string]any {
	out := make(map[string]any, len(variables)+1)
	for k, v := range variables {
		out[k] = v
	}
	out["representations"] = reps
	return out
}

// subgraphError converts one entry of a subgraph's `errors` array into a
// core GraphqlError (spec §4.4): the message is prefixed "Upstream error:",
// the raw locations/extensions are stashed under upstream_locations/
// upstream_extensions, and the path is translated into this response's own
// ResponseEdges by walking it against plan's selections, the way
// executor_v2.go's recordSubgraphErrors tags extensions.serviceName but
// without this module's path reconstruction.
func subgraphError(raw map[string]any, plan *planner.Plan, unit wavePlan) *gqlerr.Error {
	msg, _ := raw["message"].(string)
	if msg == "" {
		msg = "subgraph returned an error"
	}
	ge := gqlerr.New("Upstream error: " + msg).WithExtension("serviceName", plan.Subgraph.Name)

	if locs, ok := raw["locations"]; ok {
		ge.WithExtension("upstream_locations", locs)
	}
	if ext, ok := raw["extensions"].(map[string]any); ok {
		ge.WithExtension("upstream_extensions", ext)
	}

	if rawPath, ok := raw["path"].([]any); ok && len(rawPath) > 0 {
		translated, remainder := resolveUpstreamPath(rawPath, plan, unit)
		if len(translated) > 0 {
			ge.Path = translated.JSON()
		}
		if len(remainder) > 0 {
			ge.WithExtension("upstream_path", remainder)
		}
	}

	return ge
}

// resolveUpstreamPath walks rawPath (a subgraph error's own "path", decoded
// from JSON as a mix of string field names and float64 list indices) against
// plan's response-key tree, translating every prefix segment that resolves
// into a local response.Edge. Translation stops at the first field-name
// segment that doesn't match a known response key (spec §8 scenario 5's
// unresolvable-segment case); everything from there on is returned as
// remainder instead, for the caller to stash under extensions.upstream_path.
//
// A federation-entity plan's own upstream path starts with "_entities" plus
// the representation index; that index selects which unit.refs entry the
// rest of the path is relative to, mirroring how its own response objects
// were addressed when the representations were built.
func resolveUpstreamPath(rawPath []any, plan *planner.Plan, unit wavePlan) (response.Path, []any) {
	prefix := response.Path(nil)
	rest := rawPath
	selections := plan.Selections

	if plan.Resolver == planner.ResolverFederationEntity {
		if len(rawPath) < 2 {
			return nil, rawPath
		}
		if name, ok := rawPath[0].(string); !ok || name != "_entities" {
			return nil, rawPath
		}
		idxFloat, ok := rawPath[1].(float64)
		if !ok || int(idxFloat) < 0 || int(idxFloat) >= len(unit.refs) {
			return nil, rawPath
		}
		prefix = unit.refs[int(idxFloat)].Path
		rest = rawPath[2:]
	} else if len(unit.refs) == 1 {
		prefix = unit.refs[0].Path
	}

	translated := append(response.Path(nil), prefix...)
	for i, seg := range rest {
		switch v := seg.(type) {
		case string:
			bf := fieldByResponseKey(selections, v)
			if bf == nil {
				return translated, rest[i:]
			}
			translated = append(translated, response.FieldEdge(v))
			selections = bf.Selections
		case float64:
			translated = append(translated, response.IndexEdge(int(v)))
		default:
			return translated, rest[i:]
		}
	}
	return translated, nil
}

// fieldByResponseKey finds the selection among fields whose ResponseKey is
// key, the response-keys-table lookup spec §4.4 describes.
func fieldByResponseKey(fields []*operation.BoundField, key string) *operation.BoundField {
	for _, f := range fields {
		if f.ResponseKey == key {
			return f
		}
	}
	return nil
}
