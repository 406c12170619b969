// Package planner turns a bound Operation into an OperationPlan: a DAG of
// Plans connected by PlanBoundaries, one Plan per subgraph dispatch plus
// one for introspection (spec §2, C3).
package planner

import (
	"github.com/graphweave/fedcore/internal/operation"
	"github.com/graphweave/fedcore/internal/schema"
)

// ResolverKind selects which executor variant (C5/C6/C7) runs a Plan.
type ResolverKind int

const (
	ResolverRoot ResolverKind = iota
	ResolverFederationEntity
	ResolverIntrospection
)

// PlanBoundary is a hand-off between a parent Plan and the child Plan that
// resolves one entity's fields on another subgraph: the parent writes
// `__typename` plus the entity's key fields, the child receives those
// objects through the `_entities`/`representations` mechanism (spec §2,
// §4.2 step 3).
type PlanBoundary struct {
	ID             int
	Parent         *Plan
	Child          *Plan
	EntityTypeName string
	KeyFieldNames  []string
}

// Plan is one unit of dispatch: either a root query/mutation against a
// single subgraph, an `_entities` fetch against a single subgraph for one
// entity type, or the introspection executor (no dispatch at all).
type Plan struct {
	ID            int
	Resolver      ResolverKind
	Subgraph      *schema.Subgraph // nil for ResolverIntrospection
	TypeID        schema.ObjectID  // root type (ResolverRoot) or entity type (ResolverFederationEntity)
	OperationKind operation.Kind
	Selections    []*operation.BoundField

	InputBoundary  *PlanBoundary   // nil for root plans
	OutputBoundaries []*PlanBoundary // boundaries whose parent is this plan

	QueryText string
}

// OperationPlan is every Plan required to resolve one Operation, in the
// order they were created — parents are always appended before the
// children their boundaries spawn, so this order is already topological.
type OperationPlan struct {
	Plans    []*Plan
	RootKind operation.Kind
}

// IsRoot reports whether pl has no parent boundary.
func (pl *Plan) IsRoot() bool { return pl.InputBoundary == nil }
