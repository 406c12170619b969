package operation

import "github.com/graphweave/fedcore/internal/gqlerr"

// Limits bounds a bound Operation before it reaches the planner (spec §6,
// "operation_limits", enforced between C2 and C3). Zero means "no limit"
// for that dimension, mirroring qktrzrj-graphql/internal/validation's
// "maxDepth checking is turned off when maxDepth is 0" convention.
type Limits struct {
	MaxDepth      int
	MaxAliases    int
	MaxRootFields int
	MaxComplexity int
}

// Check validates op against l, returning the first violated limit as a
// BadRequest GraphqlError, or nil if op is within every configured bound.
// Grounded on qktrzrj-graphql's validateMaxDepth: depth is counted in
// selection-set layers (a top-level field is depth 1), fragments already
// inlined by bindSelections don't add a layer of their own.
func (l Limits) Check(op *Operation) *gqlerr.Error {
	if l.MaxRootFields > 0 && len(op.Selections) > l.MaxRootFields {
		return gqlerr.Newf("operation has %d root fields, which exceeds the limit of %d", len(op.Selections), l.MaxRootFields).WithCode(gqlerr.CodeBadRequest)
	}

	aliases := 0
	var maxDepth int
	var complexity int
	var walk func(fields []*BoundField, depth int)
	walk = func(fields []*BoundField, depth int) {
		if depth > maxDepth {
			maxDepth = depth
		}
		for _, f := range fields {
			complexity++
			if f.Aliased {
				aliases++
			}
			if len(f.Selections) > 0 {
				walk(f.Selections, depth+1)
			}
		}
	}
	walk(op.Selections, 1)

	if l.MaxDepth > 0 && maxDepth > l.MaxDepth {
		return gqlerr.Newf("operation has depth %d, which exceeds the limit of %d", maxDepth, l.MaxDepth).WithCode(gqlerr.CodeBadRequest)
	}
	if l.MaxAliases > 0 && aliases > l.MaxAliases {
		return gqlerr.Newf("operation has %d aliases, which exceeds the limit of %d", aliases, l.MaxAliases).WithCode(gqlerr.CodeBadRequest)
	}
	if l.MaxComplexity > 0 && complexity > l.MaxComplexity {
		return gqlerr.Newf("operation has estimated complexity %d, which exceeds the limit of %d", complexity, l.MaxComplexity).WithCode(gqlerr.CodeBadRequest)
	}
	return nil
}
