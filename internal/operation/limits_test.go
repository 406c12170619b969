package operation_test

import (
	"testing"

	"github.com/graphweave/fedcore/internal/operation"
)

func deepOperation(depth int) *operation.Operation {
	var leaf []*operation.BoundField
	for i := depth; i >= 1; i-- {
		leaf = []*operation.BoundField{{
			ResponseKey: "f",
			FieldName:   "f",
			Selections:  leaf,
		}}
	}
	return &operation.Operation{Selections: leaf}
}

func TestLimitsZeroMeansUnbounded(t *testing.T) {
	op := deepOperation(20)
	var l operation.Limits
	if err := l.Check(op); err != nil {
		t.Fatalf("Check() = %v, want nil with all limits at zero", err)
	}
}

func TestLimitsMaxDepthExceeded(t *testing.T) {
	op := deepOperation(5)
	l := operation.Limits{MaxDepth: 3}
	err := l.Check(op)
	if err == nil {
		t.Fatal("Check() = nil, want a depth-limit error")
	}
	if err.Extensions["code"] != "BAD_REQUEST" {
		t.Fatalf("extensions.code = %v, want BAD_REQUEST", err.Extensions["code"])
	}
}

func TestLimitsMaxDepthWithinBound(t *testing.T) {
	op := deepOperation(3)
	l := operation.Limits{MaxDepth: 3}
	if err := l.Check(op); err != nil {
		t.Fatalf("Check() = %v, want nil at exactly the limit", err)
	}
}

func TestLimitsMaxRootFields(t *testing.T) {
	op := &operation.Operation{Selections: []*operation.BoundField{
		{FieldName: "a"}, {FieldName: "b"}, {FieldName: "c"},
	}}
	l := operation.Limits{MaxRootFields: 2}
	if err := l.Check(op); err == nil {
		t.Fatal("Check() = nil, want a root-fields-limit error")
	}
}

func TestLimitsMaxAliases(t *testing.T) {
	op := &operation.Operation{Selections: []*operation.BoundField{
		{FieldName: "a", Aliased: true},
		{FieldName: "b", Aliased: true},
	}}
	l := operation.Limits{MaxAliases: 1}
	if err := l.Check(op); err == nil {
		t.Fatal("Check() = nil, want an aliases-limit error")
	}
}

func TestLimitsMaxComplexity(t *testing.T) {
	op := &operation.Operation{Selections: []*operation.BoundField{
		{FieldName: "a", Selections: []*operation.BoundField{{FieldName: "b"}, {FieldName: "c"}}},
	}}
	l := operation.Limits{MaxComplexity: 2}
	if err := l.Check(op); err == nil {
		t.Fatal("Check() = nil, want a complexity-limit error (3 fields counted)")
	}
}
