package response_test

import (
	"errors"
	"testing"

	"github.com/graphweave/fedcore/internal/response"
	"github.com/graphweave/fedcore/internal/schema"
)

// seedRootViewer ingests a root object with a single "viewer" field
// pointing at a freshly pushed object, and returns the viewer object's ID.
func seedRootViewer(b *response.Builder, viewerNullable bool) response.ObjectID {
	rootRef, _ := b.RootRef()
	part := b.NewWriter([]response.ObjectRef{rootRef}, nil)
	w, _ := part.NextWriter()
	viewerObjID := w.PushObject(response.Object{
		Type: schema.ObjectID(2),
		Fields: []response.Field{
			{Edge: response.FieldEdge("bio"), Value: response.StringValue("hi")},
		},
	})
	w.Finish([]response.Field{
		{Edge: response.FieldEdge("viewer"), Value: response.ObjectValue(viewerObjID, viewerNullable)},
	})
	b.Ingest(part)
	return viewerObjID
}

func TestPropagateErrorNullsNearestNullableAncestor(t *testing.T) {
	b := response.NewBuilder(schema.ObjectID(1))
	viewerObjID := seedRootViewer(b, true)

	failing := b.NewWriter([]response.ObjectRef{{
		ID:   viewerObjID,
		Path: response.Path{response.FieldEdge("viewer")},
		Type: schema.ObjectID(2),
	}}, nil)
	w, _ := failing.NextWriter()
	w.ReportError(errors.New("subgraph unreachable"))
	b.Ingest(failing)

	resp := b.Build()
	out, err := resp.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if got, want := string(out), `{"data":{"viewer":null},"errors":[{"message":"subgraph unreachable"}]}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestPropagateErrorNullsWholeResponseWhenNoNullableAncestor(t *testing.T) {
	b := response.NewBuilder(schema.ObjectID(1))
	viewerObjID := seedRootViewer(b, false)

	failing := b.NewWriter([]response.ObjectRef{{
		ID:   viewerObjID,
		Path: response.Path{response.FieldEdge("viewer")},
		Type: schema.ObjectID(2),
	}}, nil)
	w, _ := failing.NextWriter()
	w.ReportError(errors.New("subgraph unreachable"))
	b.Ingest(failing)

	resp := b.Build()
	out, err := resp.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if got, want := string(out), `{"data":null,"errors":[{"message":"subgraph unreachable"}]}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}
