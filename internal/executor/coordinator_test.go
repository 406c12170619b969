package executor_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/graphweave/fedcore/federation/graph"
	"github.com/graphweave/fedcore/internal/executor"
	"github.com/graphweave/fedcore/internal/operation"
	"github.com/graphweave/fedcore/internal/planner"
	"github.com/graphweave/fedcore/internal/schema"
)

const productsSDL = `
	type Product @key(fields: "id") {
		id: ID!
		name: String!
	}

	type Query {
		topProducts: [Product]!
	}
`

const reviewsSDL = `
	extend type Product @key(fields: "id") {
		id: ID! @external
		reviews: [Review!]!
	}

	type Review {
		id: ID!
		rating: Int!
	}
`

// buildTwoSubgraphSchema composes productsSDL/reviewsSDL behind productsURL
// and reviewsURL, mirroring federation/graph/super_graph_v2_test.go's
// product+review fixture.
func buildTwoSubgraphSchema(t *testing.T, productsURL, reviewsURL string) *schema.Schema {
	t.Helper()

	productsSG, err := graph.NewSubGraphV2("products", []byte(productsSDL), productsURL)
	if err != nil {
		t.Fatalf("NewSubGraphV2(products): %v", err)
	}
	reviewsSG, err := graph.NewSubGraphV2("reviews", []byte(reviewsSDL), reviewsURL)
	if err != nil {
		t.Fatalf("NewSubGraphV2(reviews): %v", err)
	}

	superGraph, err := graph.NewSuperGraphV2([]*graph.SubGraphV2{productsSG, reviewsSG})
	if err != nil {
		t.Fatalf("NewSuperGraphV2: %v", err)
	}

	sch, err := schema.Build(superGraph, map[string]schema.SubgraphConfig{
		"products": {Endpoint: productsURL},
		"reviews":  {Endpoint: reviewsURL},
	}, false)
	if err != nil {
		t.Fatalf("schema.Build: %v", err)
	}
	return sch
}

func mustPlan(t *testing.T, sch *schema.Schema, query string) *planner.OperationPlan {
	t.Helper()
	op, gerr := operation.Parse(query, "", sch)
	if gerr != nil {
		t.Fatalf("operation.Parse: %v", gerr)
	}
	plan, err := planner.Build(op, sch)
	if err != nil {
		t.Fatalf("planner.Build: %v", err)
	}
	if err := planner.BuildQueryText(plan, sch); err != nil {
		t.Fatalf("planner.BuildQueryText: %v", err)
	}
	return plan
}

// TestCoordinatorExecuteTwoHopEntity dispatches a query spanning two
// subgraphs joined by a Product entity boundary: products resolves
// topProducts, reviews resolves each Product's reviews via _entities.
func TestCoordinatorExecuteTwoHopEntity(t *testing.T) {
	reviewsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Variables struct {
				Representations []map[string]any `json:"representations"`
			} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding reviews request: %v", err)
		}

		entities := make([]map[string]any, len(body.Variables.Representations))
		for i, rep := range body.Variables.Representations {
			id, _ := rep["id"].(string)
			entities[i] = map[string]any{
				"reviews": []map[string]any{
					{"id": "r-" + id, "rating": 5},
				},
			}
		}
		writeGraphQLResponse(w, map[string]any{"_entities": entities}, nil)
	}))
	defer reviewsServer.Close()

	productsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGraphQLResponse(w, map[string]any{
			"topProducts": []map[string]any{
				{"id": "1", "name": "Widget", "__typename": "Product"},
				{"id": "2", "name": "Gadget", "__typename": "Product"},
			},
		}, nil)
	}))
	defer productsServer.Close()

	sch := buildTwoSubgraphSchema(t, productsServer.URL, reviewsServer.URL)
	plan := mustPlan(t, sch, `{ topProducts { id name reviews { id rating } } }`)

	coord := executor.NewCoordinator(&http.Client{})
	resp := coord.Execute(t.Context(), sch, plan, nil, http.Header{})

	out, err := resp.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var decoded struct {
		Data struct {
			TopProducts []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Reviews []struct {
					ID     string `json:"id"`
					Rating int    `json:"rating"`
				} `json:"reviews"`
			} `json:"topProducts"`
		} `json:"data"`
		Errors []map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshaling response %s: %v", out, err)
	}

	if len(decoded.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", decoded.Errors)
	}
	if len(decoded.Data.TopProducts) != 2 {
		t.Fatalf("got %d products, want 2", len(decoded.Data.TopProducts))
	}
	if decoded.Data.TopProducts[0].Name != "Widget" || decoded.Data.TopProducts[1].Name != "Gadget" {
		t.Fatalf("products name mismatch: %+v", decoded.Data.TopProducts)
	}
	for i, p := range decoded.Data.TopProducts {
		if len(p.Reviews) != 1 {
			t.Fatalf("product %d: got %d reviews, want 1", i, len(p.Reviews))
		}
		if p.Reviews[0].Rating != 5 {
			t.Fatalf("product %d: rating = %d, want 5", i, p.Reviews[0].Rating)
		}
	}
}

// TestCoordinatorExecutePropagatesRequiredFieldNull exercises spec's
// nullability rule end to end: a federation-entity plan failure nulls the
// whole boundary object it was asked to complete (the entity merge as a
// unit either succeeds or fails), and that null then propagates no further
// than the nearest nullable ancestor above it — here, each nullable
// topProducts list slot absorbs the failure without nulling the list or
// the response root.
func TestCoordinatorExecutePropagatesRequiredFieldNull(t *testing.T) {
	reviewsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer reviewsServer.Close()

	productsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGraphQLResponse(w, map[string]any{
			"topProducts": []map[string]any{
				{"id": "1", "name": "Widget", "__typename": "Product"},
			},
		}, nil)
	}))
	defer productsServer.Close()

	sch := buildTwoSubgraphSchema(t, productsServer.URL, reviewsServer.URL)
	plan := mustPlan(t, sch, `{ topProducts { id name reviews { id rating } } }`)

	coord := executor.NewCoordinator(&http.Client{})
	resp := coord.Execute(t.Context(), sch, plan, nil, http.Header{})

	out, err := resp.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var decoded struct {
		Data *struct {
			TopProducts []map[string]any `json:"topProducts"`
		} `json:"data"`
		Errors []map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshaling response %s: %v", out, err)
	}

	if decoded.Data == nil {
		t.Fatal("data came back null, want the response root to survive the entity-fetch failure")
	}
	if len(decoded.Data.TopProducts) != 1 {
		t.Fatalf("got %d products, want 1 (nulled in place, not dropped)", len(decoded.Data.TopProducts))
	}
	if decoded.Data.TopProducts[0] != nil {
		t.Fatalf("topProducts[0] = %v, want null (its reviews entity fetch failed)", decoded.Data.TopProducts[0])
	}
	if len(decoded.Errors) == 0 {
		t.Fatal("want at least one error reported for the failed reviews dispatch")
	}
}

// TestCoordinatorExecuteExtraEntitiesWarns covers spec's "upstream list
// longer than the request's _entities length" boundary case: the excess is
// drained and a single warning error is appended rather than silently
// dropped or causing a mismatched write.
func TestCoordinatorExecuteExtraEntitiesWarns(t *testing.T) {
	reviewsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGraphQLResponse(w, map[string]any{
			"_entities": []map[string]any{
				{"reviews": []map[string]any{{"id": "r-1", "rating": 5}}},
				{"reviews": []map[string]any{{"id": "r-2", "rating": 4}}},
			},
		}, nil)
	}))
	defer reviewsServer.Close()

	productsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGraphQLResponse(w, map[string]any{
			"topProducts": []map[string]any{
				{"id": "1", "name": "Widget", "__typename": "Product"},
			},
		}, nil)
	}))
	defer productsServer.Close()

	sch := buildTwoSubgraphSchema(t, productsServer.URL, reviewsServer.URL)
	plan := mustPlan(t, sch, `{ topProducts { id name reviews { id rating } } }`)

	coord := executor.NewCoordinator(&http.Client{})
	resp := coord.Execute(t.Context(), sch, plan, nil, http.Header{})

	out, err := resp.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var decoded struct {
		Data struct {
			TopProducts []map[string]any `json:"topProducts"`
		} `json:"data"`
		Errors []map[string]any `json:"errors"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshaling response %s: %v", out, err)
	}

	if len(decoded.Data.TopProducts) != 1 {
		t.Fatalf("got %d products, want 1", len(decoded.Data.TopProducts))
	}

	var found bool
	for _, e := range decoded.Errors {
		if e["message"] == "Received more entities than expected" {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v, want one \"Received more entities than expected\"", decoded.Errors)
	}
}

// TestCoordinatorExecuteRewritesUpstreamError exercises spec §8 scenario 5:
// a root plan's upstream error is kept with its message prefixed, its path
// translated into this response's own edges when every segment resolves
// against the plan's own selections, and the failed non-null field nulls
// its nearest nullable ancestor.
func TestCoordinatorExecuteRewritesUpstreamError(t *testing.T) {
	reviewsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGraphQLResponse(w, map[string]any{"_entities": []map[string]any{}}, nil)
	}))
	defer reviewsServer.Close()

	productsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeGraphQLResponse(w, map[string]any{
			"topProducts": []map[string]any{
				{"id": "1", "name": nil, "__typename": "Product"},
			},
		}, []map[string]any{
			{
				"message": "boom",
				"path":    []any{"topProducts", 0, "name"},
			},
		})
	}))
	defer productsServer.Close()

	sch := buildTwoSubgraphSchema(t, productsServer.URL, reviewsServer.URL)
	plan := mustPlan(t, sch, `{ topProducts { id name reviews { id rating } } }`)

	coord := executor.NewCoordinator(&http.Client{})
	resp := coord.Execute(t.Context(), sch, plan, nil, http.Header{})

	out, err := resp.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var decoded struct {
		Data struct {
			TopProducts []map[string]any `json:"topProducts"`
		} `json:"data"`
		Errors []struct {
			Message    string         `json:"message"`
			Path       []any          `json:"path"`
			Extensions map[string]any `json:"extensions"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshaling response %s: %v", out, err)
	}

	// name is nullable at the item level (Product isn't itself non-null in
	// topProducts: [Product]!), so seeding absorbs the required-but-null
	// name field by nulling just this item — the only error in the final
	// response is the rewritten upstream one.
	if len(decoded.Data.TopProducts) != 1 || decoded.Data.TopProducts[0] != nil {
		t.Fatalf("topProducts = %v, want [null] (name is non-null)", decoded.Data.TopProducts)
	}

	if len(decoded.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %+v", len(decoded.Errors), decoded.Errors)
	}
	e := decoded.Errors[0]
	if e.Message != "Upstream error: boom" {
		t.Fatalf("message = %q, want prefixed with \"Upstream error: \"", e.Message)
	}
	wantPath := []any{"topProducts", float64(0), "name"}
	if len(e.Path) != len(wantPath) || e.Path[0] != wantPath[0] || e.Path[1] != wantPath[1] || e.Path[2] != wantPath[2] {
		t.Fatalf("path = %v, want %v (fully translated, no remainder)", e.Path, wantPath)
	}
	if _, ok := e.Extensions["upstream_path"]; ok {
		t.Fatalf("extensions = %v, want no upstream_path since the whole path resolved", e.Extensions)
	}
}

func writeGraphQLResponse(w http.ResponseWriter, data map[string]any, errs []map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	body := map[string]any{"data": data}
	if len(errs) > 0 {
		body["errors"] = errs
	}
	_ = json.NewEncoder(w).Encode(body)
}
