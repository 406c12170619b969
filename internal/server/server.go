// Package server is the HTTP front door (spec §1's "thin collaborator: out
// of scope" boundary, SPEC_FULL.md §2): GET/POST /graphql, CORS, body
// decode, trusted-document resolution, then a straight handoff into the
// execution core (C2 parse/bind, C3 plan, C5 execute). Grounded on
// gateway/gateway.go's ServeHTTP shape (decode -> parse -> plan -> execute
// -> encode), generalized to GET query-string requests and rebuilt around
// internal/operation, internal/planner, and internal/executor instead of
// the teacher's v1/v2 federation packages.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/graphweave/fedcore/internal/config"
	"github.com/graphweave/fedcore/internal/executor"
	"github.com/graphweave/fedcore/internal/gqlerr"
	"github.com/graphweave/fedcore/internal/operation"
	"github.com/graphweave/fedcore/internal/planner"
	"github.com/graphweave/fedcore/internal/response"
	"github.com/graphweave/fedcore/internal/schema"
	"github.com/graphweave/fedcore/internal/telemetry"
	"github.com/graphweave/fedcore/internal/trusteddoc"
)

// SchemaProvider resolves the currently composed schema. registry.Registry
// satisfies this directly; a static single-schema deployment can wrap one
// *schema.Schema in a trivial closure (see NewStaticSchemaProvider).
type SchemaProvider interface {
	Schema() (*schema.Schema, bool)
}

type staticSchemaProvider struct{ sch *schema.Schema }

func (p staticSchemaProvider) Schema() (*schema.Schema, bool) { return p.sch, p.sch != nil }

// NewStaticSchemaProvider wraps a single, never-changing schema (the
// cmd/fedcore dev/serve path that composes SDL once at startup, as opposed
// to registry's rebuild-on-registration flow) as a SchemaProvider.
func NewStaticSchemaProvider(sch *schema.Schema) SchemaProvider {
	return staticSchemaProvider{sch: sch}
}

// Server is the GraphQL-over-HTTP front door. Every field is injected
// (spec's design note: "the only process-wide state is the operation cache
// and the fetcher; both must be injected, not ambient, so tests can
// substitute fakes").
type Server struct {
	Schemas     SchemaProvider
	Cache       *operation.Cache
	Coordinator *executor.Coordinator
	Limits      operation.Limits
	Timeout     time.Duration
	TrustedDocs trusteddoc.Store
	Emitter     telemetry.Emitter
}

// New builds a Server from cfg and its collaborators. client is the HTTP
// client the Coordinator dispatches subgraph requests with (nil falls back
// to http.DefaultClient, see executor.NewCoordinator); emitter may be nil
// (defaults to telemetry.NoopEmitter); docs may be nil (trusted-documents
// mode simply never matches).
func New(schemas SchemaProvider, client *http.Client, cfg *config.Config, emitter telemetry.Emitter, docs trusteddoc.Store) *Server {
	if emitter == nil {
		emitter = telemetry.NoopEmitter{}
	}
	s := &Server{
		Schemas:     schemas,
		Cache:       operation.NewCache(512),
		Coordinator: executor.NewCoordinator(client),
		TrustedDocs: docs,
		Emitter:     emitter,
	}
	if cfg != nil {
		s.Limits = cfg.OperationLimits.ToOperation()
		s.Timeout = cfg.Timeout()
	}
	return s
}

// graphQLRequest is the JSON/query-string request envelope spec §6 names:
// `{query, variables, operationName}`, plus documentId for the
// trusted-documents collaborator.
type graphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
	DocumentID    string         `json:"documentId"`
}

// badRequestEnvelope is the §2/§7.1 "errors only, no data key" shape.
type badRequestEnvelope struct {
	Errors []*gqlerr.Error `json:"errors"`
}

var _ http.Handler = (*Server)(nil)

// ServeHTTP implements spec §6's external interface: GET with query-string
// parameters, POST with a JSON body, both at whatever path the caller
// mounts this handler under (routing itself is the embedding cmd's
// concern, not the core's).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	requestID := uuid.NewString()
	w.Header().Set("X-Fedcore-Request-Id", requestID)

	ctx := r.Context()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var req graphQLRequest
	var decodeErr error
	switch r.Method {
	case http.MethodGet:
		req, decodeErr = decodeGetRequest(r)
	case http.MethodPost:
		req, decodeErr = decodePostRequest(r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if decodeErr != nil {
		s.writeBadRequest(w, http.StatusBadRequest, gqlerr.Newf("malformed request: %v", decodeErr))
		return
	}

	if req.DocumentID != "" {
		text, ok := s.resolveTrustedDocument(ctx, req.DocumentID)
		if !ok {
			s.writeBadRequest(w, http.StatusBadRequest, gqlerr.Newf("unknown trusted document id %q", req.DocumentID))
			return
		}
		req.Query = text
	}
	if req.Query == "" {
		s.writeBadRequest(w, http.StatusBadRequest, gqlerr.New("missing query"))
		return
	}

	sch, ok := s.Schemas.Schema()
	if !ok {
		s.writeBadRequest(w, http.StatusServiceUnavailable, gqlerr.New("no schema has been composed yet"))
		return
	}

	resp, badErrs := s.execute(ctx, requestID, sch, req, r.Header)
	s.writeResponse(w, resp, badErrs)
}

func (s *Server) resolveTrustedDocument(ctx context.Context, id string) (string, bool) {
	if s.TrustedDocs == nil {
		return "", false
	}
	return s.TrustedDocs.Lookup(ctx, id)
}

// execute runs the three core stages (C2 parse/bind, C3 plan, C5 execute)
// and reports a telemetry.StatusEvent at each, mirroring spec's "structured
// status events" ambient contract. A parse/bind/limits/planning failure
// short-circuits to a BadRequest-shaped result (spec §7.1): errors only, no
// data key, but still HTTP 200 (spec §6: "200 for any GraphQL-level
// outcome").
func (s *Server) execute(ctx context.Context, requestID string, sch *schema.Schema, req graphQLRequest, incoming http.Header) (*response.Response, []*gqlerr.Error) {
	op, gerr := s.Cache.GetOrParse(req.Query, req.OperationName, sch, int(sch.Version))
	if gerr != nil {
		s.emit(ctx, telemetry.EventError, requestID, "", "operation parse/bind failed", gerr)
		return nil, []*gqlerr.Error{gerr}
	}
	s.emit(ctx, telemetry.EventOperationParsed, requestID, "", "operation parsed", nil)

	if lerr := s.Limits.Check(op); lerr != nil {
		s.emit(ctx, telemetry.EventError, requestID, "", "operation limits exceeded", lerr)
		return nil, []*gqlerr.Error{lerr}
	}

	if !sch.EnableIntrospection {
		for _, f := range op.Selections {
			if f.FieldName == "__schema" || f.FieldName == "__type" {
				ierr := gqlerr.New("introspection is disabled").WithCode(gqlerr.CodeBadRequest)
				s.emit(ctx, telemetry.EventError, requestID, "", "introspection disabled", ierr)
				return nil, []*gqlerr.Error{ierr}
			}
		}
	}

	plan, err := planner.Build(op, sch)
	if err != nil {
		s.emit(ctx, telemetry.EventError, requestID, "", "planning failed", err)
		return nil, []*gqlerr.Error{gqlerr.InternalServerError()}
	}
	if err := planner.BuildQueryText(plan, sch); err != nil {
		s.emit(ctx, telemetry.EventError, requestID, "", "query text generation failed", err)
		return nil, []*gqlerr.Error{gqlerr.InternalServerError()}
	}
	s.emit(ctx, telemetry.EventPlanBuilt, requestID, "", "plan built", nil)

	resp := s.Coordinator.Execute(ctx, sch, plan, req.Variables, incoming)
	return resp, nil
}

func (s *Server) emit(ctx context.Context, kind telemetry.EventKind, requestID, subgraph, msg string, err error) {
	s.Emitter.Emit(ctx, telemetry.StatusEvent{
		Kind:      kind,
		RequestID: requestID,
		Subgraph:  subgraph,
		Message:   msg,
		Err:       err,
	})
}

// writeResponse always answers HTTP 200 for a GraphQL-level outcome (spec
// §6), whether that outcome is a fully executed response (possibly
// carrying field errors and Nulls from propagation) or a BadRequest-taxonomy
// single error recorded before planning ever started.
func (s *Server) writeResponse(w http.ResponseWriter, resp *response.Response, badErrs []*gqlerr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if badErrs != nil {
		_ = json.NewEncoder(w).Encode(badRequestEnvelope{Errors: badErrs})
		return
	}

	b, err := resp.MarshalJSON()
	if err != nil {
		_ = json.NewEncoder(w).Encode(badRequestEnvelope{Errors: []*gqlerr.Error{gqlerr.InternalServerError()}})
		return
	}
	_, _ = w.Write(b)
}

// writeBadRequest answers with a real HTTP error status rather than a
// GraphQL-level 200: 400 for malformed JSON, a missing query, or an
// unresolvable trusted-document id (spec §6), and 503 while no schema has
// been composed yet.
func (s *Server) writeBadRequest(w http.ResponseWriter, status int, err *gqlerr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(badRequestEnvelope{Errors: []*gqlerr.Error{err}})
}

// decodeGetRequest implements the `GET /graphql?query=...&variables=...
// &operationName=...` surface from spec §6.
func decodeGetRequest(r *http.Request) (graphQLRequest, error) {
	q := r.URL.Query()
	req := graphQLRequest{
		Query:         q.Get("query"),
		OperationName: q.Get("operationName"),
		DocumentID:    q.Get("documentId"),
	}
	if vars := q.Get("variables"); vars != "" {
		if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
			return graphQLRequest{}, err
		}
	}
	return req, nil
}

// decodePostRequest implements the `POST /graphql` JSON-body surface.
func decodePostRequest(r *http.Request) (graphQLRequest, error) {
	defer r.Body.Close()
	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return graphQLRequest{}, err
	}
	return req, nil
}
