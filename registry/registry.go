// Package registry implements the schema registration HTTP collaborator:
// subgraphs POST their name/host/SDL here, and the registry recomposes the
// supergraph and its internal/schema.Schema on every registration, the same
// "rebuild from every known SDL" shape gateway/engine.go's buildEngine uses,
// but producing a schema.Schema instead of a v1 executionEngine.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/graphweave/fedcore/federation/graph"
	"github.com/graphweave/fedcore/internal/schema"
)

// subgraphSource is the raw material recomposed on every registration: the
// SDL text and dispatch host a prior /schema/registration call supplied for
// one subgraph name.
type subgraphSource struct {
	Name string
	Host string
	SDL  string
}

// Registry accepts subgraph schema registrations over HTTP and recomposes
// the gateway's schema.Schema on every call. Recomposition cost is
// dominated by subgraph count, which stays small for a federated graph, so
// a full rebuild on every registration is simpler than tracking diffs.
type Registry struct {
	gatewayHosts atomic.Value // map[string]struct{}
	addHostChan  chan string

	sources atomic.Value // map[string]subgraphSource, keyed by subgraph name
	schema  atomic.Value // *schema.Schema, nil until the first successful composition

	enableIntrospection bool
	client              *http.Client

	// HeaderRules resolves the composed header rule set for a subgraph by
	// name (config's default_headers layered under that subgraph's own
	// headers, spec §6). Nil means no header rules are applied to any
	// registered subgraph.
	HeaderRules func(name string) []schema.HeaderRule
}

// NewRegistry returns a Registry that composes schemas with introspection
// enabled or disabled as enableIntrospection directs (spec §6
// enable_introspection).
func NewRegistry(enableIntrospection bool) *Registry {
	gatewayHosts := atomic.Value{}
	gatewayHosts.Store(make(map[string]struct{}))

	sources := atomic.Value{}
	sources.Store(make(map[string]subgraphSource))

	r := &Registry{
		gatewayHosts:        gatewayHosts,
		addHostChan:         make(chan string),
		sources:             sources,
		enableIntrospection: enableIntrospection,
		client:              &http.Client{},
	}
	r.schema.Store((*schema.Schema)(nil))
	return r
}

func (r *Registry) Start() {
	go func() {
		for host := range r.addHostChan {
			r.addGatewayHost(host)
		}
	}()
}

func (r *Registry) addGatewayHost(host string) {
	existing := r.gatewayHosts.Load().(map[string]struct{})
	next := make(map[string]struct{}, len(existing)+1)
	for h := range existing {
		next[h] = struct{}{}
	}
	next[host] = struct{}{}
	r.gatewayHosts.Store(next)
}

// Schema returns the most recently composed schema, or ok == false if no
// registration has succeeded yet.
func (r *Registry) Schema() (*schema.Schema, bool) {
	sch, _ := r.schema.Load().(*schema.Schema)
	return sch, sch != nil
}

type RegistrationGraph struct {
	Name string `json:"name"`
	Host string `json:"host"`
	SDL  string `json:"sdl"`
}

type RegistrationRequest struct {
	RegistrationGraphs []RegistrationGraph `json:"registration_graphs"`
}

func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.URL.Path {
	case "/schema/registration":
		r.RegisterGateway(w, req)
	default:
		http.NotFound(w, req)
	}
}

func (r *Registry) RegisterGateway(w http.ResponseWriter, req *http.Request) {
	var body RegistrationRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		return
	}

	existing := r.sources.Load().(map[string]subgraphSource)
	merged := make(map[string]subgraphSource, len(existing)+len(body.RegistrationGraphs))
	for name, src := range existing {
		merged[name] = src
	}
	for _, rg := range body.RegistrationGraphs {
		merged[rg.Name] = subgraphSource{Name: rg.Name, Host: rg.Host, SDL: rg.SDL}
	}

	sch, err := r.compose(merged)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to compose schema: %s", err), http.StatusBadRequest)
		return
	}

	r.sources.Store(merged)
	r.schema.Store(sch)

	for _, rg := range body.RegistrationGraphs {
		r.addHostChan <- rg.Host
	}

	gatewayHosts := r.gatewayHosts.Load().(map[string]struct{})
	for sgHost := range gatewayHosts {
		reqBody, err := json.Marshal(body)
		if err != nil {
			http.Error(w, "Failed to marshal request body", http.StatusInternalServerError)
			return
		}

		registerGatewayRequest, err := http.NewRequestWithContext(req.Context(), http.MethodPost, sgHost+"/schema/registration", bytes.NewBuffer(reqBody))
		if err != nil {
			http.Error(w, "Failed to create gateway request", http.StatusInternalServerError)
			return
		}

		go func() {
			// best-effort fan-out: a downstream gateway recomposes on its own
			// next poll or registration regardless of whether this call lands
			if _, err := r.client.Do(registerGatewayRequest); err != nil {
				return
			}
		}()
	}
}

// compose rebuilds the SuperGraphV2 and internal/schema.Schema from every
// known subgraph source. It never mutates sources in place so a failed
// composition leaves the registry's current schema untouched.
func (r *Registry) compose(sources map[string]subgraphSource) (*schema.Schema, error) {
	subGraphs := make([]*graph.SubGraphV2, 0, len(sources))
	subgraphConfig := make(map[string]schema.SubgraphConfig, len(sources))
	for name, src := range sources {
		sg, err := graph.NewSubGraphV2(name, []byte(src.SDL), src.Host)
		if err != nil {
			return nil, fmt.Errorf("building subgraph %q: %w", name, err)
		}
		subGraphs = append(subGraphs, sg)
		cfg := schema.SubgraphConfig{Endpoint: src.Host}
		if r.HeaderRules != nil {
			cfg.Headers = r.HeaderRules(name)
		}
		subgraphConfig[name] = cfg
	}

	superGraph, err := graph.NewSuperGraphV2(subGraphs)
	if err != nil {
		return nil, fmt.Errorf("composing supergraph: %w", err)
	}

	sch, err := schema.Build(superGraph, subgraphConfig, r.enableIntrospection)
	if err != nil {
		return nil, fmt.Errorf("building schema: %w", err)
	}
	return sch, nil
}
