package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/graphweave/fedcore/internal/schema"
)

// subgraphResponse is a subgraph's raw GraphQL response body, decoded only
// as far as separating data from errors — the seed layer (C8) does the
// rest against the schema and the plan's own selections.
type subgraphResponse struct {
	Data   map[string]any   `json:"data"`
	Errors []map[string]any `json:"errors"`
}

// dispatch sends one GraphQL request (query plus variables) to sg and
// decodes its response body, grounded on
// federation/executor/executor_v2.go's sendRequest.
func dispatch(ctx context.Context, client *http.Client, sg *schema.Subgraph, incoming http.Header, query string, variables map[string]any) (*subgraphResponse, error) {
	reqBody := map[string]any{"query": query}
	if len(variables) > 0 {
		reqBody["variables"] = variables
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request to subgraph %q: %w", sg.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sg.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("building request to subgraph %q: %w", sg.Name, err)
	}
	req.Header = composeHeaders(sg, incoming)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to subgraph %q: %w", sg.Name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from subgraph %q: %w", sg.Name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("subgraph %q returned status %d", sg.Name, resp.StatusCode)
	}

	var out subgraphResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decoding response from subgraph %q: %w", sg.Name, err)
	}
	return &out, nil
}
