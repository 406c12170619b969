package executor

import (
	"net/http"

	"github.com/graphweave/fedcore/internal/schema"
)

// composeHeaders builds the header set sent to one subgraph request: each
// of sg's HeaderRules either forwards the named header from incoming
// (if present) or injects a fixed value, in rule order. Rules not matched
// by any incoming header are simply skipped rather than sent empty.
func composeHeaders(sg *schema.Subgraph, incoming http.Header) http.Header {
	out := make(http.Header, len(sg.Headers)+1)
	out.Set("Content-Type", "application/json")

	for _, rule := range sg.Headers {
		switch rule.Kind {
		case schema.HeaderForward:
			if incoming == nil {
				continue
			}
			if v := incoming.Values(rule.Name); len(v) > 0 {
				out[http.CanonicalHeaderKey(rule.Name)] = append([]string(nil), v...)
			}
		case schema.HeaderInject:
			out.Set(rule.Name, rule.Value)
		}
	}

	return out
}
