package seed

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/graphweave/fedcore/internal/response"
	"github.com/graphweave/fedcore/internal/schema"
)

// CoerceScalar converts a decoded-JSON value (the Go types
// encoding/json.Unmarshal produces into an `any`: string, float64, bool,
// nil, []any, map[string]any) into a response.Value of the given leaf
// scalar kind, or an error if the upstream value doesn't match the
// declared type.
func CoerceScalar(kind schema.ScalarKind, raw any) (response.Value, error) {
	switch kind {
	case schema.ScalarString:
		s, ok := raw.(string)
		if !ok {
			return response.Null, fmt.Errorf("expected a String, got %T", raw)
		}
		return response.StringValue(s), nil

	case schema.ScalarBoolean:
		b, ok := raw.(bool)
		if !ok {
			return response.Null, fmt.Errorf("expected a Boolean, got %T", raw)
		}
		return response.BoolValue(b), nil

	case schema.ScalarInt:
		n, ok := raw.(float64)
		if !ok {
			return response.Null, fmt.Errorf("expected an Int, got %T", raw)
		}
		if n != float64(int64(n)) {
			return response.Null, fmt.Errorf("expected an Int, got non-integer %v", n)
		}
		return response.IntValue(int64(n)), nil

	case schema.ScalarFloat:
		n, ok := raw.(float64)
		if !ok {
			return response.Null, fmt.Errorf("expected a Float, got %T", raw)
		}
		return response.FloatValue(n), nil

	case schema.ScalarBigInt:
		// BigInt travels over the wire as a JSON string or number; either
		// way it's stored verbatim as a string, same as the teacher's
		// subgraph responses already carry IDs.
		switch v := raw.(type) {
		case string:
			return response.StringValue(v), nil
		case float64:
			return response.StringValue(strconv.FormatInt(int64(v), 10)), nil
		default:
			return response.Null, fmt.Errorf("expected a BigInt, got %T", raw)
		}

	case schema.ScalarJSON:
		b, err := json.Marshal(raw)
		if err != nil {
			return response.Null, fmt.Errorf("re-encoding custom scalar: %w", err)
		}
		return response.JSONValue(b), nil

	default:
		return response.Null, fmt.Errorf("unknown scalar kind %d", kind)
	}
}
