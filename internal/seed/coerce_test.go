package seed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphweave/fedcore/internal/response"
	"github.com/graphweave/fedcore/internal/schema"
	"github.com/graphweave/fedcore/internal/seed"
)

func TestCoerceScalarString(t *testing.T) {
	v, err := seed.CoerceScalar(schema.ScalarString, "hi")
	require.NoError(t, err)
	assert.Equal(t, response.ValueString, v.Kind)
	assert.Equal(t, "hi", v.Str)
}

func TestCoerceScalarStringTypeMismatch(t *testing.T) {
	_, err := seed.CoerceScalar(schema.ScalarString, 42.0)
	assert.Error(t, err)
}

func TestCoerceScalarIntRejectsNonInteger(t *testing.T) {
	_, err := seed.CoerceScalar(schema.ScalarInt, 1.5)
	assert.Error(t, err)
}

func TestCoerceScalarIntAcceptsWholeFloat(t *testing.T) {
	v, err := seed.CoerceScalar(schema.ScalarInt, 42.0)
	require.NoError(t, err)
	assert.Equal(t, response.ValueInt, v.Kind)
	assert.Equal(t, int64(42), v.Int)
}

func TestCoerceScalarBigIntAcceptsStringOrNumber(t *testing.T) {
	v, err := seed.CoerceScalar(schema.ScalarBigInt, "9007199254740993")
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", v.Str)

	v, err = seed.CoerceScalar(schema.ScalarBigInt, 42.0)
	require.NoError(t, err)
	assert.Equal(t, "42", v.Str)
}

func TestCoerceScalarJSONPassesThroughArbitraryShapes(t *testing.T) {
	v, err := seed.CoerceScalar(schema.ScalarJSON, map[string]any{"a": 1.0})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(v.Raw))
}
