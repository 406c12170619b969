package gqlerr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphweave/fedcore/internal/gqlerr"
)

func TestNewf(t *testing.T) {
	err := gqlerr.Newf("field %q not found on %q", "name", "Product")
	assert.Equal(t, `field "name" not found on "Product"`, err.Message)
}

func TestWithChaining(t *testing.T) {
	err := gqlerr.New("boom").
		WithPath([]any{"user", "name"}).
		WithLocations([]gqlerr.Location{{Line: 2, Column: 5}}).
		WithExtension("serviceName", "reviews").
		WithCode(gqlerr.CodeInaccessibleField)

	require.Len(t, err.Path, 2)
	assert.Equal(t, "name", err.Path[1])
	assert.Equal(t, gqlerr.Location{Line: 2, Column: 5}, err.Locations[0])
	assert.Equal(t, "reviews", err.Extensions["serviceName"])
	assert.Equal(t, string(gqlerr.CodeInaccessibleField), err.Extensions["code"])
}

func TestInternalServerErrorNeverLeaksDiagnostics(t *testing.T) {
	err := gqlerr.InternalServerError()
	assert.Equal(t, "Internal server error", err.Message)
	assert.Equal(t, string(gqlerr.CodeInternalServerError), err.Extensions["code"])
}

func TestErrorImplementsErrorInterface(t *testing.T) {
	var err error = gqlerr.New("boom")
	assert.Equal(t, "boom", err.Error())
}
