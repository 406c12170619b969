package seed

import (
	"fmt"

	"github.com/graphweave/fedcore/internal/operation"
)

// missingFieldMessage reports a required field's absence, distinguishing
// the aliased and non-aliased cases the way
// deserialize/mod.rs's missing_field_error_message does: when the field
// was requested under an alias, the message names both the alias actually
// looked for and the field it was expected to resolve (SPEC_FULL.md
// supplemented feature 4). The upstream concept of a CollectedField
// merging several aliased selections under one expected key isn't ported
// here (this planner never merges interface/union selections across
// subgraphs that way), so the "expected" name is simply bf's own
// underlying field name.
func missingFieldMessage(bf *operation.BoundField) string {
	if !bf.Aliased {
		return fmt.Sprintf("Error decoding response from upstream: Missing required field named '%s'", bf.FieldName)
	}
	return fmt.Sprintf(
		"Error decoding response from upstream: Missing required field named '%s' (expected: '%s')",
		bf.ResponseKey, bf.FieldName,
	)
}
