package seed

import (
	"github.com/graphweave/fedcore/internal/response"
	"github.com/graphweave/fedcore/internal/schema"
)

// entityCollector accumulates every object a seeding pass builds, keyed by
// its schema type, so Root can hand the ones matching a child plan's entity
// type to the part's boundary slots (response.Writer.PushBoundaryObjects)
// without the rest of the seed walk needing to know which types any
// particular request actually needs as federation boundaries.
type entityCollector struct {
	refs map[schema.ObjectID][]response.ObjectRef
}

func newEntityCollector() *entityCollector {
	return &entityCollector{refs: make(map[schema.ObjectID][]response.ObjectRef)}
}

func (c *entityCollector) record(typeID schema.ObjectID, id response.ObjectID, path response.Path) {
	if c == nil {
		return
	}
	c.refs[typeID] = append(c.refs[typeID], response.ObjectRef{ID: id, Path: path, Type: typeID})
}
