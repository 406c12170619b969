package response

// propagateError walks path from the response root, nulling out the
// nearest nullable ancestor it finds along the way (or the whole response
// if none is nullable) — ported from response/write/mod.rs's
// propagate_error (spec §3 step, SPEC_FULL.md supplemented feature 1).
//
// The Rust original tracks positions as (part, index) IDs because its
// borrow checker won't let it hold a live reference into the arena across
// the loop. Go has no such restriction: b.object/b.list already return a
// pointer/slice backed by the arena's real storage, so lastNullable can be
// a direct *Value and the final null-out is just an assignment through it.
// Caller must hold b.mu.
func (b *Builder) propagateError(path Path) {
	if b.root == nil {
		return
	}

	var lastNullable *Value
	inList := false
	curObj := *b.root
	var curList ListID

walk:
	for _, edge := range path {
		var val *Value

		if !inList {
			if edge.Kind != EdgeField {
				return
			}
			obj := b.object(curObj)
			if obj == nil {
				// Shouldn't happen, but treat as already-null.
				return
			}
			pos, ok := obj.FieldPosition(edge)
			if !ok {
				return
			}
			val = &obj.Fields[pos].Value
		} else {
			if edge.Kind != EdgeIndex {
				return
			}
			items := b.list(curList)
			if edge.Index < 0 || edge.Index >= len(items) {
				return
			}
			val = &items[edge.Index]
		}

		if val.IsNull() {
			return
		}

		switch val.Kind {
		case ValueObject:
			if val.Nullable {
				lastNullable = val
			}
			curObj = val.Obj
			inList = false
		case ValueList:
			if val.Nullable {
				lastNullable = val
			}
			curList = val.List
			inList = true
		default:
			// A scalar mid-path means the error path itself was malformed
			// (pointing past a leaf); stop walking and fall through to
			// whatever ancestor nullable we already found.
			break walk
		}
	}

	if lastNullable != nil {
		*lastNullable = Null
		return
	}
	b.root = nil
}
