package operation

import "hash/fnv"

// Fingerprint hashes the operation's identity: its request text, the
// requested operation name (for multi-operation documents), and the
// schema's version (schema.Schema.Version, bumped on every Build so a
// recomposed registry schema never serves a bound Operation whose
// schema.FieldIDs belong to a prior generation). fnv-1a is used rather
// than a cryptographic hash because the cache only needs collision
// resistance against accidental reuse across schema generations, not
// adversarial input — the same cheap-hashing tradeoff the rest of the
// codebase makes for map keys.
func Fingerprint(text, operationName string, schemaVersion int) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(operationName))
	_, _ = h.Write([]byte{0})
	var v [8]byte
	putUvarint(v[:], uint64(schemaVersion))
	_, _ = h.Write(v[:])
	return h.Sum64()
}

func putUvarint(b []byte, v uint64) {
	for i := range b {
		b[i] = byte(v >> (8 * uint(i)))
	}
}
