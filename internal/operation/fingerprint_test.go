package operation_test

import (
	"testing"

	"github.com/graphweave/fedcore/internal/operation"
)

func TestFingerprintStableForSameInputs(t *testing.T) {
	a := operation.Fingerprint("{ hello }", "", 1)
	b := operation.Fingerprint("{ hello }", "", 1)
	if a != b {
		t.Fatalf("Fingerprint not stable: %d != %d", a, b)
	}
}

func TestFingerprintVariesWithSchemaVersion(t *testing.T) {
	a := operation.Fingerprint("{ hello }", "", 1)
	b := operation.Fingerprint("{ hello }", "", 2)
	if a == b {
		t.Fatal("Fingerprint must change across schema versions to avoid serving a stale bound Operation")
	}
}

func TestFingerprintVariesWithOperationName(t *testing.T) {
	a := operation.Fingerprint("query A { x } query B { y }", "A", 1)
	b := operation.Fingerprint("query A { x } query B { y }", "B", 1)
	if a == b {
		t.Fatal("Fingerprint must distinguish operation name within the same document")
	}
}

func TestFingerprintVariesWithText(t *testing.T) {
	a := operation.Fingerprint("{ hello }", "", 1)
	b := operation.Fingerprint("{ goodbye }", "", 1)
	if a == b {
		t.Fatal("Fingerprint must change when request text changes")
	}
}
