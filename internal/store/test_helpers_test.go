package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/listfuse/internal/ir"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testMapping returns a valid mapping with the given position base.
func testMapping(base int) ir.CollectionMapping {
	return ir.CollectionMapping{
		Name:           "items",
		Table:          "order_items",
		OwnerColumn:    "order_id",
		PositionColumn: "idx",
		ElementColumn:  "item",
		PositionBase:   base,
	}
}

// createTestFlush creates a flush record with minimal required fields.
func createTestFlush(sessionID string, seq int64) ir.FlushRecord {
	return ir.FlushRecord{
		SessionID:  sessionID,
		Seq:        seq,
		Collection: "items",
		Owner:      `"order-1"`,
		PlanID:     "test-plan",
		Strategy:   "fused",
		Plan:       "{}",
	}
}
