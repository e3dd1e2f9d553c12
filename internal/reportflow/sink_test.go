package reportflow

import "testing"

// UpsertDaySummary and UpsertTenderLines are exercised against a live
// Postgres instance in integration tests (see deployment docs); they are
// thin wrappers around parameterized SQL with no branch logic worth
// unit-testing against a fake pool. This file intentionally holds no
// table-driven marshal grid.
func TestDaySummaryFieldsRoundTripThroughStruct(t *testing.T) {
	s := DaySummary{ArchiveID: "2026-07-30", BusinessDate: "2026-07-30", CheckCount: 40, VoidCount: 1}
	if s.CheckCount != 40 {
		t.Fatalf("expected CheckCount 40, got %d", s.CheckCount)
	}
}
