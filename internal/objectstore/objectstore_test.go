package objectstore

import "testing"

func TestArchiveKeyLaysOutByBusinessDate(t *testing.T) {
	got := archiveKey("2026-07-30", "arc-001")
	want := "archives/2026-07-30/arc-001.tar.gz"
	if got != want {
		t.Fatalf("archiveKey() = %q, want %q", got, want)
	}
}
