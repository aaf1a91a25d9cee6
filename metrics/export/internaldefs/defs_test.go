package internaldefs

import (
	"strings"
	"testing"
)

func TestCumulativeBucketsRunningTotal(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBoundTablesAgree(t *testing.T) {
	if len(HistogramBounds) != 8 || len(HistogramBoundSuffix) != 8 {
		t.Fatalf("expected eight bounds, got %d and %d", len(HistogramBounds), len(HistogramBoundSuffix))
	}
	if len(HistogramUpperBounds) != len(HistogramBounds)-1 {
		t.Fatalf("expected %d finite bounds, got %d", len(HistogramBounds)-1, len(HistogramUpperBounds))
	}
	seen := make(map[string]bool)
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "leaseauth_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("unexpected counter name %q", def.Name)
		}
		if seen[def.Name] {
			t.Fatalf("duplicate counter name %q", def.Name)
		}
		seen[def.Name] = true
	}
}
