package metrics

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestLatencyTrackerQuantiles(t *testing.T) {
	lt := NewLatencyTracker(0.01)
	for i := 1; i <= 100; i++ {
		lt.Record(StepRender, time.Duration(i)*time.Millisecond)
	}

	stats, err := lt.GetStats(StepRender)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Count != 100 {
		t.Fatalf("expected 100 samples, got %d", stats.Count)
	}
	if math.Abs(stats.P50-50) > 1.5 {
		t.Errorf("p50 out of range: %.2f", stats.P50)
	}
	if math.Abs(stats.Max-100) > 1.5 {
		t.Errorf("max out of range: %.2f", stats.Max)
	}
	if !strings.Contains(stats.String(), "render (n=100)") {
		t.Errorf("unexpected string %q", stats.String())
	}
}

func TestLatencyTrackerUnknownStep(t *testing.T) {
	lt := NewLatencyTracker(0)
	if _, err := lt.GetStats("nope"); err == nil {
		t.Fatal("expected error for unknown step")
	}
}

func TestAllStatsSortedAndStartRecords(t *testing.T) {
	lt := NewLatencyTracker(0)
	done := lt.Start(StepResolve)
	done()
	lt.Record(StepDispatch, time.Millisecond)

	all := lt.AllStats()
	if len(all) != 2 || all[0].Step != StepDispatch || all[1].Step != StepResolve {
		t.Fatalf("unexpected stats %+v", all)
	}
}

func TestNilTrackerIsSafe(t *testing.T) {
	var lt *LatencyTracker
	lt.Record(StepRender, time.Millisecond)
	if lt.AllStats() != nil {
		t.Fatal("expected nil stats from nil tracker")
	}
	if _, err := lt.GetStats(StepRender); err == nil {
		t.Fatal("expected error from nil tracker")
	}
	lt.Start(StepResolve)()
}
