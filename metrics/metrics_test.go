package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIngestedEventsCounter(t *testing.T) {
	before := testutil.ToFloat64(IngestedEvents)
	IngestedEvents.Add(3)
	after := testutil.ToFloat64(IngestedEvents)
	if after-before != 3 {
		t.Fatalf("counter increased by %v, want 3", after-before)
	}
}

func TestBitmapOpsLabeled(t *testing.T) {
	BitmapOps.WithLabelValues("AND").Inc()
	if got := testutil.ToFloat64(BitmapOps.WithLabelValues("AND")); got < 1 {
		t.Fatalf("AND counter = %v, want >= 1", got)
	}
}

func TestRegistryGather(t *testing.T) {
	families, err := Registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}
