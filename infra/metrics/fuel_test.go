package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/gridsmith/powerplan/core/metrics"
	"github.com/gridsmith/powerplan/core/metrics/fuel"
)

func TestFuelSink_RecordYearDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := fuel.NewMemoryStore()
	sink := NewFuelSink(store, fuel.DefaultEmissionFactorKgPerMMBtu, reg)

	ev := coremetrics.YearDispatchEvent{
		RunID:        "r1",
		Year:         2026,
		DeliveredMWh: 1000,
		FuelMMBtu:    9000,
		GasMCF:       8678,
	}
	if err := sink.RecordYearDispatch(ev); err != nil {
		t.Fatalf("record: %v", err)
	}

	recs, err := store.Query("r1", 2026, 2026)
	if err != nil || len(recs) != 1 {
		t.Fatalf("store query: %v len=%d", err, len(recs))
	}
	if recs[0].FuelMMBtu != 9000 {
		t.Fatalf("fuel not stored: %+v", recs[0])
	}

	if v := testutil.ToFloat64(sink.gas.WithLabelValues("r1", "2026")); v != 8678 {
		t.Fatalf("gas gauge got %f", v)
	}
	want := 9000 * fuel.DefaultEmissionFactorKgPerMMBtu / 1000
	if v := testutil.ToFloat64(sink.co2.WithLabelValues("r1", "2026")); v != want {
		t.Fatalf("co2 gauge got %f want %f", v, want)
	}

	// A second year event for the same run aggregates in the store.
	if err := sink.RecordYearDispatch(ev); err != nil {
		t.Fatalf("record 2: %v", err)
	}
	if v := testutil.ToFloat64(sink.gas.WithLabelValues("r1", "2026")); v != 2*8678 {
		t.Fatalf("aggregated gas gauge got %f", v)
	}
}
