package fuel

import (
	"math"
	"testing"
)

func TestMemoryStore_Aggregation(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Add(Record{RunID: "r1", Year: 2026, GasMCF: 200, FuelMMBtu: 210}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(Record{RunID: "r1", Year: 2026, GasMCF: 100, FuelMMBtu: 105}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	recs, err := s.Query("r1", 2026, 2026)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].GasMCF != 300 {
		t.Fatalf("expected 300 got %f", recs[0].GasMCF)
	}
}

func TestMemoryStore_YearRange(t *testing.T) {
	s := NewMemoryStore()
	for _, y := range []int{2026, 2027, 2028} {
		if err := s.Add(Record{RunID: "r1", Year: y, GasMCF: 1}); err != nil {
			t.Fatalf("add %d: %v", y, err)
		}
	}
	recs, err := s.Query("r1", 2027, 2028)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 2 || recs[0].Year != 2027 || recs[1].Year != 2028 {
		t.Fatalf("range wrong: %+v", recs)
	}
}

func TestRecordCalculations(t *testing.T) {
	r := Record{DeliveredMWh: 100, FuelMMBtu: 1000, GasMCF: 964}
	if got := r.CO2Tons(53.06); math.Abs(got-53.06) > 1e-9 {
		t.Fatalf("co2 got %f", got)
	}
	if got := r.GasIntensity(); math.Abs(got-9.64) > 1e-9 {
		t.Fatalf("intensity got %f", got)
	}
	var zero Record
	if zero.GasIntensity() != 0 {
		t.Fatalf("zero delivered should give zero intensity")
	}
}
