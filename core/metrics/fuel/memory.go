package fuel

import (
	"sort"
	"sync"
)

// MemoryStore stores records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[int]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[int]*Record{}}
}

// Add inserts or updates the record aggregated by run and year.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[r.RunID] == nil {
		s.data[r.RunID] = map[int]*Record{}
	}
	rec := s.data[r.RunID][r.Year]
	if rec == nil {
		rec = &Record{RunID: r.RunID, Year: r.Year}
		s.data[r.RunID][r.Year] = rec
	}
	rec.DeliveredMWh += r.DeliveredMWh
	rec.FuelMMBtu += r.FuelMMBtu
	rec.GasMCF += r.GasMCF
	return nil
}

// Query returns records between startYear and endYear inclusive.
func (s *MemoryStore) Query(runID string, startYear, endYear int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []Record
	for y, r := range s.data[runID] {
		if y < startYear || y > endYear {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Year < res[j].Year })
	return res, nil
}
