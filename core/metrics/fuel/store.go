package fuel

// Store persists fuel KPI records.
type Store interface {
	Add(Record) error
	Query(runID string, startYear, endYear int) ([]Record, error)
}
