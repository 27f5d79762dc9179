package metrics

// MultiSink fans solve events out to multiple sinks.
type MultiSink struct {
	Sinks []SolveSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...SolveSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolveResult forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordSolveResult(ev SolveResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolveResult(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordYearDispatch forwards dispatch-year events when supported by the sink.
func (m *MultiSink) RecordYearDispatch(ev YearDispatchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(YearDispatchRecorder); ok {
			if err := rec.RecordYearDispatch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordConstraintStatus forwards constraint snapshots when supported by the sink.
func (m *MultiSink) RecordConstraintStatus(evs []ConstraintEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ConstraintRecorder); ok {
			if err := rec.RecordConstraintStatus(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSolveLatency forwards latency metrics when supported by the sink.
func (m *MultiSink) RecordSolveLatency(lat []SolveLatency) error {
	for _, s := range m.Sinks {
		if lr, ok := s.(LatencyRecorder); ok {
			if err := lr.RecordSolveLatency(lat); err != nil {
				return err
			}
		}
	}
	return nil
}
