package runlog

import (
	"context"
	"testing"
	"time"

	"github.com/gridsmith/powerplan/core/model"
)

func TestJSONLStore_AppendQuery(t *testing.T) {
	path := t.TempDir() + "/runs.jsonl"
	store, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []RunRecord{
		{RunID: "a", Timestamp: base, Problem: model.ProblemGreenfield, Scenario: "campus-a", Result: model.NewResult(model.ProblemGreenfield)},
		{RunID: "b", Timestamp: base.Add(time.Hour), Problem: model.ProblemBridgePower, Scenario: "campus-a", Result: model.NewResult(model.ProblemBridgePower)},
		{RunID: "c", Timestamp: base.Add(2 * time.Hour), Problem: model.ProblemGreenfield, Scenario: "campus-b", Result: model.NewResult(model.ProblemGreenfield)},
	}
	for _, r := range recs {
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("append %s: %v", r.RunID, err)
		}
	}

	out, err := store.Query(context.Background(), Query{})
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}

	out, err = store.Query(context.Background(), Query{Problem: model.ProblemGreenfield})
	if err != nil {
		t.Fatalf("query problem: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 greenfield records, got %d", len(out))
	}

	out, err = store.Query(context.Background(), Query{Scenario: "campus-b"})
	if err != nil {
		t.Fatalf("query scenario: %v", err)
	}
	if len(out) != 1 || out[0].RunID != "c" {
		t.Fatalf("scenario filter wrong: %+v", out)
	}

	out, err = store.Query(context.Background(), Query{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)})
	if err != nil {
		t.Fatalf("query range: %v", err)
	}
	if len(out) != 1 || out[0].RunID != "b" {
		t.Fatalf("time range filter wrong: %+v", out)
	}
}
