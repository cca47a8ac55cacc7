package analytics

import (
	"testing"
	"time"

	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
)

func testRuns() []pipeline.RunRecord {
	return []pipeline.RunRecord{
		{
			RunID: "a", Success: true, Ready: true, State: pipeline.StateDone, ExecutionTime: 2,
			StageDurations: map[string]float64{"concept": 0.010, "word_selection": 0.020, "assembly": 0.030},
			CreatedAt:      "2026-06-01T10:00:00Z",
		},
		{
			RunID: "b", Success: true, State: pipeline.StateDone, ExecutionTime: 4,
			StageDurations: map[string]float64{"concept": 0.020, "word_selection": 0.040, "assembly": 0.050},
			GateFailures:   []string{"theme_consistency", "content_quality"},
			CreatedAt:      "2026-06-02T10:00:00Z",
		},
		{
			RunID: "c", State: pipeline.StateFailed, FailedStage: pipeline.StateWordSelection,
			StageDurations: map[string]float64{"concept": 0.030, "word_selection": 0.005},
			CreatedAt:      "2026-06-09T10:00:00Z",
		},
		{
			RunID: "d", State: pipeline.StateFailed, FailedStage: pipeline.StateInit,
			CreatedAt: "2026-06-10T10:00:00Z",
		},
	}
}

func TestStageDurations(t *testing.T) {
	results := StageDurations(testRuns())
	if len(results) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(results))
	}
	want := []string{"concept", "word_selection", "assembly"}
	for i, r := range results {
		if r.Stage != want[i] {
			t.Errorf("results[%d].Stage = %q, want %q", i, r.Stage, want[i])
		}
	}
	concept := results[0]
	if concept.Count != 3 {
		t.Errorf("concept count = %d, want 3", concept.Count)
	}
	if concept.Avg != 20.0 || concept.P50 != 20.0 {
		t.Errorf("concept avg/p50 = %f/%f, want 20/20", concept.Avg, concept.P50)
	}
	if results[2].Count != 2 || results[2].Avg != 40.0 {
		t.Errorf("assembly = %+v", results[2])
	}
}

func TestStageDurations_Empty(t *testing.T) {
	if results := StageDurations(nil); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestFailuresByStage(t *testing.T) {
	results := FailuresByStage(testRuns())
	if len(results) != 2 {
		t.Fatalf("expected 2 failure rows, got %+v", results)
	}
	if results[0].Stage != "init" || results[0].Failures != 1 || results[0].Pct != 25.0 {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Stage != "word_selection" {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestCheckFailures(t *testing.T) {
	results := CheckFailures(testRuns())
	if len(results) != 2 {
		t.Fatalf("expected 2 checks, got %+v", results)
	}
	// Tied counts sort by name; only the two completed runs count.
	if results[0].Check != "content_quality" || results[0].FailRate != 50.0 {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Check != "theme_consistency" {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestWeeklyThroughput(t *testing.T) {
	results := WeeklyThroughput(testRuns())
	if len(results) != 2 {
		t.Fatalf("expected 2 weeks, got %+v", results)
	}
	// newest first
	if results[0].Period != "2026-W24" || results[0].Failed != 2 || results[0].Completed != 0 {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Period != "2026-W23" || results[1].Completed != 2 || results[1].Ready != 1 {
		t.Errorf("results[1] = %+v", results[1])
	}
	if results[1].AvgDuration != 3.0 {
		t.Errorf("avg duration = %f, want 3.0", results[1].AvgDuration)
	}
}

func TestWeeklyThroughput_SkipsBadTimestamps(t *testing.T) {
	runs := []pipeline.RunRecord{{RunID: "x", CreatedAt: "yesterday"}}
	if results := WeeklyThroughput(runs); len(results) != 0 {
		t.Errorf("expected no results, got %+v", results)
	}
}

func TestSince(t *testing.T) {
	runs := testRuns()
	if got := Since(runs, time.Time{}); len(got) != len(runs) {
		t.Errorf("zero since kept %d runs, want %d", len(got), len(runs))
	}
	cut := time.Date(2026, 6, 9, 0, 0, 0, 0, time.UTC)
	got := Since(runs, cut)
	if len(got) != 2 || got[0].RunID != "c" {
		t.Errorf("Since = %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(testRuns())
	if s.Runs != 4 || s.Completed != 2 || s.Ready != 1 {
		t.Errorf("counts = %d/%d/%d", s.Runs, s.Completed, s.Ready)
	}
	if s.SuccessPct != 50.0 || s.ReadyPct != 25.0 {
		t.Errorf("pcts = %f/%f", s.SuccessPct, s.ReadyPct)
	}
	if len(s.Stages) != 3 || len(s.Failures) != 2 || len(s.Checks) != 2 || len(s.Throughput) != 2 {
		t.Errorf("summary = %+v", s)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"2024-06-01T10:00:00Z", true},
		{"2024-06-01T10:00:00+02:00", true},
		{"2024-06-01T10:00:00", true},
		{"2024-06-01 10:00:00", true},
		{"not-a-date", false},
	}
	for _, tc := range tests {
		_, err := parseTimestamp(tc.input)
		if tc.valid && err != nil {
			t.Errorf("parseTimestamp(%q) = error %v, want success", tc.input, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("parseTimestamp(%q) = success, want error", tc.input)
		}
	}
}

func TestAvg(t *testing.T) {
	if v := avg([]float64{10, 20, 30}); v != 20.0 {
		t.Errorf("avg([10,20,30]) = %f, want 20.0", v)
	}
	if v := avg(nil); v != 0.0 {
		t.Errorf("avg(nil) = %f, want 0.0", v)
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	p50 := percentile(values, 50)
	if p50 < 5.0 || p50 > 6.0 {
		t.Errorf("p50 = %f, expected ~5.5", p50)
	}
	p95 := percentile(values, 95)
	if p95 < 9.0 || p95 > 10.0 {
		t.Errorf("p95 = %f, expected ~9.6", p95)
	}
	if v := percentile(nil, 50); v != 0.0 {
		t.Errorf("percentile(nil, 50) = %f, want 0.0", v)
	}
}

func TestPct(t *testing.T) {
	if v := pct(1, 4); v != 25.0 {
		t.Errorf("pct(1,4) = %f, want 25.0", v)
	}
	if v := pct(0, 0); v != 0.0 {
		t.Errorf("pct(0,0) = %f, want 0.0", v)
	}
}
