// Package analytics summarizes recorded runs read back from the artifact
// store.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
)

// StageDuration holds duration stats for a stage.
type StageDuration struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Avg   float64 `json:"avg_ms"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
}

// timestamp formats to try when parsing CreatedAt
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, f := range timestampFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

// Since keeps runs created at or after since. A zero since keeps every run;
// runs with an unparseable timestamp are dropped otherwise.
func Since(runs []pipeline.RunRecord, since time.Time) []pipeline.RunRecord {
	if since.IsZero() {
		return runs
	}
	var out []pipeline.RunRecord
	for _, r := range runs {
		t, err := parseTimestamp(r.CreatedAt)
		if err != nil || t.Before(since) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// StageDurations returns average and percentile durations per stage, in
// pipeline order.
func StageDurations(runs []pipeline.RunRecord) []StageDuration {
	byStage := make(map[string][]float64)
	for _, r := range runs {
		for stage, secs := range r.StageDurations {
			byStage[stage] = append(byStage[stage], secs*1000)
		}
	}

	var results []StageDuration
	for stage, durations := range byStage {
		sort.Float64s(durations)
		results = append(results, StageDuration{
			Stage: stage,
			Count: len(durations),
			Avg:   avg(durations),
			P50:   percentile(durations, 50),
			P95:   percentile(durations, 95),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return stageRank(results[i].Stage) < stageRank(results[j].Stage)
	})
	return results
}

func stageRank(stage string) int {
	switch pipeline.State(stage) {
	case pipeline.StateInit:
		return 0
	case pipeline.StateConcept:
		return 1
	case pipeline.StateWordSelection:
		return 2
	case pipeline.StateAssembly:
		return 3
	}
	return 4
}

// StageFailure counts runs that failed at a stage.
type StageFailure struct {
	Stage    string  `json:"stage"`
	Failures int     `json:"failures"`
	Pct      float64 `json:"pct_of_runs"`
}

// FailuresByStage groups failed runs by the stage they failed at. The
// percentage uses every run as denominator.
func FailuresByStage(runs []pipeline.RunRecord) []StageFailure {
	counts := make(map[string]int)
	for _, r := range runs {
		if r.Success {
			continue
		}
		stage := string(r.FailedStage)
		if stage == "" {
			stage = "unknown"
		}
		counts[stage]++
	}

	var results []StageFailure
	for stage, n := range counts {
		results = append(results, StageFailure{Stage: stage, Failures: n, Pct: pct(n, len(runs))})
	}
	sort.Slice(results, func(i, j int) bool {
		return stageRank(results[i].Stage) < stageRank(results[j].Stage)
	})
	return results
}

// CheckFailure holds failure stats for one quality-gate check.
type CheckFailure struct {
	Check    string  `json:"check"`
	Failures int     `json:"failures"`
	FailRate float64 `json:"fail_rate_pct"`
}

// CheckFailures returns which gate checks fail most. Only completed runs
// went through the gate, so they form the denominator.
func CheckFailures(runs []pipeline.RunRecord) []CheckFailure {
	gated := 0
	counts := make(map[string]int)
	for _, r := range runs {
		if !r.Success {
			continue
		}
		gated++
		for _, c := range r.GateFailures {
			counts[c]++
		}
	}

	var results []CheckFailure
	for check, n := range counts {
		results = append(results, CheckFailure{Check: check, Failures: n, FailRate: pct(n, gated)})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Failures != results[j].Failures {
			return results[i].Failures > results[j].Failures
		}
		return results[i].Check < results[j].Check
	})
	return results
}

// Throughput holds run counts for one ISO week.
type Throughput struct {
	Period      string  `json:"period"`
	Runs        int     `json:"runs"`
	Completed   int     `json:"completed"`
	Ready       int     `json:"ready"`
	Failed      int     `json:"failed"`
	AvgDuration float64 `json:"avg_duration_seconds"`
}

// WeeklyThroughput groups runs by ISO week of CreatedAt, newest first,
// keeping at most ten weeks.
func WeeklyThroughput(runs []pipeline.RunRecord) []Throughput {
	byPeriod := make(map[string]*Throughput)
	durations := make(map[string][]float64)
	for _, r := range runs {
		t, err := parseTimestamp(r.CreatedAt)
		if err != nil {
			continue
		}
		y, w := t.ISOWeek()
		period := fmt.Sprintf("%d-W%02d", y, w)
		tp, ok := byPeriod[period]
		if !ok {
			tp = &Throughput{Period: period}
			byPeriod[period] = tp
		}
		tp.Runs++
		if r.Success {
			tp.Completed++
			durations[period] = append(durations[period], r.ExecutionTime)
		} else {
			tp.Failed++
		}
		if r.Ready {
			tp.Ready++
		}
	}

	var results []Throughput
	for period, tp := range byPeriod {
		tp.AvgDuration = avg(durations[period])
		results = append(results, *tp)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Period > results[j].Period
	})
	if len(results) > 10 {
		results = results[:10]
	}
	return results
}

// Summary is the full analytics report over a set of runs.
type Summary struct {
	Runs       int             `json:"runs"`
	Completed  int             `json:"completed"`
	Ready      int             `json:"ready"`
	SuccessPct float64         `json:"success_pct"`
	ReadyPct   float64         `json:"ready_pct"`
	Stages     []StageDuration `json:"stage_durations"`
	Failures   []StageFailure  `json:"failures_by_stage"`
	Checks     []CheckFailure  `json:"check_failures"`
	Throughput []Throughput    `json:"throughput"`
}

// Summarize builds every report over runs.
func Summarize(runs []pipeline.RunRecord) Summary {
	s := Summary{Runs: len(runs)}
	for _, r := range runs {
		if r.Success {
			s.Completed++
		}
		if r.Ready {
			s.Ready++
		}
	}
	s.SuccessPct = pct(s.Completed, s.Runs)
	s.ReadyPct = pct(s.Ready, s.Runs)
	s.Stages = StageDurations(runs)
	s.Failures = FailuresByStage(runs)
	s.Checks = CheckFailures(runs)
	s.Throughput = WeeklyThroughput(runs)
	return s
}

// --- helpers ---

func avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return math.Round(sum/float64(len(values))*10) / 10
}

func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := float64(p) / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper || upper >= len(sorted) {
		return math.Round(sorted[lower]*10) / 10
	}
	weight := rank - float64(lower)
	return math.Round((sorted[lower]*(1-weight)+sorted[upper]*weight)*10) / 10
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
