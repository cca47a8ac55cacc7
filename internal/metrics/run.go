// Package metrics records per-run pipeline metrics and process-wide
// counters exported through OpenTelemetry.
package metrics

import (
	"encoding/json"
	"time"
)

// RunMetrics belongs to one pipeline run and is reset for every run. It is
// not safe for concurrent use.
type RunMetrics struct {
	TotalEvents    int
	ExecutionTime  time.Duration
	ErrorCount     int
	StageDurations map[string]time.Duration
	QualityScores  map[string]float64

	started time.Time
}

// NewRun returns metrics for a run starting now.
func NewRun() *RunMetrics {
	return &RunMetrics{
		StageDurations: make(map[string]time.Duration),
		QualityScores:  make(map[string]float64),
		started:        time.Now(),
	}
}

// RecordEvent counts one drained event.
func (m *RunMetrics) RecordEvent() {
	m.TotalEvents++
}

// RecordError counts one failure.
func (m *RunMetrics) RecordError() {
	m.ErrorCount++
}

// RecordStage stores how long a stage took.
func (m *RunMetrics) RecordStage(stage string, d time.Duration) {
	m.StageDurations[stage] = d
}

// RecordQuality stores a named score such as content_quality.
func (m *RunMetrics) RecordQuality(name string, score float64) {
	m.QualityScores[name] = score
}

// Finish freezes ExecutionTime at the elapsed wall time.
func (m *RunMetrics) Finish() {
	m.ExecutionTime = time.Since(m.started)
}

// MarshalJSON reports durations in seconds.
func (m *RunMetrics) MarshalJSON() ([]byte, error) {
	stages := make(map[string]float64, len(m.StageDurations))
	for k, d := range m.StageDurations {
		stages[k] = d.Seconds()
	}
	return json.Marshal(struct {
		TotalEvents    int                `json:"total_events"`
		ExecutionTime  float64            `json:"execution_time"`
		ErrorCount     int                `json:"error_count"`
		StageDurations map[string]float64 `json:"stage_durations"`
		QualityScores  map[string]float64 `json:"quality_scores"`
	}{m.TotalEvents, m.ExecutionTime.Seconds(), m.ErrorCount, stages, m.QualityScores})
}
