package metrics

import (
	"sync"
	"time"
)

type stageStats struct {
	runs   int
	errors int
}

// Recorder is shared by every run in the process and is safe for concurrent
// use. A nil *Recorder records nothing.
type Recorder struct {
	mu          sync.Mutex
	runs        int
	failures    int
	ready       int
	events      int
	attempts    map[string]int
	attemptErrs map[string]int
	stages      map[string]*stageStats
	otel        *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		attempts:    make(map[string]int),
		attemptErrs: make(map[string]int),
		stages:      make(map[string]*stageStats),
		otel:        otel,
	}
}

// RecordRun counts a finished run.
func (r *Recorder) RecordRun(state string, success, ready bool, events int, d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.runs++
	if !success {
		r.failures++
	}
	if ready {
		r.ready++
	}
	r.events += events
	r.mu.Unlock()

	r.otel.recordRun(state, success, events, d)
}

// RecordStage counts one stage execution.
func (r *Recorder) RecordStage(stage string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	st, ok := r.stages[stage]
	if !ok {
		st = &stageStats{}
		r.stages[stage] = st
	}
	st.runs++
	if err != nil {
		st.errors++
	}
	r.mu.Unlock()

	r.otel.recordStage(stage, d, err)
}

// RecordGenerationAttempt counts one call to a generation backend.
func (r *Recorder) RecordGenerationAttempt(provider string, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.attempts[provider]++
	if err != nil {
		r.attemptErrs[provider]++
	}
	r.mu.Unlock()

	r.otel.recordAttempt(provider, err)
}

// RecordQuality records a gate check score.
func (r *Recorder) RecordQuality(check string, score float64) {
	if r == nil {
		return
	}
	r.otel.recordQuality(check, score)
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, d)
}

// Totals is a point-in-time copy of the recorder's counters.
type Totals struct {
	Runs               int            `json:"runs"`
	Failures           int            `json:"failures"`
	Ready              int            `json:"ready_for_publication"`
	Events             int            `json:"events"`
	StageRuns          map[string]int `json:"stage_runs"`
	StageErrors        map[string]int `json:"stage_errors"`
	GenerationAttempts map[string]int `json:"generation_attempts"`
	GenerationErrors   map[string]int `json:"generation_errors"`
}

// Snapshot returns a copy of the current counters.
func (r *Recorder) Snapshot() Totals {
	t := Totals{
		StageRuns:          map[string]int{},
		StageErrors:        map[string]int{},
		GenerationAttempts: map[string]int{},
		GenerationErrors:   map[string]int{},
	}
	if r == nil {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	t.Runs, t.Failures, t.Ready, t.Events = r.runs, r.failures, r.ready, r.events
	for k, s := range r.stages {
		t.StageRuns[k] = s.runs
		t.StageErrors[k] = s.errors
	}
	for k, v := range r.attempts {
		t.GenerationAttempts[k] = v
	}
	for k, v := range r.attemptErrs {
		t.GenerationErrors[k] = v
	}
	return t
}
