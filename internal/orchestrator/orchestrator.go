// Package orchestrator drives one game request through the pipeline state
// machine: init, concept, word_selection, assembly, then done or failed.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lucasnoah/puzzlefactory/internal/checks"
	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/game"
	"github.com/lucasnoah/puzzlefactory/internal/generate"
	"github.com/lucasnoah/puzzlefactory/internal/metrics"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
	"github.com/lucasnoah/puzzlefactory/internal/prompt"
	"github.com/lucasnoah/puzzlefactory/internal/stage"
	"github.com/lucasnoah/puzzlefactory/internal/words"
)

// ErrNotReady is returned at INIT when the stage list is incomplete, a
// stage is missing its generator or the configuration is invalid.
var ErrNotReady = errors.New("pipeline not ready")

// StageOrder is the only valid stage sequence.
var StageOrder = []pipeline.State{
	pipeline.StateConcept,
	pipeline.StateWordSelection,
	pipeline.StateAssembly,
}

// StageError records which state a run failed in.
type StageError struct {
	Stage pipeline.State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Orchestrator runs game requests through an ordered list of stages. It
// holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	stages      []stage.Stage
	cfg         *config.Config
	checkConfig bool
	store       *pipeline.Store
	recorder    *metrics.Recorder
	logger      *zap.Logger
	newID       func() string

	progressMu sync.Mutex
	progress   io.Writer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStore writes each finished run's artifacts to s.
func WithStore(s *pipeline.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithRecorder reports runs and stages to a shared recorder.
func WithRecorder(r *metrics.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithConfig sets the configuration reported by Status. Its validation
// errors make the pipeline not ready.
func WithConfig(cfg *config.Config) Option {
	return func(o *Orchestrator) {
		o.cfg = cfg
		o.checkConfig = true
	}
}

// New creates an Orchestrator over an explicit stage list.
func New(stages []stage.Stage, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		stages: stages,
		cfg:    config.Default(),
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewFromConfig wires the standard three stages from cfg around gen.
func NewFromConfig(cfg *config.Config, gen generate.Generator, opts ...Option) *Orchestrator {
	analyzer := words.New(cfg.Words)
	assembler := game.NewAssembler(cfg.Quality, cfg.Templates.Title, nil)
	gate := checks.NewGate(analyzer, assembler, cfg.Quality)
	lib := prompt.NewLibrary(cfg.Templates.Dir)

	stages := []stage.Stage{
		stage.NewConcept(gen, lib, cfg.Words),
		stage.NewWordSelection(gen, lib, analyzer, cfg.Selection),
		stage.NewAssembly(gen, lib, assembler, gate),
	}
	return New(stages, append([]Option{WithConfig(cfg)}, opts...)...)
}

// SetProgress sets a writer for live progress output (e.g. os.Stderr).
func (o *Orchestrator) SetProgress(w io.Writer) {
	o.progressMu.Lock()
	o.progress = w
	o.progressMu.Unlock()
}

// logf prints a progress line if a progress writer is configured.
func (o *Orchestrator) logf(format string, args ...any) {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	if o.progress != nil {
		fmt.Fprintf(o.progress, "  → "+format+"\n", args...)
	}
}

// StageResult describes one executed stage.
type StageResult struct {
	Stage    pipeline.State `json:"stage"`
	Duration float64        `json:"duration_seconds"`
	Events   int            `json:"events"`
	Error    string         `json:"error,omitempty"`
}

// Result is the outcome of one run. Execute never returns an error; a
// failed run has Success false and Error set.
type Result struct {
	Success             bool                    `json:"success"`
	RunID               string                  `json:"run_id"`
	State               pipeline.State          `json:"state"`
	ExecutionTime       float64                 `json:"execution_time"`
	EventCount          int                     `json:"event_count"`
	FinalGame           string                  `json:"final_game,omitempty"`
	Game                *game.CompleteGame      `json:"game,omitempty"`
	ReadyForPublication bool                    `json:"ready_for_publication"`
	Gate                *checks.GateResult      `json:"gate,omitempty"`
	Assessment          *game.QualityAssessment `json:"assessment,omitempty"`
	Notes               string                  `json:"notes,omitempty"`
	Error               string                  `json:"error,omitempty"`
	FailedStage         pipeline.State          `json:"failed_stage,omitempty"`
	Metrics             *metrics.RunMetrics     `json:"metrics"`
	Stages              []StageResult           `json:"stages"`

	Err error `json:"-"`
}

// Execute runs req through every stage.
func (o *Orchestrator) Execute(ctx context.Context, req pipeline.GameRequest) *Result {
	req = req.WithDefaults()
	runID := o.newID()
	m := metrics.NewRun()
	res := &Result{RunID: runID, State: pipeline.StateInit, Metrics: m}
	log := o.logger.With(zap.String("run_id", runID))

	o.logf("run %s: %q", shortID(runID), req.Description)
	log.Info("run started", zap.String("description", req.Description), zap.Int("word_count", req.WordCount))

	if err := o.Ready(); err != nil {
		o.fail(res, pipeline.StateInit, err, log)
		o.finish(res, req, nil, log)
		return res
	}
	if err := req.Validate(); err != nil {
		o.fail(res, pipeline.StateInit, err, log)
		o.finish(res, req, nil, log)
		return res
	}

	pc := pipeline.NewContext(runID, req)
	for _, st := range o.stages {
		name := st.Name()
		if err := ctx.Err(); err != nil {
			o.fail(res, name, err, log)
			break
		}
		res.State = name
		o.logf("%s", name)

		start := time.Now()
		delta, err := runStage(ctx, st, pc)
		if err == nil {
			err = pc.Set(delta.Key, delta.Value)
		}
		elapsed := time.Since(start)

		m.RecordStage(string(name), elapsed)
		o.recorder.RecordStage(string(name), elapsed, err)
		sr := StageResult{Stage: name, Duration: elapsed.Seconds()}

		if err != nil {
			sr.Error = err.Error()
			res.Stages = append(res.Stages, sr)
			o.fail(res, name, err, log)
			break
		}

		sr.Events = len(delta.Events)
		res.Stages = append(res.Stages, sr)
		for _, ev := range delta.Events {
			m.RecordEvent()
			log.Debug("event",
				zap.String("stage", ev.Stage),
				zap.String("kind", ev.Kind),
				zap.String("message", ev.Message))
		}
		log.Info("stage complete", zap.String("stage", string(name)), zap.Duration("elapsed", elapsed), zap.Int("events", sr.Events))
	}

	if res.FailedStage == "" {
		o.complete(res, pc)
		o.logf("done: ready=%t", res.ReadyForPublication)
	}
	o.finish(res, req, pc, log)
	return res
}

// ExecuteText runs a request built from free text with default settings.
func (o *Orchestrator) ExecuteText(ctx context.Context, text string) *Result {
	return o.Execute(ctx, pipeline.FromText(text))
}

// ExecuteBatch runs independent requests concurrently, at most parallelism
// at a time (unbounded when parallelism <= 0). Results keep the order of
// reqs.
func (o *Orchestrator) ExecuteBatch(ctx context.Context, reqs []pipeline.GameRequest, parallelism int) []*Result {
	results := make([]*Result, len(reqs))
	var g errgroup.Group
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = o.Execute(ctx, req)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// runStage converts a panic inside a stage into an error.
func runStage(ctx context.Context, st stage.Stage, pc *pipeline.Context) (d stage.Delta, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return st.Run(ctx, pc)
}

func (o *Orchestrator) fail(res *Result, state pipeline.State, err error, log *zap.Logger) {
	serr := &StageError{Stage: state, Err: err}
	res.Success = false
	res.State = pipeline.StateFailed
	res.FailedStage = state
	res.Err = serr
	res.Error = serr.Error()
	res.Metrics.RecordError()

	o.logf("failed in %s: %v", state, err)
	log.Warn("run failed", zap.String("stage", string(state)), zap.Error(err))
}

func (o *Orchestrator) complete(res *Result, pc *pipeline.Context) {
	res.Success = true
	res.State = pipeline.StateDone

	fg, err := pc.FinalGame()
	if err != nil {
		return
	}
	res.FinalGame = fg.Text
	res.Game = fg.Game
	res.Gate = fg.Gate
	res.Assessment = fg.Assessment
	res.Notes = fg.Notes
	res.ReadyForPublication = fg.Game.ReadyForPublication

	if fg.Gate != nil {
		for _, c := range fg.Gate.Checks {
			res.Metrics.RecordQuality(c.Check, c.Score)
			o.recorder.RecordQuality(c.Check, c.Score)
		}
	}
}

func (o *Orchestrator) finish(res *Result, req pipeline.GameRequest, pc *pipeline.Context, log *zap.Logger) {
	res.Metrics.Finish()
	res.ExecutionTime = res.Metrics.ExecutionTime.Seconds()
	res.EventCount = res.Metrics.TotalEvents

	o.recorder.RecordRun(string(res.State), res.Success, res.ReadyForPublication, res.EventCount, res.Metrics.ExecutionTime)
	log.Info("run finished",
		zap.String("state", string(res.State)),
		zap.Bool("success", res.Success),
		zap.Bool("ready", res.ReadyForPublication),
		zap.Int("events", res.EventCount),
		zap.Duration("elapsed", res.Metrics.ExecutionTime))

	if o.store == nil {
		return
	}
	if err := o.save(res, req, pc); err != nil {
		log.Warn("saving run artifacts failed", zap.Error(err))
	}
}

func (o *Orchestrator) save(res *Result, req pipeline.GameRequest, pc *pipeline.Context) error {
	if pc != nil {
		if err := o.store.SaveContext(pc); err != nil {
			return err
		}
	}
	if res.Game != nil {
		if err := o.store.SaveText(res.RunID, "answer_key.txt", res.Game.Content.AnswerKey+"\n"); err != nil {
			return err
		}
	}
	rec := &pipeline.RunRecord{
		RunID:          res.RunID,
		Request:        req,
		State:          res.State,
		Success:        res.Success,
		Ready:          res.ReadyForPublication,
		Error:          res.Error,
		FailedStage:    res.FailedStage,
		ExecutionTime:  res.ExecutionTime,
		StageDurations: make(map[string]float64, len(res.Metrics.StageDurations)),
	}
	for stage, d := range res.Metrics.StageDurations {
		rec.StageDurations[stage] = d.Seconds()
	}
	if res.Gate != nil {
		for _, c := range res.Gate.Checks {
			if !c.Passed {
				rec.GateFailures = append(rec.GateFailures, c.Check)
			}
		}
	}
	return o.store.SaveRecord(rec)
}

// Ready reports every readiness problem: the stage list must match
// StageOrder, every stage must have its generator and a configuration
// supplied through WithConfig must validate.
func (o *Orchestrator) Ready() error {
	issues := o.readinessIssues()
	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotReady, strings.Join(issues, "; "))
}

func (o *Orchestrator) readinessIssues() []string {
	var issues []string
	if len(o.stages) != len(StageOrder) {
		issues = append(issues, fmt.Sprintf("expected %d stages, have %d", len(StageOrder), len(o.stages)))
	}
	for i, st := range o.stages {
		if st == nil {
			issues = append(issues, fmt.Sprintf("stage %d is nil", i))
			continue
		}
		if i < len(StageOrder) && st.Name() != StageOrder[i] {
			issues = append(issues, fmt.Sprintf("stage %d is %s, want %s", i, st.Name(), StageOrder[i]))
		}
		if r, ok := st.(stage.Readier); ok {
			if err := r.Ready(); err != nil {
				issues = append(issues, err.Error())
			}
		}
	}
	if o.checkConfig {
		for _, e := range config.Validate(o.cfg) {
			issues = append(issues, "config: "+e.Error())
		}
	}
	return issues
}

// StatusInfo describes whether the pipeline can run and how it is
// configured.
type StatusInfo struct {
	Ready    bool             `json:"ready"`
	Issues   []string         `json:"issues,omitempty"`
	Stages   []pipeline.State `json:"stages"`
	Provider string           `json:"provider"`
	Model    string           `json:"model,omitempty"`
	MinWords int              `json:"min_words"`
	MaxWords int              `json:"max_words"`
	Quality  config.Quality   `json:"quality"`
	Words    config.Words     `json:"words"`
}

// Status returns pipeline readiness and a configuration snapshot.
func (o *Orchestrator) Status() *StatusInfo {
	info := &StatusInfo{
		Issues:   o.readinessIssues(),
		Provider: o.cfg.Generation.Provider,
		MinWords: o.cfg.Selection.MinWords,
		MaxWords: o.cfg.Selection.MaxWords,
		Quality:  o.cfg.Quality,
		Words:    o.cfg.Words,
	}
	if info.Provider != "scripted" {
		info.Model = o.cfg.Generation.Model
	}
	for _, st := range o.stages {
		if st != nil {
			info.Stages = append(info.Stages, st.Name())
		}
	}
	info.Ready = len(info.Issues) == 0
	return info
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
