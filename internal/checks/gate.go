// Package checks combines the word, content, theme and completion checks into
// a single publication gate.
package checks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/game"
	"github.com/lucasnoah/puzzlefactory/internal/words"
)

// Check names, in evaluation order.
const (
	CheckVariety          = "variety"
	CheckContentQuality   = "content_quality"
	CheckThemeConsistency = "theme_consistency"
	CheckCompletion       = "completion"
)

// Order is the fixed evaluation order of the gate checks.
var Order = []string{CheckVariety, CheckContentQuality, CheckThemeConsistency, CheckCompletion}

// Action tells the caller how a failure can be addressed.
type Action string

const (
	// ActionRetryStage means regenerating the content could fix the failure.
	ActionRetryStage Action = "retry_stage"
	// ActionFailRun means the failure is structural.
	ActionFailRun Action = "fail_run"
)

var checkActions = map[string]Action{
	CheckVariety:          ActionFailRun,
	CheckContentQuality:   ActionRetryStage,
	CheckThemeConsistency: ActionRetryStage,
	CheckCompletion:       ActionFailRun,
}

// GateCheckResult holds the result of a single check within a gate run.
type GateCheckResult struct {
	Check     string  `json:"check"`
	Passed    bool    `json:"passed"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
	Summary   string  `json:"summary,omitempty"`
}

// GateFailure describes a remaining failure after a gate run.
type GateFailure struct {
	Summary string `json:"summary"`
	Action  Action `json:"action"`
}

// GateResult is the structured output of a full gate run.
type GateResult struct {
	Gate              string                 `json:"gate"`
	Passed            bool                   `json:"passed"`
	Checks            []GateCheckResult      `json:"checks"`
	RemainingFailures map[string]GateFailure `json:"remaining_failures,omitempty"`
}

// JSON returns the gate result as indented JSON.
func (g *GateResult) JSON() (string, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Failed returns the names of failing checks in evaluation order.
func (g *GateResult) Failed() []string {
	var out []string
	for _, c := range g.Checks {
		if !c.Passed {
			out = append(out, c.Check)
		}
	}
	return out
}

// Action returns the strongest action required by the remaining failures:
// fail_run if any structural check failed, retry_stage if only content
// checks failed, and "" when the gate passed.
func (g *GateResult) Action() Action {
	var act Action
	for _, f := range g.RemainingFailures {
		if f.Action == ActionFailRun {
			return ActionFailRun
		}
		act = f.Action
	}
	return act
}

// GateInput is the material the gate evaluates.
type GateInput struct {
	Name         string
	Title        string
	Words        []string
	Instructions string
	Theme        string
	Description  string
	GameType     string
	Difficulty   string
}

// InputFromGame builds a GateInput from an assembled game. An empty
// description falls back to the game instructions.
func InputFromGame(g *game.CompleteGame, description string) GateInput {
	if description == "" {
		description = g.Content.Instructions
	}
	return GateInput{
		Name:         g.Content.Title,
		Title:        g.Content.Title,
		Words:        g.Content.Words,
		Instructions: g.Content.Instructions,
		Theme:        g.Metadata.Theme,
		Description:  description,
		GameType:     string(g.Metadata.GameType),
		Difficulty:   string(g.Metadata.Difficulty),
	}
}

// Gate is a pure decision function over the four checks. It holds only
// configuration and is safe for concurrent use.
type Gate struct {
	analyzer  *words.Analyzer
	assembler *game.Assembler
	cfg       config.Quality
}

// NewGate builds a Gate from the shared analyzer and assembler.
func NewGate(analyzer *words.Analyzer, assembler *game.Assembler, cfg config.Quality) *Gate {
	return &Gate{analyzer: analyzer, assembler: assembler, cfg: cfg}
}

// RunGate evaluates every check in Order and returns a structured result.
// All checks run even after a failure so the caller sees every problem.
func (g *Gate) RunGate(in GateInput) *GateResult {
	gate := &GateResult{
		Gate:              in.Name,
		Passed:            true,
		RemainingFailures: make(map[string]GateFailure),
	}

	for _, gc := range []GateCheckResult{
		g.checkVariety(in),
		g.checkContent(in),
		g.checkTheme(in),
		g.checkCompletion(in),
	} {
		gate.Checks = append(gate.Checks, gc)
		if !gc.Passed {
			gate.Passed = false
			gate.RemainingFailures[gc.Check] = GateFailure{
				Summary: gc.Summary,
				Action:  checkActions[gc.Check],
			}
		}
	}
	return gate
}

func (g *Gate) checkVariety(in GateInput) GateCheckResult {
	rep := g.analyzer.CheckVariety(in.Words)
	gc := GateCheckResult{Check: CheckVariety, Passed: rep.Valid, Threshold: 100}
	if rep.TotalWords > 0 {
		gc.Score = float64(rep.UniqueWords) / float64(rep.TotalWords) * 100
	}
	if rep.Err != nil {
		gc.Summary = rep.Err.Error()
	} else {
		d := rep.Distribution
		gc.Summary = fmt.Sprintf("%d unique words (easy %d, medium %d, hard %d)", rep.UniqueWords, d.Easy, d.Medium, d.Hard)
	}
	return gc
}

func (g *Gate) checkContent(in GateInput) GateCheckResult {
	rep := g.assembler.Scorer().ScoreContent(in.Title, in.Words, in.Instructions)
	gc := GateCheckResult{
		Check:     CheckContentQuality,
		Score:     rep.Score,
		Threshold: g.cfg.ContentThreshold,
		Passed:    rep.Score >= g.cfg.ContentThreshold,
	}
	if len(rep.Issues) > 0 {
		gc.Summary = strings.Join(rep.Issues, "; ")
	}
	return gc
}

func (g *Gate) checkTheme(in GateInput) GateCheckResult {
	rep := g.assembler.Scorer().ScoreThemeConsistency(in.Theme, in.Words, in.Description)
	gc := GateCheckResult{
		Check:     CheckThemeConsistency,
		Score:     rep.Score,
		Threshold: g.cfg.ThemeThreshold,
	}
	switch {
	case rep.Err != nil:
		gc.Summary = rep.Err.Error()
	case rep.Score < g.cfg.ThemeThreshold:
		gc.Summary = fmt.Sprintf("theme %q not mentioned in description", rep.Theme)
	default:
		gc.Passed = true
	}
	return gc
}

func (g *Gate) checkCompletion(in GateInput) GateCheckResult {
	res := g.assembler.ValidateCompletion(game.GameData{
		Type:       in.GameType,
		Title:      in.Title,
		Words:      in.Words,
		Difficulty: in.Difficulty,
	})
	gc := GateCheckResult{Check: CheckCompletion, Passed: res.Valid, Threshold: 100}
	if res.Valid {
		gc.Score = 100
	} else {
		gc.Summary = res.Err.Error()
	}
	return gc
}
