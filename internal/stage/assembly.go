package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucasnoah/puzzlefactory/internal/checks"
	"github.com/lucasnoah/puzzlefactory/internal/game"
	"github.com/lucasnoah/puzzlefactory/internal/generate"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
	"github.com/lucasnoah/puzzlefactory/internal/prompt"
)

// AssemblyStage builds the finished game from the concept and picked words,
// then runs the quality gate over it.
type AssemblyStage struct {
	engine
	assembler *game.Assembler
	gate      *checks.Gate
}

// NewAssembly builds the assembly stage.
func NewAssembly(gen generate.Generator, prompts *prompt.Library, assembler *game.Assembler, gate *checks.Gate) *AssemblyStage {
	return &AssemblyStage{
		engine:    newEngine(pipeline.StateAssembly, gen, prompts, prompt.AssemblyTemplate),
		assembler: assembler,
		gate:      gate,
	}
}

func (s *AssemblyStage) Run(ctx context.Context, pc *pipeline.Context) (Delta, error) {
	concept, err := pc.Concept()
	if err != nil {
		return Delta{}, err
	}
	picked, err := pc.PickedWords()
	if err != nil {
		return Delta{}, err
	}
	req := pc.Request
	qcfg := s.assembler.Scorer().Config()

	out, events, err := s.invoke(ctx, pc, prompt.Vars{
		"title":             s.assembler.Title(concept.Theme, concept.GameType),
		"game_type":         concept.GameType.DisplayName(),
		"theme":             concept.Theme,
		"difficulty":        string(req.Difficulty),
		"words":             strings.Join(picked.Words, ", "),
		"content_threshold": fmt.Sprintf("%.0f", qcfg.ContentThreshold),
		"theme_threshold":   fmt.Sprintf("%.0f", qcfg.ThemeThreshold),
		"overall_threshold": fmt.Sprintf("%.0f", qcfg.OverallThreshold),
	})
	if err != nil {
		return Delta{}, err
	}

	var notes string
	if err := out.Decode("notes", &notes); err != nil {
		notes = strings.TrimSpace(out.Text)
	}

	g, err := s.assembler.Assemble(game.AssembleInput{
		Theme:       concept.Theme,
		Type:        concept.GameType,
		Words:       picked.Words,
		Difficulty:  req.Difficulty,
		Description: req.Description,
	})
	if err != nil {
		return Delta{}, fmt.Errorf("assemble game: %w", err)
	}

	text, err := game.Structure(g)
	if err != nil {
		return Delta{}, err
	}

	assessment := s.assembler.Report(g)
	gate := s.gate.RunGate(checks.InputFromGame(g, req.Description))
	if !gate.Passed {
		events = append(events, s.note("gate", "quality gate failed: %s (%s)", strings.Join(gate.Failed(), ", "), gate.Action()))
	}

	return Delta{
		Key:    pipeline.KeyFinalGame,
		Value:  &pipeline.FinalGame{Game: g, Text: text, Gate: gate, Assessment: &assessment, Notes: notes},
		Events: events,
	}, nil
}
