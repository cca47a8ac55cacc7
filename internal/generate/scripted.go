package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/lucasnoah/puzzlefactory/internal/game"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
)

// wordBanks back the offline generator. Keys double as theme keywords.
var wordBanks = map[string][]string{
	"fruits":  {"apple", "banana", "cherry", "mango", "grape", "lemon", "peach", "plum", "kiwi", "papaya"},
	"animals": {"tiger", "zebra", "giraffe", "monkey", "rabbit", "dolphin", "penguin", "elephant", "koala", "otter"},
	"ocean":   {"coral", "whale", "shark", "tide", "reef", "kelp", "lagoon", "octopus", "current", "anchor"},
	"space":   {"planet", "comet", "galaxy", "orbit", "rocket", "nebula", "meteor", "astronaut", "crater", "eclipse"},
	"food":    {"bread", "cheese", "pasta", "soup", "salad", "noodle", "pepper", "butter", "waffle", "omelet"},
	"sports":  {"soccer", "tennis", "hockey", "rugby", "golf", "cricket", "boxing", "rowing", "skiing", "archery"},
	"music":   {"guitar", "piano", "violin", "rhythm", "melody", "drum", "chorus", "tempo", "harmony", "trumpet"},
	"nature":  {"forest", "river", "meadow", "canyon", "glacier", "valley", "blossom", "pebble", "breeze", "willow"},
	"science": {"atom", "photon", "enzyme", "fossil", "magnet", "neuron", "plasma", "quartz", "vector", "genome"},
}

var defaultBank = []string{"puzzle", "letter", "riddle", "answer", "clue", "word", "grid", "hint", "search", "game"}

// Scripted is a deterministic offline generator. It infers the stage from
// which context keys are already written and answers with canned JSON.
// Responses and Errors override the canned behavior per stage.
type Scripted struct {
	Responses map[pipeline.State]string
	Errors    map[pipeline.State]error

	mu      sync.Mutex
	prompts []string
}

// NewScripted returns an offline generator with no overrides.
func NewScripted() *Scripted {
	return &Scripted{}
}

// Name identifies the backend in logs and metrics.
func (s *Scripted) Name() string {
	return "scripted"
}

// Prompts returns every prompt received so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// StageOf reports which stage a context is waiting on.
func StageOf(pc *pipeline.Context) pipeline.State {
	switch {
	case pc == nil || !pc.Has(pipeline.KeyBrainstorm):
		return pipeline.StateConcept
	case !pc.Has(pipeline.KeyPickedWords):
		return pipeline.StateWordSelection
	default:
		return pipeline.StateAssembly
	}
}

func (s *Scripted) Invoke(ctx context.Context, prompt string, pc *pipeline.Context) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	stage := StageOf(pc)
	if err := s.Errors[stage]; err != nil {
		return Output{}, err
	}
	if text, ok := s.Responses[stage]; ok {
		return ParseOutput(text), nil
	}

	var payload any
	switch stage {
	case pipeline.StateConcept:
		payload = conceptFor(pc)
	case pipeline.StateWordSelection:
		c, err := pc.Concept()
		if err != nil {
			return Output{}, err
		}
		payload = map[string]any{"words": c.Words, "notes": "kept the brainstormed words"}
	default:
		c, err := pc.Concept()
		if err != nil {
			return Output{}, err
		}
		payload = map[string]string{
			"notes": fmt.Sprintf("A %s puzzle themed around %s.", c.GameType.DisplayName(), c.Theme),
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Output{}, fmt.Errorf("marshal scripted response: %w", err)
	}
	return ParseOutput(string(data)), nil
}

func conceptFor(pc *pipeline.Context) map[string]any {
	var req pipeline.GameRequest
	if pc != nil {
		req = pc.Request
	}

	theme := req.Theme
	bank := defaultBank
	if theme == "" {
		theme = "words"
		desc := strings.ToLower(req.Description)
		for _, key := range sortedBankKeys() {
			if strings.Contains(desc, key) {
				theme = key
				break
			}
		}
	}
	if b, ok := wordBanks[strings.ToLower(theme)]; ok {
		bank = b
	}

	n := req.WordCount
	if n <= 0 || n > len(bank) {
		n = len(bank)
	}

	gameType := req.GameType
	if gameType == "" {
		gameType = game.WordSearch
	}

	return map[string]any{
		"theme":     theme,
		"game_type": string(gameType),
		"words":     bank[:n],
		"reasoning": fmt.Sprintf("%d common %s words of mixed length", n, theme),
	}
}

func sortedBankKeys() []string {
	// fixed order keeps offline output deterministic
	return []string{"animals", "fruits", "food", "music", "nature", "ocean", "science", "space", "sports"}
}
