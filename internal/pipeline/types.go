// Package pipeline defines the request, the per-run context shared by the
// stages, and the values each stage writes into it.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lucasnoah/puzzlefactory/internal/checks"
	"github.com/lucasnoah/puzzlefactory/internal/game"
	"github.com/lucasnoah/puzzlefactory/internal/words"
)

// State is a pipeline run state.
type State string

const (
	StateInit          State = "init"
	StateConcept       State = "concept"
	StateWordSelection State = "word_selection"
	StateAssembly      State = "assembly"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// DefaultWordCount is the target word count when a request gives none.
const DefaultWordCount = 8

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("invalid game request")

// GameRequest is the immutable input of one run.
type GameRequest struct {
	Description    string      `json:"description"`
	Theme          string      `json:"theme,omitempty"`
	Difficulty     words.Level `json:"difficulty"`
	WordCount      int         `json:"word_count"`
	GameType       game.Type   `json:"game_type,omitempty"`
	TargetAudience string      `json:"target_audience,omitempty"`
}

// FromText builds a request from raw input. The text becomes the
// description; everything else takes its default.
func FromText(text string) GameRequest {
	return GameRequest{Description: strings.TrimSpace(text)}.WithDefaults()
}

// WithDefaults returns a copy with unset fields defaulted.
func (r GameRequest) WithDefaults() GameRequest {
	if r.Difficulty == "" {
		r.Difficulty = words.Medium
	}
	if r.WordCount == 0 {
		r.WordCount = DefaultWordCount
	}
	if r.TargetAudience == "" {
		r.TargetAudience = "general"
	}
	return r
}

// Validate reports every problem with the request in one error.
func (r GameRequest) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Description) == "" {
		problems = append(problems, "description is required")
	}
	if _, ok := words.ParseLevel(string(r.Difficulty)); !ok {
		problems = append(problems, fmt.Sprintf("unknown difficulty %q", r.Difficulty))
	}
	if r.WordCount <= 0 {
		problems = append(problems, fmt.Sprintf("word count must be positive, got %d", r.WordCount))
	}
	if r.GameType != "" && !r.GameType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown game type %q", r.GameType))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(problems, "; "))
}

// Concept is the value stored under KeyBrainstorm.
type Concept struct {
	Theme           string    `json:"theme"`
	GameType        game.Type `json:"game_type"`
	Words           []string  `json:"words"`
	Reasoning       string    `json:"reasoning,omitempty"`
	ThemeKeywords   []string  `json:"theme_keywords,omitempty"`
	CreativityScore float64   `json:"creativity_score"`
}

// PickedWords is the value stored under KeyPickedWords.
type PickedWords struct {
	Words          []string                 `json:"words"`
	Validations    []words.ValidationResult `json:"validations"`
	Replacements   map[string]string        `json:"replacements,omitempty"`
	Dropped        []string                 `json:"dropped,omitempty"`
	Variety        words.VarietyReport      `json:"variety"`
	SelectionScore float64                  `json:"selection_score"`
}

// FinalGame is the value stored under KeyFinalGame.
type FinalGame struct {
	Game       *game.CompleteGame      `json:"game"`
	Text       string                  `json:"text"`
	Gate       *checks.GateResult      `json:"gate"`
	Assessment *game.QualityAssessment `json:"assessment"`
	Notes      string                  `json:"notes,omitempty"`
}

// Event is one unit of generated output observed during a stage.
type Event struct {
	Stage   string    `json:"stage"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
