package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/quality"
	"github.com/lucasnoah/puzzlefactory/internal/words"
)

// Completion errors.
var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrTooFewWords     = errors.New("too few words")
	ErrInvalidGameType = errors.New("invalid game type")
)

// GameData is the structural view of a game checked by ValidateCompletion.
// Zero values count as absent.
type GameData struct {
	Type       string
	Title      string
	Words      []string
	Difficulty string
}

// CompletionResult is the outcome of ValidateCompletion.
type CompletionResult struct {
	Valid         bool     `json:"valid"`
	MissingFields []string `json:"missing_fields,omitempty"`
	Err           error    `json:"-"`
}

// AssembleInput carries everything Assemble needs.
type AssembleInput struct {
	Theme      string
	Type       Type
	Words      []string
	Difficulty words.Level
	// Description is the text theme consistency is measured against. When
	// empty the generated instructions are used.
	Description string
}

// Assembler builds CompleteGame values. It is safe for concurrent use.
type Assembler struct {
	cfg           config.Quality
	titleTemplate string
	scorer        *quality.Scorer
	clues         ClueProvider
}

// NewAssembler builds an Assembler. A nil clue provider falls back to
// TemplateClues.
func NewAssembler(cfg config.Quality, titleTemplate string, clues ClueProvider) *Assembler {
	if titleTemplate == "" {
		titleTemplate = "{theme} {game_type}"
	}
	if clues == nil {
		clues = TemplateClues{}
	}
	return &Assembler{
		cfg:           cfg,
		titleTemplate: titleTemplate,
		scorer:        quality.New(cfg),
		clues:         clues,
	}
}

// Scorer exposes the content scorer the assembler uses.
func (a *Assembler) Scorer() *quality.Scorer {
	return a.scorer
}

// EstimateTime returns the expected solve time in whole minutes, never
// below five.
func EstimateTime(wordList []string, t Type) int {
	factor, ok := timeFactors[t]
	if !ok {
		factor = 1.0
	}
	minutes := int(math.Floor(float64(len(wordList))*factor + 2))
	return max(5, minutes)
}

// Title renders the title template for a theme and game type.
func (a *Assembler) Title(theme string, t Type) string {
	return strings.NewReplacer(
		"{theme}", titleCase(theme),
		"{game_type}", t.DisplayName(),
	).Replace(a.titleTemplate)
}

// Instructions renders the per-type instruction template.
func Instructions(t Type, wordCount int) string {
	tmpl, ok := instructionTemplates[t]
	if !ok {
		tmpl = defaultInstructions
	}
	return strings.ReplaceAll(tmpl, "{n}", strconv.Itoa(wordCount))
}

// ValidateCompletion checks required fields, the minimum word count and the
// game type, stopping at the first failure.
func (a *Assembler) ValidateCompletion(d GameData) CompletionResult {
	var missing []string
	if d.Type == "" {
		missing = append(missing, "type")
	}
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.Words == nil {
		missing = append(missing, "words")
	}
	if d.Difficulty == "" {
		missing = append(missing, "difficulty")
	}
	if len(missing) > 0 {
		return CompletionResult{
			MissingFields: missing,
			Err:           fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", ")),
		}
	}

	if len(d.Words) < a.cfg.MinWords {
		return CompletionResult{
			Err: fmt.Errorf("%w: game must contain at least %d words, got %d", ErrTooFewWords, a.cfg.MinWords, len(d.Words)),
		}
	}

	if !Type(d.Type).Valid() {
		names := make([]string, len(Types))
		for i, t := range Types {
			names[i] = string(t)
		}
		return CompletionResult{
			Err: fmt.Errorf("%w %q: must be one of %s", ErrInvalidGameType, d.Type, strings.Join(names, ", ")),
		}
	}

	return CompletionResult{Valid: true}
}

// Assemble builds a CompleteGame. ReadyForPublication is set only when the
// structure is complete and both the content and theme scores meet their
// thresholds.
func (a *Assembler) Assemble(in AssembleInput) (*CompleteGame, error) {
	if len(in.Words) == 0 {
		return nil, words.ErrEmptyList
	}

	category := InferCategory(in.Theme)
	clues := make([]Clue, 0, len(in.Words))
	for _, w := range in.Words {
		clues = append(clues, a.clues.Clue(w, category))
	}

	content := Content{
		Title:            a.Title(in.Theme, in.Type),
		Instructions:     Instructions(in.Type, len(in.Words)),
		Words:            append([]string(nil), in.Words...),
		Clues:            clues,
		AnswerKey:        FormatAnswerKey(clues),
		EstimatedMinutes: EstimateTime(in.Words, in.Type),
	}

	completion := a.ValidateCompletion(GameData{
		Type:       string(in.Type),
		Title:      content.Title,
		Words:      in.Words,
		Difficulty: string(in.Difficulty),
	})
	qrep := a.scorer.ScoreContent(content.Title, in.Words, content.Instructions)

	description := in.Description
	if description == "" {
		description = content.Instructions
	}
	trep := a.scorer.ScoreThemeConsistency(in.Theme, in.Words, description)

	v := Validation{
		CompletionValid: completion.Valid,
		QualityIssues:   qrep.Issues,
		ThemeMentioned:  trep.ThemeMentioned,
	}
	if completion.Err != nil {
		v.CompletionError = completion.Err.Error()
	}
	if trep.Err != nil {
		v.ThemeError = trep.Err.Error()
	}

	ready := completion.Valid &&
		qrep.Score >= a.cfg.ContentThreshold &&
		trep.Score >= a.cfg.ThemeThreshold

	return &CompleteGame{
		Metadata: Metadata{
			Theme:            in.Theme,
			GameType:         in.Type,
			Difficulty:       in.Difficulty,
			WordCount:        len(in.Words),
			QualityScore:     qrep.Score,
			ConsistencyScore: trep.Score,
		},
		Content:             content,
		Validation:          v,
		ReadyForPublication: ready,
	}, nil
}

// QualityAssessment summarizes a finished game against every threshold.
type QualityAssessment struct {
	Title            string   `json:"game_title"`
	Theme            string   `json:"theme"`
	WordCount        int      `json:"word_count"`
	ContentQuality   float64  `json:"content_quality"`
	ThemeConsistency float64  `json:"theme_consistency"`
	OverallRating    float64  `json:"overall_rating"`
	OverallThreshold float64  `json:"overall_threshold"`
	MeetsOverall     bool     `json:"meets_overall"`
	StandardsMet     bool     `json:"standards_met"`
	Recommendations  []string `json:"recommendations"`
}

// Report rates a game. The overall rating is the mean of the content and
// theme scores.
func (a *Assembler) Report(g *CompleteGame) QualityAssessment {
	m := g.Metadata
	overall := (m.QualityScore + m.ConsistencyScore) / 2
	qa := QualityAssessment{
		Title:            g.Content.Title,
		Theme:            m.Theme,
		WordCount:        m.WordCount,
		ContentQuality:   m.QualityScore,
		ThemeConsistency: m.ConsistencyScore,
		OverallRating:    overall,
		OverallThreshold: a.cfg.OverallThreshold,
		MeetsOverall:     overall >= a.cfg.OverallThreshold,
		StandardsMet:     g.ReadyForPublication,
	}

	if m.QualityScore < a.cfg.ContentThreshold {
		qa.Recommendations = append(qa.Recommendations, "Improve content quality: review title length and instruction clarity")
	}
	if m.ConsistencyScore < a.cfg.ThemeThreshold {
		qa.Recommendations = append(qa.Recommendations, "Enhance theme consistency: ensure the description mentions the theme")
	}
	if !g.ReadyForPublication {
		qa.Recommendations = append(qa.Recommendations, "Address validation issues before publication")
	}
	return qa
}

// Structure renders the metadata and content of a game as indented JSON.
func Structure(g *CompleteGame) (string, error) {
	data, err := json.MarshalIndent(struct {
		Metadata Metadata `json:"metadata"`
		Content  Content  `json:"content"`
	}{g.Metadata, g.Content}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling game structure: %w", err)
	}
	return string(data), nil
}
