package stage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/generate"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
	"github.com/lucasnoah/puzzlefactory/internal/prompt"
	"github.com/lucasnoah/puzzlefactory/internal/words"
)

// WordSelectionStage turns the brainstormed candidates into the final word
// list: validate, clean up once or drop, dedupe, trim to the target count.
type WordSelectionStage struct {
	engine
	analyzer  *words.Analyzer
	selection config.Selection
}

// NewWordSelection builds the word selection stage.
func NewWordSelection(gen generate.Generator, prompts *prompt.Library, analyzer *words.Analyzer, selection config.Selection) *WordSelectionStage {
	return &WordSelectionStage{
		engine:    newEngine(pipeline.StateWordSelection, gen, prompts, prompt.WordSelectionTemplate),
		analyzer:  analyzer,
		selection: selection,
	}
}

func (s *WordSelectionStage) Run(ctx context.Context, pc *pipeline.Context) (Delta, error) {
	concept, err := pc.Concept()
	if err != nil {
		return Delta{}, err
	}
	req := pc.Request
	wcfg := s.analyzer.Config()

	out, events, err := s.invoke(ctx, pc, prompt.Vars{
		"theme":              concept.Theme,
		"game_type":          string(concept.GameType),
		"candidates":         strings.Join(concept.Words, ", "),
		"min_words":          strconv.Itoa(s.selection.MinWords),
		"max_words":          strconv.Itoa(s.selection.MaxWords),
		"word_count":         strconv.Itoa(req.WordCount),
		"min_length":         strconv.Itoa(wcfg.MinLength),
		"max_length":         strconv.Itoa(wcfg.MaxLength),
		"difficulty_balance": formatBalance(s.selection.DifficultyBalance),
	})
	if err != nil {
		return Delta{}, err
	}

	candidates := concept.Words
	var refined []string
	if err := out.Decode("words", &refined); err == nil && len(refined) > 0 {
		candidates = refined
	} else {
		events = append(events, s.note("fallback", "generator returned no word list, using %d brainstormed words", len(candidates)))
	}

	picked := s.Select(candidates, req.WordCount)
	for _, d := range picked.Dropped {
		events = append(events, s.note("dropped", "%q", d))
	}
	if n := len(picked.Words); n < s.selection.MinWords {
		return Delta{}, fmt.Errorf("%w: %d usable words, need at least %d", words.ErrInsufficientWords, n, s.selection.MinWords)
	}

	return Delta{Key: pipeline.KeyPickedWords, Value: picked, Events: events}, nil
}

// Select applies the word rules to candidates without calling the
// generator. target <= 0 means no trim beyond selection.max_words.
func (s *WordSelectionStage) Select(candidates []string, target int) *pipeline.PickedWords {
	picked := &pipeline.PickedWords{Replacements: map[string]string{}}

	var usable []string
	for _, c := range candidates {
		v := s.analyzer.Validate(c)
		picked.Validations = append(picked.Validations, v)
		if v.Valid {
			usable = append(usable, v.Word)
			continue
		}
		if cleaned, ok := s.analyzer.Cleanup(c); ok {
			picked.Replacements[c] = cleaned
			usable = append(usable, cleaned)
			continue
		}
		picked.Dropped = append(picked.Dropped, c)
	}

	kept, dups := words.Dedupe(usable)
	picked.Dropped = append(picked.Dropped, dups...)

	limit := s.selection.MaxWords
	if target > 0 && (limit <= 0 || target < limit) {
		limit = target
	}
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}

	picked.Words = kept
	picked.Variety = s.analyzer.CheckVariety(kept)
	picked.SelectionScore = words.SelectionScore(picked.Validations, picked.Variety)
	return picked
}

func formatBalance(b map[string]float64) string {
	if len(b) == 0 {
		return ""
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %.0f%%", k, b[k]*100)
	}
	return strings.Join(parts, ", ")
}
