package stage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/game"
	"github.com/lucasnoah/puzzlefactory/internal/generate"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
	"github.com/lucasnoah/puzzlefactory/internal/prompt"
)

// commonThemes are matched against request words to seed the concept prompt.
var commonThemes = []string{
	"animals", "ocean", "space", "food", "fruits", "sports", "travel",
	"music", "art", "science", "nature", "technology", "history",
}

// ThemeKeywords returns the common themes named in text, in list order.
// A singular form ("animal") matches its plural theme.
func ThemeKeywords(text string) []string {
	tokens := map[string]bool{}
	for _, f := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		tokens[f] = true
		tokens[strings.TrimSuffix(f, "s")] = true
	}

	var found []string
	for _, th := range commonThemes {
		if tokens[th] || tokens[strings.TrimSuffix(th, "s")] {
			found = append(found, th)
		}
	}
	return found
}

// CreativityScore rates a concept: 50 base, 10 per word in the theme and
// 5 per unique proposed word, capped at 100.
func CreativityScore(theme string, words []string) float64 {
	unique := map[string]bool{}
	for _, w := range words {
		unique[strings.ToLower(w)] = true
	}
	score := 50 + 10*float64(len(strings.Fields(theme))) + 5*float64(len(unique))
	return min(100, score)
}

// ConceptStage brainstorms the theme, game type and candidate words.
type ConceptStage struct {
	engine
	words config.Words
}

// NewConcept builds the concept stage.
func NewConcept(gen generate.Generator, prompts *prompt.Library, words config.Words) *ConceptStage {
	return &ConceptStage{
		engine: newEngine(pipeline.StateConcept, gen, prompts, prompt.ConceptTemplate),
		words:  words,
	}
}

func (s *ConceptStage) Run(ctx context.Context, pc *pipeline.Context) (Delta, error) {
	req := pc.Request
	keywords := ThemeKeywords(req.Description)

	typeNames := make([]string, len(game.Types))
	for i, t := range game.Types {
		typeNames[i] = string(t)
	}

	out, events, err := s.invoke(ctx, pc, prompt.Vars{
		"description":    req.Description,
		"theme":          req.Theme,
		"game_type":      string(req.GameType),
		"difficulty":     string(req.Difficulty),
		"audience":       req.TargetAudience,
		"theme_keywords": strings.Join(keywords, ", "),
		"game_types":     strings.Join(typeNames, ", "),
		"word_count":     strconv.Itoa(req.WordCount),
		"min_length":     strconv.Itoa(s.words.MinLength),
		"max_length":     strconv.Itoa(s.words.MaxLength),
	})
	if err != nil {
		return Delta{}, err
	}

	var c pipeline.Concept
	if err := out.Decode("words", &c.Words); err != nil {
		return Delta{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	_ = out.Decode("theme", &c.Theme)
	_ = out.Decode("reasoning", &c.Reasoning)

	c.Theme = strings.TrimSpace(c.Theme)
	switch {
	case req.Theme != "":
		c.Theme = req.Theme
	case c.Theme == "" && len(keywords) > 0:
		c.Theme = keywords[0]
	case c.Theme == "":
		return Delta{}, fmt.Errorf("%w: no theme in concept output", ErrMalformedOutput)
	}

	c.GameType = req.GameType
	if c.GameType == "" {
		var raw string
		_ = out.Decode("game_type", &raw)
		t, ok := game.ParseType(raw)
		if !ok {
			t = game.WordSearch
			events = append(events, s.note("default", "game type %q not recognized, using %s", raw, t))
		}
		c.GameType = t
	}

	c.ThemeKeywords = keywords
	c.CreativityScore = CreativityScore(c.Theme, c.Words)

	return Delta{Key: pipeline.KeyBrainstorm, Value: &c, Events: events}, nil
}
