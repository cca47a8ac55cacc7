package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucasnoah/puzzlefactory/internal/config"
)

var fruits = []string{"apple", "banana", "cherry"}

func newScorer() *Scorer {
	return New(config.Default().Quality)
}

func TestScoreContentTitleTooShort(t *testing.T) {
	rep := newScorer().ScoreContent("a", fruits, "Find all the fruits")
	assert.False(t, rep.Valid)
	assert.Equal(t, 80.0, rep.Score)
	assert.Equal(t, 1, rep.TotalIssues)
	assert.Contains(t, rep.Issues[0], "Title must be at least 3")
}

func TestScoreContentValid(t *testing.T) {
	rep := newScorer().ScoreContent("Fruit Game", fruits, "Find all the fruits in the puzzle")
	assert.True(t, rep.Valid)
	assert.Equal(t, 100.0, rep.Score)
	assert.Empty(t, rep.Issues)
}

func TestScoreContentRunsEveryCheck(t *testing.T) {
	rep := newScorer().ScoreContent("", []string{"one"}, "short")
	assert.False(t, rep.Valid)
	assert.Equal(t, 3, rep.TotalIssues)
	assert.Equal(t, 40.0, rep.Score)
}

func TestScoreContentUpperBounds(t *testing.T) {
	many := make([]string, 51)
	for i := range many {
		many[i] = "word"
	}
	rep := newScorer().ScoreContent(strings.Repeat("t", 51), many, strings.Repeat("i", 501))
	assert.Equal(t, 3, rep.TotalIssues)
	assert.Equal(t, 40.0, rep.Score)
}

func TestScoreContentFloorsAtZero(t *testing.T) {
	cfg := config.Default().Quality
	cfg.TitleLength = config.Bounds{Min: 100, Max: 1}
	cfg.WordCount = config.Bounds{Min: 100, Max: 1}
	cfg.InstructionLength = config.Bounds{Min: 100, Max: 1}
	rep := New(cfg).ScoreContent("title", fruits, "instructions")
	assert.Equal(t, 6, rep.TotalIssues)
	assert.Equal(t, 0.0, rep.Score)
}

func TestScoreContentIsPure(t *testing.T) {
	s := newScorer()
	first := s.ScoreContent("a", fruits, "Find all the fruits")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, s.ScoreContent("a", fruits, "Find all the fruits"))
	}
}

func TestStrictMode(t *testing.T) {
	cfg := config.Default().Quality
	cfg.Strict = true
	s := New(cfg)

	rep := s.ScoreContent("ab", []string{"kiwi", "Kiwi", "lime"}, "Find all the fruits")
	// one base issue (title) then two strict issues
	assert.Equal(t, 3, rep.TotalIssues)
	assert.Equal(t, 60.0, rep.Score)
	assert.False(t, rep.Valid)

	// strict rules only apply below the ceiling
	rep = s.ScoreContent("Fruit Game", fruits, "Find all the fruits in the puzzle")
	assert.True(t, rep.Valid)
	assert.Equal(t, 100.0, rep.Score)
}

func TestScoreThemeConsistency(t *testing.T) {
	s := newScorer()

	rep := s.ScoreThemeConsistency("Fruits", fruits, "Create a simple word game about fruits")
	assert.True(t, rep.Valid)
	assert.True(t, rep.ThemeMentioned)
	assert.Equal(t, 85.0, rep.Score)
	assert.Equal(t, 3, rep.WordCount)

	rep = s.ScoreThemeConsistency("space", fruits, "Create a simple word game about fruits")
	assert.True(t, rep.Valid)
	assert.False(t, rep.ThemeMentioned)
	assert.Equal(t, 70.0, rep.Score)
}

func TestScoreThemeConsistencyErrors(t *testing.T) {
	s := newScorer()

	rep := s.ScoreThemeConsistency("  ", fruits, "anything")
	assert.False(t, rep.Valid)
	assert.ErrorIs(t, rep.Err, ErrEmptyTheme)

	rep = s.ScoreThemeConsistency("fruits", nil, "fruits")
	assert.False(t, rep.Valid)
	assert.ErrorIs(t, rep.Err, ErrEmptyWordList)
}
