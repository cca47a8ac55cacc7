package words

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasnoah/puzzlefactory/internal/config"
)

func newAnalyzer() *Analyzer {
	return New(config.Default().Words)
}

func TestValidateAcceptsAlphabeticWords(t *testing.T) {
	a := newAnalyzer()
	for _, w := range []string{"cat", "Apple", "  banana ", "abcdefghijklmnopqrst"} {
		res := a.Validate(w)
		require.True(t, res.Valid, "Validate(%q) err = %v", w, res.Err)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(w)), res.Word)
		assert.Equal(t, len(res.Word), res.Length)
		assert.NoError(t, res.Err)
	}
}

func TestValidateFailureKinds(t *testing.T) {
	a := newAnalyzer()
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrEmptyWord},
		{"   ", ErrEmptyWord},
		{"ab", ErrTooShort},
		{"abcdefghijklmnopqrstu", ErrTooLong},
		{"ice-cream", ErrNonAlphabetic},
		{"abc1", ErrNonAlphabetic},
		// length is checked before the alphabet
		{"a1", ErrTooShort},
	}
	for _, tt := range tests {
		res := a.Validate(tt.in)
		assert.False(t, res.Valid, "Validate(%q)", tt.in)
		assert.Empty(t, res.Word, "Validate(%q) returned a usable word", tt.in)
		assert.True(t, errors.Is(res.Err, tt.want), "Validate(%q) err = %v, want %v", tt.in, res.Err, tt.want)
	}
}

func TestScoreDifficulty(t *testing.T) {
	a := newAnalyzer()
	tests := []struct {
		word  string
		score float64
		level Level
	}{
		{"apple", 23, Easy},
		{"banana", 18, Easy},
		{"cherry", 44.67, Medium},
		{"rhythms", 61, Hard},
		// exactly on the easy threshold
		{"bababababa", 30, Medium},
	}
	for _, tt := range tests {
		ds := a.ScoreDifficulty(tt.word)
		assert.Equal(t, tt.score, ds.Score, "ScoreDifficulty(%q).Score", tt.word)
		assert.Equal(t, tt.level, ds.Level, "ScoreDifficulty(%q).Level", tt.word)
		assert.Equal(t, ds.Length, ds.Vowels+ds.Consonants)
	}
}

func TestScoreDifficultyEmptyWordIsGuarded(t *testing.T) {
	ds := newAnalyzer().ScoreDifficulty("")
	assert.Equal(t, 0.0, ds.Score)
	assert.Equal(t, Easy, ds.Level)
}

func TestScoringIsDeterministic(t *testing.T) {
	a := newAnalyzer()
	first := a.ScoreDifficulty("pineapple")
	firstValid := a.Validate("Pineapple")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, a.ScoreDifficulty("pineapple"))
		assert.Equal(t, firstValid, a.Validate("Pineapple"))
	}
}

func TestCustomThresholdsAndVowels(t *testing.T) {
	cfg := config.Default().Words
	cfg.Vowels = "aeiouy"
	cfg.EasyThreshold = 10
	cfg.MediumThreshold = 20
	a := New(cfg)

	ds := a.ScoreDifficulty("cherry")
	assert.Equal(t, 2, ds.Vowels)
	assert.Equal(t, Hard, ds.Level)
}

func TestCheckVariety(t *testing.T) {
	a := newAnalyzer()

	rep := a.CheckVariety([]string{"apple", "banana", "apple"})
	assert.False(t, rep.Valid)
	assert.Equal(t, 1, rep.DuplicateCount)
	assert.ErrorIs(t, rep.Err, ErrDuplicateWords)

	rep = a.CheckVariety([]string{"apple", "banana", "cherry"})
	require.True(t, rep.Valid, "err = %v", rep.Err)
	assert.Equal(t, 3, rep.UniqueWords)
	assert.Equal(t, 3, rep.Distribution.Total())
	assert.Equal(t, Distribution{Easy: 2, Medium: 1}, rep.Distribution)
}

func TestCheckVarietyCaseInsensitive(t *testing.T) {
	rep := newAnalyzer().CheckVariety([]string{"Apple", "apple", "APPLE", "pear"})
	assert.ErrorIs(t, rep.Err, ErrDuplicateWords)
	assert.Equal(t, 2, rep.DuplicateCount)
	assert.Equal(t, 2, rep.UniqueWords)
}

func TestCheckVarietyEmpty(t *testing.T) {
	rep := newAnalyzer().CheckVariety(nil)
	assert.False(t, rep.Valid)
	assert.ErrorIs(t, rep.Err, ErrEmptyList)
}

func TestCleanup(t *testing.T) {
	a := newAnalyzer()

	got, ok := a.Cleanup("ice-cream")
	assert.True(t, ok)
	assert.Equal(t, "icecream", got)

	got, ok = a.Cleanup("K1w1!")
	assert.False(t, ok, "cleaned %q should still be too short", got)

	_, ok = a.Cleanup("42")
	assert.False(t, ok)
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	kept, dropped := Dedupe([]string{"kiwi", "mango", "Kiwi", "lime", "mango"})
	assert.Equal(t, []string{"kiwi", "mango", "lime"}, kept)
	assert.Equal(t, []string{"Kiwi", "mango"}, dropped)
}

func TestBalance(t *testing.T) {
	a := newAnalyzer()
	in := []string{"apple", "banana", "cherry", "rhythms", "kiwi", "bababababa"}

	assert.Equal(t, in, a.Balance(in, nil))

	out := a.Balance(in, map[string]float64{"easy": 0.5, "medium": 0.5, "hard": 0})
	// easy: apple banana kiwi; medium: cherry bababababa; hard: rhythms
	assert.Equal(t, []string{"apple", "banana", "kiwi", "cherry", "bababababa"}, out)

	// medium defaults to 0.33 and easy takes everything, leaving hard nothing.
	assert.NotPanics(t, func() { out = a.Balance(in, map[string]float64{"easy": 1.0}) })
	assert.Equal(t, []string{"apple", "banana", "kiwi", "cherry"}, out)

	out = a.Balance(in, map[string]float64{"easy": -0.5, "medium": 0.5, "hard": 1})
	assert.Equal(t, []string{"cherry", "bababababa", "rhythms"}, out)
}

func TestSelectionScore(t *testing.T) {
	a := newAnalyzer()
	results := []ValidationResult{a.Validate("apple"), a.Validate("banana"), a.Validate("cherry")}
	assert.Equal(t, 100.0, SelectionScore(results, a.CheckVariety([]string{"apple", "banana", "cherry"})))

	results = []ValidationResult{a.Validate("apple"), a.Validate("x"), a.Validate("apple"), a.Validate("1")}
	assert.Equal(t, 50.0, SelectionScore(results, a.CheckVariety([]string{"apple", "apple"})))

	assert.Equal(t, 25.0, SelectionScore(nil, VarietyReport{}))
}

func TestParseLevel(t *testing.T) {
	l, ok := ParseLevel(" HARD ")
	assert.True(t, ok)
	assert.Equal(t, Hard, l)

	_, ok = ParseLevel("extreme")
	assert.False(t, ok)
}
