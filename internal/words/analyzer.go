// Package words validates candidate puzzle words, scores their difficulty and
// checks the variety of a word list.
package words

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lucasnoah/puzzlefactory/internal/config"
)

// Level is a difficulty bucket.
type Level string

const (
	Easy   Level = "easy"
	Medium Level = "medium"
	Hard   Level = "hard"
)

// Levels lists every bucket in ascending order.
var Levels = []Level{Easy, Medium, Hard}

// ParseLevel returns the Level named by s, case-insensitively.
func ParseLevel(s string) (Level, bool) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy, true
	case Medium:
		return Medium, true
	case Hard:
		return Hard, true
	}
	return "", false
}

// Input errors. They are carried inside result values, never returned.
var (
	ErrEmptyWord         = errors.New("empty word")
	ErrTooShort          = errors.New("word too short")
	ErrTooLong           = errors.New("word too long")
	ErrNonAlphabetic     = errors.New("word contains non-alphabetic characters")
	ErrEmptyList         = errors.New("empty word list")
	ErrDuplicateWords    = errors.New("duplicate words")
	ErrInsufficientWords = errors.New("insufficient words")
)

// ValidationResult is the outcome of validating one word.
type ValidationResult struct {
	Input  string `json:"input"`
	Valid  bool   `json:"valid"`
	Word   string `json:"word,omitempty"`
	Length int    `json:"length,omitempty"`
	Err    error  `json:"-"`
}

// Error returns the failure message, or "" for a valid word.
func (r ValidationResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// DifficultyScore is the derived difficulty of one word.
type DifficultyScore struct {
	Word       string  `json:"word"`
	Score      float64 `json:"score"`
	Level      Level   `json:"level"`
	Vowels     int     `json:"vowels"`
	Consonants int     `json:"consonants"`
	Length     int     `json:"length"`
}

// Analyzer is safe for concurrent use; it holds only configuration.
type Analyzer struct {
	cfg    config.Words
	vowels map[rune]bool
}

// New builds an Analyzer from the words configuration section.
func New(cfg config.Words) *Analyzer {
	vowels := make(map[rune]bool, len(cfg.Vowels))
	for _, r := range strings.ToLower(cfg.Vowels) {
		vowels[r] = true
	}
	return &Analyzer{cfg: cfg, vowels: vowels}
}

// Config returns the configuration the analyzer was built with.
func (a *Analyzer) Config() config.Words {
	return a.cfg
}

// Validate normalizes a word and checks it. Checks run in order:
// empty, too short, too long, non-alphabetic.
func (a *Analyzer) Validate(word string) ValidationResult {
	res := ValidationResult{Input: word}
	w := strings.ToLower(strings.TrimSpace(word))
	n := utf8.RuneCountInString(w)

	switch {
	case n == 0:
		res.Err = ErrEmptyWord
	case n < a.cfg.MinLength:
		res.Err = fmt.Errorf("%w: %q has %d letters, minimum is %d", ErrTooShort, w, n, a.cfg.MinLength)
	case n > a.cfg.MaxLength:
		res.Err = fmt.Errorf("%w: %q has %d letters, maximum is %d", ErrTooLong, w, n, a.cfg.MaxLength)
	case strings.IndexFunc(w, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0:
		res.Err = fmt.Errorf("%w: %q", ErrNonAlphabetic, w)
	default:
		res.Valid = true
		res.Word = w
		res.Length = n
	}
	return res
}

// ScoreDifficulty scores a word in [0,100] from its length and vowel balance.
func (a *Analyzer) ScoreDifficulty(word string) DifficultyScore {
	w := strings.ToLower(strings.TrimSpace(word))
	ds := DifficultyScore{Word: w}
	for _, r := range w {
		ds.Length++
		if a.vowels[r] {
			ds.Vowels++
		}
	}
	ds.Consonants = ds.Length - ds.Vowels

	var lengthScore, ratioScore float64
	if a.cfg.MaxLength > 0 {
		lengthScore = float64(ds.Length) / float64(a.cfg.MaxLength)
	}
	if ds.Length > 0 {
		ratioScore = math.Abs(float64(ds.Vowels-ds.Consonants)) / float64(ds.Length)
	}

	raw := (lengthScore*a.cfg.LengthWeight + ratioScore*a.cfg.RatioWeight) * 100
	ds.Score = round2(raw)
	ds.Level = a.bucket(ds.Score)
	return ds
}

// bucket maps a rounded score to a Level. A score equal to a threshold
// belongs to the higher bucket.
func (a *Analyzer) bucket(score float64) Level {
	switch {
	case score < a.cfg.EasyThreshold:
		return Easy
	case score < a.cfg.MediumThreshold:
		return Medium
	default:
		return Hard
	}
}

// Cleanup makes a single repair attempt on an invalid word: strip every
// non-letter and re-validate. The second return is false when the word is
// still unusable.
func (a *Analyzer) Cleanup(word string) (string, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, strings.ToLower(word))

	res := a.Validate(cleaned)
	if !res.Valid {
		return "", false
	}
	return res.Word, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
