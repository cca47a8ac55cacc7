// Package game assembles validated words and clues into complete puzzle
// games and validates their structure.
package game

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lucasnoah/puzzlefactory/internal/words"
)

// Type is a supported puzzle format.
type Type string

const (
	WordSearch Type = "word_search"
	Crossword  Type = "crossword"
	Anagram    Type = "anagram"
	WordMatch  Type = "word_match"
	Trivia     Type = "trivia"
)

// Types lists every supported game type.
var Types = []Type{WordSearch, Crossword, Anagram, WordMatch, Trivia}

var displayNames = map[Type]string{
	WordSearch: "Word Hunt",
	Crossword:  "Crossword",
	Anagram:    "Anagram Challenge",
	WordMatch:  "Word Match",
	Trivia:     "Trivia Quest",
}

// minutes per word
var timeFactors = map[Type]float64{
	WordSearch: 1.5,
	Crossword:  2.0,
	Anagram:    1.0,
	WordMatch:  0.5,
	Trivia:     1.0,
}

var instructionTemplates = map[Type]string{
	WordSearch: "Find all {n} hidden words in the grid. Words can be horizontal, vertical, or diagonal.",
	Crossword:  "Fill in the crossword puzzle using the {n} clues provided.",
	Anagram:    "Unscramble each set of letters to form {n} valid words.",
	WordMatch:  "Match each clue with the correct word from the list of {n} options.",
	Trivia:     "Answer all {n} trivia questions correctly.",
}

const defaultInstructions = "Complete the puzzle using all {n} words provided."

// ParseType accepts a game type name in any case, with spaces or dashes
// standing in for underscores.
func ParseType(s string) (Type, bool) {
	norm := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	t := Type(norm)
	return t, t.Valid()
}

// Valid reports whether t is one of Types.
func (t Type) Valid() bool {
	_, ok := displayNames[t]
	return ok
}

// DisplayName is the player-facing name used in titles.
func (t Type) DisplayName() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return titleCase(strings.ReplaceAll(string(t), "_", " "))
}

// Clue is one clue record.
type Clue struct {
	Word        string `json:"word"`
	Hint        string `json:"hint"`
	Category    string `json:"category"`
	LetterCount int    `json:"letter_count"`
}

// Metadata describes a finished game.
type Metadata struct {
	Theme            string      `json:"theme"`
	GameType         Type        `json:"game_type"`
	Difficulty       words.Level `json:"difficulty"`
	WordCount        int         `json:"word_count"`
	QualityScore     float64     `json:"quality_score"`
	ConsistencyScore float64     `json:"consistency_score"`
}

// Content is the playable part of a game.
type Content struct {
	Title            string   `json:"title"`
	Instructions     string   `json:"instructions"`
	Words            []string `json:"words"`
	Clues            []Clue   `json:"clues"`
	AnswerKey        string   `json:"answer_key"`
	EstimatedMinutes int      `json:"estimated_time_minutes"`
}

// Validation records the checks run at assembly time.
type Validation struct {
	CompletionValid bool     `json:"completion_valid"`
	CompletionError string   `json:"completion_error,omitempty"`
	QualityIssues   []string `json:"quality_issues"`
	ThemeMentioned  bool     `json:"theme_mentioned"`
	ThemeError      string   `json:"theme_error,omitempty"`
}

// CompleteGame is produced once per successful run and never modified
// afterwards. Callers receive it by pointer and must treat it as read-only.
type CompleteGame struct {
	Metadata            Metadata   `json:"metadata"`
	Content             Content    `json:"content"`
	Validation          Validation `json:"validation"`
	ReadyForPublication bool       `json:"ready_for_publication"`
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
