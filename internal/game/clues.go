package game

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Clue categories.
const (
	CategoryAnimal  = "animal"
	CategoryPlace   = "place"
	CategoryObject  = "object"
	CategoryAction  = "action"
	CategoryGeneral = "general"
)

// ClueProvider produces one clue record per word.
type ClueProvider interface {
	Clue(word, category string) Clue
}

var hintTemplates = map[string]string{
	CategoryAnimal: "This is a %d-letter animal",
	CategoryPlace:  "This is a %d-letter location",
	CategoryObject: "This is a %d-letter object",
	CategoryAction: "This is a %d-letter verb",
}

const generalHint = "This is a %d-letter word"

// TemplateClues fills a fixed per-category hint with the word length.
type TemplateClues struct{}

func (TemplateClues) Clue(word, category string) Clue {
	n := utf8.RuneCountInString(word)
	tmpl, ok := hintTemplates[category]
	if !ok {
		tmpl = generalHint
	}
	if category == "" {
		category = CategoryGeneral
	}
	return Clue{
		Word:        word,
		Hint:        fmt.Sprintf(tmpl, n),
		Category:    category,
		LetterCount: n,
	}
}

// InferCategory picks a clue category from keywords in the theme.
func InferCategory(theme string) string {
	t := strings.ToLower(theme)
	hasAny := func(keys ...string) bool {
		for _, k := range keys {
			if strings.Contains(t, k) {
				return true
			}
		}
		return false
	}

	switch {
	case hasAny("animal", "creature"):
		return CategoryAnimal
	case hasAny("place", "location", "city"):
		return CategoryPlace
	case hasAny("action", "verb", "activity"):
		return CategoryAction
	default:
		return CategoryObject
	}
}

// FormatAnswerKey renders the answer key, one numbered line per clue.
func FormatAnswerKey(clues []Clue) string {
	var b strings.Builder
	b.WriteString("ANSWER KEY\n")
	b.WriteString(strings.Repeat("=", 40))
	for i, c := range clues {
		fmt.Fprintf(&b, "\n%d. %s - %s", i+1, strings.ToUpper(c.Word), c.Hint)
	}
	return b.String()
}
