// Package quality scores generated puzzle content against length bounds and
// theme consistency.
package quality

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lucasnoah/puzzlefactory/internal/config"
)

var (
	ErrEmptyTheme    = errors.New("theme cannot be empty")
	ErrEmptyWordList = errors.New("word list cannot be empty")
)

// Theme consistency is binary: one score when the theme appears in the
// description and another when it does not.
const (
	ThemeMentionedScore = 85
	ThemeAbsentScore    = 70
)

const (
	issuePenalty       = 20
	strictPenalty      = 10
	strictCeiling      = 90
	strictPassScore    = 80
	strictMinTitleRune = 5
)

// Report is the outcome of ScoreContent.
type Report struct {
	Valid       bool     `json:"valid"`
	Score       float64  `json:"quality_score"`
	Issues      []string `json:"issues"`
	TotalIssues int      `json:"total_issues"`
}

// ThemeReport is the outcome of ScoreThemeConsistency.
type ThemeReport struct {
	Valid          bool    `json:"valid"`
	Theme          string  `json:"theme"`
	ThemeMentioned bool    `json:"theme_mentioned_in_description"`
	WordCount      int     `json:"word_count"`
	Score          float64 `json:"consistency_score"`
	Err            error   `json:"-"`
}

// Scorer holds only configuration and is safe for concurrent use.
type Scorer struct {
	cfg config.Quality
}

// New builds a Scorer from the quality configuration section.
func New(cfg config.Quality) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the configuration the scorer was built with.
func (s *Scorer) Config() config.Quality {
	return s.cfg
}

// ScoreContent checks title length, word count and instruction length.
// Every check runs; each violated bound adds one issue.
func (s *Scorer) ScoreContent(title string, words []string, instructions string) Report {
	var issues []string

	tb := s.cfg.TitleLength
	tl := utf8.RuneCountInString(title)
	if tl < tb.Min {
		issues = append(issues, fmt.Sprintf("Title must be at least %d characters", tb.Min))
	}
	if tl > tb.Max {
		issues = append(issues, fmt.Sprintf("Title must be %d characters or less", tb.Max))
	}

	wb := s.cfg.WordCount
	if len(words) < wb.Min {
		issues = append(issues, fmt.Sprintf("Game must contain at least %d words", wb.Min))
	}
	if len(words) > wb.Max {
		issues = append(issues, fmt.Sprintf("Game should not exceed %d words", wb.Max))
	}

	ib := s.cfg.InstructionLength
	il := utf8.RuneCountInString(instructions)
	if il < ib.Min {
		issues = append(issues, fmt.Sprintf("Instructions must be at least %d characters", ib.Min))
	}
	if il > ib.Max {
		issues = append(issues, fmt.Sprintf("Instructions should not exceed %d characters", ib.Max))
	}

	rep := Report{
		Valid:       len(issues) == 0,
		Score:       penalize(100, len(issues), issuePenalty),
		Issues:      issues,
		TotalIssues: len(issues),
	}
	if s.cfg.Strict {
		s.applyStrict(&rep, tl, words)
	}
	return rep
}

// applyStrict adds the stricter title and uniqueness rules to a report that
// already scored below the strict ceiling.
func (s *Scorer) applyStrict(rep *Report, titleLen int, words []string) {
	if rep.Score >= strictCeiling {
		return
	}

	var extra []string
	if titleLen < strictMinTitleRune {
		extra = append(extra, fmt.Sprintf("Title should be at least %d characters in strict mode", strictMinTitleRune))
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[strings.ToLower(w)] = struct{}{}
	}
	if len(seen) != len(words) {
		extra = append(extra, "All words must be unique in strict mode")
	}
	if len(extra) == 0 {
		return
	}

	rep.Issues = append(rep.Issues, extra...)
	rep.TotalIssues += len(extra)
	rep.Score = penalize(rep.Score, len(extra), strictPenalty)
	rep.Valid = rep.Score >= strictPassScore
}

// ScoreThemeConsistency tests, case-insensitively, whether theme occurs in
// description.
func (s *Scorer) ScoreThemeConsistency(theme string, words []string, description string) ThemeReport {
	if strings.TrimSpace(theme) == "" {
		return ThemeReport{Err: ErrEmptyTheme}
	}
	if len(words) == 0 {
		return ThemeReport{Theme: theme, Err: ErrEmptyWordList}
	}

	mentioned := strings.Contains(strings.ToLower(description), strings.ToLower(theme))
	rep := ThemeReport{
		Valid:          true,
		Theme:          theme,
		ThemeMentioned: mentioned,
		WordCount:      len(words),
		Score:          ThemeAbsentScore,
	}
	if mentioned {
		rep.Score = ThemeMentionedScore
	}
	return rep
}

func penalize(score float64, n, each int) float64 {
	return max(0, score-float64(n*each))
}
