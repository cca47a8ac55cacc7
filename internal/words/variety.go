package words

import (
	"fmt"
	"math"
	"strings"
)

// Distribution is a difficulty histogram.
type Distribution struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Add counts one word at level l.
func (d *Distribution) Add(l Level) {
	switch l {
	case Easy:
		d.Easy++
	case Medium:
		d.Medium++
	case Hard:
		d.Hard++
	}
}

// Total is the number of words counted.
func (d Distribution) Total() int {
	return d.Easy + d.Medium + d.Hard
}

// VarietyReport describes a whole word list.
type VarietyReport struct {
	Valid          bool         `json:"valid"`
	TotalWords     int          `json:"total_words"`
	UniqueWords    int          `json:"unique_words"`
	DuplicateCount int          `json:"duplicate_count"`
	Distribution   Distribution `json:"difficulty_distribution"`
	Err            error        `json:"-"`
}

// CheckVariety fails on an empty list or on any case-insensitive duplicate.
// Otherwise every word is scored into the histogram.
func (a *Analyzer) CheckVariety(words []string) VarietyReport {
	rep := VarietyReport{TotalWords: len(words)}
	if len(words) == 0 {
		rep.Err = ErrEmptyList
		return rep
	}

	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	rep.UniqueWords = len(seen)

	if rep.UniqueWords != rep.TotalWords {
		rep.DuplicateCount = rep.TotalWords - rep.UniqueWords
		rep.Err = fmt.Errorf("%w: %d duplicate(s) in %d words", ErrDuplicateWords, rep.DuplicateCount, rep.TotalWords)
		return rep
	}

	for _, w := range words {
		rep.Distribution.Add(a.ScoreDifficulty(w).Level)
	}
	rep.Valid = true
	return rep
}

// Dedupe keeps the first occurrence of each word, compared
// case-insensitively, and returns the later occurrences as dropped.
func Dedupe(words []string) (kept, dropped []string) {
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		key := strings.ToLower(w)
		if seen[key] {
			dropped = append(dropped, w)
			continue
		}
		seen[key] = true
		kept = append(kept, w)
	}
	return kept, dropped
}

// Balance regroups words by difficulty and takes from each group the share
// given by target. Missing easy/medium ratios default to one third and hard
// takes the remainder. A nil or empty target returns words unchanged.
// The result may be shorter than the input when a group runs short.
func (a *Analyzer) Balance(words []string, target map[string]float64) []string {
	if len(target) == 0 {
		return words
	}

	groups := make(map[Level][]string, len(Levels))
	for _, w := range words {
		l := a.ScoreDifficulty(w).Level
		groups[l] = append(groups[l], w)
	}

	ratio := func(l Level) float64 {
		if r, ok := target[string(l)]; ok {
			return max(0, r)
		}
		return 0.33
	}
	total := len(words)
	want := map[Level]int{
		Easy:   int(float64(total) * ratio(Easy)),
		Medium: int(float64(total) * ratio(Medium)),
	}
	// Ratios that leave a level on the default may over-allocate; hard gets
	// whatever remains, possibly nothing.
	want[Hard] = max(0, total-want[Easy]-want[Medium])

	var out []string
	for _, l := range Levels {
		g := groups[l]
		n := min(want[l], len(g))
		out = append(out, g[:n]...)
	}
	return out
}

// SelectionScore rates a word selection: up to 50 points for the validation
// pass rate, 50 for a valid variety report (25 otherwise) and up to 20 for
// a difficulty spread close to even thirds. The result is capped at 100.
func SelectionScore(results []ValidationResult, variety VarietyReport) float64 {
	var validation float64
	if len(results) > 0 {
		valid := 0
		for _, r := range results {
			if r.Valid {
				valid++
			}
		}
		validation = float64(valid) / float64(len(results)) * 50
	}

	varietyScore := 25.0
	if variety.Valid {
		varietyScore = 50
	}

	var bonus float64
	if variety.Valid && variety.TotalWords > 0 {
		d := variety.Distribution
		ideal := float64(variety.TotalWords) / 3
		spread := math.Abs(float64(d.Easy)-ideal) + math.Abs(float64(d.Medium)-ideal) + math.Abs(float64(d.Hard)-ideal)
		bonus = (1 - spread/float64(variety.TotalWords*2)) * 20
	}

	return round2(math.Min(100, validation+varietyScore+bonus))
}
