package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// recognizedProviders is the set of valid generation providers.
var recognizedProviders = map[string]bool{
	"gemini":   true,
	"scripted": true,
}

// recognizedLevels is the set of keys accepted in selection.difficulty_balance.
var recognizedLevels = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// Validate checks a Config for structural and semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError
	add := func(field, msg string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(msg, args...)})
	}

	w := cfg.Words
	if w.MinLength < 1 {
		add("words.min_length", "must be at least 1")
	}
	if w.MaxLength < w.MinLength {
		add("words.max_length", "must be >= min_length (%d)", w.MinLength)
	}
	if strings.TrimSpace(w.Vowels) == "" {
		add("words.vowels", "is required")
	}
	if w.EasyThreshold < 0 || w.EasyThreshold > 100 {
		add("words.easy_threshold", "must be within [0, 100]")
	}
	if w.MediumThreshold < 0 || w.MediumThreshold > 100 {
		add("words.medium_threshold", "must be within [0, 100]")
	}
	if w.EasyThreshold >= w.MediumThreshold {
		add("words.medium_threshold", "must be greater than easy_threshold (%g)", w.EasyThreshold)
	}
	if w.LengthWeight < 0 || w.RatioWeight < 0 {
		add("words.length_weight", "weights must not be negative")
	}
	if math.Abs(w.LengthWeight+w.RatioWeight-1) > 1e-9 {
		add("words.ratio_weight", "length_weight + ratio_weight must equal 1 (got %g)", w.LengthWeight+w.RatioWeight)
	}

	q := cfg.Quality
	validateBounds("quality.title_length", q.TitleLength, &errs)
	validateBounds("quality.word_count", q.WordCount, &errs)
	validateBounds("quality.instruction_length", q.InstructionLength, &errs)
	for _, t := range []struct {
		field string
		value float64
	}{
		{"quality.content_threshold", q.ContentThreshold},
		{"quality.theme_threshold", q.ThemeThreshold},
		{"quality.overall_threshold", q.OverallThreshold},
	} {
		if t.value < 0 || t.value > 100 {
			add(t.field, "must be within [0, 100]")
		}
	}
	if q.MinWords < 1 {
		add("quality.min_words", "must be at least 1")
	}

	s := cfg.Selection
	if s.MinWords < 1 {
		add("selection.min_words", "must be at least 1")
	}
	if s.MaxWords < s.MinWords {
		add("selection.max_words", "must be >= min_words (%d)", s.MinWords)
	}
	if len(s.DifficultyBalance) > 0 {
		var sum float64
		for level, ratio := range s.DifficultyBalance {
			if !recognizedLevels[level] {
				add("selection.difficulty_balance", "unrecognized level %q", level)
			}
			if ratio < 0 {
				add("selection.difficulty_balance."+level, "must not be negative")
			}
			sum += ratio
		}
		if math.Abs(sum-1) > 0.01 {
			add("selection.difficulty_balance", "ratios must sum to 1 (got %.2f)", sum)
		}
	}

	g := cfg.Generation
	if !recognizedProviders[g.Provider] {
		add("generation.provider", "unrecognized provider %q", g.Provider)
	}
	if g.Provider == "gemini" && g.APIKey == "" {
		add("generation.api_key", "is required for the gemini provider (set GOOGLE_API_KEY)")
	}
	if g.Timeout != "" {
		if _, err := time.ParseDuration(g.Timeout); err != nil {
			add("generation.timeout", "invalid duration %q", g.Timeout)
		}
	}
	if g.InitialDelay != "" {
		if _, err := time.ParseDuration(g.InitialDelay); err != nil {
			add("generation.initial_delay", "invalid duration %q", g.InitialDelay)
		}
	}
	if g.RetryAttempts < 1 {
		add("generation.retry_attempts", "must be at least 1")
	}
	if g.Multiplier < 1 {
		add("generation.multiplier", "must be >= 1")
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.ServiceName == "" {
		add("telemetry.service_name", "is required when telemetry is enabled")
	}

	if !strings.Contains(cfg.Templates.Title, "{theme}") {
		add("templates.title", "must reference {theme}")
	}

	return errs
}

// validateBounds checks that an inclusive range is non-negative and ordered.
func validateBounds(field string, b Bounds, errs *[]ValidationError) {
	if b.Min < 0 {
		*errs = append(*errs, ValidationError{Field: field + ".min", Message: "must not be negative"})
	}
	if b.Max < b.Min {
		*errs = append(*errs, ValidationError{
			Field:   field + ".max",
			Message: fmt.Sprintf("must be >= min (%d)", b.Min),
		})
	}
}
