package config

import "time"

// Config is the top-level configuration structure parsed from puzzlefactory YAML.
type Config struct {
	App        App        `yaml:"app" json:"app"`
	Words      Words      `yaml:"words" json:"words"`
	Quality    Quality    `yaml:"quality" json:"quality"`
	Selection  Selection  `yaml:"selection" json:"selection"`
	Generation Generation `yaml:"generation" json:"generation"`
	Telemetry  Telemetry  `yaml:"telemetry" json:"telemetry"`
	Templates  Templates  `yaml:"templates" json:"templates"`
}

// App holds identity values used for run and session naming.
type App struct {
	Name          string `yaml:"name" json:"name"`
	UserID        string `yaml:"user_id" json:"user_id"`
	SessionPrefix string `yaml:"session_prefix" json:"session_prefix"`
}

// Words configures the word analyzer.
type Words struct {
	MinLength       int     `yaml:"min_length" json:"min_length"`
	MaxLength       int     `yaml:"max_length" json:"max_length"`
	Vowels          string  `yaml:"vowels" json:"vowels"`
	EasyThreshold   float64 `yaml:"easy_threshold" json:"easy_threshold"`
	MediumThreshold float64 `yaml:"medium_threshold" json:"medium_threshold"`
	LengthWeight    float64 `yaml:"length_weight" json:"length_weight"`
	RatioWeight     float64 `yaml:"ratio_weight" json:"ratio_weight"`
}

// Bounds is an inclusive [min, max] range.
type Bounds struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Quality configures content scoring and publication thresholds.
type Quality struct {
	TitleLength       Bounds  `yaml:"title_length" json:"title_length"`
	WordCount         Bounds  `yaml:"word_count" json:"word_count"`
	InstructionLength Bounds  `yaml:"instruction_length" json:"instruction_length"`
	ContentThreshold  float64 `yaml:"content_threshold" json:"content_threshold"`
	ThemeThreshold    float64 `yaml:"theme_threshold" json:"theme_threshold"`
	OverallThreshold  float64 `yaml:"overall_threshold" json:"overall_threshold"`
	MinWords          int     `yaml:"min_words" json:"min_words"`
	Strict            bool    `yaml:"strict" json:"strict"`
}

// Selection configures the word-selection stage.
type Selection struct {
	MinWords          int                `yaml:"min_words" json:"min_words"`
	MaxWords          int                `yaml:"max_words" json:"max_words"`
	DifficultyBalance map[string]float64 `yaml:"difficulty_balance" json:"difficulty_balance"`
}

// Generation configures the external text-generation collaborator.
type Generation struct {
	Provider         string  `yaml:"provider" json:"provider"` // "gemini" or "scripted"
	Model            string  `yaml:"model" json:"model"`
	APIKey           string  `yaml:"api_key" json:"-"`
	Temperature      float64 `yaml:"temperature" json:"temperature"`
	Timeout          string  `yaml:"timeout" json:"timeout"`
	RetryAttempts    int     `yaml:"retry_attempts" json:"retry_attempts"`
	InitialDelay     string  `yaml:"initial_delay" json:"initial_delay"`
	Multiplier       float64 `yaml:"multiplier" json:"multiplier"`
	RetryStatusCodes []int   `yaml:"retry_status_codes" json:"retry_status_codes"`
}

// Telemetry configures metric export.
type Telemetry struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	ServiceName  string `yaml:"service_name" json:"service_name"`
	OtlpEndpoint string `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	OtlpInsecure bool   `yaml:"otlp_insecure" json:"otlp_insecure"`
}

// Templates holds overridable text templates.
type Templates struct {
	Title string `yaml:"title" json:"title"`
	Dir   string `yaml:"dir" json:"dir"` // stage prompt overrides; empty uses built-ins
}

// TimeoutDuration parses Generation.Timeout, returning 0 when unset or invalid.
func (g Generation) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(g.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// InitialDelayDuration parses Generation.InitialDelay, falling back to one second.
func (g Generation) InitialDelayDuration() time.Duration {
	d, err := time.ParseDuration(g.InitialDelay)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}
