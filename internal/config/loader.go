package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project-level config file searched by LoadDefault.
const FileName = "puzzlefactory.yaml"

// Default returns a configuration with every documented default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a configuration from the given YAML file path.
// After parsing, it applies defaults to any value left unset and then
// environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a config in standard locations and loads the
// first one found. Search order: ./puzzlefactory.yaml, ~/.puzzlefactory/config.yaml.
// When no file exists the built-in defaults are returned.
func LoadDefault() (*Config, error) {
	candidates := []string{FileName}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".puzzlefactory", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Marshal renders the config as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// applyDefaults fills every zero value with its documented default.
func applyDefaults(cfg *Config) {
	a := &cfg.App
	if a.Name == "" {
		a.Name = "puzzle-network"
	}
	if a.UserID == "" {
		a.UserID = "default_user"
	}
	if a.SessionPrefix == "" {
		a.SessionPrefix = "game_session"
	}

	w := &cfg.Words
	if w.MinLength == 0 {
		w.MinLength = 3
	}
	if w.MaxLength == 0 {
		w.MaxLength = 20
	}
	if w.Vowels == "" {
		w.Vowels = "aeiou"
	}
	if w.EasyThreshold == 0 {
		w.EasyThreshold = 30
	}
	if w.MediumThreshold == 0 {
		w.MediumThreshold = 60
	}
	if w.LengthWeight == 0 && w.RatioWeight == 0 {
		w.LengthWeight = 0.6
		w.RatioWeight = 0.4
	}

	q := &cfg.Quality
	if q.TitleLength == (Bounds{}) {
		q.TitleLength = Bounds{Min: 3, Max: 50}
	}
	if q.WordCount == (Bounds{}) {
		q.WordCount = Bounds{Min: 3, Max: 50}
	}
	if q.InstructionLength == (Bounds{}) {
		q.InstructionLength = Bounds{Min: 10, Max: 500}
	}
	if q.ContentThreshold == 0 {
		q.ContentThreshold = 80
	}
	if q.ThemeThreshold == 0 {
		q.ThemeThreshold = 75
	}
	if q.OverallThreshold == 0 {
		q.OverallThreshold = 85
	}
	if q.MinWords == 0 {
		q.MinWords = 3
	}

	s := &cfg.Selection
	if s.MinWords == 0 {
		s.MinWords = q.MinWords
	}
	if s.MaxWords == 0 {
		s.MaxWords = 15
	}

	g := &cfg.Generation
	if g.Provider == "" {
		g.Provider = "gemini"
	}
	if g.Model == "" {
		g.Model = "gemini-2.5-flash"
	}
	if g.Temperature == 0 {
		g.Temperature = 0.8
	}
	if g.Timeout == "" {
		g.Timeout = "2m"
	}
	if g.RetryAttempts == 0 {
		g.RetryAttempts = 3
	}
	if g.InitialDelay == "" {
		g.InitialDelay = "1s"
	}
	if g.Multiplier == 0 {
		g.Multiplier = 2
	}
	if len(g.RetryStatusCodes) == 0 {
		g.RetryStatusCodes = []int{429, 500, 503, 504}
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "puzzlefactory"
	}

	if cfg.Templates.Title == "" {
		cfg.Templates.Title = "{theme} {game_type}"
	}
}

// applyEnvOverrides lets the environment supply credentials and model selection.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.Generation.APIKey = key
	}
	if model := os.Getenv("PUZZLEFACTORY_MODEL"); model != "" {
		cfg.Generation.Model = model
	}
	if name := os.Getenv("APP_NAME"); name != "" {
		cfg.App.Name = name
	}
}
