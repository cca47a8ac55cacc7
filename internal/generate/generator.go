// Package generate talks to the text-generation backend used by every
// pipeline stage.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
)

// ErrEmptyResponse is returned when the backend produced no text.
var ErrEmptyResponse = errors.New("empty generation response")

// NamedOutput is one named value extracted from a response.
type NamedOutput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Output is the result of one invocation.
type Output struct {
	Text    string        `json:"text"`
	Outputs []NamedOutput `json:"outputs,omitempty"`
}

// Get returns the raw value of a named output.
func (o Output) Get(name string) (string, bool) {
	for _, n := range o.Outputs {
		if n.Name == name {
			return n.Value, true
		}
	}
	return "", false
}

// Decode unmarshals the named output into v.
func (o Output) Decode(name string, v any) error {
	raw, ok := o.Get(name)
	if !ok {
		return fmt.Errorf("output %q not present", name)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode output %q: %w", name, err)
	}
	return nil
}

// Generator produces text from a prompt. Implementations apply their own
// timeout and retry policy and must be safe to retry.
type Generator interface {
	Invoke(ctx context.Context, prompt string, pc *pipeline.Context) (Output, error)
}

// New builds the generator named by cfg.Provider.
func New(ctx context.Context, cfg config.Generation, opts ...Option) (Generator, error) {
	switch cfg.Provider {
	case "scripted":
		return NewScripted(), nil
	case "gemini", "":
		return NewGemini(ctx, cfg, opts...)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

// ParseOutput builds an Output from raw response text. When the text (or
// a fenced code block inside it) is a JSON object, each top-level key
// becomes a named output holding the raw JSON value.
func ParseOutput(text string) Output {
	out := Output{Text: text}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripFence(text)), &fields); err != nil {
		return out
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		out.Outputs = append(out.Outputs, NamedOutput{Name: k, Value: string(fields[k])})
	}
	return out
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
