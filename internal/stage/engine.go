// Package stage implements the three generative pipeline stages. Each stage
// renders its prompt, asks the generator for output, applies the word and
// quality rules, and returns the single context value it produces.
package stage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lucasnoah/puzzlefactory/internal/generate"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
	"github.com/lucasnoah/puzzlefactory/internal/prompt"
)

// ErrNoGenerator is returned by Ready when a stage has no generator.
var ErrNoGenerator = errors.New("stage has no generator")

// ErrMalformedOutput is returned when generator output lacks a required value.
var ErrMalformedOutput = errors.New("malformed generator output")

// Delta is what a stage hands back to the orchestrator: the one context key
// it writes, and the events produced while running.
type Delta struct {
	Key    pipeline.Key
	Value  any
	Events []pipeline.Event
}

// Stage is one step of the pipeline.
type Stage interface {
	Name() pipeline.State
	Run(ctx context.Context, pc *pipeline.Context) (Delta, error)
}

// Readier is implemented by stages that can report missing dependencies
// before a run starts.
type Readier interface {
	Ready() error
}

// engine holds what every generative stage shares.
type engine struct {
	state    pipeline.State
	gen      generate.Generator
	prompts  *prompt.Library
	template string
	now      func() time.Time
}

func newEngine(state pipeline.State, gen generate.Generator, prompts *prompt.Library, template string) engine {
	if prompts == nil {
		prompts = prompt.NewLibrary("")
	}
	return engine{state: state, gen: gen, prompts: prompts, template: template, now: time.Now}
}

func (e *engine) Name() pipeline.State {
	return e.state
}

func (e *engine) Ready() error {
	if e.gen == nil {
		return fmt.Errorf("%s: %w", e.state, ErrNoGenerator)
	}
	return nil
}

// invoke renders the stage template and calls the generator. Every named
// output becomes one event.
func (e *engine) invoke(ctx context.Context, pc *pipeline.Context, vars prompt.Vars) (generate.Output, []pipeline.Event, error) {
	rendered, err := e.prompts.RenderNamed(e.template, vars)
	if err != nil {
		return generate.Output{}, nil, fmt.Errorf("render %s prompt: %w", e.state, err)
	}

	out, err := e.gen.Invoke(ctx, rendered, pc)
	if err != nil {
		return generate.Output{}, nil, fmt.Errorf("invoke generator: %w", err)
	}
	return out, e.events(out), nil
}

func (e *engine) events(out generate.Output) []pipeline.Event {
	at := e.now()
	if len(out.Outputs) == 0 {
		if strings.TrimSpace(out.Text) == "" {
			return nil
		}
		return []pipeline.Event{{Stage: string(e.state), Kind: "text", Message: truncate(out.Text, 80), At: at}}
	}
	evs := make([]pipeline.Event, 0, len(out.Outputs))
	for _, o := range out.Outputs {
		evs = append(evs, pipeline.Event{
			Stage:   string(e.state),
			Kind:    "output",
			Message: o.Name + "=" + truncate(o.Value, 80),
			At:      at,
		})
	}
	return evs
}

func (e *engine) note(kind, format string, args ...any) pipeline.Event {
	return pipeline.Event{Stage: string(e.state), Kind: kind, Message: fmt.Sprintf(format, args...), At: e.now()}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
