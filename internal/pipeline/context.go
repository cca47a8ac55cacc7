package pipeline

import (
	"errors"
	"fmt"
)

// Key is a well-known context key.
type Key string

const (
	KeyBrainstorm  Key = "brainstorm_result"
	KeyPickedWords Key = "picked_words"
	KeyFinalGame   Key = "final_game"
)

// Keys lists the well-known keys in the order stages write them.
var Keys = []Key{KeyBrainstorm, KeyPickedWords, KeyFinalGame}

var (
	ErrUnknownKey = errors.New("unknown context key")
	ErrKeyExists  = errors.New("context key already written")
	ErrMissingKey = errors.New("context key not written")
	ErrWrongType  = errors.New("context value has unexpected type")
)

func knownKey(k Key) bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// Context holds the stage outputs of one run. It belongs to a single run
// and is not safe for concurrent use.
type Context struct {
	RunID   string
	Request GameRequest
	values  map[Key]any
}

// NewContext creates an empty context for a run.
func NewContext(runID string, req GameRequest) *Context {
	return &Context{RunID: runID, Request: req, values: make(map[Key]any, len(Keys))}
}

// Set writes a value under a well-known key. Keys are append-only.
func (c *Context) Set(k Key, v any) error {
	if !knownKey(k) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, k)
	}
	if _, ok := c.values[k]; ok {
		return fmt.Errorf("%w: %q", ErrKeyExists, k)
	}
	c.values[k] = v
	return nil
}

// Get returns the raw value under k.
func (c *Context) Get(k Key) (any, bool) {
	v, ok := c.values[k]
	return v, ok
}

// Has reports whether k has been written.
func (c *Context) Has(k Key) bool {
	_, ok := c.values[k]
	return ok
}

// Written returns the keys written so far, in stage order.
func (c *Context) Written() []Key {
	var out []Key
	for _, k := range Keys {
		if c.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Concept returns the concept stage output.
func (c *Context) Concept() (*Concept, error) {
	return typed[*Concept](c, KeyBrainstorm)
}

// PickedWords returns the word selection stage output.
func (c *Context) PickedWords() (*PickedWords, error) {
	return typed[*PickedWords](c, KeyPickedWords)
}

// FinalGame returns the assembly stage output.
func (c *Context) FinalGame() (*FinalGame, error) {
	return typed[*FinalGame](c, KeyFinalGame)
}

func typed[T any](c *Context, k Key) (T, error) {
	var zero T
	v, ok := c.values[k]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrMissingKey, k)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T", ErrWrongType, k, v)
	}
	return t, nil
}
