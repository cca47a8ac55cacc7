// Package prompt renders the stage prompts sent to the generation backend.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	varRe      = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)
	ifOpenRe   = regexp.MustCompile(`\{\{#if\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)
	ifCloseStr = "{{/if}}"
)

// Vars is a map of variable names to values for template rendering.
type Vars map[string]string

// Render expands a template string with the given variables.
// {{variable}} is replaced with its value; a missing variable is an error.
// {{#if variable}}...{{/if}} keeps its body only when the variable is non-empty.
func Render(tmpl string, vars Vars) (string, error) {
	body, err := expandConditionals(tmpl, vars)
	if err != nil {
		return "", err
	}

	missing := map[string]bool{}
	out := varRe.ReplaceAllStringFunc(body, func(match string) string {
		name := varRe.FindStringSubmatch(match)[1]
		if val, ok := vars[name]; ok {
			return val
		}
		missing[name] = true
		return match
	})

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		return "", fmt.Errorf("missing template variables: %s", strings.Join(names, ", "))
	}
	return out, nil
}

// expandConditionals resolves {{#if}} blocks innermost first: for each
// {{/if}} the closest preceding opening tag is its partner.
func expandConditionals(tmpl string, vars Vars) (string, error) {
	out := tmpl
	for {
		closeIdx := strings.Index(out, ifCloseStr)
		if closeIdx == -1 {
			break
		}

		opens := ifOpenRe.FindAllStringSubmatchIndex(out[:closeIdx], -1)
		if opens == nil {
			return "", fmt.Errorf("dangling {{/if}} without matching {{#if}}")
		}
		open := opens[len(opens)-1]
		name := out[open[2]:open[3]]

		var keep string
		if vars[name] != "" {
			keep = out[open[1]:closeIdx]
		}
		out = out[:open[0]] + keep + out[closeIdx+len(ifCloseStr):]
	}

	if loc := ifOpenRe.FindString(out); loc != "" {
		return "", fmt.Errorf("unclosed conditional block: %s", loc)
	}
	return out, nil
}

// Library resolves stage templates, preferring files in an override
// directory over the built-in set.
type Library struct {
	dir string
}

// NewLibrary returns a Library. An empty dir uses only built-in templates.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Load returns the template registered under name, e.g. "concept.md".
func (l *Library) Load(name string) (string, error) {
	if l != nil && l.dir != "" {
		path := filepath.Join(l.dir, name)
		abs, err := filepath.Abs(path)
		if err == nil {
			root, err := filepath.Abs(l.dir)
			if err == nil && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
				return "", fmt.Errorf("template path %q escapes %s", name, l.dir)
			}
		}
		if data, err := os.ReadFile(path); err == nil {
			return string(data), nil
		}
	}

	tmpl, ok := builtinTemplates[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}
	return tmpl, nil
}

// Source reports where name resolves from: the override file's path, or
// "built-in".
func (l *Library) Source(name string) string {
	if l != nil && l.dir != "" {
		path := filepath.Join(l.dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return "built-in"
}

// RenderNamed loads and renders a template in one step.
func (l *Library) RenderNamed(name string, vars Vars) (string, error) {
	tmpl, err := l.Load(name)
	if err != nil {
		return "", err
	}
	out, err := Render(tmpl, vars)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return out, nil
}

// Names lists the built-in template names.
func Names() []string {
	names := make([]string, 0, len(builtinTemplates))
	for n := range builtinTemplates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Export writes the built-in templates into dir without overwriting
// existing files, so they can be edited and used as overrides.
func Export(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create templates dir: %w", err)
	}

	var written []string
	for _, name := range Names() {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(builtinTemplates[name]), 0o644); err != nil {
			return written, fmt.Errorf("write template %q: %w", name, err)
		}
		written = append(written, name)
	}
	return written, nil
}
