package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRender_SimpleVars(t *testing.T) {
	result, err := Render("Theme {{theme}} with {{word_count}} words.", Vars{
		"theme":      "fruits",
		"word_count": "5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := "Theme fruits with 5 words."
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestRender_MissingVarsSorted(t *testing.T) {
	_, err := Render("{{c}} and {{a}} and {{b}} and {{a}}", Vars{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "missing template variables: a, b, c") {
		t.Errorf("error should list each missing var once, got: %v", err)
	}
}

func TestRender_Conditionals(t *testing.T) {
	tmpl := "Start.{{#if theme}} Theme: {{theme}}.{{/if}} End."

	got, err := Render(tmpl, Vars{"theme": "space"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Start. Theme: space. End." {
		t.Errorf("present: got %q", got)
	}

	got, err = Render(tmpl, Vars{"theme": ""})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Start. End." {
		t.Errorf("empty: got %q", got)
	}

	// a missing variable inside a dropped block is not an error
	got, err = Render(tmpl, Vars{})
	if err != nil {
		t.Fatalf("absent: unexpected error %v", err)
	}
	if got != "Start. End." {
		t.Errorf("absent: got %q", got)
	}
}

func TestRender_NestedConditionals(t *testing.T) {
	tmpl := "{{#if a}}A{{#if b}}B{{/if}}{{/if}}!"
	tests := []struct {
		vars Vars
		want string
	}{
		{Vars{"a": "1", "b": "1"}, "AB!"},
		{Vars{"a": "1"}, "A!"},
		{Vars{"b": "1"}, "!"},
	}
	for _, tt := range tests {
		got, err := Render(tmpl, tt.vars)
		if err != nil {
			t.Fatalf("Render(%v): %v", tt.vars, err)
		}
		if got != tt.want {
			t.Errorf("Render(%v) = %q, want %q", tt.vars, got, tt.want)
		}
	}
}

func TestRender_VarValueContainsTemplateSyntax(t *testing.T) {
	got, err := Render("Desc: {{description}}", Vars{"description": "about {{space}}"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Desc: about {{space}}" {
		t.Errorf("values must not be re-expanded, got %q", got)
	}
}

func TestRender_MalformedConditionals(t *testing.T) {
	if _, err := Render("{{#if a}}open", Vars{"a": "1"}); err == nil || !strings.Contains(err.Error(), "unclosed") {
		t.Errorf("unclosed: err = %v", err)
	}
	if _, err := Render("close{{/if}}", Vars{}); err == nil || !strings.Contains(err.Error(), "dangling") {
		t.Errorf("dangling: err = %v", err)
	}
}

func conceptVars() Vars {
	return Vars{
		"description":    "Create a simple word game about fruits",
		"theme":          "",
		"game_type":      "",
		"difficulty":     "medium",
		"audience":       "general",
		"theme_keywords": "food",
		"game_types":     "word_search, crossword",
		"word_count":     "5",
		"min_length":     "3",
		"max_length":     "20",
	}
}

func TestBuiltinConceptTemplate(t *testing.T) {
	got, err := NewLibrary("").RenderNamed(ConceptTemplate, conceptVars())
	if err != nil {
		t.Fatalf("RenderNamed: %v", err)
	}
	for _, want := range []string{"about fruits", "Propose 5 words", "3-20 letters", "keywords found in the request: food"} {
		if !strings.Contains(got, want) {
			t.Errorf("concept prompt missing %q", want)
		}
	}
	if strings.Contains(got, "Requested theme") {
		t.Error("empty theme block should be dropped")
	}
}

func TestBuiltinTemplatesRender(t *testing.T) {
	lib := NewLibrary("")
	vars := conceptVars()
	for k, v := range map[string]string{
		"candidates": "apple, pear", "min_words": "3", "max_words": "15",
		"difficulty_balance": "", "title": "Fruits Word Hunt", "words": "apple",
		"content_threshold": "80", "theme_threshold": "75", "overall_threshold": "85",
	} {
		vars[k] = v
	}
	vars["theme"] = "fruits"
	vars["game_type"] = "word_search"

	for _, name := range Names() {
		if _, err := lib.RenderNamed(name, vars); err != nil {
			t.Errorf("RenderNamed(%s): %v", name, err)
		}
	}
}

func TestBuiltinTemplateNames(t *testing.T) {
	names := Names()
	want := []string{AssemblyTemplate, ConceptTemplate, WordSelectionTemplate}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestLibrary_Override(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConceptTemplate), []byte("custom {{description}}"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewLibrary(dir).RenderNamed(ConceptTemplate, Vars{"description": "x"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "custom x" {
		t.Errorf("got %q, want override", got)
	}

	// templates without an override fall back to the built-in text
	tmpl, err := NewLibrary(dir).Load(AssemblyTemplate)
	if err != nil || tmpl != assemblyTemplate {
		t.Errorf("fallback Load() = %q, %v", tmpl, err)
	}
}

func TestLibrary_Source(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConceptTemplate), []byte("custom"), 0o644); err != nil {
		t.Fatal(err)
	}

	lib := NewLibrary(dir)
	if got, want := lib.Source(ConceptTemplate), filepath.Join(dir, ConceptTemplate); got != want {
		t.Errorf("Source(concept) = %q, want %q", got, want)
	}
	if got := lib.Source(AssemblyTemplate); got != "built-in" {
		t.Errorf("Source(assembly) = %q, want built-in", got)
	}
	if got := NewLibrary("").Source(ConceptTemplate); got != "built-in" {
		t.Errorf("no dir: Source = %q", got)
	}
}

func TestLibrary_NotFound(t *testing.T) {
	if _, err := NewLibrary("").Load("nope.md"); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestLibrary_PathTraversal(t *testing.T) {
	_, err := NewLibrary(t.TempDir()).Load("../../etc/passwd")
	if err == nil || !strings.Contains(err.Error(), "escapes") {
		t.Errorf("err = %v, want path escape error", err)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConceptTemplate), []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := Export(dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(written) != 2 {
		t.Errorf("written = %v, want 2 (existing file kept)", written)
	}
	data, _ := os.ReadFile(filepath.Join(dir, ConceptTemplate))
	if string(data) != "mine" {
		t.Errorf("existing template overwritten: %q", data)
	}
}
