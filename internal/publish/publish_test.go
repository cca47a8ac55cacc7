package publish

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/game"
	"github.com/lucasnoah/puzzlefactory/internal/words"
)

func testGame(t *testing.T) *game.CompleteGame {
	t.Helper()
	cfg := config.Default()
	a := game.NewAssembler(cfg.Quality, cfg.Templates.Title, nil)
	g, err := a.Assemble(game.AssembleInput{
		Theme:       "fruits",
		Type:        game.WordSearch,
		Words:       []string{"apple", "banana", "cherry"},
		Difficulty:  words.Easy,
		Description: "a game about fruits & <snacks>",
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return g
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(testGame(t))
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{
		"<title>Fruits Word Hunt</title>",
		`class="puzzle puzzle-word-search"`,
		"(6 letters)",
		"ANSWER KEY",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	g := testGame(t)
	g.Content.Title = "<script>alert(1)</script>"
	html, err := RenderHTML(g)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("title not escaped:\n%s", html)
	}
}

func TestConsolePublish(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsole(&buf)

	res, err := p.Publish(context.Background(), words.Medium, "<p>hi</p>")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Status != StatusSuccess || res.Deliveries != 20 {
		t.Errorf("Result = %+v", res)
	}
	out := buf.String()
	if !strings.Contains(out, "Level: medium") || !strings.Contains(out, "HTML Content: <p>hi</p>") {
		t.Errorf("output = %q", out)
	}
}

func TestConsolePublishRejectsUnknownLevel(t *testing.T) {
	res, err := NewConsole(&bytes.Buffer{}).Publish(context.Background(), "extreme", "x")
	if err == nil || res.Status != StatusError {
		t.Errorf("Result = %+v, err = %v", res, err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestConsolePublishWriteError(t *testing.T) {
	res, err := NewConsole(failingWriter{}).Publish(context.Background(), words.Hard, "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Status != StatusError || res.ErrorMessage != "publishing failed" {
		t.Errorf("Result = %+v", res)
	}
}

func TestConsolePublishCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewConsole(&bytes.Buffer{}).Publish(ctx, words.Easy, "x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
