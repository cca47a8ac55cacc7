// Package publish renders finished games and hands them to a distribution
// channel.
package publish

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/lucasnoah/puzzlefactory/internal/game"
	"github.com/lucasnoah/puzzlefactory/internal/words"
)

//go:embed templates
var templateFS embed.FS

var funcMap = template.FuncMap{
	"typeClass": func(t game.Type) string {
		return strings.ReplaceAll(string(t), "_", "-")
	},
}

var gameTmpl = template.Must(template.New("game.html").Funcs(funcMap).ParseFS(templateFS, "templates/game.html"))

// RenderHTML renders a complete game as a standalone HTML page.
func RenderHTML(g *game.CompleteGame) (string, error) {
	var buf bytes.Buffer
	if err := gameTmpl.Execute(&buf, g); err != nil {
		return "", fmt.Errorf("render game html: %w", err)
	}
	return buf.String(), nil
}

// Publish statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result reports what happened to a published game.
type Result struct {
	Status       string `json:"status"`
	Deliveries   int    `json:"deliveries,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Publisher sends a rendered game to the distribution list for its level.
type Publisher interface {
	Publish(ctx context.Context, level words.Level, html string) (Result, error)
}

// DefaultDeliveries is the list size the console publisher reports.
const DefaultDeliveries = 20

// Console writes games to an io.Writer instead of mailing them.
type Console struct {
	mu         sync.Mutex
	w          io.Writer
	deliveries int
}

// NewConsole returns a Console publisher writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, deliveries: DefaultDeliveries}
}

func (c *Console) Publish(ctx context.Context, level words.Level, html string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Status: StatusError, ErrorMessage: err.Error()}, err
	}
	if _, ok := words.ParseLevel(string(level)); !ok {
		err := fmt.Errorf("unknown level %q", level)
		return Result{Status: StatusError, ErrorMessage: err.Error()}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, ">>>>>>>>>>>>>> Sending out puzzle <<<<<<<<<<<<\nLevel: %s\nHTML Content: %s\n", level, html)
	if err != nil {
		return Result{Status: StatusError, ErrorMessage: "publishing failed"}, fmt.Errorf("publish: %w", err)
	}
	return Result{Status: StatusSuccess, Deliveries: c.deliveries}, nil
}
