package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/google/autoparse"
	"github.com/google/autoparse/internal/presentation/graph"
	"github.com/google/autoparse/internal/presentation/tui"
	"github.com/google/autoparse/pkg/schema"
)

// Describe renders the property table of the schema at uri to w.
func Describe(ctx context.Context, engine *autoparse.Engine, uri string, w io.Writer, plain bool) error {
	d, err := engine.Load(ctx, uri)
	if err != nil {
		return err
	}
	out, err := tui.NewRenderer(plain)(tui.SummaryMarkdown(schema.Summarize(d)))
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// List writes the URI of every schema the engine can load, preloading them.
func List(ctx context.Context, engine *autoparse.Engine, w io.Writer) error {
	if err := engine.Preload(ctx); err != nil {
		return err
	}
	for _, d := range engine.Schemas() {
		if _, err := fmt.Fprintln(w, d.ID()); err != nil {
			return err
		}
	}
	return nil
}

// Graph writes a Mermaid flowchart of the references between schemas. With
// a uri, that schema is loaded and highlighted; without one every schema in
// the source is loaded first.
func Graph(ctx context.Context, engine *autoparse.Engine, uri string, w io.Writer) error {
	var overlay *graph.Overlay
	if uri == "" {
		if err := engine.Preload(ctx); err != nil {
			return err
		}
	} else {
		d, err := engine.Load(ctx, uri)
		if err != nil {
			return err
		}
		overlay = &graph.Overlay{Focus: d.ID()}
	}
	_, err := io.WriteString(w, graph.GenerateMermaid(engine.Schemas(), overlay))
	return err
}
