package es_test

import (
	"testing"
	"time"

	"github.com/plus3/impstack/app"
	"github.com/plus3/impstack/config"
	"github.com/plus3/impstack/ecs"
	"github.com/plus3/impstack/es"
	"github.com/plus3/impstack/scene"
	"github.com/rs/zerolog"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	es.RegisterComponents(registry)
	return registry
}

func newTestContext(t *testing.T) *app.Context {
	t.Helper()
	ctx := app.New(config.Default(), app.WithLogger(zerolog.Nop()), app.WithRegistry(newTestRegistry()))
	t.Cleanup(ctx.Close)
	return ctx
}

// nameLoader builds an empty node named after the path.
func nameLoader(path string) (*scene.Node, error) {
	return scene.NewNode(path), nil
}

func childNames(n *scene.Node) []string {
	names := []string{}
	for _, c := range n.Children() {
		names = append(names, c.Name)
	}
	return names
}
