package log_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/plus3/impstack/config"
	"github.com/plus3/impstack/ecs"
	"github.com/plus3/impstack/log"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type health struct{ Current int }

type label struct{ Text string }

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(config.Log{Level: "warn"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
	assert.Contains(t, lines[0], "time")
}

func TestNewBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(config.Log{Level: "chatty"}, &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(config.Log{Level: "info", Pretty: true}, &buf)

	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "console output is not json")
}

func TestEntity(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[health](registry)
	ecs.RegisterComponent[label](registry)
	storage := ecs.NewStorage(registry)
	id := storage.Spawn(health{Current: 3}, label{Text: "a"})

	set := storage.GetEntities(ecs.TypeOf[health](), ecs.TypeOf[label]())
	defer set.Release()
	set.ApplyChanges()
	e, ok := set.Get(id)
	require.True(t, ok)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	log.Entity(logger.Info(), e).Msg("added")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(id), lines[0]["entity_id"])
	assert.Equal(t, []any{"log_test.health", "log_test.label"}, lines[0]["components"])
}

func TestStorage(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[health](registry)
	storage := ecs.NewStorage(registry)
	storage.Spawn(health{})
	storage.Spawn(health{})

	var buf bytes.Buffer
	log.Storage(zerolog.New(&buf), zerolog.InfoLevel, storage.CollectStats())

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(2), lines[0]["total_entities"])
	components := lines[0]["components"].([]any)
	require.Len(t, components, 1)
	assert.Equal(t, "log_test.health", components[0].(map[string]any)["component_name"])
}

func TestSystem(t *testing.T) {
	var buf bytes.Buffer
	logger := log.System(zerolog.New(&buf), "DecaySystem")
	logger.Info().Msg("tick")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "DecaySystem", lines[0]["system"])
}
