// Package log builds zerolog loggers and adds entity fields to log events.
package log

import (
	"io"
	"os"
	"time"

	"github.com/plus3/impstack/config"
	"github.com/plus3/impstack/ecs"
	"github.com/rs/zerolog"
)

// New creates a logger writing to w at the configured level. A nil writer
// logs to stderr.
func New(cfg config.Log, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func loadComponentsIntoArray(types []string) *zerolog.Array {
	arr := zerolog.Arr()
	for _, name := range types {
		arr = arr.Str(name)
	}
	return arr
}

// Entity adds entity_id and the snapshot's component names to ev.
func Entity(ev *zerolog.Event, e ecs.Entity) *zerolog.Event {
	types := e.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return ev.Uint64("entity_id", uint64(e.Id())).
		Array("components", loadComponentsIntoArray(names))
}

// EntityId adds entity_id to ev.
func EntityId(ev *zerolog.Event, id ecs.EntityId) *zerolog.Event {
	return ev.Uint64("entity_id", uint64(id))
}

// Storage logs a summary of the store at the given level.
func Storage(logger zerolog.Logger, level zerolog.Level, stats ecs.StorageStats) {
	breakdown := zerolog.Arr()
	for _, c := range stats.ComponentBreakdown {
		breakdown = breakdown.Dict(zerolog.Dict().
			Str("component_name", c.Type.String()).
			Int("entity_count", c.EntityCount))
	}

	logger.WithLevel(level).
		Int("total_entities", stats.TotalEntityCount).
		Int("total_components", stats.ComponentTypeCount).
		Int("entity_sets", stats.EntitySetCount).
		Int("singletons", stats.SingletonCount).
		Uint64("version", stats.Version).
		Array("components", breakdown).
		Msg("storage")
}

// System creates a sub-logger with the entry {"system": name}.
func System(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("system", name).Logger()
}
