package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/plus3/impstack/config"
	"github.com/plus3/impstack/ecs"
	"github.com/plus3/impstack/log"
	"github.com/rs/zerolog"
)

const maxLoggedViolations = 20

func main() {
	configPath := flag.String("config", "", "Path to the impstack YAML config (log settings).")
	workloadPath := flag.String("workload", "", "Path to a YAML workload file.")
	duration := flag.Duration("duration", 0, "Override the workload run duration.")
	entityCount := flag.Int("entities", -1, "Override the initial number of entities.")
	seed := flag.Int64("seed", 0, "Override the workload random seed.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := log.New(cfg.Log, os.Stderr)

	workload, err := loadWorkload(*workloadPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load workload")
	}
	if *duration > 0 {
		workload.Duration = *duration
	}
	if *entityCount >= 0 {
		workload.Entities = *entityCount
	}
	if *seed != 0 {
		workload.Seed = *seed
	}

	logger.Info().Dur("duration", workload.Duration).Int("entities", workload.Entities).
		Int("ops_per_tick", workload.OpsPerTick).Int64("seed", workload.Seed).Msg("starting ECS stress test")

	rng := rand.New(rand.NewSource(workload.Seed))

	registry := ecs.NewComponentRegistry()
	registerComponents(registry)
	storage := ecs.NewStorage(registry)
	defer storage.Close()

	churn := NewChurnSystem(workload, rng)
	scheduler := ecs.NewScheduler(storage, ecs.WithLogger(log.System(logger, "scheduler")))
	scheduler.Register(churn)

	logger.Info().Int("entities", workload.Entities).Msg("populating storage")
	err = storage.Batch(func(tx *ecs.Tx) error {
		for range workload.Entities {
			tx.Spawn(randomComponents(rng)...)
		}
		return nil
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to populate storage")
	}

	containers := []*watched{
		newWatched(storage, "position", ecs.TypeOf[position]()),
		newWatched(storage, "movers", ecs.TypeOf[position](), ecs.TypeOf[velocity]()),
		newWatched(storage, "health", ecs.TypeOf[health]()),
		newWatched(storage, "named", ecs.TypeOf[position](), ecs.TypeOf[health](), ecs.TypeOf[label]()),
	}
	for _, w := range containers {
		if err := w.container.Start(); err != nil {
			logger.Fatal().Err(err).Str("container", w.name).Msg("failed to start container")
		}
	}

	report := &Report{
		Workload:       workload,
		GCPauseMetrics: *gcPauseMetrics,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	ctx, cancel := context.WithTimeout(context.Background(), workload.Duration)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		updateStart := time.Now()
		scheduler.Once(deltaTime.Seconds())
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))

		diffStart := time.Now()
		for _, w := range containers {
			if _, err := w.container.Update(); err != nil {
				logger.Fatal().Err(err).Str("container", w.name).Msg("container update failed")
			}
		}
		report.DiffTime.Samples = append(report.DiffTime.Samples, time.Since(diffStart))

		for _, w := range containers {
			for _, v := range w.check() {
				if report.Violations < maxLoggedViolations {
					log.EntityId(logger.Error(), v.Entity).Str("container", v.Container).Msg(v.Reason)
				}
				report.Violations++
			}
		}
		report.TotalUpdates++
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	report.DiffTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.Churn = churn
	report.Storage = storage.CollectStats()
	for _, w := range containers {
		report.Containers = append(report.Containers, ContainerReport{
			Name:    w.name,
			Objects: w.container.Len(),
			Adds:    w.tracker.adds,
			Updates: w.tracker.updates,
			Removes: w.tracker.removes,
		})
		w.container.Stop()
	}
	log.Storage(logger, zerolog.InfoLevel, report.Storage)

	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal().Err(err).Msg("failed to generate report")
	}

	if report.Violations > 0 {
		logger.Error().Int64("violations", report.Violations).Msg("stress test found invariant violations")
		os.Exit(1)
	}
	logger.Info().Msg("stress test complete")
}
