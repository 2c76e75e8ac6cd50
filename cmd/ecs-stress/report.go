package main

import (
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/impstack/ecs"
)

type Report struct {
	Workload Workload

	// Results
	TotalUpdates   int64
	TotalTime      time.Duration
	UpdateTime     Stats
	DiffTime       Stats
	Violations     int64
	Churn          *ChurnSystem
	Containers     []ContainerReport
	Storage        ecs.StorageStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// ContainerReport summarizes the callbacks one container received.
type ContainerReport struct {
	Name    string
	Objects int
	Adds    int64
	Updates int64
	Removes int64
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

const reportTemplate = `
# ECS Stress Test Report

## Workload
- **Run Duration:** {{.Workload.Duration}}
- **Initial Entities:** {{.Workload.Entities}}
- **Operations per Tick:** {{.Workload.OpsPerTick}}
- **Seed:** {{.Workload.Seed}}

## Performance Results
- **Total Updates:** {{.TotalUpdates}}
- **Total Test Time:** {{.TotalTime}}
- **Systems (churn + flush):** avg {{.UpdateTime.Avg}}, min {{.UpdateTime.Min}}, max {{.UpdateTime.Max}}
- **Container Updates:** avg {{.DiffTime.Avg}}, min {{.DiffTime.Min}}, max {{.DiffTime.Max}}
{{with .Churn}}
## Churn
- Spawned: {{.Spawned}}
- Mutated: {{.Mutated}}
- Components Removed: {{.ComponentsRemoved}}
- Entities Removed: {{.EntitiesRemoved}}
{{end}}
## Containers
| Container | Objects | Adds | Updates | Removes |
|-----------|---------|------|---------|---------|
{{range .Containers}}| {{.Name}} | {{.Objects}} | {{.Adds}} | {{.Updates}} | {{.Removes}} |
{{end}}
- **Invariant Violations:** {{.Violations}}

## Storage
- Entities: {{.Storage.TotalEntityCount}}
- Component Types: {{.Storage.ComponentTypeCount}}
- Version: {{.Storage.Version}}

## Memory Usage (Raw Bytes)
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}`

var reportFuncs = template.FuncMap{
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}

func (r *Report) Generate(w io.Writer) error {
	tmpl, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}
